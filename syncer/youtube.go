package syncer

import (
	"context"
	"strings"

	"ewintr.nl/tubemirror/model"
	"google.golang.org/api/youtube/v3"
)

// pageSize is the maximum the YouTube Data API allows per page, both for
// listing and for multi-id detail lookups.
const pageSize = 50

type Youtube struct {
	client *youtube.Service
}

func NewYoutube(client *youtube.Service) *Youtube {
	return &Youtube{client: client}
}

func (y *Youtube) PlaylistPage(ctx context.Context, channelID model.YoutubeChannelID, pageToken string) ([]PlaylistRecord, string, error) {
	call := y.client.Playlists.
		List([]string{"snippet"}).
		ChannelId(string(channelID)).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return []PlaylistRecord{}, "", err
	}

	records := make([]PlaylistRecord, 0, len(response.Items))
	for _, item := range response.Items {
		records = append(records, PlaylistRecord{
			YoutubeID:   model.YoutubePlaylistID(item.Id),
			Name:        item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   thumbnailURL(item.Snippet.Thumbnails),
		})
	}

	return records, response.NextPageToken, nil
}

func (y *Youtube) PlaylistItemPage(ctx context.Context, playlistID model.YoutubePlaylistID, pageToken string) ([]model.YoutubeVideoID, string, error) {
	call := y.client.PlaylistItems.
		List([]string{"contentDetails"}).
		PlaylistId(string(playlistID)).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return []model.YoutubeVideoID{}, "", err
	}

	ytIDs := make([]model.YoutubeVideoID, 0, len(response.Items))
	for _, item := range response.Items {
		ytIDs = append(ytIDs, model.YoutubeVideoID(item.ContentDetails.VideoId))
	}

	return ytIDs, response.NextPageToken, nil
}

func (y *Youtube) VideoDetails(ctx context.Context, ytIDs []model.YoutubeVideoID) ([]VideoRecord, error) {
	ids := make([]string, 0, len(ytIDs))
	for _, ytID := range ytIDs {
		ids = append(ids, string(ytID))
	}

	call := y.client.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return []VideoRecord{}, err
	}

	records := make([]VideoRecord, 0, len(response.Items))
	for _, item := range response.Items {
		record := VideoRecord{
			YoutubeID: model.YoutubeVideoID(item.Id),
			Title:     item.Snippet.Title,
			Thumbnail: thumbnailURL(item.Snippet.Thumbnails),
		}
		if item.ContentDetails != nil {
			record.Duration = item.ContentDetails.Duration
		}
		records = append(records, record)
	}

	return records, nil
}

func thumbnailURL(details *youtube.ThumbnailDetails) string {
	switch {
	case details == nil:
		return ""
	case details.High != nil:
		return details.High.Url
	case details.Medium != nil:
		return details.Medium.Url
	case details.Default != nil:
		return details.Default.Url
	}

	return ""
}
