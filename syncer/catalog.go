package syncer

import (
	"context"

	"ewintr.nl/tubemirror/model"
)

// PlaylistRecord is one playlist as reported by the remote catalog.
type PlaylistRecord struct {
	YoutubeID   model.YoutubePlaylistID
	Name        string
	Description string
	Thumbnail   string
}

// VideoRecord is one video detail record as reported by the remote catalog.
// Duration is the raw ISO 8601 encoding, normalized later by Seconds.
type VideoRecord struct {
	YoutubeID model.YoutubeVideoID
	Title     string
	Thumbnail string
	Duration  string
}

// CatalogClient reads the remote catalog one page at a time. A returned
// token of "" means there are no further pages.
type CatalogClient interface {
	PlaylistPage(ctx context.Context, channelID model.YoutubeChannelID, pageToken string) ([]PlaylistRecord, string, error)
	PlaylistItemPage(ctx context.Context, playlistID model.YoutubePlaylistID, pageToken string) ([]model.YoutubeVideoID, string, error)
	// VideoDetails looks up detail records for at most 50 ids in one call.
	// The syncer chunks larger sets itself.
	VideoDetails(ctx context.Context, ytIDs []model.YoutubeVideoID) ([]VideoRecord, error)
}
