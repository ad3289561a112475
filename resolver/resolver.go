package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ewintr.nl/tubemirror/model"
	"github.com/kkdai/youtube/v2"
)

var ErrNoStream = errors.New("no suitable stream")

// Links holds one pair of direct stream URLs. They are issued by the
// platform with a limited lifetime, so they are resolved fresh per request
// and never stored.
type Links struct {
	VideoURL string
	AudioURL string
}

type Resolver interface {
	Resolve(ctx context.Context, ytID model.YoutubeVideoID) (Links, error)
}

// YoutubeResolver negotiates stream formats against YouTube. Both the video
// and the audio negotiation have to succeed, a half-resolved pair is
// reported as a failure. Safe for concurrent use.
type YoutubeResolver struct {
	client *youtube.Client
}

func NewYoutubeResolver() *YoutubeResolver {
	return &YoutubeResolver{client: &youtube.Client{}}
}

func (r *YoutubeResolver) Resolve(ctx context.Context, ytID model.YoutubeVideoID) (Links, error) {
	video, err := r.client.GetVideoContext(ctx, string(ytID))
	if err != nil {
		return Links{}, fmt.Errorf("failed to fetch video info: %w", err)
	}

	videoFormat, err := selectVideoFormat(video.Formats)
	if err != nil {
		return Links{}, fmt.Errorf("failed to negotiate video stream: %w", err)
	}
	audioFormat, err := selectAudioFormat(video.Formats)
	if err != nil {
		return Links{}, fmt.Errorf("failed to negotiate audio stream: %w", err)
	}

	videoURL, err := r.client.GetStreamURLContext(ctx, video, videoFormat)
	if err != nil {
		return Links{}, fmt.Errorf("failed to resolve video stream url: %w", err)
	}
	audioURL, err := r.client.GetStreamURLContext(ctx, video, audioFormat)
	if err != nil {
		return Links{}, fmt.Errorf("failed to resolve audio stream url: %w", err)
	}

	return Links{VideoURL: videoURL, AudioURL: audioURL}, nil
}

// selectVideoFormat prefers an mp4 stream that carries its own audio and
// falls back to any combined stream.
func selectVideoFormat(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := formats.Type("video/mp4").WithAudioChannels()
	if len(candidates) == 0 {
		candidates = formats.WithAudioChannels()
	}
	if len(candidates) == 0 {
		return nil, ErrNoStream
	}
	candidates.Sort()

	return &candidates[0], nil
}

// selectAudioFormat picks the audio-only stream with the highest bitrate.
func selectAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	var best *youtube.Format
	for i := range formats {
		if !strings.HasPrefix(formats[i].MimeType, "audio/") {
			continue
		}
		if best == nil || formats[i].Bitrate > best.Bitrate {
			best = &formats[i]
		}
	}
	if best == nil {
		return nil, ErrNoStream
	}

	return best, nil
}
