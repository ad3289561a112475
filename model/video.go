package model

import "github.com/google/uuid"

type YoutubeVideoID string

type Video struct {
	ID         uuid.UUID
	YoutubeID  YoutubeVideoID
	PlaylistID uuid.UUID
	Title      string
	Thumbnail  string

	// Duration is the video length in whole seconds. A duration that could
	// not be decoded from the upstream record is stored as 0.
	Duration int
}
