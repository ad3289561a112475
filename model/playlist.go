package model

import "github.com/google/uuid"

type YoutubePlaylistID string

type YoutubeChannelID string

type Playlist struct {
	ID          uuid.UUID
	YoutubeID   YoutubePlaylistID
	Name        string
	Description string
	Thumbnail   string
}
