package storage

import (
	"errors"

	"ewintr.nl/tubemirror/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type PlaylistRepository interface {
	FindByYoutubeID(ytID model.YoutubePlaylistID) (*model.Playlist, error)
	FindByID(id uuid.UUID) (*model.Playlist, error)
	FindAll() ([]*model.Playlist, error)
	Insert(playlist *model.Playlist) error
}

type VideoRepository interface {
	// FilterExisting reports which of the given external ids are already
	// present in the store.
	FilterExisting(ytIDs []model.YoutubeVideoID) (map[model.YoutubeVideoID]bool, error)
	// InsertBatch persists all videos in one transaction. Either the whole
	// batch commits or none of it does.
	InsertBatch(videos []*model.Video) error
	FindByPlaylist(playlistID uuid.UUID) ([]*model.Video, error)
	FindByID(id uuid.UUID) (*model.Video, error)
	FindByYoutubeID(ytID model.YoutubeVideoID) (*model.Video, error)
}
