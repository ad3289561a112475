package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ewintr.nl/tubemirror/model"
	"ewintr.nl/tubemirror/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type PlaylistAPI struct {
	playlistRepo storage.PlaylistRepository
	logger       *slog.Logger
}

func NewPlaylistAPI(playlistRepo storage.PlaylistRepository, logger *slog.Logger) *PlaylistAPI {
	return &PlaylistAPI{
		playlistRepo: playlistRepo,
		logger:       logger,
	}
}

func (p *PlaylistAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playlistID, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && playlistID == "":
		p.List(w, r)
	case r.Method == http.MethodGet:
		p.Get(w, r, playlistID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the playlist api", r.Method, playlistID))
	}
}

type respPlaylist struct {
	ID          string `json:"id"`
	YoutubeID   string `json:"youtube_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

func (p *PlaylistAPI) List(w http.ResponseWriter, r *http.Request) {
	playlists, err := p.playlistRepo.FindAll()
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not list playlists", err)
		return
	}

	resp := make([]respPlaylist, 0, len(playlists))
	for _, playlist := range playlists {
		resp = append(resp, playlistResponse(playlist))
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (p *PlaylistAPI) Get(w http.ResponseWriter, r *http.Request, playlistID string) {
	id, err := uuid.Parse(playlistID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	playlist, err := p.playlistRepo.FindByID(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "playlist not found", err)
		return
	case err != nil:
		p.returnErr(w, http.StatusInternalServerError, "could not fetch playlist", err)
		return
	}

	jsonBody, err := json.Marshal(playlistResponse(playlist))
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (p *PlaylistAPI) returnErr(w http.ResponseWriter, status int, message string, err error) {
	p.logger.Error(message, err)
	Error(w, status, message, err)
}

func playlistResponse(playlist *model.Playlist) respPlaylist {
	return respPlaylist{
		ID:          playlist.ID.String(),
		YoutubeID:   string(playlist.YoutubeID),
		Name:        playlist.Name,
		Description: playlist.Description,
		Thumbnail:   playlist.Thumbnail,
	}
}
