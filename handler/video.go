package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ewintr.nl/tubemirror/model"
	"ewintr.nl/tubemirror/resolver"
	"ewintr.nl/tubemirror/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type VideoAPI struct {
	videoRepo storage.VideoRepository
	links     resolver.Resolver
	logger    *slog.Logger
}

func NewVideoAPI(videoRepo storage.VideoRepository, links resolver.Resolver, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		videoRepo: videoRepo,
		links:     links,
		logger:    logger,
	}
}

func (v *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, tail := ShiftPath(r.URL.Path)
	sub, _ := ShiftPath(tail)

	switch {
	case r.Method != http.MethodGet:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s was not registered in the video api", r.Method))
	case head == "playlist":
		v.ListByPlaylist(w, r, sub)
	case head == "youtube" && v.isPlayPath(tail):
		ytID, _ := ShiftPath(tail)
		v.PlayByYoutubeID(w, r, model.YoutubeVideoID(ytID))
	case head != "" && sub == "play":
		v.Play(w, r, head)
	case head != "" && sub == "":
		v.Get(w, r, head)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("subpath %q was not registered in the video api", r.URL.Path))
	}
}

func (v *VideoAPI) isPlayPath(tail string) bool {
	_, rest := ShiftPath(tail)
	sub, _ := ShiftPath(rest)

	return sub == "play"
}

type respVideo struct {
	ID         string `json:"id"`
	YoutubeID  string `json:"youtube_id"`
	PlaylistID string `json:"playlist_id"`
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Duration   int    `json:"duration"`
}

type respVideoWithLinks struct {
	respVideo
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
}

func (v *VideoAPI) ListByPlaylist(w http.ResponseWriter, r *http.Request, playlistID string) {
	id, err := uuid.Parse(playlistID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	videos, err := v.videoRepo.FindByPlaylist(id)
	if err != nil {
		v.returnErr(w, http.StatusInternalServerError, "could not list videos", err)
		return
	}

	resp := make([]respVideo, 0, len(videos))
	for _, video := range videos {
		resp = append(resp, videoResponse(video))
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		v.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (v *VideoAPI) Get(w http.ResponseWriter, r *http.Request, videoID string) {
	video, ok := v.findVideo(w, videoID)
	if !ok {
		return
	}

	jsonBody, err := json.Marshal(videoResponse(video))
	if err != nil {
		v.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

// Play returns the video with a pair of freshly resolved stream urls. The
// urls expire upstream, so they are never read from or written to the store.
func (v *VideoAPI) Play(w http.ResponseWriter, r *http.Request, videoID string) {
	video, ok := v.findVideo(w, videoID)
	if !ok {
		return
	}

	v.respondWithLinks(w, r, video)
}

func (v *VideoAPI) PlayByYoutubeID(w http.ResponseWriter, r *http.Request, ytID model.YoutubeVideoID) {
	video, err := v.videoRepo.FindByYoutubeID(ytID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "video not found", err)
		return
	case err != nil:
		v.returnErr(w, http.StatusInternalServerError, "could not fetch video", err)
		return
	}

	v.respondWithLinks(w, r, video)
}

func (v *VideoAPI) respondWithLinks(w http.ResponseWriter, r *http.Request, video *model.Video) {
	links, err := v.links.Resolve(r.Context(), video.YoutubeID)
	if err != nil {
		v.returnErr(w, http.StatusInternalServerError, "could not resolve playback links", err)
		return
	}

	resp := respVideoWithLinks{
		respVideo: videoResponse(video),
		VideoURL:  links.VideoURL,
		AudioURL:  links.AudioURL,
	}
	jsonBody, err := json.Marshal(resp)
	if err != nil {
		v.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (v *VideoAPI) findVideo(w http.ResponseWriter, videoID string) (*model.Video, bool) {
	id, err := uuid.Parse(videoID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid video id", err)
		return nil, false
	}

	video, err := v.videoRepo.FindByID(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "video not found", err)
		return nil, false
	case err != nil:
		v.returnErr(w, http.StatusInternalServerError, "could not fetch video", err)
		return nil, false
	}

	return video, true
}

func (v *VideoAPI) returnErr(w http.ResponseWriter, status int, message string, err error) {
	v.logger.Error(message, err)
	Error(w, status, message, err)
}

func videoResponse(video *model.Video) respVideo {
	return respVideo{
		ID:         video.ID.String(),
		YoutubeID:  string(video.YoutubeID),
		PlaylistID: video.PlaylistID.String(),
		Title:      video.Title,
		Thumbnail:  video.Thumbnail,
		Duration:   video.Duration,
	}
}
