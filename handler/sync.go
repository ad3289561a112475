package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ewintr.nl/tubemirror/syncer"
	"golang.org/x/exp/slog"
)

type SyncAPI struct {
	runner syncer.CycleRunner
	logger *slog.Logger
}

func NewSyncAPI(runner syncer.CycleRunner, logger *slog.Logger) *SyncAPI {
	return &SyncAPI{
		runner: runner,
		logger: logger,
	}
}

func (s *SyncAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && sub == "":
		s.Run(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the sync api", r.Method, sub))
	}
}

// Run triggers a sync cycle right away and reports what it did. Running it
// while a scheduled cycle is still going only costs duplicate remote calls,
// the store's uniqueness constraints keep the data intact.
func (s *SyncAPI) Run(w http.ResponseWriter, r *http.Request) {
	report := s.runner.SyncCycle(r.Context())

	resp := struct {
		PlaylistsSeen    int `json:"playlists_seen"`
		PlaylistsCreated int `json:"playlists_created"`
		VideosCreated    int `json:"videos_created"`
		VideosSkipped    int `json:"videos_skipped"`
		Failures         int `json:"failures"`
	}{
		PlaylistsSeen:    report.PlaylistsSeen,
		PlaylistsCreated: report.PlaylistsCreated,
		VideosCreated:    report.VideosCreated,
		VideosSkipped:    report.VideosSkipped,
		Failures:         report.Failures,
	}
	jsonBody, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("could not marshal response", err)
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}
