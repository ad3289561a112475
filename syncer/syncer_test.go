package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"ewintr.nl/tubemirror/model"
	"ewintr.nl/tubemirror/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type fakeCatalog struct {
	playlists []PlaylistRecord
	items     map[model.YoutubePlaylistID][]model.YoutubeVideoID
	details   map[model.YoutubeVideoID]VideoRecord

	// failDetailCall is the 1-based VideoDetails call that errors, 0 for none
	failDetailCall int
	scanDelay      time.Duration

	mu          sync.Mutex
	detailCalls [][]model.YoutubeVideoID
	active      int
	maxActive   int
}

func (c *fakeCatalog) PlaylistPage(_ context.Context, _ model.YoutubeChannelID, pageToken string) ([]PlaylistRecord, string, error) {
	return c.playlists, "", nil
}

func (c *fakeCatalog) PlaylistItemPage(_ context.Context, playlistID model.YoutubePlaylistID, pageToken string) ([]model.YoutubeVideoID, string, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()

	if c.scanDelay > 0 {
		time.Sleep(c.scanDelay)
	}

	c.mu.Lock()
	c.active--
	c.mu.Unlock()

	return c.items[playlistID], "", nil
}

func (c *fakeCatalog) VideoDetails(_ context.Context, ytIDs []model.YoutubeVideoID) ([]VideoRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detailCalls = append(c.detailCalls, ytIDs)
	if c.failDetailCall == len(c.detailCalls) {
		return []VideoRecord{}, errors.New("remote call failed")
	}

	records := make([]VideoRecord, 0, len(ytIDs))
	for _, ytID := range ytIDs {
		record, ok := c.details[ytID]
		if !ok {
			record = VideoRecord{YoutubeID: ytID, Title: "title " + string(ytID), Duration: "PT1M"}
		}
		records = append(records, record)
	}

	return records, nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[model.YoutubePlaylistID]*model.Playlist
	insertErr error
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: map[model.YoutubePlaylistID]*model.Playlist{}}
}

func (r *fakePlaylistRepo) FindByYoutubeID(ytID model.YoutubePlaylistID) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playlist, ok := r.playlists[ytID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return playlist, nil
}

func (r *fakePlaylistRepo) FindByID(id uuid.UUID) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, playlist := range r.playlists {
		if playlist.ID == id {
			return playlist, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakePlaylistRepo) FindAll() ([]*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playlists := make([]*model.Playlist, 0, len(r.playlists))
	for _, playlist := range r.playlists {
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

func (r *fakePlaylistRepo) Insert(playlist *model.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.playlists[playlist.YoutubeID]; ok {
		return storage.ErrDuplicate
	}
	r.playlists[playlist.YoutubeID] = playlist
	return nil
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[model.YoutubeVideoID]*model.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[model.YoutubeVideoID]*model.Video{}}
}

func (r *fakeVideoRepo) FilterExisting(ytIDs []model.YoutubeVideoID) (map[model.YoutubeVideoID]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := map[model.YoutubeVideoID]bool{}
	for _, ytID := range ytIDs {
		if _, ok := r.videos[ytID]; ok {
			existing[ytID] = true
		}
	}
	return existing, nil
}

func (r *fakeVideoRepo) InsertBatch(videos []*model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, video := range videos {
		if _, ok := r.videos[video.YoutubeID]; ok {
			return storage.ErrDuplicate
		}
	}
	for _, video := range videos {
		r.videos[video.YoutubeID] = video
	}
	return nil
}

func (r *fakeVideoRepo) FindByPlaylist(playlistID uuid.UUID) ([]*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	videos := []*model.Video{}
	for _, video := range r.videos {
		if video.PlaylistID == playlistID {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

func (r *fakeVideoRepo) FindByID(id uuid.UUID) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, video := range r.videos {
		if video.ID == id {
			return video, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeVideoRepo) FindByYoutubeID(ytID model.YoutubeVideoID) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[ytID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return video, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func TestSyncCycleTwoPlaylists(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []PlaylistRecord{
			{YoutubeID: "P1", Name: "First"},
			{YoutubeID: "P2", Name: "Second"},
		},
		items: map[model.YoutubePlaylistID][]model.YoutubeVideoID{
			"P1": {"v1", "v2", "v3"},
			"P2": {},
		},
	}
	playlistRepo := newFakePlaylistRepo()
	videoRepo := newFakeVideoRepo()

	s := NewSyncer("C1", catalog, playlistRepo, videoRepo, testLogger())
	report := s.SyncCycle(context.Background())

	if report.PlaylistsSeen != 2 || report.PlaylistsCreated != 2 {
		t.Errorf("playlists seen/created = %d/%d, want 2/2", report.PlaylistsSeen, report.PlaylistsCreated)
	}
	if report.VideosCreated != 3 {
		t.Errorf("videos created = %d, want 3", report.VideosCreated)
	}
	if report.Failures != 0 {
		t.Errorf("failures = %d, want 0", report.Failures)
	}

	p1, err := playlistRepo.FindByYoutubeID("P1")
	if err != nil {
		t.Fatalf("FindByYoutubeID(P1) error = %v", err)
	}
	videos, _ := videoRepo.FindByPlaylist(p1.ID)
	if len(videos) != 3 {
		t.Errorf("videos in P1 = %d, want 3", len(videos))
	}
	p2, err := playlistRepo.FindByYoutubeID("P2")
	if err != nil {
		t.Fatalf("FindByYoutubeID(P2) error = %v", err)
	}
	videos, _ = videoRepo.FindByPlaylist(p2.ID)
	if len(videos) != 0 {
		t.Errorf("videos in P2 = %d, want 0", len(videos))
	}
}

func TestSyncCycleIdempotent(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []PlaylistRecord{{YoutubeID: "P1", Name: "First"}},
		items: map[model.YoutubePlaylistID][]model.YoutubeVideoID{
			"P1": {"v1", "v2"},
		},
	}
	playlistRepo := newFakePlaylistRepo()
	videoRepo := newFakeVideoRepo()
	s := NewSyncer("C1", catalog, playlistRepo, videoRepo, testLogger())

	first := s.SyncCycle(context.Background())
	if first.PlaylistsCreated != 1 || first.VideosCreated != 2 {
		t.Fatalf("first cycle created %d/%d, want 1/2", first.PlaylistsCreated, first.VideosCreated)
	}

	second := s.SyncCycle(context.Background())
	if second.PlaylistsCreated != 0 {
		t.Errorf("second cycle created %d playlists, want 0", second.PlaylistsCreated)
	}
	if second.VideosCreated != 0 {
		t.Errorf("second cycle created %d videos, want 0", second.VideosCreated)
	}
	if second.Failures != 0 {
		t.Errorf("second cycle failures = %d, want 0", second.Failures)
	}
	if len(videoRepo.videos) != 2 {
		t.Errorf("store has %d videos, want 2", len(videoRepo.videos))
	}
}

func TestSyncCycleDetailChunking(t *testing.T) {
	ytIDs := make([]model.YoutubeVideoID, 0, 120)
	for i := 0; i < 120; i++ {
		ytIDs = append(ytIDs, model.YoutubeVideoID(fmt.Sprintf("v%03d", i)))
	}
	catalog := &fakeCatalog{
		playlists:      []PlaylistRecord{{YoutubeID: "P1", Name: "First"}},
		items:          map[model.YoutubePlaylistID][]model.YoutubeVideoID{"P1": ytIDs},
		failDetailCall: 2,
	}
	playlistRepo := newFakePlaylistRepo()
	videoRepo := newFakeVideoRepo()
	s := NewSyncer("C1", catalog, playlistRepo, videoRepo, testLogger())

	report := s.SyncCycle(context.Background())

	if len(catalog.detailCalls) != 3 {
		t.Fatalf("detail calls = %d, want 3", len(catalog.detailCalls))
	}
	for i, wantSize := range []int{50, 50, 20} {
		if len(catalog.detailCalls[i]) != wantSize {
			t.Errorf("detail call %d size = %d, want %d", i, len(catalog.detailCalls[i]), wantSize)
		}
	}

	// the failing middle chunk does not stop the first and third chunk
	if report.VideosCreated != 70 {
		t.Errorf("videos created = %d, want 70", report.VideosCreated)
	}
	if report.Failures != 1 {
		t.Errorf("failures = %d, want 1", report.Failures)
	}
}

func TestSyncCycleConcurrencyCap(t *testing.T) {
	playlists := make([]PlaylistRecord, 0, 25)
	items := map[model.YoutubePlaylistID][]model.YoutubeVideoID{}
	for i := 0; i < 25; i++ {
		ytID := model.YoutubePlaylistID(fmt.Sprintf("P%02d", i))
		playlists = append(playlists, PlaylistRecord{YoutubeID: ytID, Name: string(ytID)})
		items[ytID] = []model.YoutubeVideoID{}
	}
	catalog := &fakeCatalog{
		playlists: playlists,
		items:     items,
		scanDelay: 10 * time.Millisecond,
	}
	s := NewSyncer("C1", catalog, newFakePlaylistRepo(), newFakeVideoRepo(), testLogger())

	report := s.SyncCycle(context.Background())

	if report.PlaylistsSeen != 25 {
		t.Errorf("playlists seen = %d, want 25", report.PlaylistsSeen)
	}
	if catalog.maxActive > 10 {
		t.Errorf("max concurrent scans = %d, want at most 10", catalog.maxActive)
	}
	if catalog.maxActive < 2 {
		t.Errorf("max concurrent scans = %d, expected some overlap", catalog.maxActive)
	}
}

func TestSyncCycleIncompleteRecords(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []PlaylistRecord{{YoutubeID: "P1", Name: "First"}},
		items: map[model.YoutubePlaylistID][]model.YoutubeVideoID{
			"P1": {"abc123", "v2", "v3"},
		},
		details: map[model.YoutubeVideoID]VideoRecord{
			"abc123": {YoutubeID: "abc123", Title: "no duration"},
			"v2":     {YoutubeID: "v2", Title: "", Duration: "PT1M"},
			"v3":     {YoutubeID: "v3", Title: "with duration", Duration: "PT2M5S"},
		},
	}
	playlistRepo := newFakePlaylistRepo()
	videoRepo := newFakeVideoRepo()
	s := NewSyncer("C1", catalog, playlistRepo, videoRepo, testLogger())

	report := s.SyncCycle(context.Background())

	// v2 misses its title and is skipped, the others are inserted
	if report.VideosCreated != 2 {
		t.Errorf("videos created = %d, want 2", report.VideosCreated)
	}
	if report.VideosSkipped != 1 {
		t.Errorf("videos skipped = %d, want 1", report.VideosSkipped)
	}

	video, err := videoRepo.FindByYoutubeID("abc123")
	if err != nil {
		t.Fatalf("FindByYoutubeID(abc123) error = %v", err)
	}
	if video.Duration != 0 {
		t.Errorf("duration = %d, want 0 for undecodable duration", video.Duration)
	}
	video, err = videoRepo.FindByYoutubeID("v3")
	if err != nil {
		t.Fatalf("FindByYoutubeID(v3) error = %v", err)
	}
	if video.Duration != 125 {
		t.Errorf("duration = %d, want 125", video.Duration)
	}
}

func TestReconcilePlaylistInsertRace(t *testing.T) {
	playlistRepo := newFakePlaylistRepo()
	existing := &model.Playlist{ID: uuid.New(), YoutubeID: "P1", Name: "First"}
	playlistRepo.playlists["P1"] = existing
	// simulate losing a check-then-act race: the probe misses, the insert
	// hits the uniqueness constraint
	playlistRepo.insertErr = storage.ErrDuplicate

	s := NewSyncer("C1", &fakeCatalog{}, playlistRepo, newFakeVideoRepo(), testLogger())

	if playlist, _, err := s.reconcilePlaylist(PlaylistRecord{YoutubeID: "P2", Name: "Second"}); err == nil || playlist != nil {
		// P2 does not exist at all, a duplicate error without a row to
		// fall back on is a real failure
		t.Errorf("reconcilePlaylist(P2) = %v, %v, want error", playlist, err)
	}

	playlistRepo.insertErr = nil
	got, created, err := s.reconcilePlaylist(PlaylistRecord{YoutubeID: "P1", Name: "First"})
	if err != nil {
		t.Fatalf("reconcilePlaylist(P1) error = %v", err)
	}
	if created {
		t.Error("reconcilePlaylist(P1) reported created for an existing row")
	}
	if got.ID != existing.ID {
		t.Errorf("reconcilePlaylist(P1) id = %s, want %s", got.ID, existing.ID)
	}
}
