package syncer

import (
	"context"
	"errors"
	"sync"

	"ewintr.nl/tubemirror/model"
	"ewintr.nl/tubemirror/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	// scanWorkers caps how many playlists are scanned at the same time.
	scanWorkers = 10
	// detailBatchSize is the largest id set a single detail lookup takes.
	detailBatchSize = 50
)

// Report sums up what one sync cycle did.
type Report struct {
	PlaylistsSeen    int
	PlaylistsCreated int
	VideosCreated    int
	VideosSkipped    int
	Failures         int
}

func (r *Report) add(other Report) {
	r.PlaylistsSeen += other.PlaylistsSeen
	r.PlaylistsCreated += other.PlaylistsCreated
	r.VideosCreated += other.VideosCreated
	r.VideosSkipped += other.VideosSkipped
	r.Failures += other.Failures
}

// Syncer mirrors the playlists and videos of one channel into the store.
// The store only ever grows, a row that exists is never touched again.
type Syncer struct {
	channelID    model.YoutubeChannelID
	catalog      CatalogClient
	playlistRepo storage.PlaylistRepository
	videoRepo    storage.VideoRepository
	logger       *slog.Logger
}

func NewSyncer(channelID model.YoutubeChannelID, catalog CatalogClient, playlistRepo storage.PlaylistRepository, videoRepo storage.VideoRepository, logger *slog.Logger) *Syncer {
	return &Syncer{
		channelID:    channelID,
		catalog:      catalog,
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		logger:       logger,
	}
}

// SyncCycle runs one full cycle: reconcile all playlists sequentially, then
// scan each playlist's videos with at most scanWorkers scans in flight.
// Failures inside a unit of work never abort the cycle, they end up as
// counts in the returned report.
func (s *Syncer) SyncCycle(ctx context.Context) Report {
	s.logger.Info("starting sync cycle", slog.String("channelid", string(s.channelID)))

	report, playlists := s.reconcilePlaylists(ctx)

	results := make([]Report, len(playlists))
	sem := make(chan struct{}, scanWorkers)
	var wg sync.WaitGroup
	for i, playlist := range playlists {
		wg.Add(1)
		go func(i int, playlist *model.Playlist) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.scanPlaylist(ctx, playlist)
		}(i, playlist)
	}
	wg.Wait()

	for _, result := range results {
		report.add(result)
	}

	s.logger.Info("sync cycle finished",
		slog.Int("playlists", report.PlaylistsSeen),
		slog.Int("playlistscreated", report.PlaylistsCreated),
		slog.Int("videoscreated", report.VideosCreated),
		slog.Int("videosskipped", report.VideosSkipped),
		slog.Int("failures", report.Failures))

	return report
}

func (s *Syncer) reconcilePlaylists(ctx context.Context) (Report, []*model.Playlist) {
	report := Report{}
	playlists := []*model.Playlist{}

	token := ""
	for {
		records, next, err := s.catalog.PlaylistPage(ctx, s.channelID, token)
		if err != nil {
			s.logger.Error("failed to fetch playlist page", err)
			report.Failures++
			return report, playlists
		}

		for _, record := range records {
			report.PlaylistsSeen++
			playlist, created, err := s.reconcilePlaylist(record)
			if err != nil {
				s.logger.Error("failed to reconcile playlist", err, slog.String("playlist", string(record.YoutubeID)))
				report.Failures++
				continue
			}
			if created {
				report.PlaylistsCreated++
			}
			playlists = append(playlists, playlist)
		}

		if next == "" {
			break
		}
		token = next
	}

	return report, playlists
}

func (s *Syncer) reconcilePlaylist(record PlaylistRecord) (*model.Playlist, bool, error) {
	existing, err := s.playlistRepo.FindByYoutubeID(record.YoutubeID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, err
	}

	playlist := &model.Playlist{
		ID:          uuid.New(),
		YoutubeID:   record.YoutubeID,
		Name:        record.Name,
		Description: record.Description,
		Thumbnail:   record.Thumbnail,
	}
	err = s.playlistRepo.Insert(playlist)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		// an overlapping cycle won the insert race, use its row
		existing, err := s.playlistRepo.FindByYoutubeID(record.YoutubeID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case err != nil:
		return nil, false, err
	}

	return playlist, true, nil
}

func (s *Syncer) scanPlaylist(ctx context.Context, playlist *model.Playlist) Report {
	report := Report{}

	token := ""
	for {
		ytIDs, next, err := s.catalog.PlaylistItemPage(ctx, playlist.YoutubeID, token)
		if err != nil {
			s.logger.Error("failed to fetch playlist item page", err, slog.String("playlist", string(playlist.YoutubeID)))
			report.Failures++
			return report
		}

		s.syncVideoPage(ctx, playlist, ytIDs, &report)

		if next == "" {
			break
		}
		token = next
	}

	return report
}

func (s *Syncer) syncVideoPage(ctx context.Context, playlist *model.Playlist, ytIDs []model.YoutubeVideoID, report *Report) {
	if len(ytIDs) == 0 {
		return
	}

	existing, err := s.videoRepo.FilterExisting(ytIDs)
	if err != nil {
		s.logger.Error("failed to check for existing videos", err, slog.String("playlist", string(playlist.YoutubeID)))
		report.Failures++
		return
	}

	unseen := make([]model.YoutubeVideoID, 0, len(ytIDs))
	for _, ytID := range ytIDs {
		if !existing[ytID] {
			unseen = append(unseen, ytID)
		}
	}

	for start := 0; start < len(unseen); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(unseen) {
			end = len(unseen)
		}
		s.syncVideoChunk(ctx, playlist, unseen[start:end], report)
	}
}

func (s *Syncer) syncVideoChunk(ctx context.Context, playlist *model.Playlist, ytIDs []model.YoutubeVideoID, report *Report) {
	records, err := s.catalog.VideoDetails(ctx, ytIDs)
	if err != nil {
		s.logger.Error("failed to fetch video details", err, slog.String("playlist", string(playlist.YoutubeID)))
		report.Failures++
		return
	}

	videos := make([]*model.Video, 0, len(records))
	for _, record := range records {
		if record.YoutubeID == "" || record.Title == "" {
			s.logger.Info("skipping incomplete video record", slog.String("videoid", string(record.YoutubeID)), slog.String("playlist", string(playlist.YoutubeID)))
			report.VideosSkipped++
			continue
		}
		videos = append(videos, &model.Video{
			ID:         uuid.New(),
			YoutubeID:  record.YoutubeID,
			PlaylistID: playlist.ID,
			Title:      record.Title,
			Thumbnail:  record.Thumbnail,
			Duration:   Seconds(record.Duration),
		})
	}
	if len(videos) == 0 {
		return
	}

	err = s.videoRepo.InsertBatch(videos)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		// an overlapping cycle already inserted part of this chunk
		s.logger.Info("video batch already present", slog.String("playlist", string(playlist.YoutubeID)))
	case err != nil:
		s.logger.Error("failed to insert video batch", err, slog.String("playlist", string(playlist.YoutubeID)))
		report.Failures++
	default:
		report.VideosCreated += len(videos)
	}
}
