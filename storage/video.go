package storage

import (
	"database/sql"

	"ewintr.nl/tubemirror/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresVideoRepository struct {
	db *sql.DB
}

func NewPostgresVideoRepository(postgres *Postgres) *PostgresVideoRepository {
	return &PostgresVideoRepository{db: postgres.db}
}

func (r *PostgresVideoRepository) FilterExisting(ytIDs []model.YoutubeVideoID) (map[model.YoutubeVideoID]bool, error) {
	existing := map[model.YoutubeVideoID]bool{}
	if len(ytIDs) == 0 {
		return existing, nil
	}

	ids := make([]string, 0, len(ytIDs))
	for _, ytID := range ytIDs {
		ids = append(ids, string(ytID))
	}

	rows, err := r.db.Query(`
SELECT youtube_id
FROM video
WHERE youtube_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return map[model.YoutubeVideoID]bool{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ytID string
		if err := rows.Scan(&ytID); err != nil {
			return map[model.YoutubeVideoID]bool{}, err
		}
		existing[model.YoutubeVideoID(ytID)] = true
	}

	return existing, nil
}

func (r *PostgresVideoRepository) InsertBatch(videos []*model.Video) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	for _, video := range videos {
		if _, err := tx.Exec(`
INSERT INTO video
(id, youtube_id, playlist_id, title, thumbnail, duration)
VALUES ($1, $2, $3, $4, $5, $6)`,
			video.ID, video.YoutubeID, video.PlaylistID, video.Title, video.Thumbnail, video.Duration); err != nil {
			tx.Rollback()
			if uniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresVideoRepository) FindByPlaylist(playlistID uuid.UUID) ([]*model.Video, error) {
	rows, err := r.db.Query(`
SELECT id, youtube_id, playlist_id, title, thumbnail, duration
FROM video
WHERE playlist_id = $1
ORDER BY title`, playlistID)
	if err != nil {
		return []*model.Video{}, err
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		video := &model.Video{}
		if err := rows.Scan(&video.ID, &video.YoutubeID, &video.PlaylistID, &video.Title, &video.Thumbnail, &video.Duration); err != nil {
			return []*model.Video{}, err
		}
		videos = append(videos, video)
	}

	return videos, nil
}

func (r *PostgresVideoRepository) FindByID(id uuid.UUID) (*model.Video, error) {
	row := r.db.QueryRow(`
SELECT id, youtube_id, playlist_id, title, thumbnail, duration
FROM video
WHERE id = $1`, id)

	return scanVideo(row)
}

func (r *PostgresVideoRepository) FindByYoutubeID(ytID model.YoutubeVideoID) (*model.Video, error) {
	row := r.db.QueryRow(`
SELECT id, youtube_id, playlist_id, title, thumbnail, duration
FROM video
WHERE youtube_id = $1`, ytID)

	return scanVideo(row)
}

func scanVideo(row *sql.Row) (*model.Video, error) {
	video := &model.Video{}
	err := row.Scan(&video.ID, &video.YoutubeID, &video.PlaylistID, &video.Title, &video.Thumbnail, &video.Duration)
	switch {
	case err == sql.ErrNoRows:
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	return video, nil
}
