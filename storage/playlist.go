package storage

import (
	"database/sql"

	"ewintr.nl/tubemirror/model"
	"github.com/google/uuid"
)

type PostgresPlaylistRepository struct {
	db *sql.DB
}

func NewPostgresPlaylistRepository(postgres *Postgres) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{db: postgres.db}
}

func (r *PostgresPlaylistRepository) Insert(playlist *model.Playlist) error {
	_, err := r.db.Exec(`
INSERT INTO playlist
(id, youtube_id, name, description, thumbnail)
VALUES ($1, $2, $3, $4, $5)`,
		playlist.ID, playlist.YoutubeID, playlist.Name, playlist.Description, playlist.Thumbnail)
	if err != nil {
		if uniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	return nil
}

func (r *PostgresPlaylistRepository) FindByYoutubeID(ytID model.YoutubePlaylistID) (*model.Playlist, error) {
	row := r.db.QueryRow(`
SELECT id, youtube_id, name, description, thumbnail
FROM playlist
WHERE youtube_id = $1`, ytID)

	return scanPlaylist(row)
}

func (r *PostgresPlaylistRepository) FindByID(id uuid.UUID) (*model.Playlist, error) {
	row := r.db.QueryRow(`
SELECT id, youtube_id, name, description, thumbnail
FROM playlist
WHERE id = $1`, id)

	return scanPlaylist(row)
}

func (r *PostgresPlaylistRepository) FindAll() ([]*model.Playlist, error) {
	rows, err := r.db.Query(`
SELECT id, youtube_id, name, description, thumbnail
FROM playlist
ORDER BY name`)
	if err != nil {
		return []*model.Playlist{}, err
	}
	defer rows.Close()

	playlists := []*model.Playlist{}
	for rows.Next() {
		playlist := &model.Playlist{}
		if err := rows.Scan(&playlist.ID, &playlist.YoutubeID, &playlist.Name, &playlist.Description, &playlist.Thumbnail); err != nil {
			return []*model.Playlist{}, err
		}
		playlists = append(playlists, playlist)
	}

	return playlists, nil
}

func scanPlaylist(row *sql.Row) (*model.Playlist, error) {
	playlist := &model.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.YoutubeID, &playlist.Name, &playlist.Description, &playlist.Thumbnail)
	switch {
	case err == sql.ErrNoRows:
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	return playlist, nil
}
