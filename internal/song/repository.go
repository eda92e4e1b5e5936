// Package song publishes songs (an audio file, a cover image and metadata) and serves
// the published catalogue.
package song

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Song is a published item. Its object keys always reference objects that were
// written before the record was inserted.
type Song struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	AttemptID string    `json:"attemptId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	AudioKey  string    `json:"audioKey"`
	ImageKey  string    `json:"imageKey"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a song does not exist.
var ErrNotFound = errors.New("song not found")

// Store is the record store for published songs.
type Store interface {
	// Insert writes a new song row and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, s *Song) (*Song, error)
	GetByID(ctx context.Context, id string) (*Song, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Song, error)
	ListRecent(ctx context.Context, limit int) ([]Song, error)
}

// Repository handles all song database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const songColumns = `id, owner_id, attempt_id, title, author, audio_key, image_key, created_at`

// Insert stores the song and returns the created record.
func (r *Repository) Insert(ctx context.Context, s *Song) (*Song, error) {
	out := *s
	err := r.db.QueryRow(ctx,
		`INSERT INTO songs (owner_id, attempt_id, title, author, audio_key, image_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.OwnerID, s.AttemptID, s.Title, s.Author, s.AudioKey, s.ImageKey,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	return &out, nil
}

// GetByID fetches a song by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Song, error) {
	row := r.db.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
	s, err := scanSong(row)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get song by id: %w", err)
	}
	return s, nil
}

// ListByOwner returns the owner's songs, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Song, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+songColumns+` FROM songs
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query songs by owner: %w", err)
	}
	return collectSongs(rows)
}

// ListRecent returns the most recently published songs.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Song, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+songColumns+` FROM songs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent songs: %w", err)
	}
	return collectSongs(rows)
}

func scanSong(row pgx.Row) (*Song, error) {
	s := &Song{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.AttemptID, &s.Title, &s.Author, &s.AudioKey, &s.ImageKey, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func collectSongs(rows pgx.Rows) ([]Song, error) {
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// isInvalidText checks for invalid_text_representation (22P02), raised when the id
// is not a valid UUID.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
