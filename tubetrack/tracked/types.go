package tracked

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotTracked = errors.New("video is not tracked")

// handles tracked video database operations
type Repository struct {
	db *pgxpool.Pool
}

// a video whose daily snapshots an account collects
type Video struct {
	AccountID string    `json:"-"`
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	AddedAt   time.Time `json:"added_at"`
}

// request body for tracking a video
type AddRequest struct {
	VideoID string `json:"video_id" binding:"required"`
	Title   string `json:"title"`
}
