package tracked

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new tracked video repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// creates the tracked_videos table if it doesn't exist
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, queryCreateTable)
	return err
}

// starts tracking a video; tracking it again only refreshes the title
func (r *Repository) Add(ctx context.Context, accountID, videoID, title string) (*Video, error) {
	var v Video

	err := r.db.QueryRow(ctx, queryAdd, accountID, videoID, title).Scan(
		&v.AccountID,
		&v.VideoID,
		&v.Title,
		&v.AddedAt,
	)

	if err != nil {
		return nil, err
	}

	return &v, nil
}

// stops tracking a video. snapshots are left in place
func (r *Repository) Remove(ctx context.Context, accountID, videoID string) error {
	result, err := r.db.Exec(ctx, queryRemove, accountID, videoID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotTracked
	}

	return nil
}

func (r *Repository) IsTracked(ctx context.Context, accountID, videoID string) (bool, error) {
	var exists bool

	if err := r.db.QueryRow(ctx, queryIsTracked, accountID, videoID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// lists a page of tracked videos together with the total count
func (r *Repository) List(ctx context.Context, accountID string, limit, offset int) ([]Video, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountByAccount, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, queryList, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	videos, err := scanVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// lists every tracked video of an account, in tracking order
func (r *Repository) ListAll(ctx context.Context, accountID string) ([]Video, error) {
	rows, err := r.db.Query(ctx, queryListAll, accountID)
	if err != nil {
		return nil, err
	}

	return scanVideos(rows)
}

func scanVideos(rows pgx.Rows) ([]Video, error) {
	defer rows.Close()
	videos := []Video{}

	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.AccountID, &v.VideoID, &v.Title, &v.AddedAt); err != nil {
			return nil, err
		}

		videos = append(videos, v)
	}

	return videos, rows.Err()
}
