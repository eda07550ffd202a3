package tracked

const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS tracked_videos (
			account_id UUID NOT NULL,
			video_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (account_id, video_id)
		);
		CREATE INDEX IF NOT EXISTS idx_tracked_videos_account ON tracked_videos(account_id, added_at);
	`

	queryAdd = `
		INSERT INTO tracked_videos (account_id, video_id, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, video_id)
		DO UPDATE SET title = EXCLUDED.title
		RETURNING account_id, video_id, title, added_at
	`

	queryRemove = `
		DELETE FROM tracked_videos
		WHERE account_id = $1 AND video_id = $2
	`

	queryIsTracked = `
		SELECT EXISTS (
			SELECT 1 FROM tracked_videos WHERE account_id = $1 AND video_id = $2
		)
	`

	queryCountByAccount = `
		SELECT COUNT(*) FROM tracked_videos WHERE account_id = $1
	`

	queryList = `
		SELECT account_id, video_id, title, added_at
		FROM tracked_videos
		WHERE account_id = $1
		ORDER BY added_at ASC, video_id ASC
		LIMIT $2 OFFSET $3
	`

	queryListAll = `
		SELECT account_id, video_id, title, added_at
		FROM tracked_videos
		WHERE account_id = $1
		ORDER BY added_at ASC, video_id ASC
	`
)
