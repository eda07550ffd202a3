package accounts

const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			provider TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			token_expiry TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (provider, provider_id)
		)
	`

	// google only returns a refresh token on first consent, keep the old one otherwise
	queryFindOrCreateByProvider = `
		INSERT INTO accounts (provider, provider_id, email, name, avatar_url, access_token, refresh_token, token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (provider, provider_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), accounts.refresh_token),
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()
		RETURNING id, email, provider, provider_id, name, avatar_url, access_token, refresh_token, token_expiry, created_at, updated_at
	`

	queryFindByID = `
		SELECT id, email, provider, provider_id, name, avatar_url, access_token, refresh_token, token_expiry, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	queryListAll = `
		SELECT id, email, provider, provider_id, name, avatar_url, access_token, refresh_token, token_expiry, created_at, updated_at
		FROM accounts
		ORDER BY created_at ASC
	`

	queryUpdateTokens = `
		UPDATE accounts
		SET access_token = $1,
			refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
			token_expiry = $3,
			updated_at = NOW()
		WHERE id = $4
	`
)
