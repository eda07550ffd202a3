package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new account repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// creates the accounts table if it doesn't exist
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, queryCreateTable)
	return err
}

// finds an account by OAuth provider or creates a new one, storing the tokens
func (r *Repository) FindOrCreateByProvider(ctx context.Context, profile ProviderProfile) (*Account, error) {
	row := r.db.QueryRow(
		ctx,
		queryFindOrCreateByProvider,
		profile.Provider,
		profile.ProviderID,
		profile.Email,
		profile.Name,
		profile.AvatarURL,
		profile.AccessToken,
		profile.RefreshToken,
		profile.TokenExpiry,
	)

	return scanAccount(row)
}

// finds an account by its ID
func (r *Repository) FindByID(ctx context.Context, accountID string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, queryFindByID, accountID))
}

// lists every account, oldest first
func (r *Repository) ListAll(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, queryListAll)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	var accounts []Account

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

// stores refreshed oauth tokens; an empty refresh token keeps the current one
func (r *Repository) UpdateTokens(
	ctx context.Context,
	accountID, accessToken, refreshToken string,
	expiry time.Time,
) error {
	var expiryArg *time.Time
	if !expiry.IsZero() {
		expiryArg = &expiry
	}

	result, err := r.db.Exec(ctx, queryUpdateTokens, accessToken, refreshToken, expiryArg, accountID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Provider,
		&account.ProviderID,
		&account.Name,
		&account.AvatarURL,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}

	if err != nil {
		return nil, err
	}

	return &account, nil
}
