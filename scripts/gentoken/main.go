package main

import (
	"context"
	"fmt"
	"log"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates (or reuses) a local test account and prints a JWT for it
func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	repo := accounts.NewRepository(dbPool)
	if err := repo.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize accounts: %v", err)
	}

	account, err := repo.FindOrCreateByProvider(ctx, accounts.ProviderProfile{
		Provider:   "test",
		ProviderID: "test-account-123",
		Email:      "test@tubetrack.dev",
		Name:       "Test Account",
	})
	if err != nil {
		log.Fatalf("failed to create test account: %v", err)
	}

	fmt.Printf("using test account %s (%s)\n", account.Email, account.ID)

	token, err := auth.GenerateJWT(account.ID, account.Email)
	if err != nil {
		log.Fatalf("failed to generate JWT: %v", err)
	}

	fmt.Printf("\ntest JWT:\n%s\n\n", token)
	fmt.Printf("export it for the tui and curl:\nexport TUBETRACK_TOKEN=\"%s\"\n", token)
}
