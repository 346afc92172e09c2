package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Store is the authoritative backing store for accounts and long-lived
// access tokens. This package reads tokens and reads or find-or-creates
// accounts; it never deletes either.
type Store interface {
	ListAccountTokens(ctx context.Context, accountID uint64) ([]AccountToken, error)
	GetAccount(ctx context.Context, accountID uint64) (*Account, error)
	FindOrCreateAccount(ctx context.Context, name, email string) (*Account, error)
}

// PostgresStore implements Store on database/sql + lib/pq. Connections come
// from the pool per call and are always released, error paths included.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL and configures the pool.
func NewPostgresStore(postgresURL string, maxConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing database handle (tests).
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListAccountTokens returns the long-lived tokens on file for an account.
func (s *PostgresStore) ListAccountTokens(ctx context.Context, accountID uint64) ([]AccountToken, error) {
	query := `
		SELECT account_id, token
		FROM account_tokens
		WHERE account_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, int64(accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to list account tokens: %w", err)
	}
	defer rows.Close()

	var tokens []AccountToken
	for rows.Next() {
		var t AccountToken
		var id int64
		if err := rows.Scan(&id, &t.Token); err != nil {
			return nil, fmt.Errorf("failed to scan account token: %w", err)
		}
		t.AccountID = uint64(id)
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account tokens: %w", err)
	}

	return tokens, nil
}

// GetAccount fetches an account profile by id.
func (s *PostgresStore) GetAccount(ctx context.Context, accountID uint64) (*Account, error) {
	query := `
		SELECT id, name, email
		FROM accounts
		WHERE id = $1
	`

	var account Account
	var id int64
	err := s.db.QueryRowContext(ctx, query, int64(accountID)).Scan(&id, &account.Name, &account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.ID = uint64(id)

	return &account, nil
}

// FindOrCreateAccount returns the account with the given name, creating it
// if necessary. The upsert returns the row either way, so two concurrent
// logins for a new user race safely to the same account.
func (s *PostgresStore) FindOrCreateAccount(ctx context.Context, name, email string) (*Account, error) {
	query := `
		INSERT INTO accounts (name, email)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, email
	`

	var account Account
	var id int64
	err := s.db.QueryRowContext(ctx, query, name, email).Scan(&id, &account.Name, &account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create account: %w", err)
	}
	account.ID = uint64(id)

	return &account, nil
}

// Ping checks database connectivity (health endpoint).
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
