package session

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreTest(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreFromDB(db), mock
}

func TestPostgresStore_ListAccountTokens(t *testing.T) {
	store, mock := setupStoreTest(t)

	rows := sqlmock.NewRows([]string{"account_id", "token"}).
		AddRow(int64(42), "dpt_YWJj=")
	mock.ExpectQuery("SELECT account_id, token").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	tokens, err := store.ListAccountTokens(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint64(42), tokens[0].AccountID)
	assert.Equal(t, "dpt_YWJj=", tokens[0].Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAccountTokens_Empty(t *testing.T) {
	store, mock := setupStoreTest(t)

	mock.ExpectQuery("SELECT account_id, token").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "token"}))

	tokens, err := store.ListAccountTokens(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAccountTokens_QueryError(t *testing.T) {
	store, mock := setupStoreTest(t)

	mock.ExpectQuery("SELECT account_id, token").
		WillReturnError(errors.New("connection refused"))

	_, err := store.ListAccountTokens(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list account tokens")
}

func TestPostgresStore_GetAccount(t *testing.T) {
	store, mock := setupStoreTest(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow(int64(42), "alice", "alice@example.com")
	mock.ExpectQuery("SELECT id, name, email").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	account, err := store.GetAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Account{ID: 42, Name: "alice", Email: "alice@example.com"}, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAccount_NotFound(t *testing.T) {
	store, mock := setupStoreTest(t)

	mock.ExpectQuery("SELECT id, name, email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	_, err := store.GetAccount(context.Background(), 404)
	assert.Error(t, err)
}

func TestPostgresStore_FindOrCreateAccount(t *testing.T) {
	store, mock := setupStoreTest(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow(int64(9), "mystique", "mystique@example.com")
	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("mystique", "mystique@example.com").
		WillReturnRows(rows)

	account, err := store.FindOrCreateAccount(context.Background(), "mystique", "mystique@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), account.ID)
	assert.Equal(t, "mystique", account.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOrCreateAccount_Error(t *testing.T) {
	store, mock := setupStoreTest(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(errors.New("deadlock detected"))

	_, err := store.FindOrCreateAccount(context.Background(), "bobo", "bobo@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find or create account")
}
