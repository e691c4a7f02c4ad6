package credential

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.SetToken(ctx, "abc"))
	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileStorePlain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "creds.json")
	store := NewFileStore(path, "")

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.SetToken(ctx, "plain-token"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := NewFileStore(path, "").Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain-token", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileStoreSealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.json")
	store := NewFileStore(path, "correct horse")

	require.NoError(t, store.SetToken(ctx, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	token, err := NewFileStore(path, "correct horse").Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	_, err = NewFileStore(path, "wrong").Token(ctx)
	assert.Error(t, err)

	_, err = NewFileStore(path, "").Token(ctx)
	assert.Error(t, err)
}

func newCredentialMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSQLStoreRoundTrip(t *testing.T) {
	db, mock, cleanup := newCredentialMock(t)
	defer cleanup()
	store := NewSQLStore(db, "")
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO client_credentials").
		WithArgs("token", "jwt-value", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.SetToken(ctx, "jwt-value"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token FROM client_credentials WHERE slot = $1")).
		WithArgs("token").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("jwt-value"))
	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM client_credentials WHERE slot = $1")).
		WithArgs("token").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Clear(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreMissingSlot(t *testing.T) {
	db, mock, cleanup := newCredentialMock(t)
	defer cleanup()
	store := NewSQLStore(db, "kiosk")

	mock.ExpectQuery("SELECT token FROM client_credentials").
		WithArgs("kiosk").
		WillReturnRows(sqlmock.NewRows([]string{"token"}))

	_, err := store.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"role":  "counselor",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	session, err := Inspect(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.Subject)
	assert.Equal(t, "alice@example.com", session.Email)
	assert.Equal(t, "counselor", session.Role)
	require.NotNil(t, session.ExpiresAt)
	assert.True(t, exp.Equal(*session.ExpiresAt))
	assert.False(t, session.Expired(time.Now()))
	assert.True(t, session.Expired(exp.Add(time.Second)))
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect("not-a-token")
	assert.Error(t, err)
}
