package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photofolio/internal/apperror"
	"photofolio/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	got, err := svc.Authenticate("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticateFailuresAreGeneric(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	_, err := svc.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate("alice@example.com", "wrong")
	require.Error(t, wrongPassword)
	assert.True(t, apperror.IsAuthentication(wrongPassword))

	_, unknownEmail := svc.Authenticate("nobody@example.com", "secret1")
	require.Error(t, unknownEmail)
	assert.True(t, apperror.IsAuthentication(unknownEmail))

	// The two failures must be indistinguishable.
	assert.Equal(t, apperror.From(wrongPassword).Message, apperror.From(unknownEmail).Message)
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register("bob", "alice@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	_, err = svc.Register("alice", "other@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "failed registrations must not create records")
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	user, err := svc.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	bio := "street photographer"
	updated, err := svc.UpdateProfile(user.ID, nil, &bio, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username, "absent fields stay untouched")
	assert.Equal(t, "street photographer", updated.Bio)

	name := "alice2"
	avatar := "https://example.com/a.png"
	updated, err = svc.UpdateProfile(user.ID, &name, nil, &avatar)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "street photographer", updated.Bio)
	assert.Equal(t, "https://example.com/a.png", updated.Avatar)
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	_, err := svc.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	bob, err := svc.Register("bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	taken := "alice"
	_, err = svc.UpdateProfile(bob.ID, &taken, nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	_, err := svc.GetUserByID("missing")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
