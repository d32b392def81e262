package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshelf/shelfweb/pkg/database"
	"github.com/smartshelf/shelfweb/pkg/session"
)

func TestSessionStore_CRUD(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer database.Close(db)

	store := database.NewSessionStore(db)
	ctx := context.Background()

	_, ok, err := store.Read(ctx, session.LocalID)
	require.NoError(t, err)
	assert.False(t, ok)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, store.Write(ctx, session.LocalID, session.Record{Token: "a", Role: "USER", ExpiresAt: exp}))
	require.NoError(t, store.Write(ctx, session.LocalID, session.Record{Token: "b", Role: "ADMIN", ExpiresAt: exp}))

	rec, ok, err := store.Read(ctx, session.LocalID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", rec.Token)
	assert.Equal(t, "ADMIN", rec.Role)
	assert.True(t, exp.Equal(rec.ExpiresAt))

	require.NoError(t, store.Remove(ctx, session.LocalID))
	_, ok, _ = store.Read(ctx, session.LocalID)
	assert.False(t, ok)
}

func TestSessionStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	ctx := context.Background()

	db, err := database.Open(path)
	require.NoError(t, err)
	mgr := session.NewManager(database.NewSessionStore(db), nil, session.Options{TTL: time.Hour})
	s, _ := mgr.Load(ctx, session.LocalID)
	require.NoError(t, mgr.Login(ctx, s, "tok", "STORE_MANAGER"))
	require.NoError(t, database.Close(db))

	db, err = database.Open(path)
	require.NoError(t, err)
	defer database.Close(db)

	mgr = session.NewManager(database.NewSessionStore(db), nil, session.Options{TTL: time.Hour})
	s, err = mgr.Load(ctx, session.LocalID)
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "STORE_MANAGER", s.Role())
}
