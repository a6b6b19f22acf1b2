package credentials

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// exerciseSessionStore runs the behaviour every backend must share.
func exerciseSessionStore(t *testing.T, s SessionStore) {
	t.Helper()
	ctx := context.Background()

	access, err := s.GetAccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, access)

	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)

	require.ErrorIs(t, s.SetAccessToken(ctx, ""), ErrEmptyToken)
	require.ErrorIs(t, s.SetRefreshToken(ctx, ""), ErrEmptyToken)
	require.ErrorIs(t, s.SetUser(ctx, &User{}), ErrEmptyUser)

	require.NoError(t, SaveCredentials(ctx, s, Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	creds, err := LoadCredentials(ctx, s)
	require.NoError(t, err)
	require.Equal(t, Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, creds)

	require.NoError(t, s.SetAccessToken(ctx, "access-2"))
	access, err = s.GetAccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", access)

	refresh, err := s.GetRefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", refresh)

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetUser(ctx, &User{ID: "u1", Username: "alice", Email: "alice@example.com", IsActive: true, CreatedAt: created}))
	user, err = s.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "alice", user.Username)
	require.True(t, user.CreatedAt.Equal(created))

	require.NoError(t, s.ClearAll(ctx))
	creds, err = LoadCredentials(ctx, s)
	require.NoError(t, err)
	require.Equal(t, Credentials{}, creds)
	user, err = s.GetUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)

	// Clearing an empty store is fine.
	require.NoError(t, s.ClearAll(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseSessionStore(t, NewMemoryStore())
}

func TestFSStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseSessionStore(t, NewFSStore(path))
}

func TestFSStore_FilePermissionsAndLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFSStore(path)

	require.NoError(t, SaveCredentials(ctx, s, Credentials{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk fsSession
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Equal(t, "a", onDisk.Tokens.AccessToken)
	require.Equal(t, "r", onDisk.Tokens.RefreshToken)

	require.NoError(t, s.ClearAll(ctx))
	require.False(t, FileExists(path))
}

func TestFSStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFSStore(path).GetAccessToken(context.Background())
	require.ErrorContains(t, err, "failed to parse session file")
}

// fakeKeychain emulates the security CLI with an in-memory item table.
type fakeKeychain struct {
	items map[string]string
	calls [][]string
}

func (f *fakeKeychain) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	service := args[2]
	switch args[0] {
	case "find-generic-password":
		v, ok := f.items[service]
		if !ok {
			return nil, &exec.ExitError{}
		}
		return []byte(v), nil
	case "add-generic-password":
		f.items[service] = args[6]
		return nil, nil
	case "delete-generic-password":
		if _, ok := f.items[service]; !ok {
			return nil, &exec.ExitError{}
		}
		delete(f.items, service)
		return nil, nil
	}
	return nil, exec.ErrNotFound
}

func TestKeychainStore(t *testing.T) {
	fake := &fakeKeychain{items: map[string]string{}}
	s := NewKeychainStore("expense-test", nil)
	s.run = fake.run

	exerciseSessionStore(t, s)
	require.NotEmpty(t, fake.calls)
	require.Equal(t, "security", fake.calls[0][0])
}

func TestKeychainStore_CommandMissing(t *testing.T) {
	s := NewKeychainStore("expense-test", nil)
	s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, exec.ErrNotFound
	}

	_, err := s.GetAccessToken(context.Background())
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestSeedFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Run("both set", func(t *testing.T) {
		t.Setenv(envAccessToken, "env-access")
		t.Setenv(envRefreshToken, "env-refresh")

		s := NewMemoryStore()
		seeded, err := SeedFromEnv(ctx, s)
		require.NoError(t, err)
		require.True(t, seeded)

		creds, err := LoadCredentials(ctx, s)
		require.NoError(t, err)
		require.Equal(t, Credentials{AccessToken: "env-access", RefreshToken: "env-refresh"}, creds)
	})

	t.Run("only one set", func(t *testing.T) {
		t.Setenv(envAccessToken, "env-access")
		t.Setenv(envRefreshToken, "")

		s := NewMemoryStore()
		seeded, err := SeedFromEnv(ctx, s)
		require.NoError(t, err)
		require.False(t, seeded)

		access, err := s.GetAccessToken(ctx)
		require.NoError(t, err)
		require.Empty(t, access)
	})
}
