package directory_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shagunjha0111/community-section/internal/directory"
	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/store/sqlite"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func TestSeedFromCSVSkipsHeaderAndBlankRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	seed := filepath.Join(dir, "users.csv")
	content := "id,Name\n1,Alice\n2,Bob\n\n3,\n"
	require.NoError(t, os.WriteFile(seed, []byte(content), 0o644))

	s, err := sqlite.New(filepath.Join(dir, "community.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, directory.SeedFromCSV(ctx, newTestLogger(), s.Users(), seed))

	resolver := directory.NewStoreDirectory(s.Users())
	all, err := resolver.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ref, err := resolver.Resolve(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, "1", ref.ID)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	seed := filepath.Join(dir, "users.csv")
	require.NoError(t, os.WriteFile(seed, []byte("1,Alice\n"), 0o644))

	s, err := sqlite.New(filepath.Join(dir, "community.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, directory.SeedFromCSV(ctx, newTestLogger(), s.Users(), seed))
	require.NoError(t, directory.SeedFromCSV(ctx, newTestLogger(), s.Users(), seed))

	all, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestResolveEmptyIsUnknown(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "community.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	resolver := directory.NewStoreDirectory(s.Users())
	_, err = resolver.Resolve(ctx, "")
	require.ErrorIs(t, err, model.ErrUnknownUser)
}
