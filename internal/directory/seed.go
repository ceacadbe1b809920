package directory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/store"
)

// SeedFromCSV imports users from a CSV file of id,displayName rows into the
// directory table. A header row starting with "id" is skipped. Existing
// records are never overwritten, so repeated startups are safe.
func SeedFromCSV(ctx context.Context, logger *slog.Logger, users store.Users, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	imported := 0
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("seed file line %d: %w", line, err)
		}
		if len(record) < 2 {
			continue
		}
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if id == "" || name == "" || strings.EqualFold(id, "id") {
			continue
		}
		if err := users.Put(ctx, model.UserRef{ID: id, DisplayName: name}); err != nil {
			return fmt.Errorf("seed user %s: %w", id, err)
		}
		imported++
	}

	logger.Info("directory seed imported", slog.String("path", path), slog.Int("users", imported))
	return nil
}
