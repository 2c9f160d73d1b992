package postgresRepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"slotbook/database/postgres"
	"slotbook/database/repository"
	"slotbook/database/repository/storetest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// openTestStore connects to POSTGRES_URL, applies the migrations and empties
// every table. Tests using it are skipped when the variable is unset.
func openTestStore(t *testing.T) repository.Store {
	t.Helper()
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set; skipping PostgreSQL store tests")
	}
	ctx := context.Background()
	db, err := postgres.Open(ctx, url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(ctx, `TRUNCATE bookings, slots, services, providers RESTART IDENTITY CASCADE`); err != nil {
		db.Close()
		t.Fatalf("truncate: %v", err)
	}
	store := NewStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestStoreScenarios(t *testing.T) {
	storetest.Run(t, openTestStore)
}

func TestWrapMapsDriverErrors(t *testing.T) {
	boom := errors.New("connection reset")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, repository.ErrDuplicate},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), repository.ErrDuplicate},
		{"other", boom, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := wrap("op", tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("wrap(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
	if err := wrap("op", nil); err != nil {
		t.Fatalf("nil error wrapped to %v", err)
	}
	if err := wrap("op", &pgconn.PgError{Code: "23503"}); errors.Is(err, repository.ErrDuplicate) {
		t.Fatal("foreign key violation reported as duplicate")
	}
}
