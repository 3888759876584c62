package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestFromRuns(t *testing.T) {
	t.Parallel()

	got := fromRuns(
		&goose.MigrationResult{Source: &goose.Source{Path: "00001_init.sql", Version: 1}, Direction: "up", Duration: 1500 * time.Microsecond},
		nil,
		&goose.MigrationResult{},
	)
	require.Equal(t, []Result{{Version: 1, Path: "00001_init.sql", State: "up", Duration: 1500 * time.Microsecond}}, got)
	require.Equal(t, "00001 up       00001_init.sql 2ms", got[0].String())
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got := fromStatus([]*goose.MigrationStatus{
		{Source: &goose.Source{Path: "00001_init.sql", Version: 1}, State: goose.StateApplied, AppliedAt: at},
		{Source: &goose.Source{Path: "00002_next.sql", Version: 2}, State: goose.StatePending},
	})
	require.Len(t, got, 2)
	require.Equal(t, "00001 applied  00001_init.sql 2025-01-02T03:04:05Z", got[0].String())
	require.Equal(t, "00002 pending  00002_next.sql", got[1].String())
}

func TestUp_UnreachableDatabase(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Up(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
}
