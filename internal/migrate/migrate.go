// Package migrate applies the embedded PostgreSQL schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/goph-notes/migrations"
)

// Result describes one migration that was applied, rolled back or inspected.
type Result struct {
	Version   int64
	Path      string
	State     string // "up"/"down" after a run, "applied"/"pending" from Status
	AppliedAt time.Time
	Duration  time.Duration
}

func (r Result) String() string {
	s := fmt.Sprintf("%05d %-8s %s", r.Version, r.State, r.Path)
	switch {
	case !r.AppliedAt.IsZero():
		s += " " + r.AppliedAt.UTC().Format(time.RFC3339)
	case r.Duration > 0:
		s += " " + r.Duration.Round(time.Millisecond).String()
	}
	return s
}

// Up runs all pending migrations.
func Up(ctx context.Context, dsn string) ([]Result, error) {
	return withProvider(ctx, dsn, func(p *goose.Provider) ([]Result, error) {
		res, err := p.Up(ctx)
		return fromRuns(res...), err
	})
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, dsn string) ([]Result, error) {
	return withProvider(ctx, dsn, func(p *goose.Provider) ([]Result, error) {
		res, err := p.Down(ctx)
		if res == nil {
			return nil, err
		}
		return fromRuns(res), err
	})
}

// Status lists every known migration and whether it has been applied.
func Status(ctx context.Context, dsn string) ([]Result, error) {
	return withProvider(ctx, dsn, func(p *goose.Provider) ([]Result, error) {
		st, err := p.Status(ctx)
		if err != nil {
			return nil, err
		}
		return fromStatus(st), nil
	})
}

func withProvider(ctx context.Context, dsn string, fn func(*goose.Provider) ([]Result, error)) ([]Result, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("migrate: ping: %w", err)
	}

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer p.Close()

	return fn(p)
}

func fromRuns(runs ...*goose.MigrationResult) []Result {
	out := make([]Result, 0, len(runs))
	for _, r := range runs {
		if r == nil || r.Source == nil {
			continue
		}
		out = append(out, Result{
			Version:  r.Source.Version,
			Path:     r.Source.Path,
			State:    r.Direction,
			Duration: r.Duration,
		})
	}
	return out
}

func fromStatus(st []*goose.MigrationStatus) []Result {
	out := make([]Result, 0, len(st))
	for _, s := range st {
		if s == nil || s.Source == nil {
			continue
		}
		out = append(out, Result{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			State:     string(s.State),
			AppliedAt: s.AppliedAt,
		})
	}
	return out
}
