package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapErr(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, errs.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), errs.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, errs.ErrAlreadyExists},
		{"other pg", &pgconn.PgError{Code: "23503"}, nil},
		{"other", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.in)
			switch {
			case tt.in == nil:
				require.NoError(t, got)
			case tt.want == nil:
				require.Equal(t, tt.in, got)
			default:
				require.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestNew_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "postgres://%zz")
	require.Error(t, err)
}
