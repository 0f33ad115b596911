package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      error
		retryable bool
	}{
		{"único", &pgconn.PgError{Code: "23505"}, domain.ErrDuplicate, false},
		{"serialización", &pgconn.PgError{Code: "40001"}, domain.ErrConcurrentModification, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrConcurrentModification, true},
		{"lock_timeout", &pgconn.PgError{Code: "55P03"}, domain.ErrConcurrentModification, true},
		{"conexión", &pgconn.PgError{Code: "08006"}, domain.ErrStoreUnavailable, true},
		{"apagado", &pgconn.PgError{Code: "57P01"}, domain.ErrStoreUnavailable, true},
		{"timeout", context.DeadlineExceeded, domain.ErrStoreUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "conserva el error original")
			assert.Equal(t, tt.retryable, domain.IsRetryable(got))
		})
	}
}

func TestClassify_SinClasificar(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	plain := errors.New("syntax error")
	got := classify("op", plain)
	assert.ErrorIs(t, got, plain)
	assert.False(t, domain.IsRetryable(got))

	check := classify("op", &pgconn.PgError{Code: "23514"})
	assert.False(t, domain.IsRetryable(check))
	assert.False(t, errors.Is(check, domain.ErrDuplicate))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}
