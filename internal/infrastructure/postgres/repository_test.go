package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// fakeQuerier registra las sentencias Exec; Query y QueryRow no se usan en estos tests.
type fakeQuerier struct {
	sql  []string
	args [][]any
	tag  pgconn.CommandTag
	err  error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return f.tag, f.err
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("no usado")
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("no usado")
}

func TestSaveLedgerState_ControlDeVersion(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewProductRepository(q)
	p := &entity.Product{ID: "p1", Stock: decimal.NewFromInt(3), Version: 8}

	err := repo.SaveLedgerState(context.Background(), p, 7)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "version = $7")
	assert.Equal(t, int64(7), q.args[0][6])

	q.tag = pgconn.NewCommandTag("UPDATE 1")
	assert.NoError(t, repo.SaveLedgerState(context.Background(), p, 7))
}

func TestProductCreate_Duplicado(t *testing.T) {
	q := &fakeQuerier{err: &pgconn.PgError{Code: "23505"}}
	err := NewProductRepository(q).Create(context.Background(), &entity.Product{ID: "p1", Code: "A"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMovementAppend_SQL(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("INSERT 0 1")}
	orig := "m0"
	m := &entity.InventoryMovement{
		ID: "m1", ProductID: "p1", Sequence: 3, Kind: entity.MovementAdjustment,
		Quantity: decimal.NewFromInt(-2), ReversesID: &orig, Date: time.Now(),
	}
	require.NoError(t, NewInventoryMovementRepository(q).Append(context.Background(), m))

	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "INSERT INTO inventory_movements")
	assert.Contains(t, q.sql[0], "$13")
	require.Len(t, q.args[0], len(movementColumns))
	assert.Equal(t, "ADJUSTMENT", q.args[0][3])
	assert.Nil(t, q.args[0][11], "created_by vacío se guarda como NULL")
}

func TestMovementAppend_SerializacionEsReintentable(t *testing.T) {
	q := &fakeQuerier{err: &pgconn.PgError{Code: "40001"}}
	err := NewInventoryMovementRepository(q).Append(context.Background(), &entity.InventoryMovement{ID: "m1"})
	assert.True(t, domain.IsRetryable(err))
}
