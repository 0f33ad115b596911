package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementsTable = "inventory_movements"

var movementColumns = []string{
	"id", "product_id", "sequence", "kind", "quantity", "unit_cost", "total_cost",
	"resulting_cost", "resulting_balance", "reference", "reverses_id", "created_by", "date",
}

// movementRow fila de inventory_movements.
type movementRow struct {
	ID               string          `db:"id"`
	ProductID        string          `db:"product_id"`
	Sequence         int64           `db:"sequence"`
	Kind             string          `db:"kind"`
	Quantity         decimal.Decimal `db:"quantity"`
	UnitCost         decimal.Decimal `db:"unit_cost"`
	TotalCost        decimal.Decimal `db:"total_cost"`
	ResultingCost    decimal.Decimal `db:"resulting_cost"`
	ResultingBalance decimal.Decimal `db:"resulting_balance"`
	Reference        string          `db:"reference"`
	ReversesID       *string         `db:"reverses_id"`
	CreatedBy        *string         `db:"created_by"`
	Date             time.Time       `db:"date"`
}

func (r movementRow) toEntity() *entity.InventoryMovement {
	m := &entity.InventoryMovement{
		ID:               r.ID,
		ProductID:        r.ProductID,
		Sequence:         r.Sequence,
		Kind:             entity.MovementKind(r.Kind),
		Quantity:         r.Quantity,
		UnitCost:         r.UnitCost,
		TotalCost:        r.TotalCost,
		ResultingCost:    r.ResultingCost,
		ResultingBalance: r.ResultingBalance,
		Reference:        r.Reference,
		ReversesID:       r.ReversesID,
		Date:             r.Date,
	}
	if r.CreatedBy != nil {
		m.CreatedBy = *r.CreatedBy
	}
	return m
}

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q       Querier
	builder sq.StatementBuilderType
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Append inserta un movimiento. La tabla no admite UPDATE ni DELETE desde la aplicación.
func (r *InventoryMovementRepo) Append(ctx context.Context, m *entity.InventoryMovement) error {
	var createdBy *string
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	query, args, err := r.builder.Insert(movementsTable).Columns(movementColumns...).Values(
		m.ID, m.ProductID, m.Sequence, string(m.Kind), m.Quantity, m.UnitCost, m.TotalCost,
		m.ResultingCost, m.ResultingBalance, m.Reference, m.ReversesID, createdBy, m.Date,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return classify("insert inventory movement", err)
	}
	return nil
}

func (r *InventoryMovementRepo) getOne(ctx context.Context, op string, where sq.Eq) (*entity.InventoryMovement, error) {
	query, args, err := r.builder.Select(movementColumns...).From(movementsTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, classify(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toEntity(), nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.getOne(ctx, "get inventory movement", sq.Eq{"id": id})
}

// GetReversalOf devuelve el movimiento que reversa a id, si existe.
func (r *InventoryMovementRepo) GetReversalOf(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.getOne(ctx, "get reversal", sq.Eq{"reverses_id": id})
}

// ListByProduct página del Kardex de un producto ordenada por secuencia (keyset sobre sequence).
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	qb := r.builder.Select(movementColumns...).From(movementsTable).Where(sq.Eq{"product_id": productID})
	if f.MaxSequence > 0 {
		qb = qb.Where(sq.LtOrEq{"sequence": f.MaxSequence})
	}
	if f.From != nil {
		qb = qb.Where(sq.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(sq.LtOrEq{"date": *f.To})
	}
	if f.Descending {
		if f.AfterSequence > 0 {
			qb = qb.Where(sq.Lt{"sequence": f.AfterSequence})
		}
		qb = qb.OrderBy("sequence DESC")
	} else {
		if f.AfterSequence > 0 {
			qb = qb.Where(sq.Gt{"sequence": f.AfterSequence})
		}
		qb = qb.OrderBy("sequence ASC")
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, classify("list inventory movements", err)
	}
	out := make([]*entity.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
