package inventory

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// LedgerQuery rango y orden para leer el Kardex de un producto.
type LedgerQuery struct {
	From       *time.Time
	To         *time.Time
	Descending bool
}

// GetLedger devuelve el Kardex del producto como secuencia perezosa, ordenada por secuencia.
// Cada recorrido vuelve a leer desde el inicio y se acota a la versión del producto al comenzar,
// por lo que la secuencia es finita aunque se registren movimientos mientras se recorre.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, productID string, q LedgerQuery) (iter.Seq2[*entity.InventoryMovement, error], error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	return func(yield func(*entity.InventoryMovement, error) bool) {
		head, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			yield(nil, err)
			return
		}
		if head == nil {
			yield(nil, domain.ErrNotFound)
			return
		}

		filter := repository.MovementFilter{
			From:        q.From,
			To:          q.To,
			Descending:  q.Descending,
			MaxSequence: head.Version,
			Limit:       uc.cfg.PageSize,
		}
		for {
			page, err := uc.movRepo.ListByProduct(ctx, productID, filter)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < filter.Limit {
				return
			}
			filter.AfterSequence = page[len(page)-1].Sequence
		}
	}, nil
}

// CollectLedger materializa hasta limit movimientos (limit <= 0 = sin límite).
func CollectLedger(seq iter.Seq2[*entity.InventoryMovement, error], limit int) ([]*entity.InventoryMovement, error) {
	out := make([]*entity.InventoryMovement, 0)
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Verification resultado de reconstruir un producto desde su Kardex.
type Verification struct {
	ProductID         string
	Movements         int
	StoredStock       decimal.Decimal
	StoredCost        decimal.Decimal
	ReplayedStock     decimal.Decimal
	ReplayedCost      decimal.Decimal
	Consistent        bool
	FirstDivergentSeq int64 // primer movimiento cuyo saldo/costo registrado no coincide; 0 si ninguno
}

// VerifyProduct recorre el Kardex completo desde (0, 0) con el mismo cálculo que PostMovement
// y lo compara con la proyección almacenada y con el resultado registrado en cada movimiento.
func (uc *LedgerUseCase) VerifyProduct(ctx context.Context, productID string) (*Verification, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	filter := repository.MovementFilter{MaxSequence: product.Version, Limit: uc.cfg.PageSize}
	var b inventory.Balance
	v := &Verification{ProductID: product.ID, StoredStock: product.Stock, StoredCost: product.Cost}
	for {
		page, err := uc.movRepo.ListByProduct(ctx, productID, filter)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			b = inventory.Replay(b, m, uc.cfg.CostScale)
			v.Movements++
			if v.FirstDivergentSeq == 0 && (!b.Stock.Equal(m.ResultingBalance) || !b.Cost.Equal(m.ResultingCost)) {
				v.FirstDivergentSeq = m.Sequence
			}
		}
		if len(page) < filter.Limit {
			break
		}
		filter.AfterSequence = page[len(page)-1].Sequence
	}

	v.ReplayedStock = b.Stock
	v.ReplayedCost = b.Cost
	v.Consistent = v.FirstDivergentSeq == 0 && b.Stock.Equal(product.Stock) && b.Cost.Equal(product.Cost)
	if !v.Consistent {
		uc.log.Error().
			Str("product_id", product.ID).
			Str("stored_stock", product.Stock.String()).
			Str("replayed_stock", b.Stock.String()).
			Str("stored_cost", product.Cost.String()).
			Str("replayed_cost", b.Cost.String()).
			Int64("first_divergent_seq", v.FirstDivergentSeq).
			Msg("kardex inconsistente")
	}
	return v, nil
}
