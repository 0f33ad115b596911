package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, category, price, cost, stock, min_stock, active, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q       Querier
	builder sq.StatementBuilderType
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Stock,
		&p.MinStock, &p.Active, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.Category, product.Price, product.Cost,
		product.Stock, product.MinStock, product.Active, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return classify("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", "id = $1", id)
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code", "code = $1", code)
}

// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", "id = $1 FOR UPDATE", id)
}

// GetByCodeForUpdate igual que GetForUpdate, resolviendo por código.
func (r *ProductRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product by code", "code = $1 FOR UPDATE", code)
}

// SaveLedgerState persiste saldo, costo, precio y versión solo si la versión almacenada es expectedVersion.
func (r *ProductRepo) SaveLedgerState(ctx context.Context, product *entity.Product, expectedVersion int64) error {
	query := `
		UPDATE products
		SET stock = $2, cost = $3, price = $4, version = $5, updated_at = $6
		WHERE id = $1 AND version = $7`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Stock, product.Cost, product.Price, product.Version, product.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return classify("save ledger state", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s versión %d: %w", product.ID, expectedVersion, domain.ErrConcurrentModification)
	}
	return nil
}

// UpdateCatalog actualiza datos descriptivos. No toca stock, costo ni versión.
func (r *ProductRepo) UpdateCatalog(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, price = $4, min_stock = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Category, product.Price, product.MinStock, product.UpdatedAt,
	)
	if err != nil {
		return classify("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive activa o desactiva el producto.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return classify("set product active", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con filtros opcionales, ordenados por código.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	qb := r.builder.Select(productColumns).From("products").OrderBy("code")
	if f.OnlyActive {
		qb = qb.Where(sq.Eq{"active": true})
	}
	if f.Category != "" {
		qb = qb.Where(sq.Eq{"category": f.Category})
	}
	if f.BelowMinimum {
		qb = qb.Where("min_stock > 0 AND stock < min_stock")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		qb = qb.Where(sq.Or{sq.ILike{"code": pattern}, sq.ILike{"name": pattern}})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list products", err)
	}
	return list, nil
}
