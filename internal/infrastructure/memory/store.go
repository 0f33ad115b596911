// Package memory implementa los puertos de persistencia del Kardex en memoria.
// Pensado para desarrollo, demos y tests: las transacciones bloquean por producto y
// aplican sus escrituras de forma atómica al confirmar.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda productos y movimientos confirmados.
type Store struct {
	mu        sync.RWMutex
	products  map[string]entity.Product
	byCode    map[string]string
	movements map[string][]*entity.InventoryMovement // por producto, ordenados por Sequence
	movByID   map[string]*entity.InventoryMovement
	reversals map[string]string // id reversado -> id del reverso

	locks sync.Map // clave -> *sync.Mutex

	hookMu     sync.RWMutex
	saveHook   func(*entity.Product) error
	appendHook func(*entity.InventoryMovement) error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		byCode:    make(map[string]string),
		movements: make(map[string][]*entity.InventoryMovement),
		movByID:   make(map[string]*entity.InventoryMovement),
		reversals: make(map[string]string),
	}
}

// SetSaveHook registra una función invocada antes de guardar el estado de un producto dentro de una
// transacción; si devuelve error la escritura falla (inyección de fallas).
func (s *Store) SetSaveHook(fn func(*entity.Product) error) {
	s.hookMu.Lock()
	s.saveHook = fn
	s.hookMu.Unlock()
}

// SetAppendHook igual que SetSaveHook, para la inserción de movimientos.
func (s *Store) SetAppendHook(fn func(*entity.InventoryMovement) error) {
	s.hookMu.Lock()
	s.appendHook = fn
	s.hookMu.Unlock()
}

// Products devuelve el repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{s: s}
}

// Movements devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) Movements() repository.InventoryMovementRepository {
	return &movementRepo{s: s}
}

// Run ejecuta fn en una transacción: los productos leídos con GetForUpdate quedan bloqueados
// hasta el final y las escrituras se aplican solo si fn termina sin error.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx := &memTx{
		s:       s,
		held:    make(map[string]*sync.Mutex),
		staged:  make(map[string]entity.Product),
		base:    make(map[string]entity.Product),
		created: make(map[string]bool),
	}
	defer tx.release()

	if err := fn(ctx, &movementRepo{s: s, tx: tx}, &productRepo{s: s, tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) lock(key string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m
}

// memTx escrituras pendientes de una transacción.
type memTx struct {
	s        *Store
	held     map[string]*sync.Mutex
	staged   map[string]entity.Product
	base     map[string]entity.Product // producto confirmado al primer SaveLedgerState
	created  map[string]bool
	appended []*entity.InventoryMovement
}

func (tx *memTx) acquire(key string) {
	if _, ok := tx.held[key]; ok {
		return
	}
	tx.held[key] = tx.s.lock(key)
}

func (tx *memTx) release() {
	for k, m := range tx.held {
		m.Unlock()
		delete(tx.held, k)
	}
}

func (tx *memTx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range tx.staged {
		if tx.created[id] {
			if _, dup := s.byCode[p.Code]; dup {
				return domain.ErrDuplicate
			}
		}
	}
	for id, p := range tx.staged {
		if tx.created[id] {
			s.products[id] = p
			s.byCode[p.Code] = id
			continue
		}
		// como el UPDATE de postgres: solo la proyección del Kardex; nombre, mínimo
		// y estado pueden haber cambiado fuera de la transacción
		cur, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Stock = p.Stock
		cur.Cost = p.Cost
		cur.Version = p.Version
		cur.UpdatedAt = p.UpdatedAt
		if !p.Price.Equal(tx.base[id].Price) {
			cur.Price = p.Price
		}
		s.products[id] = cur
	}
	for _, m := range tx.appended {
		s.movements[m.ProductID] = append(s.movements[m.ProductID], m)
		s.movByID[m.ID] = m
		if m.IsReversal() {
			s.reversals[*m.ReversesID] = m.ID
		}
	}
	return nil
}

func (tx *memTx) product(id string) (entity.Product, bool) {
	if p, ok := tx.staged[id]; ok {
		return p, true
	}
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()
	p, ok := tx.s.products[id]
	return p, ok
}

func (tx *memTx) productIDByCode(code string) (string, bool) {
	for id, p := range tx.staged {
		if p.Code == code {
			return id, true
		}
	}
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()
	id, ok := tx.s.byCode[code]
	return id, ok
}

// ── Productos ────────────────────────────────────────────────────────────────

type productRepo struct {
	s  *Store
	tx *memTx
}

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	if r.tx != nil {
		r.tx.acquire("c:" + product.Code)
		if _, ok := r.tx.productIDByCode(product.Code); ok {
			return domain.ErrDuplicate
		}
		r.tx.acquire("p:" + product.ID)
		r.tx.staged[product.ID] = *product
		r.tx.created[product.ID] = true
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.byCode[product.Code]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[product.ID] = *product
	r.s.byCode[product.Code] = product.ID
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		if p, ok := r.tx.product(id); ok {
			return &p, nil
		}
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	if r.tx != nil {
		if id, ok := r.tx.productIDByCode(code); ok {
			return r.GetByID(ctx, id)
		}
		return nil, nil
	}
	r.s.mu.RLock()
	id, ok := r.s.byCode[code]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		r.tx.acquire("p:" + id)
	}
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	if r.tx == nil {
		return r.GetByCode(ctx, code)
	}
	// el bloqueo por código serializa la creación concurrente del mismo código
	r.tx.acquire("c:" + code)
	id, ok := r.tx.productIDByCode(code)
	if !ok {
		return nil, nil
	}
	return r.GetForUpdate(ctx, id)
}

func (r *productRepo) SaveLedgerState(_ context.Context, product *entity.Product, expectedVersion int64) error {
	r.s.hookMu.RLock()
	hook := r.s.saveHook
	r.s.hookMu.RUnlock()
	if hook != nil {
		if err := hook(product); err != nil {
			return err
		}
	}

	apply := func(cur entity.Product) entity.Product {
		cur.Stock = product.Stock
		cur.Cost = product.Cost
		cur.Price = product.Price
		cur.Version = product.Version
		cur.UpdatedAt = product.UpdatedAt
		return cur
	}
	if r.tx != nil {
		cur, ok := r.tx.product(product.ID)
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != expectedVersion {
			return domain.ErrConcurrentModification
		}
		if _, ok := r.tx.base[product.ID]; !ok && !r.tx.created[product.ID] {
			r.tx.base[product.ID] = cur
		}
		r.tx.staged[product.ID] = apply(cur)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	r.s.products[product.ID] = apply(cur)
	return nil
}

func (r *productRepo) UpdateCatalog(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = product.Name
	cur.Category = product.Category
	cur.Price = product.Price
	cur.MinStock = product.MinStock
	cur.UpdatedAt = product.UpdatedAt
	r.s.products[product.ID] = cur
	return nil
}

func (r *productRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Active = active
	r.s.products[id] = cur
	return nil
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var list []*entity.Product
	for _, p := range r.s.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.BelowMinimum && !p.BelowMinStock() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Code), search) && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, f.Limit, f.Offset), nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct {
	s  *Store
	tx *memTx
}

func (r *movementRepo) Append(_ context.Context, m *entity.InventoryMovement) error {
	r.s.hookMu.RLock()
	hook := r.s.appendHook
	r.s.hookMu.RUnlock()
	if hook != nil {
		if err := hook(m); err != nil {
			return err
		}
	}

	cp := *m
	r.s.mu.RLock()
	_, dup := r.s.movByID[m.ID]
	r.s.mu.RUnlock()
	if dup {
		return domain.ErrDuplicate
	}
	if r.tx != nil {
		r.tx.appended = append(r.tx.appended, &cp)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements[cp.ProductID] = append(r.s.movements[cp.ProductID], &cp)
	r.s.movByID[cp.ID] = &cp
	if cp.IsReversal() {
		r.s.reversals[*cp.ReversesID] = cp.ID
	}
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	if r.tx != nil {
		for _, m := range r.tx.appended {
			if m.ID == id {
				cp := *m
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.movByID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *movementRepo) GetReversalOf(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	if r.tx != nil {
		for _, m := range r.tx.appended {
			if m.IsReversal() && *m.ReversesID == id {
				cp := *m
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	revID, ok := r.s.reversals[id]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, revID)
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	all := r.s.movements[productID]
	snapshot := make([]*entity.InventoryMovement, len(all))
	copy(snapshot, all)
	r.s.mu.RUnlock()

	if f.Descending {
		for i, j := 0, len(snapshot)-1; i < j; i, j = i+1, j-1 {
			snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
		}
	}
	var out []*entity.InventoryMovement
	for _, m := range snapshot {
		if f.MaxSequence > 0 && m.Sequence > f.MaxSequence {
			continue
		}
		if f.AfterSequence > 0 {
			if !f.Descending && m.Sequence <= f.AfterSequence {
				continue
			}
			if f.Descending && m.Sequence >= f.AfterSequence {
				continue
			}
		}
		if f.From != nil && m.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Date.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
