package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// memStore: implementación en memoria de todos los puertos del motor, para
// probar la lógica de movimientos sin PostgreSQL. El fakeTxRunner serializa
// las "transacciones" con un mutex y revierte a un snapshot si la función
// retorna error, imitando el Commit/Rollback real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu         sync.Mutex
	records    map[string]*entity.StockRecord
	txs        []*entity.StockTransaction
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	nextTxID   int64

	// failAppendOnType fuerza un error en Append para ese tipo de entrada
	// (simula un fallo a mitad de transacción).
	failAppendOnType string
}

func newMemStore() *memStore {
	return &memStore{
		records:    make(map[string]*entity.StockRecord),
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		nextTxID:   1,
	}
}

func recordKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

type memSnapshot struct {
	records  map[string]*entity.StockRecord
	txCount  int
	products map[string]*entity.Product
	nextTxID int64
}

func (m *memStore) snapshot() memSnapshot {
	records := make(map[string]*entity.StockRecord, len(m.records))
	for k, v := range m.records {
		cp := *v
		records[k] = &cp
	}
	products := make(map[string]*entity.Product, len(m.products))
	for k, v := range m.products {
		cp := *v
		products[k] = &cp
	}
	return memSnapshot{records: records, txCount: len(m.txs), products: products, nextTxID: m.nextTxID}
}

func (m *memStore) restore(s memSnapshot) {
	m.records = s.records
	m.txs = m.txs[:s.txCount]
	m.products = s.products
	m.nextTxID = s.nextTxID
}

// ── StockRecordRepository ─────────────────────────────────────────────────────

func (m *memStore) Get(_ context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	r, ok := m.records[recordKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	return m.Get(ctx, productID, warehouseID)
}

func (m *memStore) GetOrCreateForUpdate(ctx context.Context, productID, warehouseID string, now time.Time) (*entity.StockRecord, error) {
	if r, _ := m.Get(ctx, productID, warehouseID); r != nil {
		return r, nil
	}
	r := entity.NewStockRecord(productID, warehouseID, now)
	m.records[recordKey(productID, warehouseID)] = r
	cp := *r
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, record *entity.StockRecord) error {
	cp := *record
	m.records[recordKey(record.ProductID, record.WarehouseID)] = &cp
	return nil
}

func (m *memStore) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, r := range m.records {
		if r.WarehouseID == warehouseID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return paginate(out, limit, offset), nil
}

func (m *memStore) ListByProduct(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, r := range m.records {
		if r.ProductID == productID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (m *memStore) TotalQuantity(_ context.Context, productID string) (int64, error) {
	var total int64
	for _, r := range m.records {
		if r.ProductID == productID {
			total += r.Quantity
		}
	}
	return total, nil
}

func (m *memStore) TotalAvailable(_ context.Context, productID string) (int64, error) {
	var total int64
	for _, r := range m.records {
		if r.ProductID == productID {
			total += r.Available()
		}
	}
	return total, nil
}

func (m *memStore) TotalInWarehouse(_ context.Context, warehouseID string) (int64, error) {
	var total int64
	for _, r := range m.records {
		if r.WarehouseID == warehouseID {
			total += r.Quantity
		}
	}
	return total, nil
}

func (m *memStore) ListLowStock(_ context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	var out []repository.LowStockItem
	for _, r := range m.records {
		if warehouseID != "" && r.WarehouseID != warehouseID {
			continue
		}
		p, ok := m.products[r.ProductID]
		if !ok || r.Quantity > p.LowStockThreshold {
			continue
		}
		out = append(out, repository.LowStockItem{
			ProductID:   r.ProductID,
			SKU:         p.SKU,
			ProductName: p.Name,
			WarehouseID: r.WarehouseID,
			Quantity:    r.Quantity,
			Reserved:    r.ReservedQuantity,
			Threshold:   p.LowStockThreshold,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (m *memStore) Valuation(_ context.Context, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range m.records {
		if warehouseID != "" && r.WarehouseID != warehouseID {
			continue
		}
		p, ok := m.products[r.ProductID]
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromInt(r.Quantity).Mul(p.UnitCost))
	}
	return total, nil
}

// ── StockTransactionRepository ────────────────────────────────────────────────

func (m *memStore) Append(_ context.Context, tx *entity.StockTransaction) error {
	if m.failAppendOnType != "" && tx.Type == m.failAppendOnType {
		return fmt.Errorf("fallo inyectado en append de %s", tx.Type)
	}
	cp := *tx
	cp.ID = m.nextTxID
	m.nextTxID++
	m.txs = append(m.txs, &cp)
	tx.ID = cp.ID
	return nil
}

func (m *memStore) History(_ context.Context, productID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	for _, tx := range m.txs {
		if tx.ProductID != productID {
			continue
		}
		if warehouseID != "" && tx.WarehouseID != warehouseID {
			continue
		}
		if from != nil && tx.Timestamp.Before(*from) {
			continue
		}
		if to != nil && tx.Timestamp.After(*to) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit <= 0 {
		return out, nil
	}
	return paginate(out, limit, offset), nil
}

func (m *memStore) Recent(_ context.Context, n int) ([]*entity.StockTransaction, error) {
	out := make([]*entity.StockTransaction, 0, n)
	for i := len(m.txs) - 1; i >= 0 && len(out) < n; i-- {
		cp := *m.txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) CountByType(_ context.Context, from, to time.Time) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, tx := range m.txs {
		if tx.Timestamp.Before(from) || tx.Timestamp.After(to) {
			continue
		}
		counts[tx.Type]++
	}
	return counts, nil
}

// ── ProductRepository / WarehouseRepository ───────────────────────────────────

func (m *memStore) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("producto %s no existe", id)
	}
	p.UnitCost = cost
	return nil
}

type memWarehouses struct {
	store *memStore
}

func (w memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	wh, ok := w.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *wh
	return &cp, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner serializa las transacciones con el mutex del store y revierte
// al snapshot previo si fn retorna error: todo o nada, como el TxRunner real.
type fakeTxRunner struct {
	store *memStore
}

func (r fakeTxRunner) Run(_ context.Context, fn func(
	ledger repository.StockRecordRepository,
	audit repository.StockTransactionRepository,
	products repository.ProductRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.snapshot()
	if err := fn(r.store, r.store, r.store); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// conflictOnceTxRunner aborta la primera transacción por contención: ejecuta
// fn, revierte todo y devuelve ConcurrencyConflictError, como un deadlock
// detectado al confirmar. Las siguientes llamadas pasan al runner normal.
type conflictOnceTxRunner struct {
	inner      fakeTxRunner
	conflicted bool
}

func (r *conflictOnceTxRunner) Run(ctx context.Context, fn func(
	ledger repository.StockRecordRepository,
	audit repository.StockTransactionRepository,
	products repository.ProductRepository,
) error) error {
	if r.conflicted {
		return r.inner.Run(ctx, fn)
	}
	r.conflicted = true

	store := r.inner.store
	store.mu.Lock()
	defer store.mu.Unlock()

	snap := store.snapshot()
	_ = fn(store, store, store)
	store.restore(snap)
	return &domain.ConcurrencyConflictError{Op: "stock movement", Err: fmt.Errorf("deadlock detected")}
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
