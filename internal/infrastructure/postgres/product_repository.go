package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo adaptador de metadata de productos (umbral y costo) sobre
// PostgreSQL (usable con pool o tx). El CRUD de productos vive fuera de este
// servicio; aquí solo se lee y se actualiza el costo promedio.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene la metadata del producto; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, unit_cost, low_stock_threshold, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitCost, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateCost persiste el costo promedio ponderado recalculado (se llama dentro
// de la misma transacción del movimiento que lo originó).
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	query := `UPDATE products SET unit_cost = $2, updated_at = now() WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, cost); err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}
