package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de metadata de productos (colaborador
// externo al ledger): umbral de stock bajo y costo unitario.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// UpdateCost persiste el costo promedio ponderado recalculado en entradas
	// con costo. Se llama dentro de la misma transacción del movimiento.
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
}
