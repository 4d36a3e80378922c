package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es metadata externa al ledger: el umbral de stock bajo y el costo
// unitario viven aquí, no en StockRecord. El costo es promedio ponderado y se
// recalcula en entradas con costo (ver motor de movimientos).
type Product struct {
	ID                string
	SKU               string // código único
	Name              string
	UnitCost          decimal.Decimal // costo promedio ponderado
	LowStockThreshold int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
