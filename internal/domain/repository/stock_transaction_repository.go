package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// StockTransactionRepository define el puerto del log de auditoría: solo
// append y lecturas. No hay Update ni Delete: editar o borrar una entrada
// rompería el invariante de replay, incluso para correcciones (esas son nuevas
// entradas ADJUSTMENT).
type StockTransactionRepository interface {
	// Append persiste la entrada y asigna su ID monótono. Lo llama únicamente
	// el motor de movimientos dentro de su unidad atómica.
	Append(ctx context.Context, tx *entity.StockTransaction) error

	// History lista cronológicamente (ascendente) las entradas de un producto.
	// warehouseID vacío = todas las bodegas; from/to opcionales.
	History(ctx context.Context, productID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error)

	// Recent devuelve las últimas n entradas globales (descendente), para feeds
	// de actividad.
	Recent(ctx context.Context, n int) ([]*entity.StockTransaction, error)

	// CountByType cuenta entradas por tipo dentro del rango. Se calcula
	// escaneando el log, sin contadores materializados aparte.
	CountByType(ctx context.Context, from, to time.Time) (map[string]int64, error)
}
