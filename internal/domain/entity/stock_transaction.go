package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock (auditoría).
const (
	TxTypeStockIn            = "STOCK_IN"            // entrada
	TxTypeStockOut           = "STOCK_OUT"           // salida
	TxTypeAdjustment         = "ADJUSTMENT"          // corrección (conteo físico, merma)
	TxTypeReservation        = "RESERVATION"         // apartado, no mueve cantidad en mano
	TxTypeReservationRelease = "RESERVATION_RELEASE" // liberación de apartado
	TxTypeTransferOut        = "TRANSFER_OUT"        // salida por traslado entre bodegas
	TxTypeTransferIn         = "TRANSFER_IN"         // entrada por traslado entre bodegas
)

// StockTransaction es una entrada inmutable del log de auditoría: un evento que
// afectó (o apartó) stock. Nunca se actualiza ni se borra; las correcciones son
// nuevas entradas de tipo ADJUSTMENT. Invariante por entrada:
// NewQuantity == PreviousQuantity + QuantityChanged. Reproducir todas las
// entradas de un par (producto, bodega) en orden partiendo de 0 debe dar la
// cantidad actual del ledger.
type StockTransaction struct {
	ID               int64 // asignado monótonamente por el store
	ProductID        string
	WarehouseID      string
	ActorID          string // quién causó el cambio (opaco, sin autorización aquí)
	Type             string
	QuantityChanged  int64 // delta firmado sobre la cantidad en mano; 0 en reservas
	PreviousQuantity int64
	NewQuantity      int64
	ReservationDelta int64            // delta firmado sobre lo reservado; 0 fuera de reservas
	UnitCost         *decimal.Decimal // opcional, para valorización
	Reason           string
	ReferenceNumber  string // correlaciona pares TRANSFER_OUT/TRANSFER_IN
	Notes            string
	Timestamp        time.Time
}

// AffectsOnHand indica si el tipo mueve la cantidad en mano.
func (t *StockTransaction) AffectsOnHand() bool {
	return t.Type != TxTypeReservation && t.Type != TxTypeReservationRelease
}
