package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// Capacity es metadata externa al ledger; 0 o negativo = sin capacidad definida.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	Capacity  int64 // unidades totales; <= 0 significa sin definir
	CreatedAt time.Time
	UpdatedAt time.Time
}
