package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	domaininv "github.com/tu-usuario/stock-ledger/internal/domain/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// MovementEngine es el único punto de entrada para mutar Quantity y
// ReservedQuantity. Cada operación es una unidad atómica
// leer-validar-escribir sobre la(s) fila(s) que toca: bloqueo de fila
// (SELECT FOR UPDATE) + escritura del ledger + append de auditoría, con
// Commit o Rollback completos. Ningún lector ve un ledger actualizado sin su
// entrada de auditoría, ni al revés.
type MovementEngine struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewMovementEngine construye el motor de movimientos.
func NewMovementEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *MovementEngine {
	return &MovementEngine{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// AdjustStockInput entrada para un ajuste firmado de la cantidad en mano.
// Kind vacío clasifica por signo (STOCK_IN / STOCK_OUT); TxTypeAdjustment marca
// una corrección (conteo físico, merma). UnitCost opcional en entradas: si
// viene, se recalcula el costo promedio ponderado del producto.
type AdjustStockInput struct {
	ProductID       string
	WarehouseID     string
	Delta           int64
	Kind            string
	UnitCost        *decimal.Decimal
	Reason          string
	ReferenceNumber string
	Notes           string
	ActorID         string
}

// AdjustStockResult cantidad resultante tras el ajuste.
type AdjustStockResult struct {
	NewQuantity int64
}

// ReserveStockInput entrada para apartar unidades contra demanda pendiente.
type ReserveStockInput struct {
	ProductID       string
	WarehouseID     string
	Quantity        int64
	ReferenceNumber string
	ActorID         string
}

// ReleaseStockInput entrada para liberar unidades apartadas.
type ReleaseStockInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	ActorID     string
}

// ReservationResult disponibilidad resultante tras reservar o liberar.
type ReservationResult struct {
	AvailableQuantity int64
}

// TransferStockInput entrada para un traslado entre bodegas del mismo producto.
type TransferStockInput struct {
	ProductID              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Quantity               int64
	Reason                 string
	ReferenceNumber        string
	ActorID                string
}

// TransferResult cantidades resultantes en origen y destino. ReferenceNumber
// correlaciona el par TRANSFER_OUT/TRANSFER_IN (se genera si el caller no lo dio).
type TransferResult struct {
	SourceQuantity      int64
	DestinationQuantity int64
	ReferenceNumber     string
}

// AdjustStock aplica un delta firmado sobre la cantidad en mano del par
// (producto, bodega). El registro se crea en cero si no existe (el stock entra
// de forma perezosa). Falla con InsufficientStockError si el delta deja la
// cantidad negativa y con ReservationConflictError si la deja por debajo de lo
// reservado; en ambos casos no se escribe nada.
func (e *MovementEngine) AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustStockResult, error) {
	if input.Delta == 0 || input.ProductID == "" || input.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch input.Kind {
	case "", entity.TxTypeAdjustment:
	default:
		return nil, domain.ErrInvalidInput
	}
	if input.UnitCost != nil && input.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	product, err := e.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if wh, err := e.warehouseRepo.GetByID(ctx, input.WarehouseID); err != nil || wh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	var result AdjustStockResult

	err = e.txRunner.Run(ctx, func(
		ledger repository.StockRecordRepository,
		audit repository.StockTransactionRepository,
		products repository.ProductRepository,
	) error {
		// Bloquea la fila (SELECT FOR UPDATE); la crea en cero si no existe
		record, err := ledger.GetOrCreateForUpdate(ctx, input.ProductID, input.WarehouseID, now)
		if err != nil {
			return err
		}
		previous := record.Quantity
		if err := record.ApplyDelta(input.Delta, now); err != nil {
			return err
		}

		// Entrada con costo: recalcular costo promedio ponderado del producto
		unitCost := product.UnitCost
		if input.Delta > 0 && input.UnitCost != nil {
			unitCost = *input.UnitCost
			newCost := domaininv.WeightedAverageCost(previous, product.UnitCost, input.Delta, unitCost)
			if err := products.UpdateCost(ctx, input.ProductID, newCost); err != nil {
				return err
			}
		}

		if err := ledger.Save(ctx, record); err != nil {
			return err
		}
		if err := audit.Append(ctx, &entity.StockTransaction{
			ProductID:        input.ProductID,
			WarehouseID:      input.WarehouseID,
			ActorID:          input.ActorID,
			Type:             adjustmentType(input.Kind, input.Delta),
			QuantityChanged:  input.Delta,
			PreviousQuantity: previous,
			NewQuantity:      record.Quantity,
			UnitCost:         &unitCost,
			Reason:           input.Reason,
			ReferenceNumber:  input.ReferenceNumber,
			Notes:            input.Notes,
			Timestamp:        now,
		}); err != nil {
			return err
		}
		result.NewQuantity = record.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// adjustmentType clasifica el ajuste: intención explícita del caller
// (ADJUSTMENT) o por signo del delta.
func adjustmentType(kind string, delta int64) string {
	if kind == entity.TxTypeAdjustment {
		return entity.TxTypeAdjustment
	}
	if delta > 0 {
		return entity.TxTypeStockIn
	}
	return entity.TxTypeStockOut
}

// ReserveStock aparta unidades contra demanda pendiente. No mueve la cantidad
// en mano: la entrada de auditoría lleva QuantityChanged 0 y el delta en
// ReservationDelta. Falla con InsufficientAvailableStockError si lo disponible
// (en mano menos reservado) no alcanza.
func (e *MovementEngine) ReserveStock(ctx context.Context, input ReserveStockInput) (*ReservationResult, error) {
	if input.ProductID == "" || input.WarehouseID == "" || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	var result ReservationResult

	err := e.txRunner.Run(ctx, func(
		ledger repository.StockRecordRepository,
		audit repository.StockTransactionRepository,
		_ repository.ProductRepository,
	) error {
		record, err := ledger.GetForUpdate(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return err
		}
		if record == nil {
			return &domain.NotFoundError{ProductID: input.ProductID, WarehouseID: input.WarehouseID}
		}
		if err := record.Reserve(input.Quantity, now); err != nil {
			return err
		}
		if err := ledger.Save(ctx, record); err != nil {
			return err
		}
		if err := audit.Append(ctx, &entity.StockTransaction{
			ProductID:        input.ProductID,
			WarehouseID:      input.WarehouseID,
			ActorID:          input.ActorID,
			Type:             entity.TxTypeReservation,
			QuantityChanged:  0,
			PreviousQuantity: record.Quantity,
			NewQuantity:      record.Quantity,
			ReservationDelta: input.Quantity,
			ReferenceNumber:  input.ReferenceNumber,
			Timestamp:        now,
		}); err != nil {
			return err
		}
		result.AvailableQuantity = record.Available()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReleaseReservedStock libera unidades apartadas. Liberar más de lo reservado
// falla con OverReleaseError (se rechaza, no se recorta: un recorte silencioso
// taparía bugs del caller). Sin registro para el par falla con NotFoundError.
func (e *MovementEngine) ReleaseReservedStock(ctx context.Context, input ReleaseStockInput) (*ReservationResult, error) {
	if input.ProductID == "" || input.WarehouseID == "" || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	var result ReservationResult

	err := e.txRunner.Run(ctx, func(
		ledger repository.StockRecordRepository,
		audit repository.StockTransactionRepository,
		_ repository.ProductRepository,
	) error {
		record, err := ledger.GetForUpdate(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return err
		}
		if record == nil {
			return &domain.NotFoundError{ProductID: input.ProductID, WarehouseID: input.WarehouseID}
		}
		if err := record.Release(input.Quantity, now); err != nil {
			return err
		}
		if err := ledger.Save(ctx, record); err != nil {
			return err
		}
		if err := audit.Append(ctx, &entity.StockTransaction{
			ProductID:        input.ProductID,
			WarehouseID:      input.WarehouseID,
			ActorID:          input.ActorID,
			Type:             entity.TxTypeReservationRelease,
			QuantityChanged:  0,
			PreviousQuantity: record.Quantity,
			NewQuantity:      record.Quantity,
			ReservationDelta: -input.Quantity,
			Timestamp:        now,
		}); err != nil {
			return err
		}
		result.AvailableQuantity = record.Available()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TransferStock traslada unidades del mismo producto entre dos bodegas como
// una sola unidad atómica: resta en origen con TRANSFER_OUT y suma en destino
// (creándolo si no existe) con TRANSFER_IN, ambas entradas con el mismo
// ReferenceNumber. Un fallo en cualquier punto revierte todo: no existen
// traslados parciales. Las dos filas se bloquean en orden fijo por WarehouseID
// para evitar deadlocks entre traslados cruzados.
func (e *MovementEngine) TransferStock(ctx context.Context, input TransferStockInput) (*TransferResult, error) {
	if input.ProductID == "" || input.SourceWarehouseID == "" || input.DestinationWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.SourceWarehouseID == input.DestinationWarehouseID || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	product, err := e.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	srcWh, err := e.warehouseRepo.GetByID(ctx, input.SourceWarehouseID)
	if err != nil || srcWh == nil {
		return nil, domain.ErrNotFound
	}
	dstWh, err := e.warehouseRepo.GetByID(ctx, input.DestinationWarehouseID)
	if err != nil || dstWh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	refNumber := input.ReferenceNumber
	if refNumber == "" {
		refNumber = uuid.New().String()
	}
	var result TransferResult
	result.ReferenceNumber = refNumber

	err = e.txRunner.Run(ctx, func(
		ledger repository.StockRecordRepository,
		audit repository.StockTransactionRepository,
		_ repository.ProductRepository,
	) error {
		source, dest, err := e.lockTransferPair(ctx, ledger, input, now)
		if err != nil {
			return err
		}
		if source == nil {
			return &domain.NotFoundError{ProductID: input.ProductID, WarehouseID: input.SourceWarehouseID}
		}
		if source.Available() < input.Quantity {
			return &domain.InsufficientAvailableStockError{
				ProductID:   input.ProductID,
				WarehouseID: input.SourceWarehouseID,
				Requested:   input.Quantity,
				Available:   source.Available(),
			}
		}

		srcPrev := source.Quantity
		dstPrev := dest.Quantity
		if err := source.ApplyDelta(-input.Quantity, now); err != nil {
			return err
		}
		if err := dest.ApplyDelta(input.Quantity, now); err != nil {
			return err
		}
		if err := ledger.Save(ctx, source); err != nil {
			return err
		}
		if err := ledger.Save(ctx, dest); err != nil {
			return err
		}

		unitCost := product.UnitCost
		if err := audit.Append(ctx, &entity.StockTransaction{
			ProductID:        input.ProductID,
			WarehouseID:      input.SourceWarehouseID,
			ActorID:          input.ActorID,
			Type:             entity.TxTypeTransferOut,
			QuantityChanged:  -input.Quantity,
			PreviousQuantity: srcPrev,
			NewQuantity:      source.Quantity,
			UnitCost:         &unitCost,
			Reason:           input.Reason,
			ReferenceNumber:  refNumber,
			Timestamp:        now,
		}); err != nil {
			return err
		}
		if err := audit.Append(ctx, &entity.StockTransaction{
			ProductID:        input.ProductID,
			WarehouseID:      input.DestinationWarehouseID,
			ActorID:          input.ActorID,
			Type:             entity.TxTypeTransferIn,
			QuantityChanged:  input.Quantity,
			PreviousQuantity: dstPrev,
			NewQuantity:      dest.Quantity,
			UnitCost:         &unitCost,
			Reason:           input.Reason,
			ReferenceNumber:  refNumber,
			Timestamp:        now,
		}); err != nil {
			return err
		}

		result.SourceQuantity = source.Quantity
		result.DestinationQuantity = dest.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// lockTransferPair bloquea origen y destino en orden global fijo (WarehouseID
// menor primero) para que dos traslados en sentidos opuestos no se bloqueen
// mutuamente. El origen debe existir (puede devolver nil); el destino se crea
// en cero si no existe.
func (e *MovementEngine) lockTransferPair(
	ctx context.Context,
	ledger repository.StockRecordRepository,
	input TransferStockInput,
	now time.Time,
) (source, dest *entity.StockRecord, err error) {
	if input.SourceWarehouseID < input.DestinationWarehouseID {
		source, err = ledger.GetForUpdate(ctx, input.ProductID, input.SourceWarehouseID)
		if err != nil {
			return nil, nil, err
		}
		dest, err = ledger.GetOrCreateForUpdate(ctx, input.ProductID, input.DestinationWarehouseID, now)
		if err != nil {
			return nil, nil, err
		}
		return source, dest, nil
	}
	dest, err = ledger.GetOrCreateForUpdate(ctx, input.ProductID, input.DestinationWarehouseID, now)
	if err != nil {
		return nil, nil, err
	}
	source, err = ledger.GetForUpdate(ctx, input.ProductID, input.SourceWarehouseID)
	if err != nil {
		return nil, nil, err
	}
	return source, dest, nil
}
