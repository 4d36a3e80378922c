package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// buildQueries construye la capa de consultas junto con un motor sobre el
// mismo store, para sembrar estado a través del único camino de escritura.
func buildQueries() (*inventory.StockQueries, *inventory.MovementEngine, *memStore) {
	engine, store := buildEngine()
	queries := inventory.NewStockQueries(store, store, memWarehouses{store: store})
	return queries, engine, store
}

// Caso: nivel de un par existente, con disponible derivado.
func TestQueries_GetNivel(t *testing.T) {
	queries, engine, _ := buildQueries()
	adjust(t, engine, testWarehouseA, 40)
	_, err := engine.ReserveStock(context.Background(), inventory.ReserveStockInput{
		ProductID: testProductID, WarehouseID: testWarehouseA, Quantity: 15, ActorID: testActorID,
	})
	require.NoError(t, err)

	level, err := queries.Get(context.Background(), testProductID, testWarehouseA)
	require.NoError(t, err)
	assert.Equal(t, int64(40), level.Quantity)
	assert.Equal(t, int64(15), level.ReservedQuantity)
	assert.Equal(t, int64(25), level.AvailableQuantity, "disponible = en mano - reservado")
}

// Caso: par sin registro → not found con contexto.
func TestQueries_GetNivelInexistente(t *testing.T) {
	queries, _, _ := buildQueries()

	_, err := queries.Get(context.Background(), testProductID, testWarehouseA)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Caso: totales de un producto suman sobre todas las bodegas.
func TestQueries_TotalesPorProducto(t *testing.T) {
	queries, engine, _ := buildQueries()
	ctx := context.Background()
	adjust(t, engine, testWarehouseA, 60)
	adjust(t, engine, testWarehouseB, 40)
	_, err := engine.ReserveStock(ctx, inventory.ReserveStockInput{
		ProductID: testProductID, WarehouseID: testWarehouseA, Quantity: 10, ActorID: testActorID,
	})
	require.NoError(t, err)

	total, err := queries.TotalQuantity(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)

	available, err := queries.TotalAvailable(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), available)
}

// Caso: listado paginado de los niveles de una bodega.
func TestQueries_ListadoPorBodega(t *testing.T) {
	queries, engine, store := buildQueries()
	for _, id := range []string{"prod-b", "prod-c"} {
		store.products[id] = &entity.Product{ID: id, SKU: "SKU-" + id, Name: id}
	}
	adjust(t, engine, testWarehouseA, 10)
	for _, id := range []string{"prod-b", "prod-c"} {
		_, err := engine.AdjustStock(context.Background(), inventory.AdjustStockInput{
			ProductID: id, WarehouseID: testWarehouseA, Delta: 5, ActorID: testActorID,
		})
		require.NoError(t, err)
	}

	levels, err := queries.ListByWarehouse(context.Background(), testWarehouseA, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, levels, 3)

	levels, err = queries.ListByWarehouse(context.Background(), testWarehouseA, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, levels, 1, "la última página lleva el resto")
}

// Caso: stock bajo — en el umbral cuenta, sobre el umbral no; cantidad cero
// marca OutOfStock.
func TestQueries_StockBajo(t *testing.T) {
	queries, engine, _ := buildQueries()
	adjust(t, engine, testWarehouseA, 5)  // umbral del producto es 5: justo en el umbral
	adjust(t, engine, testWarehouseB, 3)
	adjust(t, engine, testWarehouseB, -3) // queda en cero

	items, err := queries.ListLowStock(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	byWarehouse := map[string]dto.LowStockItemDTO{}
	for _, it := range items {
		byWarehouse[it.WarehouseID] = it
	}
	assert.False(t, byWarehouse[testWarehouseA].OutOfStock)
	assert.Equal(t, int64(5), byWarehouse[testWarehouseA].Quantity)
	assert.True(t, byWarehouse[testWarehouseB].OutOfStock)

	// Filtrado por bodega
	items, err = queries.ListLowStock(context.Background(), testWarehouseB)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, testWarehouseB, items[0].WarehouseID)
}

// Caso: valorización global y por bodega (cantidad x costo del producto).
func TestQueries_Valorizacion(t *testing.T) {
	queries, engine, _ := buildQueries()
	adjust(t, engine, testWarehouseA, 10) // 10 x 10.00 = 100.00
	adjust(t, engine, testWarehouseB, 3)  // 3 x 10.00 = 30.00

	global, err := queries.Valuation(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, global.TotalValue.Equal(decimal.RequireFromString("130")),
		"valorización global esperada 130.00, obtenida %s", global.TotalValue)

	porBodega, err := queries.Valuation(context.Background(), testWarehouseB)
	require.NoError(t, err)
	assert.True(t, porBodega.TotalValue.Equal(decimal.RequireFromString("30")))
	assert.Equal(t, testWarehouseB, porBodega.WarehouseID)
}

// Caso: historial cronológico de un producto, con filtro por bodega.
func TestQueries_Historial(t *testing.T) {
	queries, engine, _ := buildQueries()
	ctx := context.Background()
	adjust(t, engine, testWarehouseA, 100)
	adjust(t, engine, testWarehouseA, -20)
	adjust(t, engine, testWarehouseB, 7)

	txs, err := queries.History(ctx, testProductID, "", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, entity.TxTypeStockIn, txs[0].Type, "orden ascendente: primero la entrada inicial")
	assert.Equal(t, int64(100), txs[0].QuantityChanged)

	txs, err = queries.History(ctx, testProductID, testWarehouseB, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, testWarehouseB, txs[0].WarehouseID)
}

// Caso: feed de actividad — últimas n entradas en orden descendente.
func TestQueries_Recientes(t *testing.T) {
	queries, engine, _ := buildQueries()
	adjust(t, engine, testWarehouseA, 10)
	adjust(t, engine, testWarehouseA, 20)
	adjust(t, engine, testWarehouseA, 30)

	txs, err := queries.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(30), txs[0].QuantityChanged, "la entrada más nueva primero")
	assert.Equal(t, int64(20), txs[1].QuantityChanged)
}

// Caso: resumen de movimientos — traslados cuentan como entrada y salida, las
// reservas quedan fuera.
func TestQueries_ResumenDeMovimientos(t *testing.T) {
	queries, engine, _ := buildQueries()
	ctx := context.Background()
	from := time.Now().UTC().Add(-time.Minute)

	adjust(t, engine, testWarehouseA, 100)
	adjust(t, engine, testWarehouseA, -10)
	_, err := engine.AdjustStock(ctx, inventory.AdjustStockInput{
		ProductID: testProductID, WarehouseID: testWarehouseA, Delta: -2,
		Kind: entity.TxTypeAdjustment, ActorID: testActorID,
	})
	require.NoError(t, err)
	_, err = engine.TransferStock(ctx, inventory.TransferStockInput{
		ProductID:              testProductID,
		SourceWarehouseID:      testWarehouseA,
		DestinationWarehouseID: testWarehouseB,
		Quantity:               5,
		ActorID:                testActorID,
	})
	require.NoError(t, err)
	_, err = engine.ReserveStock(ctx, inventory.ReserveStockInput{
		ProductID: testProductID, WarehouseID: testWarehouseA, Quantity: 3, ActorID: testActorID,
	})
	require.NoError(t, err)

	to := time.Now().UTC().Add(time.Minute)
	summary, err := queries.MovementSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.StockInCount, "STOCK_IN + TRANSFER_IN")
	assert.Equal(t, int64(2), summary.StockOutCount, "STOCK_OUT + TRANSFER_OUT")
	assert.Equal(t, int64(1), summary.AdjustmentCount)
}

// Caso: utilización de capacidad; sin capacidad definida queda en nil.
func TestQueries_UtilizacionDeCapacidad(t *testing.T) {
	queries, engine, _ := buildQueries()
	adjust(t, engine, testWarehouseA, 250) // capacidad 1000

	u, err := queries.CapacityUtilization(context.Background(), testWarehouseA)
	require.NoError(t, err)
	assert.Equal(t, int64(250), u.TotalQuantity)
	require.NotNil(t, u.Utilization)
	assert.True(t, u.Utilization.Equal(decimal.RequireFromString("0.25")))

	adjust(t, engine, testWarehouseB, 10) // sin capacidad definida
	u, err = queries.CapacityUtilization(context.Background(), testWarehouseB)
	require.NoError(t, err)
	assert.Nil(t, u.Utilization, "sin capacidad definida no hay división")

	_, err = queries.CapacityUtilization(context.Background(), "wh-999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Caso: verificación del ledger — consistente tras operar por el motor, e
// inconsistente si alguien escribe por fuera.
func TestQueries_VerificacionDelLedger(t *testing.T) {
	queries, engine, store := buildQueries()
	ctx := context.Background()
	adjust(t, engine, testWarehouseA, 100)
	adjust(t, engine, testWarehouseA, -30)

	v, err := queries.VerifyLedger(ctx, testProductID, testWarehouseA)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.Equal(t, int64(70), v.LedgerQuantity)
	assert.Equal(t, int64(70), v.ReplayedQuantity)
	assert.Equal(t, 2, v.EntryCount)

	// Escritura por fuera del motor: el replay ya no cuadra
	store.records[recordKey(testProductID, testWarehouseA)].Quantity = 99
	v, err = queries.VerifyLedger(ctx, testProductID, testWarehouseA)
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.Equal(t, int64(99), v.LedgerQuantity)
	assert.Equal(t, int64(70), v.ReplayedQuantity)
}
