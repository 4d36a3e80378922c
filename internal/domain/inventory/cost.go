package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa la lógica de costo promedio ponderado
// (servicio de dominio). Las cantidades del ledger son enteras; el costo es decimal.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(onHand int64, currentCost decimal.Decimal, qtyIn int64, costIn decimal.Decimal) decimal.Decimal {
	total := onHand + qtyIn
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(onHand).Mul(currentCost).Add(decimal.NewFromInt(qtyIn).Mul(costIn))
	return num.Div(decimal.NewFromInt(total))
}
