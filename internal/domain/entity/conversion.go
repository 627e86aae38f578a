package entity

import "github.com/shopspring/decimal"

// ConversionResult resultado de encadenar una o dos observaciones de tasa sobre
// un monto base en USD. No se aplica ningún redondeo: la precisión decimal
// completa se conserva hasta la capa de presentación.
type ConversionResult struct {
	USD decimal.Decimal // monto origen, denominado en USD
	EUR decimal.Decimal // USD / tasa USD-EUR
	// Token presente solo en la ruta token: EUR / tasa EUR-token.
	Token    decimal.Decimal
	HasToken bool
}
