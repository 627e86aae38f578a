package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatePair par ordenado de monedas para el que se resuelve una tasa de conversión.
// La tasa se interpreta siempre como "unidades de Quote por unidad de Base",
// en la dirección de cotización publicada por la fuente.
type RatePair struct {
	Base  string
	Quote string
}

func (p RatePair) String() string {
	return p.Base + "/" + p.Quote
}

// PairUSDEUR par fiat de referencia (cotización ECB D.USD.EUR.SP00.A).
var PairUSDEUR = RatePair{Base: "USD", Quote: "EUR"}

// PairEURToken par EUR/token para el símbolo configurado.
func PairEURToken(symbol string) RatePair {
	return RatePair{Base: "EUR", Quote: symbol}
}

// RateObservation una cotización de mercado observada. Inmutable una vez obtenida.
// ObservedAt puede ser anterior a la fecha solicitada: en fines de semana y festivos
// la fuente no publica y se usa la última observación de la ventana de búsqueda.
type RateObservation struct {
	Pair       RatePair
	Rate       decimal.Decimal // invariante: Rate > 0
	ObservedAt time.Time
}
