// Package render implementa los renderers de documentos de factura: HTML a
// partir de plantillas en disco (el formato original) y PDF con Maroto. El
// redondeo ocurre únicamente aquí: el núcleo entrega precisión decimal completa.
package render

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Posiciones decimales de presentación por clase de monto.
const (
	fiatPlaces  = 2 // USD y EUR
	tokenPlaces = 6 // cantidades de token, mucho menores a la unidad
)

var printer = message.NewPrinter(language.English)

// formatAmount formatea un monto con separador de miles y decimales fijos.
func formatAmount(d decimal.Decimal, places int32) string {
	f, _ := d.Round(places).Float64()
	return printer.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(int(places)),
		number.MaxFractionDigits(int(places)),
	))
}

// formatRate las tasas se muestran tal cual llegan de la fuente, sin redondeo.
func formatRate(d decimal.Decimal) string { return d.String() }

// formatDate formato largo de fechas del documento (emisión, periodo).
func formatDate(t time.Time) string { return t.Format("02-Jan-2006") }

// formatRateDate formato corto de las notas al pie de cada tasa.
func formatRateDate(t time.Time) string { return t.Format("02-Jan-06") }
