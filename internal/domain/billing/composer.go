package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// La dirección de la conversión es un contrato fijo: las tasas se usan tal
// cual las publica la fuente ("unidades de Quote por unidad de Base") y el
// monto se DIVIDE por la tasa en cada salto. No multiplicar: cambiar la
// dirección rompe la equivalencia con las facturas ya emitidas.

// ComposeTokenInvoice convierte un monto USD en EUR y luego en token:
//
//	EUR   = usd / usdEur.Rate
//	Token = EUR / eurToken.Rate
//
// Puro e idempotente: entradas idénticas producen resultados idénticos bit a bit.
func ComposeTokenInvoice(usd decimal.Decimal, usdEur, eurToken entity.RateObservation) (entity.ConversionResult, error) {
	eur, err := divide(usd, usdEur)
	if err != nil {
		return entity.ConversionResult{}, err
	}
	token, err := divide(eur, eurToken)
	if err != nil {
		return entity.ConversionResult{}, err
	}
	return entity.ConversionResult{
		USD:      usd,
		EUR:      eur,
		Token:    token,
		HasToken: true,
	}, nil
}

// ComposeFiatInvoice convierte un monto USD en EUR; no hay segundo salto.
func ComposeFiatInvoice(usd decimal.Decimal, usdEur entity.RateObservation) (entity.ConversionResult, error) {
	eur, err := divide(usd, usdEur)
	if err != nil {
		return entity.ConversionResult{}, err
	}
	return entity.ConversionResult{USD: usd, EUR: eur}, nil
}

// divide aplica una observación de tasa a un monto. La invariante de
// RateObservation dice Rate > 0, pero se valida igualmente: una tasa cero o
// negativa de una fuente corrupta no debe producir un pánico de división.
func divide(amount decimal.Decimal, obs entity.RateObservation) (decimal.Decimal, error) {
	if !obs.Rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: tasa %s = %s",
			domain.ErrDivisionByZero, obs.Pair, obs.Rate)
	}
	return amount.Div(obs.Rate), nil
}
