package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/billing"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vector de referencia de la conversión en dos saltos. Este test fija la
// dirección de la división como contrato: si alguien la cambia por una
// multiplicación "económicamente correcta", el test falla de inmediato.
//
//	usd = 1500, USD/EUR = 0.92, EUR/NTX = 0.05
//	EUR   = 1500 / 0.92 = 1630.4347826…
//	Token = EUR  / 0.05 = 32608.6956521…
// ──────────────────────────────────────────────────────────────────────────────

func obsUSDEUR(rate string) entity.RateObservation {
	return entity.RateObservation{
		Pair:       entity.PairUSDEUR,
		Rate:       decimal.RequireFromString(rate),
		ObservedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func obsEURToken(rate string) entity.RateObservation {
	return entity.RateObservation{
		Pair:       entity.PairEURToken("NTX"),
		Rate:       decimal.RequireFromString(rate),
		ObservedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComposeTokenInvoice_VectorDeReferencia(t *testing.T) {
	res, err := billing.ComposeTokenInvoice(decimal.NewFromInt(1500), obsUSDEUR("0.92"), obsEURToken("0.05"))
	require.NoError(t, err)

	assert.True(t, res.HasToken)
	assert.InEpsilon(t, 1630.434782608696, res.EUR.InexactFloat64(), 1e-9,
		"EUR debe ser 1500/0.92")
	assert.InEpsilon(t, 32608.69565217391, res.Token.InexactFloat64(), 1e-9,
		"token debe ser (1500/0.92)/0.05")
	assert.True(t, res.USD.Equal(decimal.NewFromInt(1500)), "el monto origen se conserva intacto")
}

func TestComposeFiatInvoice_VectorDeReferencia(t *testing.T) {
	res, err := billing.ComposeFiatInvoice(decimal.NewFromInt(3500), obsUSDEUR("0.92"))
	require.NoError(t, err)

	assert.False(t, res.HasToken, "la ruta fiat no produce monto en token")
	assert.True(t, res.Token.IsZero())
	assert.InEpsilon(t, 3804.347826086957, res.EUR.InexactFloat64(), 1e-9,
		"EUR debe ser exactamente 3500/0.92")
}

// TestCompose_Idempotente verifica que componer dos veces con entradas
// idénticas produce resultados idénticos bit a bit (función pura, sin estado).
func TestCompose_Idempotente(t *testing.T) {
	usd := decimal.NewFromInt(1500)
	usdEur := obsUSDEUR("0.91837")
	eurTok := obsEURToken("0.048213")

	r1, err1 := billing.ComposeTokenInvoice(usd, usdEur, eurTok)
	r2, err2 := billing.ComposeTokenInvoice(usd, usdEur, eurTok)
	require.NoError(t, err1)
	require.NoError(t, err2)

	assert.Equal(t, r1.EUR.String(), r2.EUR.String())
	assert.Equal(t, r1.Token.String(), r2.Token.String())
}

// ── Tasas degeneradas ─────────────────────────────────────────────────────────

func TestComposeTokenInvoice_TasaFiatCero(t *testing.T) {
	_, err := billing.ComposeTokenInvoice(decimal.NewFromInt(1500), obsUSDEUR("0"), obsEURToken("0.05"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDivisionByZero))
}

func TestComposeTokenInvoice_TasaTokenCero(t *testing.T) {
	_, err := billing.ComposeTokenInvoice(decimal.NewFromInt(1500), obsUSDEUR("0.92"), obsEURToken("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDivisionByZero))
}

func TestComposeFiatInvoice_TasaNegativa(t *testing.T) {
	_, err := billing.ComposeFiatInvoice(decimal.NewFromInt(3500), obsUSDEUR("-0.92"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDivisionByZero),
		"una tasa negativa también debe rechazarse como división inválida")
}
