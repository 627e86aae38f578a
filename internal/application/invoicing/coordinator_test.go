package invoicing_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/entity"
	"github.com/gchamon/facturador/pkg/logger"
)

// ── Fakes de los puertos ──────────────────────────────────────────────────────

type fakeResolver struct {
	pair       entity.RatePair
	rate       decimal.Decimal
	err        error
	failOnCall int // 0 = fallar siempre que err != nil
	calls      int
}

func (f *fakeResolver) Pair() entity.RatePair { return f.pair }

func (f *fakeResolver) ResolveRate(_ context.Context, target time.Time) (entity.RateObservation, error) {
	f.calls++
	if f.err != nil && (f.failOnCall == 0 || f.calls == f.failOnCall) {
		return entity.RateObservation{}, f.err
	}
	return entity.RateObservation{Pair: f.pair, Rate: f.rate, ObservedAt: target}, nil
}

type fakeRenderer struct {
	docs []*entity.InvoiceDocument
}

func (f *fakeRenderer) Render(doc *entity.InvoiceDocument) ([]byte, error) {
	f.docs = append(f.docs, doc)
	return []byte("documento"), nil
}

func (f *fakeRenderer) Ext() string { return "html" }

type fakeStore struct {
	files map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{files: map[string][]byte{}} }

func (f *fakeStore) Path(kind entity.InvoiceKind, issue time.Time, ext string) string {
	return filepath.Join("salida", string(kind), fmt.Sprintf("fac_%s.%s", issue.Format("Jan_06"), ext))
}

func (f *fakeStore) Exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeStore) Write(path string, contents []byte) error {
	f.files[path] = contents
	return nil
}

// ── Arnés ─────────────────────────────────────────────────────────────────────

type harness struct {
	fiat     *fakeResolver
	token    *fakeResolver
	renderer *fakeRenderer
	store    *fakeStore
	coord    *invoicing.Coordinator
}

// anchor: 31 de enero de 2024 con emisión el día 31; "hoy" fijo al 15 de
// abril de 2024. El calendario esperado recorta febrero al 29 (bisiesto) y
// excluye abril, cuyo día de emisión aún no llegó.
var (
	testAnchor = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	testToday  = time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
)

func newHarness(t *testing.T, params invoicing.Params) *harness {
	t.Helper()
	h := &harness{
		fiat:     &fakeResolver{pair: entity.PairUSDEUR, rate: decimal.RequireFromString("0.92")},
		token:    &fakeResolver{pair: entity.PairEURToken("NTX"), rate: decimal.RequireFromString("0.05")},
		renderer: &fakeRenderer{},
		store:    newFakeStore(),
	}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	gen := invoicing.NewGenerator(h.fiat, h.token, h.renderer, h.store, params, log)
	h.coord = invoicing.NewCoordinator(gen, h.store, testAnchor, 31, log).
		WithClock(func() time.Time { return testToday })
	return h
}

func bothKinds() invoicing.Params {
	return invoicing.Params{
		TokenAmountUSD: decimal.NewFromInt(1500),
		FiatAmountUSD:  decimal.NewFromInt(3500),
		TokenEnabled:   true,
		FiatEnabled:    true,
		TokenSymbol:    "NTX",
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCoordinator_ExpansionDelCalendario(t *testing.T) {
	h := newHarness(t, bothKinds())
	require.NoError(t, h.coord.Run(context.Background(), false))

	// Tres periodos: 31-ene, 29-feb (recortado), 31-mar. Dos documentos cada uno.
	require.Len(t, h.renderer.docs, 6)
	assert.Len(t, h.store.files, 6)

	fechas := []time.Time{}
	numeros := []int{}
	for _, doc := range h.renderer.docs {
		if doc.Kind == entity.InvoiceKindToken {
			fechas = append(fechas, doc.Period.IssueDate)
			numeros = append(numeros, doc.Period.Number)
		}
	}
	assert.Equal(t, []time.Time{
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}, fechas, "día 31 debe recortarse al último día en meses cortos")
	assert.Equal(t, []int{1, 2, 3}, numeros, "la secuencia debe crecer en 1 por mes")
}

func TestCoordinator_MontosCompuestos(t *testing.T) {
	h := newHarness(t, bothKinds())
	require.NoError(t, h.coord.Run(context.Background(), false))

	var token, fiat *entity.InvoiceDocument
	for _, doc := range h.renderer.docs {
		switch doc.Kind {
		case entity.InvoiceKindToken:
			token = doc
		case entity.InvoiceKindFiat:
			fiat = doc
		}
	}
	require.NotNil(t, token)
	require.NotNil(t, fiat)

	assert.InEpsilon(t, 1630.434782608696, token.Amounts.EUR.InexactFloat64(), 1e-9)
	assert.InEpsilon(t, 32608.69565217391, token.Amounts.Token.InexactFloat64(), 1e-9)
	assert.InEpsilon(t, 3804.347826086957, fiat.Amounts.EUR.InexactFloat64(), 1e-9)
	assert.False(t, fiat.Amounts.HasToken)
}

func TestCoordinator_OmiteSiExisten(t *testing.T) {
	h := newHarness(t, bothKinds())
	require.NoError(t, h.coord.Run(context.Background(), false))

	llamadasPrevias := h.fiat.calls
	require.NoError(t, h.coord.Run(context.Background(), false))
	assert.Equal(t, llamadasPrevias, h.fiat.calls,
		"con todos los documentos presentes no debe haber ninguna llamada de red")
}

func TestCoordinator_ForzarRegenera(t *testing.T) {
	h := newHarness(t, bothKinds())
	require.NoError(t, h.coord.Run(context.Background(), false))

	llamadasPrevias := h.fiat.calls
	require.NoError(t, h.coord.Run(context.Background(), true))
	assert.Greater(t, h.fiat.calls, llamadasPrevias,
		"con force los periodos existentes deben regenerarse")
}

func TestCoordinator_AbortaEnPrimerError(t *testing.T) {
	h := newHarness(t, bothKinds())
	h.fiat.err = domain.ErrSourceUnreachable
	h.fiat.failOnCall = 2 // el segundo periodo falla

	err := h.coord.Run(context.Background(), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceUnreachable))
	assert.Contains(t, err.Error(), "periodo 2", "el error debe nombrar el periodo que falló")
	assert.Contains(t, err.Error(), "USD/EUR", "el error debe nombrar el par que falló")

	// Solo el primer periodo llegó a escribirse; el tercero nunca se intentó.
	assert.Len(t, h.store.files, 2)
	assert.Equal(t, 2, h.fiat.calls, "la iteración se detiene en el primer error")
}

func TestCoordinator_RunSingle(t *testing.T) {
	h := newHarness(t, bothKinds())
	issue := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, h.coord.RunSingle(context.Background(), issue, false))
	require.Len(t, h.renderer.docs, 2)
	assert.Equal(t, 3, h.renderer.docs[0].Period.Number)
}

func TestCoordinator_RunSingle_AnteriorAlAncla(t *testing.T) {
	h := newHarness(t, bothKinds())
	issue := testAnchor.AddDate(0, 0, -5)

	err := h.coord.RunSingle(context.Background(), issue, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))
}

func TestGenerator_SoloFiat(t *testing.T) {
	params := bothKinds()
	params.TokenEnabled = false
	h := newHarness(t, params)

	require.NoError(t, h.coord.Run(context.Background(), false))

	assert.Zero(t, h.token.calls, "sin factura token no debe resolverse la tasa EUR/token")
	for _, doc := range h.renderer.docs {
		assert.Equal(t, entity.InvoiceKindFiat, doc.Kind)
	}
}

func TestCoordinator_AnclaEnElFuturo(t *testing.T) {
	h := newHarness(t, bothKinds())
	futuro := testToday.AddDate(1, 0, 0)
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	gen := invoicing.NewGenerator(h.fiat, h.token, h.renderer, h.store, bothKinds(), log)
	coord := invoicing.NewCoordinator(gen, h.store, futuro, 31, log).
		WithClock(func() time.Time { return testToday })

	require.NoError(t, coord.Run(context.Background(), false))
	assert.Empty(t, h.renderer.docs, "un ancla futura produce un calendario vacío, no un error")
}
