// Package invoicing orquesta la generación de facturas por periodo: resolución
// de tasas, cálculo del periodo, composición de montos y entrega al renderer.
// La iteración del calendario y la decisión de omitir/regenerar viven en el
// Coordinator; la aritmética pura vive en internal/domain/billing.
package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gchamon/facturador/internal/domain/billing"
	"github.com/gchamon/facturador/internal/domain/entity"
	"github.com/gchamon/facturador/pkg/logger"
)

// Params datos de negocio de una corrida, tomados de la configuración y
// tratados como de solo lectura durante toda la ejecución.
type Params struct {
	TokenAmountUSD decimal.Decimal
	FiatAmountUSD  decimal.Decimal
	TokenEnabled   bool
	FiatEnabled    bool
	TokenSymbol    string

	Contractor entity.Party
	Client     entity.Party

	BankDetails   string
	WalletAddress string
}

// Generator caso de uso de un periodo: resolver tasas, componer montos y
// escribir los documentos habilitados.
type Generator struct {
	fiatRates  RateResolver // USD/EUR
	tokenRates RateResolver // EUR/token
	renderer   DocumentRenderer
	store      DocumentStore
	params     Params
	log        *logger.Logger
}

// NewGenerator construye el caso de uso. tokenRates puede ser nil si la
// factura token está deshabilitada.
func NewGenerator(
	fiatRates, tokenRates RateResolver,
	renderer DocumentRenderer,
	store DocumentStore,
	params Params,
	log *logger.Logger,
) *Generator {
	return &Generator{
		fiatRates:  fiatRates,
		tokenRates: tokenRates,
		renderer:   renderer,
		store:      store,
		params:     params,
		log:        log,
	}
}

// Generate produce los documentos del periodo: una llamada de red por tasa
// necesaria, composición pura y escritura. El primer error aborta el periodo
// completo; no hay reintentos ni resultados parciales.
func (g *Generator) Generate(ctx context.Context, period entity.BillingPeriod) error {
	issue := period.IssueDate

	usdEur, err := g.fiatRates.ResolveRate(ctx, issue)
	if err != nil {
		return fmt.Errorf("resolver tasa %s: %w", g.fiatRates.Pair(), err)
	}
	g.log.Info().
		Stringer("par", usdEur.Pair).
		Str("tasa", usdEur.Rate.String()).
		Str("observada", usdEur.ObservedAt.Format("2006-01-02")).
		Msg("tasa resuelta")

	if g.params.TokenEnabled {
		eurToken, err := g.tokenRates.ResolveRate(ctx, issue)
		if err != nil {
			return fmt.Errorf("resolver tasa %s: %w", g.tokenRates.Pair(), err)
		}
		g.log.Info().
			Stringer("par", eurToken.Pair).
			Str("tasa", eurToken.Rate.String()).
			Str("observada", eurToken.ObservedAt.Format("2006-01-02")).
			Msg("tasa resuelta")

		amounts, err := billing.ComposeTokenInvoice(g.params.TokenAmountUSD, usdEur, eurToken)
		if err != nil {
			return fmt.Errorf("componer factura token: %w", err)
		}
		g.log.Info().
			Str("usd", amounts.USD.String()).
			Str("eur", amounts.EUR.String()).
			Str(g.params.TokenSymbol, amounts.Token.String()).
			Msg("montos de la factura token")

		doc := g.buildDocument(entity.InvoiceKindToken, period, amounts, usdEur, &eurToken)
		if err := g.write(doc); err != nil {
			return err
		}
	}

	if g.params.FiatEnabled {
		amounts, err := billing.ComposeFiatInvoice(g.params.FiatAmountUSD, usdEur)
		if err != nil {
			return fmt.Errorf("componer factura fiat: %w", err)
		}
		g.log.Info().
			Str("usd", amounts.USD.String()).
			Str("eur", amounts.EUR.String()).
			Msg("montos de la factura fiat")

		doc := g.buildDocument(entity.InvoiceKindFiat, period, amounts, usdEur, nil)
		if err := g.write(doc); err != nil {
			return err
		}
	}

	return nil
}

// OutputPaths rutas deterministas de los documentos habilitados para una fecha
// de emisión. El coordinador las usa para la decisión de omitir-si-existen.
func (g *Generator) OutputPaths(issue time.Time) []string {
	ext := g.renderer.Ext()
	var paths []string
	if g.params.TokenEnabled {
		paths = append(paths, g.store.Path(entity.InvoiceKindToken, issue, ext))
	}
	if g.params.FiatEnabled {
		paths = append(paths, g.store.Path(entity.InvoiceKindFiat, issue, ext))
	}
	return paths
}

func (g *Generator) buildDocument(
	kind entity.InvoiceKind,
	period entity.BillingPeriod,
	amounts entity.ConversionResult,
	usdEur entity.RateObservation,
	eurToken *entity.RateObservation,
) *entity.InvoiceDocument {
	return &entity.InvoiceDocument{
		Kind:          kind,
		Period:        period,
		Amounts:       amounts,
		UsdEur:        usdEur,
		EurToken:      eurToken,
		TokenSymbol:   g.params.TokenSymbol,
		Contractor:    g.params.Contractor,
		Client:        g.params.Client,
		BankDetails:   g.params.BankDetails,
		WalletAddress: g.params.WalletAddress,
	}
}

func (g *Generator) write(doc *entity.InvoiceDocument) error {
	contents, err := g.renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("renderizar factura %s: %w", doc.Kind, err)
	}

	path := g.store.Path(doc.Kind, doc.Period.IssueDate, g.renderer.Ext())
	if err := g.store.Write(path, contents); err != nil {
		return fmt.Errorf("escribir factura %s: %w", doc.Kind, err)
	}
	g.log.Info().Str("archivo", path).Msg("factura escrita")
	return nil
}
