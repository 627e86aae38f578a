package render_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchamon/facturador/internal/domain/entity"
	"github.com/gchamon/facturador/internal/infrastructure/render"
)

const tokenTemplate = `<html><head><style>{{.StyleCSS}}</style></head>
<body>
<h1>Factura {{.InvoiceNumber}}</h1>
<p>{{.FromDate}} a {{.ToDate}}</p>
<p>USD {{.AmountUSD}} | EUR {{.AmountEUR}} | {{.TokenSymbol}} {{.AmountToken}}</p>
<p>USD/EUR {{.UsdEurRate}} ({{.FiatRateDate}}) | EUR/{{.TokenSymbol}} {{.EurTokenRate}} ({{.TokenRateDate}})</p>
<p>{{.WalletAddress}}</p>
</body></html>`

func writeTemplates(t *testing.T) render.HTMLConfig {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token.html.tmpl"), []byte(tokenTemplate), 0o644))
	css := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(css, []byte("body { font-family: sans-serif; }"), 0o644))
	return render.HTMLConfig{TemplatesDir: dir, Stylesheet: css}
}

func sampleTokenDocument() *entity.InvoiceDocument {
	usdEur := entity.RateObservation{
		Pair:       entity.PairUSDEUR,
		Rate:       decimal.RequireFromString("0.92"),
		ObservedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	eurToken := entity.RateObservation{
		Pair:       entity.PairEURToken("NTX"),
		Rate:       decimal.RequireFromString("0.05"),
		ObservedAt: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}
	return &entity.InvoiceDocument{
		Kind: entity.InvoiceKindToken,
		Period: entity.BillingPeriod{
			Number:    7,
			Start:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
			IssueDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		Amounts: entity.ConversionResult{
			USD:      decimal.NewFromInt(1500),
			EUR:      decimal.RequireFromString("1630.4347826086957"),
			Token:    decimal.RequireFromString("32608.695652173913"),
			HasToken: true,
		},
		UsdEur:        usdEur,
		EurToken:      &eurToken,
		TokenSymbol:   "NTX",
		Contractor:    entity.Party{Name: "Gabriel Chamon", Address: "Calle Falsa 123"},
		Client:        entity.Party{Name: "Acme Corp", Address: "1 Main St"},
		WalletAddress: "0xDEADBEEF",
	}
}

func TestHTMLRenderer_DocumentoToken(t *testing.T) {
	r, err := render.NewHTMLRenderer(writeTemplates(t))
	require.NoError(t, err)

	out, err := r.Render(sampleTokenDocument())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Factura 7")
	assert.Contains(t, html, "01-Mar-2024 a 31-Mar-2024")
	assert.Contains(t, html, "USD 1,500.00")
	assert.Contains(t, html, "EUR 1,630.43", "los montos fiat se redondean a 2 decimales solo al presentar")
	assert.Contains(t, html, "NTX 32,608.695652")
	assert.Contains(t, html, "USD/EUR 0.92 (01-Mar-24)")
	assert.Contains(t, html, "EUR/NTX 0.05 (29-Feb-24)", "la nota al pie muestra la fecha real de observación")
	assert.Contains(t, html, "font-family", "la hoja de estilos debe inyectarse en el documento")
	assert.Contains(t, html, "0xDEADBEEF")
}

func TestHTMLRenderer_PlantillaFaltante(t *testing.T) {
	r, err := render.NewHTMLRenderer(writeTemplates(t))
	require.NoError(t, err)

	doc := sampleTokenDocument()
	doc.Kind = entity.InvoiceKindFiat // no hay fiat.html.tmpl en el directorio
	_, err = r.Render(doc)
	assert.Error(t, err)
}

func TestHTMLRenderer_DirectorioInexistente(t *testing.T) {
	_, err := render.NewHTMLRenderer(render.HTMLConfig{TemplatesDir: "/no/existe"})
	assert.Error(t, err)
}

func TestHTMLRenderer_Ext(t *testing.T) {
	r, err := render.NewHTMLRenderer(writeTemplates(t))
	require.NoError(t, err)
	assert.Equal(t, "html", r.Ext())
}
