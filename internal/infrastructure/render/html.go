package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// Verificar en tiempo de compilación que HTMLRenderer implementa el puerto.
var _ invoicing.DocumentRenderer = (*HTMLRenderer)(nil)

// HTMLConfig ubicación de las plantillas y la hoja de estilos.
type HTMLConfig struct {
	TemplatesDir string // contiene <kind>.html.tmpl por tipo de factura habilitado
	Stylesheet   string // opcional; se inyecta en la plantilla como .StyleCSS
}

// HTMLRenderer produce el documento HTML de una factura a partir de plantillas
// en disco. Plantillas y estilos se leen una sola vez al construirlo y quedan
// en el propio renderer: ningún estado a nivel de paquete.
type HTMLRenderer struct {
	tmpl     *template.Template
	styleCSS template.CSS
}

// NewHTMLRenderer parsea todas las plantillas *.html.tmpl del directorio y lee
// la hoja de estilos si está configurada.
func NewHTMLRenderer(cfg HTMLConfig) (*HTMLRenderer, error) {
	tmpl, err := template.ParseGlob(filepath.Join(cfg.TemplatesDir, "*.html.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("html: parsear plantillas en %q: %w", cfg.TemplatesDir, err)
	}

	var css []byte
	if cfg.Stylesheet != "" {
		css, err = os.ReadFile(cfg.Stylesheet)
		if err != nil {
			return nil, fmt.Errorf("html: leer hoja de estilos: %w", err)
		}
	}

	return &HTMLRenderer{tmpl: tmpl, styleCSS: template.CSS(css)}, nil
}

// Ext extensión de los documentos producidos.
func (r *HTMLRenderer) Ext() string { return "html" }

// htmlData campos expuestos a la plantilla. Los montos llegan ya formateados;
// la plantilla solo posiciona texto.
type htmlData struct {
	StyleCSS      template.CSS
	InvoiceNumber int
	Date          string
	FromDate      string
	ToDate        string

	AmountUSD   string
	AmountEUR   string
	AmountToken string
	TokenSymbol string

	UsdEurRate    string
	EurTokenRate  string
	FiatRateDate  string
	TokenRateDate string

	Contractor    entity.Party
	Client        entity.Party
	BankDetails   string
	WalletAddress string
}

// Render ejecuta la plantilla del tipo de factura del documento.
func (r *HTMLRenderer) Render(doc *entity.InvoiceDocument) ([]byte, error) {
	name := string(doc.Kind) + ".html.tmpl"
	t := r.tmpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("html: plantilla %q no encontrada", name)
	}

	data := htmlData{
		StyleCSS:      r.styleCSS,
		InvoiceNumber: doc.Period.Number,
		Date:          formatDate(doc.Period.IssueDate),
		FromDate:      formatDate(doc.Period.Start),
		ToDate:        formatDate(doc.Period.End),
		AmountUSD:     formatAmount(doc.Amounts.USD, fiatPlaces),
		AmountEUR:     formatAmount(doc.Amounts.EUR, fiatPlaces),
		TokenSymbol:   doc.TokenSymbol,
		UsdEurRate:    formatRate(doc.UsdEur.Rate),
		FiatRateDate:  formatRateDate(doc.UsdEur.ObservedAt),
		Contractor:    doc.Contractor,
		Client:        doc.Client,
		BankDetails:   doc.BankDetails,
		WalletAddress: doc.WalletAddress,
	}
	if doc.Amounts.HasToken {
		data.AmountToken = formatAmount(doc.Amounts.Token, tokenPlaces)
	}
	if doc.EurToken != nil {
		data.EurTokenRate = formatRate(doc.EurToken.Rate)
		data.TokenRateDate = formatRateDate(doc.EurToken.ObservedAt)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("html: ejecutar plantilla %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
