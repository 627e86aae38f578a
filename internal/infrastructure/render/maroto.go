package render

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/samber/lo"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// Verificar en tiempo de compilación que PDFRenderer implementa el puerto.
var _ invoicing.DocumentRenderer = (*PDFRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PDFRenderer produce el documento PDF de una factura con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Contratista + dirección  │  FACTURA Nº + fecha      │
//	│  ───────────────────────────────────────────────────────── │
//	│  CLIENTE: nombre + dirección                                 │
//	│  PERIODO: del primer al último día del mes facturado         │
//	│  ───────────────────────────────────────────────────────── │
//	│  TABLA: Moneda | Monto  (USD, EUR y token si aplica)         │
//	│  NOTAS: tasa usada y fecha de observación por salto          │
//	│  ───────────────────────────────────────────────────────── │
//	│  PAGO: datos bancarios o dirección de billetera              │
//	└─────────────────────────────────────────────────────────────┘
type PDFRenderer struct{}

// NewPDFRenderer construye el renderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Ext extensión de los documentos producidos.
func (r *PDFRenderer) Ext() string { return "pdf" }

// Render genera el PDF y devuelve sus bytes.
func (r *PDFRenderer) Render(doc *entity.InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Factura %d — %s", doc.Period.Number, doc.Kind), true).
		WithAuthor(doc.Contractor.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(doc))
	m.AddRows(periodRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(amountsHeaderRow())
	for _, rw := range amountRows(doc) {
		m.AddRows(rw)
	}
	for _, rw := range rateNoteRows(doc) {
		m.AddRows(rw)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(paymentRow(doc))

	generated, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return generated.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: contratista (izq) y número + fecha de factura (der).
func headerRow(doc *entity.InvoiceDocument) core.Row {
	title := "FACTURA"
	if doc.Kind == entity.InvoiceKindToken {
		title = "FACTURA — PAGO EN " + doc.TokenSymbol
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.Contractor.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Contractor.Address, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Nº %d", doc.Period.Number), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+formatDate(doc.Period.IssueDate), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del cliente facturado.
func clientRow(doc *entity.InvoiceDocument) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("FACTURAR A", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(doc.Client.Address, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// periodRow: periodo mensual cubierto por la factura.
func periodRow(doc *entity.InvoiceDocument) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Periodo facturado: %s a %s",
				formatDate(doc.Period.Start), formatDate(doc.Period.End)),
				props.Text{Size: 9, Top: 2}),
		),
	)
}

// amountsHeaderRow: cabecera de la tabla de montos.
func amountsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Moneda", 6, align.Left),
		h("Monto", 6, align.Right),
	)
}

type amountLine struct {
	currency string
	value    string
}

// amountRows: una fila por moneda de la conversión, en orden de los saltos.
func amountRows(doc *entity.InvoiceDocument) []core.Row {
	lines := []amountLine{
		{"USD (monto base)", formatAmount(doc.Amounts.USD, fiatPlaces)},
		{"EUR", formatAmount(doc.Amounts.EUR, fiatPlaces)},
	}
	if doc.Amounts.HasToken {
		lines = append(lines, amountLine{doc.TokenSymbol, formatAmount(doc.Amounts.Token, tokenPlaces)})
	}

	return lo.Map(lines, func(l amountLine, _ int) core.Row {
		return row.New(7).Add(
			col.New(6).Add(text.New(l.currency, props.Text{Size: 9, Top: 1, Left: 1})),
			col.New(6).Add(text.New(l.value, props.Text{
				Size: 9, Align: align.Right, Top: 1, Right: 1,
			})),
		)
	})
}

// rateNoteRows: tasa aplicada y fecha de observación de cada salto.
func rateNoteRows(doc *entity.InvoiceDocument) []core.Row {
	notes := []string{
		fmt.Sprintf("Tasa %s: %s (observada el %s)",
			doc.UsdEur.Pair, formatRate(doc.UsdEur.Rate), formatRateDate(doc.UsdEur.ObservedAt)),
	}
	if doc.EurToken != nil {
		notes = append(notes, fmt.Sprintf("Tasa %s: %s (observada el %s)",
			doc.EurToken.Pair, formatRate(doc.EurToken.Rate), formatRateDate(doc.EurToken.ObservedAt)))
	}

	return lo.Map(notes, func(n string, _ int) core.Row {
		return row.New(5).Add(col.New(12).Add(
			text.New(n, props.Text{Size: 7, Color: colorGray, Top: 1, Left: 1}),
		))
	})
}

// paymentRow: datos bancarios (fiat) o billetera (token).
func paymentRow(doc *entity.InvoiceDocument) core.Row {
	label, value := "DATOS BANCARIOS", doc.BankDetails
	if doc.Kind == entity.InvoiceKindToken {
		label, value = "BILLETERA "+doc.TokenSymbol, doc.WalletAddress
	}

	return row.New(16).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(value, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}
