package invoicing

import (
	"context"
	"time"

	"github.com/gchamon/facturador/internal/domain/entity"
)

// ── Puertos de salida ─────────────────────────────────────────────────────────

// RateResolver resuelve la cotización más reciente de un par en la fecha
// objetivo o antes. La implementación consulta una fuente externa con una
// ventana corta hacia atrás (fines de semana y festivos no publican) y toma la
// última observación de la serie devuelta. Una llamada de red por invocación,
// sin caché y sin reintentos: los fallos se propagan como fatales.
type RateResolver interface {
	// Pair par de monedas que resuelve esta fuente.
	Pair() entity.RatePair
	// ResolveRate devuelve ErrNoRateAvailable si la ventana no contiene
	// observaciones y ErrSourceUnreachable ante fallo de red o payload inválido.
	ResolveRate(ctx context.Context, target time.Time) (entity.RateObservation, error)
}

// DocumentRenderer convierte un InvoiceDocument en los bytes del documento
// legible. Para tests se inyecta un fake.
type DocumentRenderer interface {
	Render(doc *entity.InvoiceDocument) ([]byte, error)
	// Ext extensión de archivo de los documentos producidos ("html", "pdf").
	Ext() string
}

// DocumentStore decide nombres de archivo deterministas y escribe los
// documentos. La verificación de existencia vive aquí y en el coordinador,
// nunca dentro del núcleo puro.
type DocumentStore interface {
	// Path devuelve la ruta determinista para un (tipo, fecha de emisión):
	// el mismo periodo produce siempre el mismo nombre de archivo.
	Path(kind entity.InvoiceKind, issue time.Time, ext string) string
	Exists(path string) bool
	Write(path string, contents []byte) error
}
