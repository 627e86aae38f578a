package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/gchamon/facturador/internal/domain/billing"
	"github.com/gchamon/facturador/pkg/logger"
)

// Coordinator itera las fechas de emisión del calendario mensual desde el
// ancla hasta hoy e invoca al Generator una vez por periodo. La decisión de
// omitir trabajo cuando los documentos ya existen (salvo regeneración forzada)
// vive exclusivamente aquí: el núcleo puro no sabe de archivos.
//
// Procesamiento secuencial y síncrono: cada periodo se completa antes de
// empezar el siguiente, y el primer error detiene la corrida entera.
type Coordinator struct {
	gen      *Generator
	store    DocumentStore
	anchor   time.Time
	issueDay int // día del mes configurado para emitir (1–31, recortado en meses cortos)
	log      *logger.Logger

	// now inyectable para tests.
	now func() time.Time
}

// NewCoordinator construye el coordinador de corridas.
func NewCoordinator(gen *Generator, store DocumentStore, anchor time.Time, issueDay int, log *logger.Logger) *Coordinator {
	return &Coordinator{
		gen:      gen,
		store:    store,
		anchor:   anchor,
		issueDay: issueDay,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj del coordinador; los tests fijan "hoy".
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Run procesa todos los periodos del calendario hasta hoy. Con force se
// regeneran también los documentos ya existentes.
func (c *Coordinator) Run(ctx context.Context, force bool) error {
	log := c.runLogger()

	dates := c.scheduleDates(c.now().UTC())
	log.Info().
		Str("ancla", c.anchor.Format("2006-01-02")).
		Int("periodos", len(dates)).
		Bool("forzar", force).
		Msg("iniciando corrida de facturación")

	for _, issue := range dates {
		if err := c.runOne(ctx, log, issue, force); err != nil {
			return err
		}
	}

	log.Info().Msg("corrida completada")
	return nil
}

// RunSingle procesa únicamente la fecha de emisión dada (flag --date).
func (c *Coordinator) RunSingle(ctx context.Context, issue time.Time, force bool) error {
	return c.runOne(ctx, c.runLogger(), issue, force)
}

func (c *Coordinator) runOne(ctx context.Context, log *logger.Logger, issue time.Time, force bool) error {
	period, err := billing.ComputePeriod(c.anchor, issue)
	if err != nil {
		return err
	}

	if !force && lo.EveryBy(c.gen.OutputPaths(issue), c.store.Exists) {
		log.Info().
			Int("periodo", period.Number).
			Str("emision", issue.Format("2006-01-02")).
			Msg("documentos ya existentes, periodo omitido")
		return nil
	}

	log.Info().
		Int("periodo", period.Number).
		Str("emision", issue.Format("2006-01-02")).
		Msg("generando facturas del periodo")

	if err := c.gen.Generate(ctx, period); err != nil {
		// El mensaje nombra periodo y fecha; el error envuelto nombra el par
		// de tasas cuando el fallo vino de la resolución.
		return fmt.Errorf("periodo %d (emisión %s): %w",
			period.Number, issue.Format("2006-01-02"), err)
	}
	return nil
}

// scheduleDates expande el calendario: una fecha por mes, desde el mes del
// ancla hasta el mes actual, en el día configurado. En meses más cortos que el
// día configurado (ej. día 31 en febrero) se recorta al último día del mes;
// dejar que time.AddDate normalice el desborde saltaría de mes y rompería la
// monotonía del número de secuencia.
func (c *Coordinator) scheduleDates(today time.Time) []time.Time {
	months := (today.Year()-c.anchor.Year())*12 + int(today.Month()) - int(c.anchor.Month()) + 1
	if months <= 0 {
		return nil
	}

	return lo.FilterMap(lo.Range(months), func(i int, _ int) (time.Time, bool) {
		month := time.Date(c.anchor.Year(), c.anchor.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		day := min(c.issueDay, billing.LastDayOfMonth(month))
		issue := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
		return issue, !issue.Before(c.anchor) && !issue.After(today)
	})
}

func (c *Coordinator) runLogger() *logger.Logger {
	return logger.FromZerolog(c.log.With().Str("run_id", uuid.NewString()).Logger())
}
