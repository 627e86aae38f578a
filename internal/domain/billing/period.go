// Package billing contiene el núcleo puro de facturación: cálculo del periodo
// mensual recurrente y composición de montos con conversión de moneda en dos
// saltos (USD→EUR→token). Ninguna función de este paquete toca red, reloj ni
// disco: todo es determinista respecto de sus argumentos.
package billing

import (
	"fmt"
	"time"

	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// ComputePeriod calcula el periodo de facturación para una fecha de emisión
// dentro del calendario mensual anclado en anchor.
//
//	Number = (añoEmisión-añoAncla)*12 + (mesEmisión-mesAncla) + 1
//	Start  = primer día del mes de emisión
//	End    = último día del mes de emisión (consciente de años bisiestos)
//
// Devuelve ErrInvalidSchedule si la emisión precede al ancla (comparación a
// granularidad de día): es un error de configuración, distinguible de los
// fallos de red de la resolución de tasas.
func ComputePeriod(anchor, issue time.Time) (entity.BillingPeriod, error) {
	anchorDay := truncateToDay(anchor)
	issueDay := truncateToDay(issue)

	if issueDay.Before(anchorDay) {
		return entity.BillingPeriod{}, fmt.Errorf("%w: emisión %s, ancla %s",
			domain.ErrInvalidSchedule,
			issueDay.Format("2006-01-02"), anchorDay.Format("2006-01-02"))
	}

	number := (issueDay.Year()-anchorDay.Year())*12 +
		int(issueDay.Month()) - int(anchorDay.Month()) + 1

	start := time.Date(issueDay.Year(), issueDay.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Día 0 del mes siguiente = último día del mes actual.
	end := time.Date(issueDay.Year(), issueDay.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	return entity.BillingPeriod{
		Number:    number,
		Start:     start,
		End:       end,
		IssueDate: issueDay,
	}, nil
}

// LastDayOfMonth devuelve el último día calendario del mes de t (28–31).
func LastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
