package domain

import "errors"

// Errores de dominio (sin dependencias externas). Todos son irrecuperables en su
// punto de origen: no hay reintentos ni resultados parciales en el núcleo.
var (
	// ErrNoRateAvailable la fuente respondió sin ninguna observación dentro de la ventana consultada.
	ErrNoRateAvailable = errors.New("no hay cotización disponible en la ventana consultada")
	// ErrSourceUnreachable fallo de red o respuesta malformada de la fuente de tasas.
	ErrSourceUnreachable = errors.New("fuente de tasas inaccesible o respuesta inválida")
	// ErrInvalidSchedule la fecha de emisión es anterior al ancla del calendario de facturación.
	ErrInvalidSchedule = errors.New("fecha de emisión anterior al inicio del calendario")
	// ErrDivisionByZero una tasa de cambio no positiva haría inválida la conversión.
	ErrDivisionByZero = errors.New("tasa de cambio no positiva")
	// ErrConfigInvalid falta o es inválido un campo obligatorio de la configuración.
	ErrConfigInvalid = errors.New("configuración inválida")
)
