package entity

import "time"

// BillingPeriod un periodo mensual del calendario recurrente de facturación.
// Start y End son el primer y último día calendario del mes de IssueDate.
// Number cuenta meses completos transcurridos desde el ancla, más uno:
// la factura emitida en el mes del ancla lleva siempre el número 1 y el
// número crece exactamente en 1 por cada mes sucesivo del calendario.
type BillingPeriod struct {
	Number    int
	Start     time.Time
	End       time.Time
	IssueDate time.Time
}
