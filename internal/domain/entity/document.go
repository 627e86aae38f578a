package entity

// InvoiceKind tipo de factura a generar para un periodo.
type InvoiceKind string

const (
	// InvoiceKindToken factura de la porción pagada en token.
	InvoiceKindToken InvoiceKind = "token"
	// InvoiceKindFiat factura de la porción pagada por transferencia en EUR.
	InvoiceKindFiat InvoiceKind = "fiat"
)

// Party datos de una parte de la factura; texto libre que se pasa opaco al renderer.
type Party struct {
	Name    string
	Address string
}

// InvoiceDocument registro completo que consume un renderer para producir el
// documento legible. Se construye una vez por (periodo, tipo), se renderiza y
// se descarta: nada se persiste fuera del archivo final.
type InvoiceDocument struct {
	Kind    InvoiceKind
	Period  BillingPeriod
	Amounts ConversionResult

	// UsdEur siempre presente; EurToken solo en facturas token. Las fechas de
	// observación se muestran como nota al pie junto a cada tasa.
	UsdEur   RateObservation
	EurToken *RateObservation

	TokenSymbol string

	Contractor Party
	Client     Party

	// BankDetails (fiat) o WalletAddress (token) según el tipo de factura.
	BankDetails   string
	WalletAddress string
}
