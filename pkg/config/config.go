package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gchamon/facturador/internal/domain"
)

// Config agrupa la configuración de una corrida de facturación (lectura vía
// Viper desde archivo YAML, con override por variables de entorno FACTURADOR_*).
// Es de solo lectura una vez cargada: ningún componente la muta.
type Config struct {
	App      AppConfig
	Invoice  InvoiceConfig
	Schedule ScheduleConfig
	Output   OutputConfig
	Rates    RatesConfig
	Parties  PartiesConfig
	Payment  PaymentConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, production
	LogLevel string // debug, info, warn, error
}

// InvoiceConfig montos y tipos de factura a emitir cada periodo.
type InvoiceConfig struct {
	TokenAmountUSD float64 // porción pagada en token, denominada en USD
	FiatAmountUSD  float64 // porción pagada por transferencia, denominada en USD
	TokenEnabled   bool
	FiatEnabled    bool
	TokenSymbol    string
}

// ScheduleConfig calendario mensual recurrente.
type ScheduleConfig struct {
	AnchorDate time.Time // primera fecha de factura del calendario
	IssueDay   int       // día del mes de emisión (1–31, recortado en meses cortos)
}

// OutputConfig destino y formato de los documentos generados.
type OutputConfig struct {
	Dir          string
	Prefix       string // prefijo del nombre de archivo (ej. "gabriel_chamon")
	Format       string // "html" o "pdf"
	TemplatesDir string // requerido con format html
	Stylesheet   string // opcional, solo html
}

// RatesConfig fuentes de tasas; los campos vacíos usan los endpoints reales.
type RatesConfig struct {
	ECBBaseURL string
	CMCBaseURL string
	TokenID    int // id de CoinMarketCap del token
	ConvertID  int // id de CoinMarketCap de la moneda de conversión (EUR)
}

// Party texto libre de una parte; pasa opaco al renderer.
type Party struct {
	Name    string
	Address string
}

// PartiesConfig contratista que emite y cliente facturado.
type PartiesConfig struct {
	Contractor Party
	Client     Party
}

// PaymentConfig instrucciones de pago por tipo de factura.
type PaymentConfig struct {
	BankDetails   string // factura fiat
	WalletAddress string // factura token
}

const anchorLayout = "2006-01-02"

// Load lee y valida la configuración desde el archivo YAML indicado. Las
// variables de entorno FACTURADOR_* tienen prioridad sobre el archivo.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("FACTURADOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: leer %s: %v", domain.ErrConfigInvalid, path, err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("app.env"),
			LogLevel: v.GetString("app.log_level"),
		},
		Invoice: InvoiceConfig{
			TokenAmountUSD: v.GetFloat64("invoice.token_amount_usd"),
			FiatAmountUSD:  v.GetFloat64("invoice.fiat_amount_usd"),
			TokenEnabled:   v.GetBool("invoice.token_enabled"),
			FiatEnabled:    v.GetBool("invoice.fiat_enabled"),
			TokenSymbol:    v.GetString("invoice.token_symbol"),
		},
		Schedule: ScheduleConfig{
			IssueDay: v.GetInt("schedule.issue_day"),
		},
		Output: OutputConfig{
			Dir:          v.GetString("output.dir"),
			Prefix:       v.GetString("output.prefix"),
			Format:       v.GetString("output.format"),
			TemplatesDir: v.GetString("output.templates_dir"),
			Stylesheet:   v.GetString("output.stylesheet"),
		},
		Rates: RatesConfig{
			ECBBaseURL: v.GetString("rates.ecb_base_url"),
			CMCBaseURL: v.GetString("rates.cmc_base_url"),
			TokenID:    v.GetInt("rates.token_id"),
			ConvertID:  v.GetInt("rates.convert_id"),
		},
		Parties: PartiesConfig{
			Contractor: Party{
				Name:    v.GetString("parties.contractor.name"),
				Address: v.GetString("parties.contractor.address"),
			},
			Client: Party{
				Name:    v.GetString("parties.client.name"),
				Address: v.GetString("parties.client.address"),
			},
		},
		Payment: PaymentConfig{
			BankDetails:   v.GetString("payment.bank_details"),
			WalletAddress: v.GetString("payment.wallet_address"),
		},
	}

	rawAnchor := v.GetString("schedule.anchor_date")
	if rawAnchor == "" {
		return nil, fmt.Errorf("%w: schedule.anchor_date es obligatoria (YYYY-MM-DD)", domain.ErrConfigInvalid)
	}
	anchor, err := time.Parse(anchorLayout, rawAnchor)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.anchor_date %q: %v", domain.ErrConfigInvalid, rawAnchor, err)
	}
	cfg.Schedule.AnchorDate = anchor

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("invoice.token_enabled", true)
	v.SetDefault("invoice.fiat_enabled", true)
	v.SetDefault("invoice.token_symbol", "NTX")
	v.SetDefault("schedule.issue_day", 1)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "html")
}

// validate reglas mínimas para que una corrida tenga sentido; el primer
// incumplimiento se reporta envuelto en ErrConfigInvalid.
func (c *Config) validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", domain.ErrConfigInvalid, fmt.Sprintf(format, args...))
	}

	if !c.Invoice.TokenEnabled && !c.Invoice.FiatEnabled {
		return fail("al menos un tipo de factura debe estar habilitado")
	}
	if c.Invoice.TokenEnabled && c.Invoice.TokenAmountUSD <= 0 {
		return fail("invoice.token_amount_usd debe ser positivo, llegó %v", c.Invoice.TokenAmountUSD)
	}
	if c.Invoice.FiatEnabled && c.Invoice.FiatAmountUSD <= 0 {
		return fail("invoice.fiat_amount_usd debe ser positivo, llegó %v", c.Invoice.FiatAmountUSD)
	}
	if c.Schedule.IssueDay < 1 || c.Schedule.IssueDay > 31 {
		return fail("schedule.issue_day debe estar entre 1 y 31, llegó %d", c.Schedule.IssueDay)
	}
	if c.Output.Prefix == "" {
		return fail("output.prefix es obligatorio")
	}
	switch c.Output.Format {
	case "html":
		if c.Output.TemplatesDir == "" {
			return fail("output.templates_dir es obligatorio con formato html")
		}
	case "pdf":
		// sin requisitos adicionales
	default:
		return fail("output.format desconocido %q (usar 'html' o 'pdf')", c.Output.Format)
	}
	return nil
}
