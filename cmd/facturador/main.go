package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain/entity"
	"github.com/gchamon/facturador/internal/infrastructure/outputdir"
	"github.com/gchamon/facturador/internal/infrastructure/rates"
	"github.com/gchamon/facturador/internal/infrastructure/render"
	"github.com/gchamon/facturador/pkg/config"
	"github.com/gchamon/facturador/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "facturador",
		Usage: "genera las facturas mensuales del contratista (token + fiat) con tasas de cambio del día",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "ruta del archivo de configuración YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "generar solo la fecha de emisión indicada (YYYY-MM-DD) en vez del calendario completo",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "regenerar aunque los documentos del periodo ya existan",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		// El detalle ya se registró dentro de run; salida no-cero para el shell.
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "facturador:", err)
		return err
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("config", c.String("config")).
		Msg("iniciando facturador")

	httpClient := &http.Client{Timeout: 30 * time.Second}

	fiatRates := rates.NewECBClient(rates.ECBConfig{
		BaseURL:    cfg.Rates.ECBBaseURL,
		HTTPClient: httpClient,
	})
	tokenRates := rates.NewCoinMarketCapClient(rates.CoinMarketCapConfig{
		BaseURL:     cfg.Rates.CMCBaseURL,
		HTTPClient:  httpClient,
		TokenID:     cfg.Rates.TokenID,
		ConvertID:   cfg.Rates.ConvertID,
		TokenSymbol: cfg.Invoice.TokenSymbol,
	})

	renderer, err := buildRenderer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("construir renderer")
		return err
	}

	store := outputdir.NewStore(cfg.Output.Dir, cfg.Output.Prefix)

	gen := invoicing.NewGenerator(fiatRates, tokenRates, renderer, store, invoicing.Params{
		TokenAmountUSD: decimal.NewFromFloat(cfg.Invoice.TokenAmountUSD),
		FiatAmountUSD:  decimal.NewFromFloat(cfg.Invoice.FiatAmountUSD),
		TokenEnabled:   cfg.Invoice.TokenEnabled,
		FiatEnabled:    cfg.Invoice.FiatEnabled,
		TokenSymbol:    cfg.Invoice.TokenSymbol,
		Contractor:     entity.Party{Name: cfg.Parties.Contractor.Name, Address: cfg.Parties.Contractor.Address},
		Client:         entity.Party{Name: cfg.Parties.Client.Name, Address: cfg.Parties.Client.Address},
		BankDetails:    cfg.Payment.BankDetails,
		WalletAddress:  cfg.Payment.WalletAddress,
	}, log)

	coord := invoicing.NewCoordinator(gen, store, cfg.Schedule.AnchorDate, cfg.Schedule.IssueDay, log)

	force := c.Bool("force")
	if raw := c.String("date"); raw != "" {
		issue, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Error().Str("date", raw).Msg("la fecha debe tener formato YYYY-MM-DD")
			return err
		}
		if err := coord.RunSingle(c.Context, issue, force); err != nil {
			log.Error().Err(err).Msg("corrida de facturación fallida")
			return err
		}
		return nil
	}

	if err := coord.Run(c.Context, force); err != nil {
		log.Error().Err(err).Msg("corrida de facturación fallida")
		return err
	}
	return nil
}

func buildRenderer(cfg *config.Config) (invoicing.DocumentRenderer, error) {
	switch cfg.Output.Format {
	case "pdf":
		return render.NewPDFRenderer(), nil
	case "html":
		return render.NewHTMLRenderer(render.HTMLConfig{
			TemplatesDir: cfg.Output.TemplatesDir,
			Stylesheet:   cfg.Output.Stylesheet,
		})
	default:
		// La validación de configuración ya rechazó otros valores.
		return nil, fmt.Errorf("formato de salida desconocido %q", cfg.Output.Format)
	}
}
