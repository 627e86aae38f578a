// Package rates contiene los adaptadores HTTP de las fuentes externas de
// tasas de cambio: el Banco Central Europeo (fiat USD/EUR, serie CSV) y
// CoinMarketCap (EUR/token, histórico JSON). Ambos implementan el puerto
// invoicing.RateResolver con la misma política: ventana de búsqueda de dos
// días hacia atrás y "la última observación de la serie gana".
package rates

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// Verificar en tiempo de compilación que ECBClient implementa el puerto.
var _ invoicing.RateResolver = (*ECBClient)(nil)

const (
	// Serie diaria de referencia USD/EUR del ECB (cotización SP00.A), en la
	// dirección publicada por la fuente: EUR por USD, usada tal cual.
	ecbDefaultBaseURL = "https://data-api.ecb.europa.eu/service/data/EXR/D.USD.EUR.SP00.A"

	// lookbackDays días hacia atrás de la ventana consultada: tolera fines de
	// semana y festivos en los que el ECB no publica cotización.
	lookbackDays = 2

	maxResponseBytes = 1 << 20 // 1 MB

	dateLayout = "2006-01-02"
)

// ECBConfig opciones del cliente; los campos en cero toman el valor por defecto.
type ECBConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

// ECBClient resuelve la tasa USD/EUR contra la API de datos del ECB.
// Usa net/http de la stdlib; una llamada saliente por invocación, sin caché.
type ECBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewECBClient construye el cliente. El timeout por defecto es el único
// límite: no hay reintentos, un fallo transitorio aborta la corrida.
func NewECBClient(cfg ECBConfig) *ECBClient {
	c := &ECBClient{baseURL: cfg.BaseURL, httpClient: cfg.HTTPClient}
	if c.baseURL == "" {
		c.baseURL = ecbDefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// Pair par que resuelve esta fuente.
func (c *ECBClient) Pair() entity.RatePair { return entity.PairUSDEUR }

// ResolveRate consulta la serie CSV en la ventana [target-2d, target] y toma
// la última fila como observación autoritativa.
func (c *ECBClient) ResolveRate(ctx context.Context, target time.Time) (entity.RateObservation, error) {
	start := target.AddDate(0, 0, -lookbackDays)
	url := fmt.Sprintf("%s?format=csvdata&startPeriod=%s&endPeriod=%s",
		c.baseURL, start.Format(dateLayout), target.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: crear request: %v", domain.ErrSourceUnreachable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: llamada HTTP: %v", domain.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// El ECB responde 404 cuando la ventana no contiene observaciones.
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: ventana %s a %s",
			domain.ErrNoRateAvailable, start.Format(dateLayout), target.Format(dateLayout))
	case resp.StatusCode != http.StatusOK:
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: status %d", domain.ErrSourceUnreachable, resp.StatusCode)
	}

	return c.parseCSV(io.LimitReader(resp.Body, maxResponseBytes), start, target)
}

// parseCSV localiza las columnas TIME_PERIOD y OBS_VALUE por cabecera y
// devuelve la observación de la última fila de datos.
func (c *ECBClient) parseCSV(r io.Reader, start, target time.Time) (entity.RateObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: CSV inválido: %v", domain.ErrSourceUnreachable, err)
	}
	if len(rows) <= 1 {
		// Cuerpo vacío o solo cabecera: dos días no hábiles consecutivos.
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: ventana %s a %s",
			domain.ErrNoRateAvailable, start.Format(dateLayout), target.Format(dateLayout))
	}

	dateCol, valueCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "TIME_PERIOD":
			dateCol = i
		case "OBS_VALUE":
			valueCol = i
		}
	}
	if dateCol < 0 || valueCol < 0 {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: cabecera sin TIME_PERIOD/OBS_VALUE", domain.ErrSourceUnreachable)
	}

	last := rows[len(rows)-1]
	if len(last) <= dateCol || len(last) <= valueCol {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: fila incompleta", domain.ErrSourceUnreachable)
	}

	rate, err := decimal.NewFromString(last[valueCol])
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: OBS_VALUE %q: %v",
			domain.ErrSourceUnreachable, last[valueCol], err)
	}
	if !rate.IsPositive() {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: tasa no positiva %s", domain.ErrSourceUnreachable, rate)
	}

	observedAt, err := time.Parse(dateLayout, last[dateCol])
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: ecb: TIME_PERIOD %q: %v",
			domain.ErrSourceUnreachable, last[dateCol], err)
	}

	return entity.RateObservation{
		Pair:       entity.PairUSDEUR,
		Rate:       rate,
		ObservedAt: observedAt,
	}, nil
}
