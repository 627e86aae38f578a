package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain"
	"github.com/gchamon/facturador/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Verificar en tiempo de compilación que CoinMarketCapClient implementa el puerto.
var _ invoicing.RateResolver = (*CoinMarketCapClient)(nil)

const (
	cmcDefaultBaseURL = "https://api.coinmarketcap.com/data-api/v3.1/cryptocurrency/historical"

	// IDs de CoinMarketCap por defecto: 13198 = token NTX, 2790 = EUR como
	// moneda de conversión (la tasa devuelta es "token por EUR").
	cmcDefaultTokenID   = 13198
	cmcDefaultConvertID = 2790
)

// CoinMarketCapConfig opciones del cliente; los campos en cero toman el valor por defecto.
type CoinMarketCapConfig struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenID     int    // id de CoinMarketCap del token
	ConvertID   int    // id de la moneda de conversión (EUR)
	TokenSymbol string // símbolo mostrado en el par (ej. "NTX")
}

// CoinMarketCapClient resuelve la tasa EUR/token contra el histórico diario de
// CoinMarketCap. Toma el precio de apertura de la última vela de la ventana.
type CoinMarketCapClient struct {
	baseURL     string
	httpClient  *http.Client
	tokenID     int
	convertID   int
	tokenSymbol string
}

// NewCoinMarketCapClient construye el cliente.
func NewCoinMarketCapClient(cfg CoinMarketCapConfig) *CoinMarketCapClient {
	c := &CoinMarketCapClient{
		baseURL:     cfg.BaseURL,
		httpClient:  cfg.HTTPClient,
		tokenID:     cfg.TokenID,
		convertID:   cfg.ConvertID,
		tokenSymbol: cfg.TokenSymbol,
	}
	if c.baseURL == "" {
		c.baseURL = cmcDefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.tokenID == 0 {
		c.tokenID = cmcDefaultTokenID
	}
	if c.convertID == 0 {
		c.convertID = cmcDefaultConvertID
	}
	if c.tokenSymbol == "" {
		c.tokenSymbol = "NTX"
	}
	return c
}

// Pair par que resuelve esta fuente.
func (c *CoinMarketCapClient) Pair() entity.RatePair { return entity.PairEURToken(c.tokenSymbol) }

// ── Estructuras del payload histórico de CoinMarketCap ────────────────────────

type cmcResponse struct {
	Data struct {
		Quotes []cmcQuote `json:"quotes"`
	} `json:"data"`
}

type cmcQuote struct {
	TimeOpen string `json:"timeOpen"` // RFC3339; solo interesa la porción de fecha
	Quote    struct {
		Open decimal.Decimal `json:"open"`
	} `json:"quote"`
}

// ResolveRate consulta velas diarias en la ventana [target-2d, target] y toma
// la apertura de la última como observación autoritativa.
func (c *CoinMarketCapClient) ResolveRate(ctx context.Context, target time.Time) (entity.RateObservation, error) {
	start := target.AddDate(0, 0, -lookbackDays)

	q := url.Values{}
	q.Set("id", strconv.Itoa(c.tokenID))
	q.Set("convertId", strconv.Itoa(c.convertID))
	q.Set("timeStart", strconv.FormatInt(start.Unix(), 10))
	q.Set("timeEnd", strconv.FormatInt(target.Unix(), 10))
	q.Set("interval", "1d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: crear request: %v", domain.ErrSourceUnreachable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: llamada HTTP: %v", domain.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: status %d", domain.ErrSourceUnreachable, resp.StatusCode)
	}

	var payload cmcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: JSON inválido: %v", domain.ErrSourceUnreachable, err)
	}

	quotes := payload.Data.Quotes
	if len(quotes) == 0 {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: ventana %s a %s",
			domain.ErrNoRateAvailable, start.Format(dateLayout), target.Format(dateLayout))
	}

	last := quotes[len(quotes)-1]
	if !last.Quote.Open.IsPositive() {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: apertura no positiva %s",
			domain.ErrSourceUnreachable, last.Quote.Open)
	}

	// timeOpen llega como "2024-03-01T00:00:00.000Z"; solo importa la fecha.
	datePart, _, _ := strings.Cut(last.TimeOpen, "T")
	observedAt, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return entity.RateObservation{}, fmt.Errorf("%w: coinmarketcap: timeOpen %q: %v",
			domain.ErrSourceUnreachable, last.TimeOpen, err)
	}

	return entity.RateObservation{
		Pair:       c.Pair(),
		Rate:       last.Quote.Open,
		ObservedAt: observedAt,
	}, nil
}
