package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ── Tipo de Cambio ────────────────────────────────────────────────────────────
// Cliente del indicador de tipo de cambio CRC/USD del Ministerio de Hacienda.
// La consulta externa pasa por un circuit breaker y el valor se cachea en
// Redis; si el servicio externo no responde se usa el último valor conocido.

const (
	cacheKeyTipoCambio       = "tipo_cambio:venta"
	cacheKeyTipoCambioUltimo = "tipo_cambio:venta:ultimo"
)

var cbTipoCambioEstado = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "granimar_tipo_cambio_circuito_estado",
	Help: "Estado del circuito de tipo de cambio (0=cerrado, 1=abierto, 2=semiabierto).",
})

// TipoCambioClient obtiene el tipo de cambio de venta (colones por dólar).
type TipoCambioClient interface {
	TipoCambioVenta(ctx context.Context) (decimal.Decimal, error)
	Estado() string
}

type haciendaIndicador struct {
	Fecha string  `json:"fecha"`
	Valor float64 `json:"valor"`
}

type haciendaRespuesta struct {
	Compra haciendaIndicador `json:"compra"`
	Venta  haciendaIndicador `json:"venta"`
}

type haciendaClient struct {
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cb       *CircuitBreaker
	cacheTTL time.Duration
}

// NewTipoCambioClient crea el cliente con circuit breaker y cache Redis.
// redisClient puede ser nil (sin cache, solo consulta directa).
func NewTipoCambioClient(baseURL string, redisClient *redis.Client, cacheTTL time.Duration) TipoCambioClient {
	cbCfg := DefaultCBConfig()
	cbCfg.OnStateChange = func(desde, hacia CBState) {
		cbTipoCambioEstado.Set(float64(hacia))
		evt := log.Warn()
		if hacia == CBClosed {
			evt = log.Info()
		}
		evt.Str("desde", desde.String()).
			Str("hacia", hacia.String()).
			Msg("circuito de tipo de cambio cambió de estado")
	}
	return &haciendaClient{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		redis:    redisClient,
		cb:       NewCircuitBreaker(cbCfg),
		cacheTTL: cacheTTL,
	}
}

// Estado expone el estado del circuit breaker para el health check.
func (c *haciendaClient) Estado() string {
	return c.cb.State().String()
}

// TipoCambioVenta devuelve el tipo de cambio de venta vigente.
// Orden de resolución: cache → API externa → último valor conocido.
func (c *haciendaClient) TipoCambioVenta(ctx context.Context) (decimal.Decimal, error) {
	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, cacheKeyTipoCambio).Result(); err == nil {
			if tc, err := decimal.NewFromString(cached); err == nil {
				return tc, nil
			}
		}
	}

	var tc decimal.Decimal
	err := c.cb.Execute(func() error {
		valor, err := c.consultar(ctx)
		if err != nil {
			return err
		}
		tc = valor
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("consulta de tipo de cambio falló, usando último valor conocido")
		return c.ultimoConocido(ctx, err)
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKeyTipoCambio, tc.String(), c.cacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("no se pudo cachear tipo de cambio")
		}
		// El último conocido no expira: es el fallback cuando Hacienda no responde.
		if err := c.redis.Set(ctx, cacheKeyTipoCambioUltimo, tc.String(), 0).Err(); err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar último tipo de cambio")
		}
	}
	return tc, nil
}

func (c *haciendaClient) consultar(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("creando request de tipo de cambio: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("consultando tipo de cambio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("tipo de cambio respondió %d", resp.StatusCode)
	}

	var body haciendaRespuesta
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decodificando respuesta de tipo de cambio: %w", err)
	}
	if body.Venta.Valor <= 0 {
		return decimal.Zero, fmt.Errorf("tipo de cambio de venta inválido: %f", body.Venta.Valor)
	}
	return decimal.NewFromFloat(body.Venta.Valor).Round(2), nil
}

func (c *haciendaClient) ultimoConocido(ctx context.Context, causa error) (decimal.Decimal, error) {
	if c.redis == nil {
		return decimal.Zero, causa
	}
	cached, err := c.redis.Get(ctx, cacheKeyTipoCambioUltimo).Result()
	if err != nil {
		return decimal.Zero, causa
	}
	tc, err := decimal.NewFromString(cached)
	if err != nil {
		return decimal.Zero, causa
	}
	return tc, nil
}
