package worker

// dlq.go
// Las facturas cuyo PDF no pudo generarse tras agotar los reintentos quedan
// en una lista de Redis (dlq:{cola}) para revisión manual. La entrada lleva
// el número de factura para poder ubicarla sin decodificar el payload.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DocumentoMuerto es la entrada que se conserva cuando una factura agota sus
// reintentos de generación de documento.
type DocumentoMuerto struct {
	Cola      string    `json:"cola"`
	FacturaID string    `json:"factura_id"`
	Numero    int       `json:"numero"`
	Motivo    string    `json:"motivo"`
	Intentos  int       `json:"intentos"`
	FallidoEn time.Time `json:"fallido_en"`
}

// EnviarADLQ conserva una factura agotada en la cola muerta.
// Nunca falla hacia el caller: un DLQ inaccesible no debe tumbar el worker.
func EnviarADLQ(ctx context.Context, rdb *redis.Client, entrada DocumentoMuerto) {
	entrada.FallidoEn = time.Now().UTC()

	data, err := json.Marshal(entrada)
	if err != nil {
		log.Error().Err(err).Str("factura_id", entrada.FacturaID).Msg("dlq: no se pudo serializar la entrada")
		return
	}

	clave := DLQPrefix + entrada.Cola
	if err := rdb.LPush(ctx, clave, data).Err(); err != nil {
		log.Error().Err(err).Str("clave", clave).Msg("dlq: no se pudo encolar la entrada")
		return
	}

	log.Warn().
		Str("factura_id", entrada.FacturaID).
		Int("numero", entrada.Numero).
		Str("motivo", entrada.Motivo).
		Int("intentos", entrada.Intentos).
		Msg("dlq: factura movida a la cola muerta")
}

// DocumentosMuertos devuelve cuántas facturas esperan revisión manual.
func DocumentosMuertos(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+QueueDocumentos).Result()
}
