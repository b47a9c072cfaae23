package worker

// retry_cron.go
// Goroutine de fondo que reintenta periódicamente la generación de PDF para
// facturas atascadas en estado_documento='pendiente' con next_retry_at vencido.

import (
	"context"
	"fmt"
	"time"

	"granimar/internal/infra"
	"granimar/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	FacturaRepo    repository.FacturaRepository
	Dispatcher     *Dispatcher
	RDB            *redis.Client
	PDFStoragePath string
	NombreTaller   string
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending facturas, and re-attempts PDF generation.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	now := time.Now()
	facturas, err := cfg.FacturaRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}

	if len(facturas) == 0 {
		return
	}

	log.Info().Int("count", len(facturas)).Msg("retry_cron: processing pending facturas")

	for i := range facturas {
		factura := &facturas[i]

		pdfPath, genErr := infra.GenerateFacturaPDF(factura, cfg.NombreTaller, cfg.PDFStoragePath)
		if genErr != nil {
			factura.RetryCount++
			errMsg := genErr.Error()
			factura.LastError = &errMsg
			nextRetry := time.Now().Add(computeRetryBackoff(factura.RetryCount))
			factura.NextRetryAt = &nextRetry

			if factura.RetryCount >= MaxFacturaRetries {
				factura.EstadoDocumento = "error"
				factura.NextRetryAt = nil
				log.Error().
					Str("factura_id", factura.ID.String()).
					Int("retries", factura.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to error/DLQ")

				EnviarADLQ(ctx, cfg.RDB, DocumentoMuerto{
					Cola:      QueueDocumentos,
					FacturaID: factura.ID.String(),
					Numero:    factura.Numero,
					Motivo:    fmt.Sprintf("max retries (%d) exceeded: %s", MaxFacturaRetries, errMsg),
					Intentos:  factura.RetryCount,
				})
			} else {
				log.Warn().
					Str("factura_id", factura.ID.String()).
					Int("retry_count", factura.RetryCount).
					Time("next_retry_at", *factura.NextRetryAt).
					Msg("retry_cron: PDF retry failed, scheduled next attempt")
			}

			if err := cfg.FacturaRepo.Update(ctx, factura); err != nil {
				log.Error().Err(err).Str("factura_id", factura.ID.String()).Msg("retry_cron: failed to persist retry state")
			}
			continue
		}

		factura.EstadoDocumento = "generado"
		factura.PDFPath = &pdfPath
		factura.NextRetryAt = nil
		factura.LastError = nil
		if err := cfg.FacturaRepo.Update(ctx, factura); err != nil {
			log.Error().Err(err).Str("factura_id", factura.ID.String()).Msg("retry_cron: failed to update factura")
			continue
		}

		log.Info().
			Str("pdf", pdfPath).
			Str("factura_id", factura.ID.String()).
			Int("total_retries", factura.RetryCount).
			Msg("retry_cron: PDF generated after retry")

		if factura.Email != nil && *factura.Email != "" {
			emailJob := EmailJobPayload{
				ToEmail: *factura.Email,
				Subject: fmt.Sprintf("%s — Factura N° %d", cfg.NombreTaller, factura.Numero),
				Body:    fmt.Sprintf("Adjunto encontrará su factura.\nTotal: ₡%s", factura.Total.StringFixed(2)),
				PDFPath: pdfPath,
			}
			if err := cfg.Dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
				log.Warn().Err(err).Str("factura_id", factura.ID.String()).Msg("retry_cron: failed to enqueue email")
			}
		}
	}
}
