package worker

// factura_worker.go
// Procesa trabajos de generación de documentos de QueueDocumentos:
// genera el PDF de la factura, actualiza estado_documento y, si el
// cliente dejó correo, encola el envío por email.
// Reintenta con backoff exponencial (máximo 3 intentos).

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"granimar/internal/infra"
	"granimar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxFacturaRetries caps how many times the retry cron re-attempts a document.
const MaxFacturaRetries = 3

// DocumentoJobPayload is the job envelope sent to QueueDocumentos.
type DocumentoJobPayload struct {
	FacturaID string `json:"factura_id"`
}

// FacturaWorker generates PDF documents for issued invoices.
type FacturaWorker struct {
	facturaRepo    repository.FacturaRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	nombreTaller   string
}

func NewFacturaWorker(
	facturaRepo repository.FacturaRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	nombreTaller string,
) *FacturaWorker {
	return &FacturaWorker{
		facturaRepo:    facturaRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		nombreTaller:   nombreTaller,
	}
}

// Process handles a single documento job:
//  1. Parse DocumentoJobPayload from the job envelope
//  2. Fetch the Factura (with items+pagos) from DB
//  3. Generate the PDF with inline retries (backoff 1s, 2s)
//  4. Update estado_documento ("generado" / keep "pendiente" + schedule retry)
//  5. Optionally enqueue email job when the client left an address
func (w *FacturaWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload DocumentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("factura_worker: invalid payload")
		return
	}

	facturaID, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		log.Error().Str("factura_id", payload.FacturaID).Msg("factura_worker: invalid factura_id")
		return
	}

	factura, err := w.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("factura_worker: factura not found")
		return
	}

	var pdfPath string
	genErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerateFacturaPDF(factura, w.nombreTaller, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("factura_id", payload.FacturaID).
				Msg("factura_worker: PDF attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})

	if genErr != nil {
		// Queda pendiente: el retry cron lo recoge según next_retry_at.
		factura.RetryCount++
		errMsg := genErr.Error()
		factura.LastError = &errMsg
		nextRetry := time.Now().Add(computeRetryBackoff(factura.RetryCount))
		factura.NextRetryAt = &nextRetry
		if factura.RetryCount >= MaxFacturaRetries {
			factura.EstadoDocumento = "error"
			factura.NextRetryAt = nil
		}
		if err := w.facturaRepo.Update(ctx, factura); err != nil {
			log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("factura_worker: failed to persist retry state")
		}
		log.Error().Err(genErr).Str("factura_id", payload.FacturaID).Msg("factura_worker: PDF failed after all retries")
		return
	}

	factura.EstadoDocumento = "generado"
	factura.PDFPath = &pdfPath
	factura.NextRetryAt = nil
	factura.LastError = nil
	if err := w.facturaRepo.Update(ctx, factura); err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("factura_worker: failed to update factura")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("factura_id", payload.FacturaID).Msg("factura_worker: PDF generated")

	if factura.Email != nil && *factura.Email != "" {
		emailJob := EmailJobPayload{
			ToEmail: *factura.Email,
			Subject: fmt.Sprintf("%s — Factura N° %d", w.nombreTaller, factura.Numero),
			Body:    fmt.Sprintf("Adjunto encontrará su factura.\nTotal: ₡%s", factura.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *factura.Email).Msg("factura_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *factura.Email).Msg("factura_worker: email job enqueued")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// computeRetryBackoff returns the delay before the next cron-driven retry.
// Schedule: 1m, 5m, 15m.
func computeRetryBackoff(retryCount int) time.Duration {
	switch {
	case retryCount <= 1:
		return time.Minute
	case retryCount == 2:
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}
