package service

// Emisión y cobro de facturas. El número corre consecutivo por taller, el
// total en dólares se congela con el tipo de cambio vigente al emitir y el
// PDF se genera de forma asíncrona vía el worker pool.

import (
	"context"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"
	"granimar/internal/repository"
	"granimar/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FacturaService interface {
	Crear(ctx context.Context, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
	RegistrarPago(ctx context.Context, id uuid.UUID, req dto.RegistrarPagoRequest) (*dto.FacturaResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error
	ReintentarDocumento(ctx context.Context, id uuid.UUID) error
	// PDFPath devuelve la ruta del documento generado, o cadena vacía.
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

// TipoCambioProvider abstrae el cliente de tipo de cambio para pruebas.
type TipoCambioProvider interface {
	TipoCambioVenta(ctx context.Context) (decimal.Decimal, error)
}

type facturaService struct {
	facturaRepo repository.FacturaRepository
	tipoCambio  TipoCambioProvider
	dispatcher  *worker.Dispatcher
}

func NewFacturaService(
	facturaRepo repository.FacturaRepository,
	tipoCambio TipoCambioProvider,
	dispatcher *worker.Dispatcher,
) FacturaService {
	return &facturaService{
		facturaRepo: facturaRepo,
		tipoCambio:  tipoCambio,
		dispatcher:  dispatcher,
	}
}

// Crear emite la factura en una sola transacción: asigna el consecutivo,
// suma los ítems y congela el total en dólares al tipo de cambio del día.
// Si el servicio de cambio no responde, la factura se emite igual con
// TotalUSD en cero.
func (s *facturaService) Crear(ctx context.Context, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error) {
	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Monto.LessThanOrEqual(decimal.Zero) {
			return nil, ErrCantidadInvalida
		}
		subtotal = subtotal.Add(item.Monto)
	}
	total := subtotal.Round(2)

	tc := decimal.Zero
	totalUSD := decimal.Zero
	if s.tipoCambio != nil {
		if valor, err := s.tipoCambio.TipoCambioVenta(ctx); err == nil && valor.IsPositive() {
			tc = valor
			totalUSD = total.Div(tc).Round(2)
		} else if err != nil {
			log.Warn().Err(err).Msg("factura emitida sin tipo de cambio")
		}
	}

	factura := &model.Factura{
		Cliente:         req.Cliente,
		Proyecto:        req.Proyecto,
		Email:           req.Email,
		Subtotal:        subtotal.Round(2),
		Total:           total,
		TotalUSD:        totalUSD,
		TipoCambio:      tc,
		Estado:          "pendiente",
		EstadoDocumento: "pendiente",
		Fecha:           time.Now(),
	}

	err := runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		numero, err := s.facturaRepo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		factura.Numero = numero
		for _, item := range req.Items {
			factura.Items = append(factura.Items, model.FacturaItem{
				Descripcion: item.Descripcion,
				Monto:       item.Monto.Round(2),
			})
		}
		return s.facturaRepo.CreateTx(tx, factura)
	})
	if err != nil {
		return nil, err
	}

	// El PDF se genera fuera de la transacción; si Redis no responde la
	// factura queda emitida y el retry cron no la pierde (estado pendiente).
	if s.dispatcher != nil {
		payload := worker.DocumentoJobPayload{FacturaID: factura.ID.String()}
		if err := s.dispatcher.EnqueueDocumento(ctx, payload); err != nil {
			log.Warn().Err(err).Str("factura_id", factura.ID.String()).Msg("no se pudo encolar el documento")
		}
	}

	return facturaToResponse(factura), nil
}

func (s *facturaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	factura, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return facturaToResponse(factura), nil
}

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	facturas, total, err := s.facturaRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.FacturaListResponse{
		Data:  make([]dto.FacturaResponse, 0, len(facturas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range facturas {
		resp.Data = append(resp.Data, *facturaToResponse(&facturas[i]))
	}
	return resp, nil
}

// RegistrarPago agrega un pago y marca la factura como pagada cuando los
// pagos acumulados cubren el total. Rechaza pagos que excedan el saldo.
func (s *facturaService) RegistrarPago(ctx context.Context, id uuid.UUID, req dto.RegistrarPagoRequest) (*dto.FacturaResponse, error) {
	if req.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCantidadInvalida
	}

	factura, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if factura.Estado == "anulada" {
		return nil, ErrFacturaAnulada
	}

	pagado := sumaPagos(factura.Pagos)
	saldo := factura.Total.Sub(pagado)
	if req.Monto.GreaterThan(saldo) {
		return nil, ErrPagoExcedeSaldo
	}

	fecha := time.Now()
	if req.Fecha != "" {
		if parsed, err := time.Parse("2006-01-02", req.Fecha); err == nil {
			fecha = parsed
		}
	}

	pago := &model.FacturaPago{
		FacturaID: factura.ID,
		Metodo:    req.Metodo,
		Monto:     req.Monto.Round(2),
		Fecha:     fecha,
	}

	err = runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.facturaRepo.CreatePagoTx(tx, pago); err != nil {
			return err
		}
		if pagado.Add(req.Monto).Round(2).GreaterThanOrEqual(factura.Total) {
			return s.facturaRepo.UpdateEstadoTx(tx, factura.ID, "pagada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Obtener(ctx, id)
}

func (s *facturaService) Anular(ctx context.Context, id uuid.UUID) error {
	factura, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if factura.Estado == "anulada" {
		return ErrFacturaAnulada
	}
	return runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		return s.facturaRepo.UpdateEstadoTx(tx, factura.ID, "anulada")
	})
}

// ReintentarDocumento re-encola la generación del PDF a pedido explícito,
// para documentos que agotaron los reintentos automáticos.
func (s *facturaService) ReintentarDocumento(ctx context.Context, id uuid.UUID) error {
	factura, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	factura.EstadoDocumento = "pendiente"
	factura.RetryCount = 0
	factura.NextRetryAt = nil
	factura.LastError = nil
	if err := s.facturaRepo.Update(ctx, factura); err != nil {
		return err
	}
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.EnqueueDocumento(ctx, worker.DocumentoJobPayload{FacturaID: factura.ID.String()})
}

func (s *facturaService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	factura, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if factura.PDFPath == nil {
		return "", nil
	}
	return *factura.PDFPath, nil
}

func sumaPagos(pagos []model.FacturaPago) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pagos {
		total = total.Add(p.Monto)
	}
	return total
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	resp := &dto.FacturaResponse{
		ID:              f.ID.String(),
		Numero:          f.Numero,
		Cliente:         f.Cliente,
		Proyecto:        f.Proyecto,
		Subtotal:        f.Subtotal,
		Total:           f.Total,
		TotalUSD:        f.TotalUSD,
		TipoCambio:      f.TipoCambio,
		Pagado:          sumaPagos(f.Pagos),
		Estado:          f.Estado,
		EstadoDocumento: f.EstadoDocumento,
		Fecha:           f.Fecha.Format("2006-01-02"),
	}
	for _, item := range f.Items {
		resp.Items = append(resp.Items, dto.FacturaItemResponse{
			Descripcion: item.Descripcion,
			Monto:       item.Monto,
		})
	}
	for _, pago := range f.Pagos {
		resp.Pagos = append(resp.Pagos, dto.FacturaPagoResponse{
			Metodo: pago.Metodo,
			Monto:  pago.Monto,
			Fecha:  pago.Fecha.Format("2006-01-02"),
		})
	}
	return resp
}
