package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CalcularRetiroRequest es la entrada del cálculo puro (sin efectos). Los
// mismos campos viajan en RegistrarRetiroRequest: el servidor recalcula todo
// al confirmar, nunca confía en totales enviados por el cliente.
type CalcularRetiroRequest struct {
	MaterialID string `json:"material_id" validate:"required,uuid"`
	Tipo       string `json:"tipo"        validate:"required,oneof=laminas metros_lineales metros_cuadrados"`

	CantidadLaminas int     `json:"cantidad_laminas"` // tipo laminas
	Largo           float64 `json:"largo"`            // tipo metros_lineales (m)
	Ancho           float64 `json:"ancho"`
	Area            float64 `json:"area"` // tipo metros_cuadrados (m²)

	UsarSobros bool `json:"usar_sobros"`
}

type RegistrarRetiroRequest struct {
	CalcularRetiroRequest

	Proyecto  string `json:"proyecto"   validate:"required,min=2"`
	Cliente   string `json:"cliente"`
	UsuarioID string `json:"usuario_id" validate:"required,uuid"`

	// PrecioCobrado permite al operador ajustar el precio final; si viene
	// vacío se cobra el precio calculado.
	PrecioCobrado *decimal.Decimal `json:"precio_cobrado"`
}

type RetiroFilter struct {
	MaterialID string `form:"material_id"`
	Proyecto   string `form:"proyecto"`
	Desde      string `form:"desde"` // YYYY-MM-DD
	Hasta      string `form:"hasta"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CalculoRetiroResponse es el resultado determinista del calculador.
type CalculoRetiroResponse struct {
	LaminasNecesarias int             `json:"laminas_necesarias"`
	Costo             decimal.Decimal `json:"costo"`
	Precio            decimal.Decimal `json:"precio"`
	AreaDeSobros      float64         `json:"area_de_sobros"`  // m² servidos desde sobros
	SobroGenerado     float64         `json:"sobro_generado"`  // m² que quedarán como retazo
	AreaSolicitada    float64         `json:"area_solicitada"` // m² (0 para láminas enteras)
}

type RetiroResponse struct {
	ID                string          `json:"id"`
	MaterialID        string          `json:"material_id"`
	Material          string          `json:"material,omitempty"`
	Tipo              string          `json:"tipo"`
	CantidadLaminas   int             `json:"cantidad_laminas,omitempty"`
	Largo             float64         `json:"largo,omitempty"`
	Ancho             float64         `json:"ancho,omitempty"`
	AreaSolicitada    float64         `json:"area_solicitada,omitempty"`
	LaminasConsumidas int             `json:"laminas_consumidas"`
	UsoSobros         bool            `json:"uso_sobros"`
	AreaDeSobros      float64         `json:"area_de_sobros"`
	CostoTotal        decimal.Decimal `json:"costo_total"`
	PrecioVentaTotal  decimal.Decimal `json:"precio_venta_total"`
	PrecioCobrado     decimal.Decimal `json:"precio_cobrado"`
	Ganancia          decimal.Decimal `json:"ganancia"`
	Proyecto          string          `json:"proyecto"`
	Cliente           string          `json:"cliente,omitempty"`
	UsuarioID         string          `json:"usuario_id"`
	SobroGeneradoID   *string         `json:"sobro_generado_id,omitempty"`
	Fecha             string          `json:"fecha"`
}

type RetiroListResponse struct {
	Data  []RetiroResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
