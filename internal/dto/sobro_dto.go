package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearSobroRequest registra un retazo manualmente (piezas que ya estaban en
// bodega antes de usar el sistema, o donaciones de otros talleres).
type CrearSobroRequest struct {
	MaterialID          string  `json:"material_id"           validate:"required,uuid"`
	AreaMetrosCuadrados float64 `json:"area_metros_cuadrados" validate:"required,gt=0"`
	ProyectoOrigen      string  `json:"proyecto_origen"`
	Notas               string  `json:"notas"`
}

type ActualizarSobroRequest struct {
	Usable *bool   `json:"usable"`
	Notas  *string `json:"notas"`
}

type SobroFilter struct {
	MaterialID string `form:"material_id"`
	// Estado: "disponibles" (usable && !usado, default), "usados", "all"
	Estado string `form:"estado"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SobroResponse struct {
	ID                   string  `json:"id"`
	MaterialID           string  `json:"material_id"`
	Material             string  `json:"material,omitempty"`
	AreaMetrosCuadrados  float64 `json:"area_metros_cuadrados"`
	Usable               bool    `json:"usable"`
	Usado                bool    `json:"usado"`
	RetiroOrigenID       *string `json:"retiro_origen_id,omitempty"`
	ConsumidoPorRetiroID *string `json:"consumido_por_retiro_id,omitempty"`
	ProyectoOrigen       string  `json:"proyecto_origen,omitempty"`
	Notas                string  `json:"notas,omitempty"`
}

type SobroListResponse struct {
	Data      []SobroResponse `json:"data"`
	AreaTotal float64         `json:"area_total"` // m² disponibles sumados
	Total     int64           `json:"total"`
	Page      int             `json:"page"`
	Limit     int             `json:"limit"`
}
