package dto

type CrearUsuarioRequest struct {
	Nombre string  `json:"nombre" validate:"required,min=2,max=120"`
	Email  *string `json:"email"  validate:"omitempty,email"`
}

type UsuarioResponse struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Email  *string `json:"email,omitempty"`
	Activo bool    `json:"activo"`
}
