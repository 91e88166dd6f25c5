package remote

// Wire shapes of the backend contract. Field names follow the server.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Rut      *string `json:"rut,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Role     string  `json:"role,omitempty"`
}

type RoleDTO struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}

type UserDTO struct {
	ID        int64    `json:"id"`
	Nombre    string   `json:"nombre"`
	Correo    string   `json:"correo"`
	Telefono  *string  `json:"telefono"`
	Direccion *string  `json:"direccion"`
	Rut       *string  `json:"rut"`
	Rol       *RoleDTO `json:"rol"`
}

// AuthResponse is returned by login and register. Older server builds use
// the Spanish keys, newer ones the English ones.
type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Mensaje string   `json:"mensaje"`
	User    *UserDTO `json:"user"`
	Usuario *UserDTO `json:"usuario"`
	Token   *string  `json:"token"`
}

func (r *AuthResponse) Profile() *UserDTO {
	if r.User != nil {
		return r.User
	}
	return r.Usuario
}

func (r *AuthResponse) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Mensaje
}

func (r *AuthResponse) BearerToken() string {
	if r.Token == nil {
		return ""
	}
	return *r.Token
}

type PerfumeDTO struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Marca       string  `json:"marca"`
	Precio      float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Descripcion *string `json:"descripcion"`
	ImagenURL   *string `json:"imagenUrl"`
	Genero      *string `json:"genero"`
	Fragancia   *string `json:"fragancia"`
	Notas       *string `json:"notas"`
	Perfil      *string `json:"perfil"`
}

type PerfumeRequest struct {
	Nombre      string  `json:"nombre"`
	Marca       string  `json:"marca"`
	Precio      float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Descripcion string  `json:"descripcion"`
	ImagenURL   *string `json:"imagenUrl,omitempty"`
	Genero      string  `json:"genero"`
	Fragancia   string  `json:"fragancia"`
	Notas       string  `json:"notas"`
	Perfil      string  `json:"perfil"`
}

type UpdateUserRequest struct {
	Nombre    string  `json:"nombre"`
	Correo    string  `json:"correo"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	Rut       *string `json:"rut"`
}

type ChangeRoleRequest struct {
	RolID int `json:"rolId"`
}

type CartItemRequest struct {
	PerfumeID int64 `json:"perfumeId"`
	Cantidad  int   `json:"cantidad"`
}

type CartQuantityRequest struct {
	Cantidad int `json:"cantidad"`
}

type CartItemDTO struct {
	ID             int64   `json:"id"`
	PerfumeID      int64   `json:"perfumeId"`
	PerfumeNombre  string  `json:"perfumeNombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
	Subtotal       float64 `json:"subtotal"`
}

type CartDTO struct {
	ID            int64         `json:"id"`
	UsuarioID     int64         `json:"usuarioId"`
	UsuarioNombre string        `json:"usuarioNombre"`
	Items         []CartItemDTO `json:"items"`
	FechaCreacion string        `json:"fechaCreacion"`
	Estado        string        `json:"estado"`
	Total         float64       `json:"total"`
}

type OrderRequest struct {
	CarritoID int64 `json:"carritoId"`
}

type OrderStatusRequest struct {
	Estado string `json:"estado"`
}

type OrderDTO struct {
	ID          int64    `json:"id"`
	Usuario     *UserDTO `json:"usuario"`
	Carrito     *CartDTO `json:"carrito"`
	Total       float64  `json:"total"`
	FechaPedido string   `json:"fechaPedido"`
	Estado      string   `json:"estado"`
}

type PaymentRequest struct {
	PedidoID   int64   `json:"pedidoId"`
	Monto      float64 `json:"monto"`
	MetodoPago string  `json:"metodoPago"`
}

type PaymentDTO struct {
	ID            int64   `json:"id"`
	PedidoID      int64   `json:"pedidoId"`
	Monto         float64 `json:"monto"`
	MetodoPago    string  `json:"metodoPago"`
	Estado        string  `json:"estado"`
	FechaPago     string  `json:"fechaPago"`
	TransaccionID *string `json:"transaccionId"`
}
