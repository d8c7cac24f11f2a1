package entity

import "time"

// Tipos de usuario válidos.
const (
	RoleClient   = "cliente"
	RolePharmacy = "farmacia"
)

// User identidad base compartida entre Cliente y Farmacia.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Role         string // cliente, farmacia
	CreatedAt    time.Time
}

// Principal es el actor autenticado de una petición: Cliente o Farmacia.
// Las operaciones específicas de cada rol hacen type switch sobre la variante.
type Principal interface {
	PrincipalID() string
	PrincipalRole() string
}

// Client variante cliente de Principal.
type Client struct {
	User
	DNI             string
	BirthDate       *time.Time
	HealthInsurance string // obra social, opcional
}

func (c *Client) PrincipalID() string   { return c.ID }
func (c *Client) PrincipalRole() string { return RoleClient }

// Pharmacy variante farmacia de Principal.
type Pharmacy struct {
	User
	TradeName string
	CUIT      string
	OpensAt   string // HH:MM
	ClosesAt  string // HH:MM
	Latitude  *float64
	Longitude *float64
}

func (p *Pharmacy) PrincipalID() string   { return p.ID }
func (p *Pharmacy) PrincipalRole() string { return RolePharmacy }
