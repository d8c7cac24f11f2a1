package dto

// PharmacyResponse ficha pública de una farmacia (sin datos de la cuenta).
type PharmacyResponse struct {
	ID        string   `json:"id"`
	TradeName string   `json:"trade_name"`
	Address   string   `json:"address,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	OpensAt   string   `json:"opens_at"`
	ClosesAt  string   `json:"closes_at"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
