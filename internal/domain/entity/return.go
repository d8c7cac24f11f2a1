package entity

import "time"

// OrderReturn registro de devolución de un pedido. La máquina de estados
// impide repetir la transición, así que en la práctica hay a lo sumo uno.
type OrderReturn struct {
	ID        string
	OrderID   string
	Reason    string // opcional
	CreatedAt time.Time
}
