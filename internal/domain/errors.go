package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOrderTerminal      = errors.New("el pedido está en un estado terminal")
)

// InsufficientStockError indica qué medicamento no tiene stock suficiente.
// errors.Is(err, ErrInsufficientStock) sigue funcionando vía Unwrap.
type InsufficientStockError struct {
	MedicationID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el medicamento %s", e.MedicationID)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// TerminalStateError indica una transición ilegal e incluye el estado actual del pedido.
type TerminalStateError struct {
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("transición ilegal: el pedido está en estado %s", e.Status)
}

func (e *TerminalStateError) Unwrap() error { return ErrOrderTerminal }
