package domain

import "time"

// MovementType classifies a manual stock movement.
type MovementType string

const (
	MovementIn         MovementType = "entrada"
	MovementOut        MovementType = "saida"
	MovementAdjustment MovementType = "ajuste"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is a journal row recording a manual stock change.
type StockMovement struct {
	ID               int64
	ProductID        int64
	Type             MovementType
	Quantity         int32
	PreviousQuantity int32
	NewQuantity      int32
	Reason           string
	UserID           *int64
	CreatedAt        time.Time
}
