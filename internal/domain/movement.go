package domain

import (
	"fmt"
	"time"
)

// MovementType is the direction of a stock movement.
type MovementType string

// Movement type constants.
const (
	MovementEntrada MovementType = "entrada"
	MovementSaida   MovementType = "saida"
)

// ParseMovementType validates a raw movement type.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementEntrada, MovementSaida:
		return MovementType(s), nil
	default:
		return "", fmt.Errorf("invalid movement type %q", s)
	}
}

// Delta is the signed change applied to the product quantity.
func (t MovementType) Delta(quantity int) int {
	if t == MovementSaida {
		return -quantity
	}
	return quantity
}

// Movement records a change in a product's stock.
type Movement struct {
	ID          string       `json:"id"           db:"id"`
	ProductID   string       `json:"product_id"   db:"product_id"`
	ProductNome string       `json:"product_nome" db:"product_nome"`
	Quantity    int          `json:"quantity"     db:"quantity"`
	Type        MovementType `json:"type"         db:"type"`
	Observacao  string       `json:"observacao"   db:"observacao"`
	UserID      string       `json:"user_id"      db:"user_id"`
	Timestamp   time.Time    `json:"timestamp"    db:"created_at"`
}

// MovementInput is the movement form.
type MovementInput struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Type       string `json:"type"`
	Observacao string `json:"observacao"`
}
