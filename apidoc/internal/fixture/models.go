// Package fixture declares the endpoints the doc generator tests analyse.
package fixture

import "time"

// Base holds the fields every stored record carries.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

type Part struct {
	SKU      string   `json:"sku"`
	Priority Priority `json:"priority"`
}
