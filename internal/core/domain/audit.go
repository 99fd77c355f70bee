package domain

import "time"

// AuditEntry is an immutable record of a staff or system action on an order.
type AuditEntry struct {
	Action      string      `json:"action"`
	Description string      `json:"description"`
	Actor       string      `json:"actor"`
	OrderID     string      `json:"order_id"`
	NewStatus   OrderStatus `json:"new_status"`
	At          time.Time   `json:"at"`
}
