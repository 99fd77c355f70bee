package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

// ShippedNotice carries everything the shipped email needs, snapshotted from
// the order so the dispatcher never reads storage.
type ShippedNotice struct {
	To             string
	OrderID        string
	CustomerName   string
	Language       string
	Carrier        string
	TrackingNumber string
	Lines          []domain.OrderLine
}

// Notifier is the outbound email collaborator. Send failures must never roll
// back the state change that triggered them.
type Notifier interface {
	SendShipped(ctx context.Context, notice ShippedNotice) error
}

type PaymentItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PaymentGateway creates a payment intent with the external processor and
// returns the redirect URL the customer completes the payment at.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, orderID string, items []PaymentItem) (string, error)
}

type Actor struct {
	ID    string
	Name  string
	Staff bool
}

// Authorizer resolves a bearer token to an actor. A nil actor with nil error
// means the token is unknown.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (*Actor, error)
}

// EventPublisher signals a committed status change so externally cached
// order views can refresh. Best effort: failures are logged, never fatal.
type EventPublisher interface {
	PublishOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error
}
