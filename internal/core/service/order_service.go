package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/port"
)

var ErrOrderNotFound = errors.New("order not found")

const webhookActor = "payment-webhook"

// OrderService drives the order status machine. Each transition is planned
// as a pure effect list and then executed: persist (compare-and-swap),
// conditional stock deduction/restoration, conditional notification, audit,
// cache-invalidation event. Duplicate transitions to the same target resolve
// as success and never repeat side effects.
type OrderService struct {
	orders   port.OrderRepository
	ledger   port.StockLedger
	notifier port.Notifier
	events   port.EventPublisher
	auth     port.Authorizer
}

func NewOrderService(
	orders port.OrderRepository,
	ledger port.StockLedger,
	notifier port.Notifier,
	events port.EventPublisher,
	auth port.Authorizer,
) *OrderService {
	return &OrderService{
		orders:   orders,
		ledger:   ledger,
		notifier: notifier,
		events:   events,
		auth:     auth,
	}
}

// UpdateStatus is the staff-facing transition command. The caller is
// authenticated before any read or write.
func (s *OrderService) UpdateStatus(ctx context.Context, token, orderID string, target domain.OrderStatus, carrier, tracking string) error {
	actor, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if actor == nil || !actor.Staff {
		return ErrUnauthorized
	}
	return s.applyTransition(ctx, actor.Name, orderID, target, carrier, tracking)
}

// ConfirmPayment is the gateway callback: an idempotent pending -> paid.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID string) error {
	return s.applyTransition(ctx, webhookActor, orderID, domain.OrderStatusPaid, "", "")
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) applyTransition(ctx context.Context, actor, orderID string, target domain.OrderStatus, carrier, tracking string) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	effects, err := domain.PlanTransition(*order, target)
	if err != nil {
		return err
	}

	for _, effect := range effects {
		switch effect {
		case domain.EffectPersistStatus:
			ok, err := s.orders.UpdateStatusCAS(ctx, orderID, order.Status, target, carrier, tracking)
			if err != nil {
				return fmt.Errorf("persist status: %w", err)
			}
			if !ok {
				// Lost the race. If a concurrent duplicate already landed
				// on the target this is a success; anything else is an
				// illegal edge from the new status. The winner may still
				// owe the deduction if its own attempt died between the
				// swap and the ledger write.
				current, err := s.GetOrder(ctx, orderID)
				if err != nil {
					return err
				}
				if current.Status != target {
					return &domain.TransitionError{From: current.Status, To: target}
				}
				if target == domain.OrderStatusPaid && !current.StockDeducted {
					if err := s.ledger.Deduct(ctx, orderID); err != nil {
						log.Printf("CRITICAL: order %s is %s but stock deduction failed: %v", orderID, target, err)
						return fmt.Errorf("deduct stock: %w", err)
					}
				}
				return nil
			}

		case domain.EffectDeductStock:
			if err := s.ledger.Deduct(ctx, orderID); err != nil {
				log.Printf("CRITICAL: order %s is %s but stock deduction failed: %v", orderID, target, err)
				return fmt.Errorf("deduct stock: %w", err)
			}

		case domain.EffectRestoreStock:
			if err := s.ledger.Restore(ctx, orderID); err != nil {
				log.Printf("CRITICAL: order %s cancelled but stock restoration failed: %v", orderID, err)
				return fmt.Errorf("restore stock: %w", err)
			}

		case domain.EffectNotifyShipped:
			notice := port.ShippedNotice{
				To:             order.CustomerEmail,
				OrderID:        order.ID,
				CustomerName:   order.CustomerName,
				Language:       order.Language,
				Carrier:        carrier,
				TrackingNumber: tracking,
				Lines:          order.Lines,
			}
			// Status is already committed; a failed send is logged, never
			// rolled back.
			if err := s.notifier.SendShipped(ctx, notice); err != nil {
				log.Printf("failed to send shipped email for order %s: %v", orderID, err)
			}

		case domain.EffectAudit:
			entry := domain.AuditEntry{
				Action:      "ORDER_UPDATE",
				Description: fmt.Sprintf("Updated order #%s status to %s", shortRef(orderID), target),
				Actor:       actor,
				OrderID:     orderID,
				NewStatus:   target,
				At:          time.Now(),
			}
			if err := s.orders.AppendAudit(ctx, entry); err != nil {
				log.Printf("failed to append audit entry for order %s: %v", orderID, err)
			}

		case domain.EffectPublishStatus:
			if err := s.events.PublishOrderStatus(ctx, orderID, target, time.Now()); err != nil {
				log.Printf("failed to publish status event for order %s: %v", orderID, err)
			}
		}
	}

	return nil
}

func shortRef(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
