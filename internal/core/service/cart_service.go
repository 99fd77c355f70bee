package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/port"
)

var ErrProductNotFound = errors.New("product not found")

// CartService owns the session cart: it loads the durable snapshot, applies
// the pure cart mutation and writes the snapshot back on every successful
// change. Two sessions for the same user can diverge; checkout-time stock
// revalidation is the integrity backstop.
type CartService struct {
	carts   port.CartRepository
	catalog port.CatalogRepository
}

func NewCartService(carts port.CartRepository, catalog port.CatalogRepository) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

func (s *CartService) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if cart == nil {
		cart = &domain.Cart{}
	}
	return cart, nil
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.load(ctx, sessionID)
}

// AddItem returns the cart and whether the addition was accepted. A false
// result means the requested quantity would exceed the product's effective
// stock; the cart is unchanged and the snapshot untouched.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID, size string, quantity int) (*domain.Cart, bool, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, false, ErrProductNotFound
	}

	if !cart.AddItem(*product, size, quantity) {
		return cart, false, nil
	}

	if err := s.carts.Save(ctx, sessionID, *cart); err != nil {
		return nil, false, fmt.Errorf("save cart snapshot: %w", err)
	}
	return cart, true, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int, size string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(productID, quantity, size)

	if err := s.carts.Save(ctx, sessionID, *cart); err != nil {
		return nil, fmt.Errorf("save cart snapshot: %w", err)
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID, size string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(productID, size)

	if err := s.carts.Save(ctx, sessionID, *cart); err != nil {
		return nil, fmt.Errorf("save cart snapshot: %w", err)
	}
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Clear()

	if err := s.carts.Save(ctx, sessionID, *cart); err != nil {
		return nil, fmt.Errorf("save cart snapshot: %w", err)
	}
	return cart, nil
}
