package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
)

// CartService provides business logic for shopping cart operations.
// Adding or changing items checks stock but never reserves it.
type CartService interface {
	// GetOrCreateActive returns the owner's active cart, creating an empty
	// one when none exists. A guest owner without a session token gets a
	// freshly generated one, returned on the cart.
	GetOrCreateActive(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	GetActiveCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID int64) (*domain.Cart, error)

	// AddItem adds quantity units of a product, incrementing an existing line.
	AddItem(ctx context.Context, cartID, productID int64, quantity int32) (*domain.Cart, error)

	// SetQuantity replaces the quantity of a line already in the cart.
	SetQuantity(ctx context.Context, cartID, productID int64, quantity int32) (*domain.Cart, error)

	// RemoveItem deletes a line. When it was the last one the cart itself is
	// deleted and the returned cart is nil.
	RemoveItem(ctx context.Context, cartID, productID int64) (*domain.Cart, error)

	DeleteCart(ctx context.Context, cartID int64) error
}

type cartService struct {
	Deps
}

// NewCartService creates a new CartService instance
func NewCartService(deps Deps) CartService {
	return &cartService{Deps: deps.withDefaults()}
}

func (s *cartService) GetOrCreateActive(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	if owner.IsGuest() && owner.SessionID == "" {
		sessionID, err := GenerateSessionID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session ID: %w", err)
		}
		owner.SessionID = sessionID
	}

	c, created, err := getOrCreateCart(ctx, s.Store, owner)
	if err != nil {
		return nil, err
	}
	if created {
		s.Metrics.CartCreated(owner.IsGuest())
		s.Logger.InfoContext(ctx, "Cart created", "cart_id", c.ID, "guest", owner.IsGuest())
	}
	return loadCart(ctx, s.Store, c)
}

func (s *cartService) GetActiveCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	c, err := findActiveCart(ctx, s.Store, owner)
	if err != nil {
		return nil, err
	}
	return loadCart(ctx, s.Store, c)
}

func (s *cartService) GetCart(ctx context.Context, cartID int64) (*domain.Cart, error) {
	c, err := s.Store.GetCart(ctx, cartID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return loadCart(ctx, s.Store, c)
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var cart *domain.Cart
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		c, err := lockActiveCart(ctx, q, cartID)
		if err != nil {
			return err
		}

		p, err := lookupProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		total := int64(quantity)
		existing, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: cartID, ProductID: productID})
		switch {
		case err == nil:
			total += int64(existing.Quantity)
		case !repository.IsNotFound(err):
			return fmt.Errorf("failed to get cart item: %w", err)
		}
		if total > int64(p.StockQuantity) {
			return domain.InsufficientStock("cart.add_item", p.ID, p.StockQuantity, clampQuantity(total))
		}

		if err := putCartLine(ctx, q, "cart.add_item", c.ID, p, int32(total)); err != nil {
			return err
		}

		cart, err = loadCart(ctx, q, c)
		return err
	})
	if err != nil {
		if domain.IsCode(err, domain.EINSUFFICIENTSTOCK) {
			s.Metrics.CartItemAdded("insufficient_stock")
		}
		return nil, err
	}

	s.Metrics.CartItemAdded("ok")
	return cart, nil
}

func (s *cartService) SetQuantity(ctx context.Context, cartID, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var cart *domain.Cart
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		c, err := lockActiveCart(ctx, q, cartID)
		if err != nil {
			return err
		}

		if _, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: cartID, ProductID: productID}); err != nil {
			if repository.IsNotFound(err) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("failed to get cart item: %w", err)
		}

		p, err := lookupProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		if err := putCartLine(ctx, q, "cart.set_quantity", c.ID, p, quantity); err != nil {
			return err
		}

		cart, err = loadCart(ctx, q, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		c, err := lockActiveCart(ctx, q, cartID)
		if err != nil {
			return err
		}

		n, err := q.DeleteCartItem(ctx, repository.DeleteCartItemParams{CartID: cartID, ProductID: productID})
		if err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		if n == 0 {
			return ErrCartItemNotFound
		}

		remaining, err := q.CountCartItems(ctx, cartID)
		if err != nil {
			return fmt.Errorf("failed to count cart items: %w", err)
		}
		if remaining == 0 {
			if _, err := q.DeleteCart(ctx, cartID); err != nil {
				return fmt.Errorf("failed to delete empty cart: %w", err)
			}
			return nil
		}

		if err := q.TouchCart(ctx, cartID); err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}
		cart, err = loadCart(ctx, q, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	if cart == nil {
		s.Metrics.CartDeleted("emptied", 1)
		s.Logger.InfoContext(ctx, "Cart deleted after last item removed", "cart_id", cartID)
	}
	return cart, nil
}

func (s *cartService) DeleteCart(ctx context.Context, cartID int64) error {
	n, err := s.Store.DeleteCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if n == 0 {
		return ErrCartNotFound
	}
	s.Metrics.CartDeleted("explicit", n)
	return nil
}

// lockActiveCart locks the cart row and checks it can still be mutated.
func lockActiveCart(ctx context.Context, q repository.Querier, cartID int64) (repository.Cart, error) {
	c, err := q.GetCartForUpdate(ctx, cartID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.Cart{}, ErrCartNotFound
		}
		return repository.Cart{}, fmt.Errorf("failed to lock cart: %w", err)
	}
	if domain.CartStatus(c.Status) != domain.CartStatusActive {
		return repository.Cart{}, ErrCartAlreadyConverted
	}
	return c, nil
}

// putCartLine writes the line for p with the final quantity, pricing it at
// the product's current effective price. quantity is soft-checked against
// stock; nothing is reserved.
func putCartLine(ctx context.Context, q repository.Querier, op string, cartID int64, p repository.Product, quantity int32) error {
	if p.StockQuantity < quantity {
		return domain.InsufficientStock(op, p.ID, p.StockQuantity, quantity)
	}

	price := productFromRow(p).EffectivePrice()
	if _, err := q.UpsertCartItem(ctx, repository.UpsertCartItemParams{
		CartID:    cartID,
		ProductID: p.ID,
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  domain.LineSubtotal(price, quantity),
	}); err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}

	if err := q.TouchCart(ctx, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}

// clampQuantity narrows a summed line quantity to int32, saturating at
// math.MaxInt32.
func clampQuantity(n int64) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

// findActiveCart returns the owner's active cart or ErrCartNotFound.
func findActiveCart(ctx context.Context, q repository.Querier, owner domain.Owner) (repository.Cart, error) {
	var (
		c   repository.Cart
		err error
	)
	if owner.IsGuest() {
		if owner.SessionID == "" {
			return repository.Cart{}, ErrMissingSession
		}
		c, err = q.GetActiveCartBySession(ctx, owner.SessionID)
	} else {
		c, err = q.GetActiveCartByUser(ctx, *owner.UserID)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.Cart{}, ErrCartNotFound
		}
		return repository.Cart{}, fmt.Errorf("failed to get active cart: %w", err)
	}
	return c, nil
}

// getOrCreateCart returns the owner's active cart, creating it if needed.
// Losing a concurrent create to the one-active-cart index re-reads the
// winner's cart.
func getOrCreateCart(ctx context.Context, q repository.Querier, owner domain.Owner) (repository.Cart, bool, error) {
	c, err := findActiveCart(ctx, q, owner)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return repository.Cart{}, false, err
	}

	params := repository.CreateCartParams{UserID: toInt8(owner.UserID)}
	if owner.IsGuest() {
		params.SessionID = pgtype.Text{String: owner.SessionID, Valid: true}
	}

	c, err = q.CreateCart(ctx, params)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			c, err = findActiveCart(ctx, q, owner)
			return c, false, err
		}
		return repository.Cart{}, false, fmt.Errorf("failed to create cart: %w", err)
	}
	return c, true, nil
}

func loadCart(ctx context.Context, q repository.Querier, c repository.Cart) (*domain.Cart, error) {
	items, err := q.ListCartItems(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return cartFromRows(c, items), nil
}
