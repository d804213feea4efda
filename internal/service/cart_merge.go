package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// CartMergeService folds a guest cart into the user's cart at login.
type CartMergeService interface {
	// Merge reconciles the guest cart for sessionID into userID's active
	// cart and returns the resulting user cart. Stock is never consumed.
	//
	// Merged quantities are clamped to available stock and lines that clamp
	// to zero are dropped; in strict mode a shortfall fails with
	// *domain.InsufficientStockError instead.
	Merge(ctx context.Context, sessionID string, userID int64) (*domain.Cart, error)
}

type cartMergeService struct {
	Deps
	strict bool
}

// NewCartMergeService creates a new CartMergeService instance
func NewCartMergeService(deps Deps, strict bool) CartMergeService {
	return &cartMergeService{Deps: deps.withDefaults(), strict: strict}
}

func (s *cartMergeService) Merge(ctx context.Context, sessionID string, userID int64) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "CartMerge.Merge", attribute.Int64("user_id", userID))
	defer func() { endSpan(span, err) }()

	var path string
	err = s.Store.ExecTx(ctx, func(q repository.Querier) error {
		owner := domain.UserOwner(userID)

		var guest repository.Cart
		found := false
		if sessionID != "" {
			g, err := q.GetActiveCartBySession(ctx, sessionID)
			switch {
			case err == nil:
				// A concurrent merge may have re-owned or deleted the cart
				// between the read and the lock.
				guest, err = q.GetCartForUpdate(ctx, g.ID)
				switch {
				case err == nil:
					found = isGuestCart(guest, sessionID)
				case !repository.IsNotFound(err):
					return fmt.Errorf("failed to lock guest cart: %w", err)
				}
			case !repository.IsNotFound(err):
				return fmt.Errorf("failed to get guest cart: %w", err)
			}
		}

		if !found {
			path = "no_guest_cart"
			c, _, err := getOrCreateCart(ctx, q, owner)
			if err != nil {
				return err
			}
			cart, err = loadCart(ctx, q, c)
			return err
		}

		target, err := findActiveCart(ctx, q, owner)
		if errors.Is(err, ErrCartNotFound) {
			path = "reowned"
			c, err := q.ReassignCartToUser(ctx, repository.ReassignCartToUserParams{ID: guest.ID, UserID: userID})
			if err != nil {
				return fmt.Errorf("failed to reassign cart: %w", err)
			}
			cart, err = loadCart(ctx, q, c)
			return err
		}
		if err != nil {
			return err
		}
		if target.ID == guest.ID {
			path = "no_guest_cart"
			cart, err = loadCart(ctx, q, target)
			return err
		}

		path = "merged"
		target, err = q.GetCartForUpdate(ctx, target.ID)
		if err != nil {
			return fmt.Errorf("failed to lock user cart: %w", err)
		}
		if err := s.mergeItems(ctx, q, guest.ID, target.ID); err != nil {
			return err
		}
		if _, err := q.DeleteCart(ctx, guest.ID); err != nil {
			return fmt.Errorf("failed to delete guest cart: %w", err)
		}
		if err := q.TouchCart(ctx, target.ID); err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}

		cart, err = loadCart(ctx, q, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.CartMerged(path)
	if path == "merged" {
		s.Metrics.CartDeleted("merged", 1)
	}
	s.Logger.InfoContext(ctx, "Carts merged",
		"user_id", userID,
		"cart_id", cart.ID,
		"path", path,
	)
	return cart, nil
}

// mergeItems moves every guest line onto the target cart.
func (s *cartMergeService) mergeItems(ctx context.Context, q repository.Querier, guestID, targetID int64) error {
	guestItems, err := q.ListCartItems(ctx, guestID)
	if err != nil {
		return fmt.Errorf("failed to list guest cart items: %w", err)
	}

	for _, item := range guestItems {
		p, err := lookupProduct(ctx, q, item.ProductID)
		if err != nil {
			return err
		}

		merged := int64(item.Quantity)
		existing, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: targetID, ProductID: item.ProductID})
		switch {
		case err == nil:
			merged += int64(existing.Quantity)
		case !repository.IsNotFound(err):
			return fmt.Errorf("failed to get cart item: %w", err)
		}

		quantity := merged
		if quantity > int64(p.StockQuantity) {
			if s.strict {
				return domain.InsufficientStock("cart.merge", p.ID, p.StockQuantity, clampQuantity(merged))
			}
			quantity = int64(max(p.StockQuantity, 0))
		}
		if quantity == 0 {
			s.Logger.InfoContext(ctx, "Dropped out-of-stock line from merge",
				"cart_id", targetID,
				"product_id", p.ID,
				"requested", merged,
			)
			continue
		}
		if quantity < merged {
			s.Logger.InfoContext(ctx, "Clamped merged line to available stock",
				"cart_id", targetID,
				"product_id", p.ID,
				"requested", merged,
				"quantity", quantity,
			)
		}

		if err := putCartLine(ctx, q, "cart.merge", targetID, p, int32(quantity)); err != nil {
			return err
		}
	}
	return nil
}

// isGuestCart reports whether c is still the active guest cart of sessionID.
func isGuestCart(c repository.Cart, sessionID string) bool {
	return domain.CartStatus(c.Status) == domain.CartStatusActive &&
		!c.UserID.Valid &&
		c.SessionID.Valid && c.SessionID.String == sessionID
}
