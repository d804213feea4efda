package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/repository"
)

const cartStatusActive = "active"

func (q *queries) activeCartFor(userID pgtype.Int8, sessionID pgtype.Text) (repository.Cart, bool) {
	for _, c := range q.st.carts {
		if c.Status != cartStatusActive {
			continue
		}
		if userID.Valid && c.UserID.Valid && c.UserID.Int64 == userID.Int64 {
			return c, true
		}
		if sessionID.Valid && c.SessionID.Valid && c.SessionID.String == sessionID.String {
			return c, true
		}
	}
	return repository.Cart{}, false
}

func (q *queries) CountCartItems(ctx context.Context, cartID int64) (int64, error) {
	defer q.enter()()
	var n int64
	for _, item := range q.st.cartItems {
		if item.CartID == cartID {
			n++
		}
	}
	return n, nil
}

func (q *queries) CreateCart(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	defer q.enter()()
	if existing, ok := q.activeCartFor(arg.UserID, arg.SessionID); ok {
		if existing.UserID.Valid {
			return repository.Cart{}, uniqueViolation("carts_one_active_per_user")
		}
		return repository.Cart{}, uniqueViolation("carts_one_active_per_session")
	}
	now := q.timestamp()
	c := repository.Cart{
		ID:        q.st.nextID(),
		UserID:    arg.UserID,
		SessionID: arg.SessionID,
		Status:    cartStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.st.carts[c.ID] = c
	return c, nil
}

func (q *queries) DeleteAbandonedGuestCarts(ctx context.Context, updatedBefore pgtype.Timestamptz) (int64, error) {
	defer q.enter()()
	var n int64
	for id, c := range q.st.carts {
		if c.Status == cartStatusActive && !c.UserID.Valid && c.UpdatedAt.Time.Before(updatedBefore.Time) {
			q.deleteCart(id)
			n++
		}
	}
	return n, nil
}

func (q *queries) deleteCart(id int64) int64 {
	if _, ok := q.st.carts[id]; !ok {
		return 0
	}
	delete(q.st.carts, id)
	for itemID, item := range q.st.cartItems {
		if item.CartID == id {
			delete(q.st.cartItems, itemID)
		}
	}
	return 1
}

func (q *queries) DeleteCart(ctx context.Context, id int64) (int64, error) {
	defer q.enter()()
	return q.deleteCart(id), nil
}

func (q *queries) DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error) {
	defer q.enter()()
	for id, item := range q.st.cartItems {
		if item.CartID == arg.CartID && item.ProductID == arg.ProductID {
			delete(q.st.cartItems, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (q *queries) GetActiveCartBySession(ctx context.Context, sessionID string) (repository.Cart, error) {
	defer q.enter()()
	c, ok := q.activeCartFor(pgtype.Int8{}, pgtype.Text{String: sessionID, Valid: true})
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (q *queries) GetActiveCartByUser(ctx context.Context, userID int64) (repository.Cart, error) {
	defer q.enter()()
	c, ok := q.activeCartFor(pgtype.Int8{Int64: userID, Valid: true}, pgtype.Text{})
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (q *queries) GetCart(ctx context.Context, id int64) (repository.Cart, error) {
	defer q.enter()()
	c, ok := q.st.carts[id]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (q *queries) GetCartForUpdate(ctx context.Context, id int64) (repository.Cart, error) {
	return q.GetCart(ctx, id)
}

func (q *queries) GetCartItem(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error) {
	defer q.enter()()
	for _, item := range q.st.cartItems {
		if item.CartID == arg.CartID && item.ProductID == arg.ProductID {
			return item, nil
		}
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (q *queries) ListCartItems(ctx context.Context, cartID int64) ([]repository.CartItem, error) {
	defer q.enter()()
	items := []repository.CartItem{}
	for _, item := range q.st.cartItems {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b repository.CartItem) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

func (q *queries) ReassignCartToUser(ctx context.Context, arg repository.ReassignCartToUserParams) (repository.Cart, error) {
	defer q.enter()()
	c, ok := q.st.carts[arg.ID]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	if c.Status == cartStatusActive {
		if other, ok := q.activeCartFor(pgtype.Int8{Int64: arg.UserID, Valid: true}, pgtype.Text{}); ok && other.ID != c.ID {
			return repository.Cart{}, uniqueViolation("carts_one_active_per_user")
		}
	}
	c.UserID = pgtype.Int8{Int64: arg.UserID, Valid: true}
	c.SessionID = pgtype.Text{}
	c.UpdatedAt = q.timestamp()
	q.st.carts[c.ID] = c
	return c, nil
}

func (q *queries) TouchCart(ctx context.Context, id int64) error {
	defer q.enter()()
	if c, ok := q.st.carts[id]; ok {
		c.UpdatedAt = q.timestamp()
		q.st.carts[id] = c
	}
	return nil
}

func (q *queries) UpdateCartStatus(ctx context.Context, arg repository.UpdateCartStatusParams) error {
	defer q.enter()()
	if c, ok := q.st.carts[arg.ID]; ok {
		c.Status = arg.Status
		c.UpdatedAt = q.timestamp()
		q.st.carts[c.ID] = c
	}
	return nil
}

func (q *queries) UpsertCartItem(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	defer q.enter()()
	if _, ok := q.st.carts[arg.CartID]; !ok {
		return repository.CartItem{}, foreignKeyViolation("cart_items_cart_id_fkey")
	}
	if _, ok := q.st.products[arg.ProductID]; !ok {
		return repository.CartItem{}, foreignKeyViolation("cart_items_product_id_fkey")
	}
	if arg.Quantity <= 0 {
		return repository.CartItem{}, checkViolation("cart_items_quantity_check")
	}

	now := q.timestamp()
	for id, item := range q.st.cartItems {
		if item.CartID == arg.CartID && item.ProductID == arg.ProductID {
			item.Quantity = arg.Quantity
			item.UnitPrice = arg.UnitPrice
			item.Subtotal = arg.Subtotal
			item.UpdatedAt = now
			q.st.cartItems[id] = item
			return item, nil
		}
	}

	item := repository.CartItem{
		ID:        q.st.nextID(),
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		Subtotal:  arg.Subtotal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.st.cartItems[item.ID] = item
	return item, nil
}
