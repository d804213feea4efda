package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/events/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrderService_PublishesAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	f := newFixture(t)
	publisher := mock.NewMockPublisher(ctrl)
	f.deps.Publisher = publisher
	svc := NewOrderService(f.deps)
	p := f.product(t, "10", 10)

	var created, cancelled events.OrderEvent
	gomock.InOrder(
		publisher.EXPECT().
			Publish(gomock.Any(), events.OrderCreated, gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, _, _ string, payload any) {
				created = payload.(events.OrderEvent)
			}).
			Return(nil),
		publisher.EXPECT().
			Publish(gomock.Any(), events.OrderCancelled, gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, _, _ string, payload any) {
				cancelled = payload.(events.OrderEvent)
			}).
			Return(nil),
	)

	order, err := svc.CreateOrder(ctx, CreateOrderParams{UserID: 3, Items: []OrderLine{{ProductID: p.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, order.ID, 3, "sem stock na loja")
	require.NoError(t, err)

	assert.Equal(t, order.ID, created.OrderID)
	assert.Equal(t, "20.00", created.Total)
	require.Len(t, created.Items, 1)
	assert.Equal(t, int32(2), created.Items[0].Quantity)

	assert.Equal(t, string(domain.OrderStatusCancelled), cancelled.Status)
	assert.Equal(t, "sem stock na loja", cancelled.Reason)
}

func TestOrderService_RolledBackWorkPublishesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	f := newFixture(t)
	// No expectations: any Publish call fails the test.
	f.deps.Publisher = mock.NewMockPublisher(ctrl)
	p := f.product(t, "10", 1)

	_, err := NewOrderService(f.deps).CreateOrder(ctx, CreateOrderParams{UserID: 3, Items: []OrderLine{{ProductID: p.ID, Quantity: 2}}})
	assert.True(t, domain.IsCode(err, domain.EINSUFFICIENTSTOCK))
	assert.Equal(t, int32(1), f.stock(t, p.ID))
}

func TestCheckout_PublishKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	f := newFixture(t)
	publisher := mock.NewMockPublisher(ctrl)
	f.deps.Publisher = publisher
	p := f.product(t, "10", 10)
	cart := f.userCart(t, 5, OrderLine{ProductID: p.ID, Quantity: 1})

	var orderKey string
	gomock.InOrder(
		publisher.EXPECT().
			Publish(gomock.Any(), events.OrderCreated, gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, _, key string, _ any) { orderKey = key }).
			Return(assert.AnError),
		publisher.EXPECT().
			Publish(gomock.Any(), events.CartConverted, strconv.FormatInt(cart.ID, 10), gomock.Any()).
			Return(nil),
	)

	order, err := NewCheckoutService(f.deps).ConvertCartToOrder(ctx, cart.ID, CheckoutParams{})
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(order.ID, 10), orderKey)
}
