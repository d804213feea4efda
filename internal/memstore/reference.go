package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/loja1/projectohibrido/internal/repository"
)

func (q *queries) GetDeliveryType(ctx context.Context, id int64) (repository.DeliveryType, error) {
	defer q.enter()()
	dt, ok := q.st.deliveryTypes[id]
	if !ok {
		return repository.DeliveryType{}, pgx.ErrNoRows
	}
	return dt, nil
}

func (q *queries) GetPaymentType(ctx context.Context, id int64) (repository.PaymentType, error) {
	defer q.enter()()
	pt, ok := q.st.paymentTypes[id]
	if !ok {
		return repository.PaymentType{}, pgx.ErrNoRows
	}
	return pt, nil
}

func (q *queries) ListPaymentTypes(ctx context.Context) ([]repository.PaymentType, error) {
	defer q.enter()()
	types := make([]repository.PaymentType, 0, len(q.st.paymentTypes))
	for _, pt := range q.st.paymentTypes {
		types = append(types, pt)
	}
	slices.SortFunc(types, func(a, b repository.PaymentType) int { return cmp.Compare(a.ID, b.ID) })
	return types, nil
}
