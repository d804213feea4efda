package repository

import (
	"context"
)

const getDeliveryType = `-- name: GetDeliveryType :one
SELECT id, name, surcharge FROM delivery_types WHERE id = $1
`

func (q *Queries) GetDeliveryType(ctx context.Context, id int64) (DeliveryType, error) {
	row := q.db.QueryRow(ctx, getDeliveryType, id)
	var i DeliveryType
	err := row.Scan(&i.ID, &i.Name, &i.Surcharge)
	return i, err
}

const getPaymentType = `-- name: GetPaymentType :one
SELECT id, name FROM payment_types WHERE id = $1
`

func (q *Queries) GetPaymentType(ctx context.Context, id int64) (PaymentType, error) {
	row := q.db.QueryRow(ctx, getPaymentType, id)
	var i PaymentType
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const listPaymentTypes = `-- name: ListPaymentTypes :many
SELECT id, name FROM payment_types ORDER BY id
`

func (q *Queries) ListPaymentTypes(ctx context.Context) ([]PaymentType, error) {
	rows, err := q.db.Query(ctx, listPaymentTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PaymentType{}
	for rows.Next() {
		var i PaymentType
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
