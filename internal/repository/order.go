package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/e-games-api/internal/model"
)

type OrderRepository interface {
	// AddItemToPending appends an item to the user's pending order, creating the
	// order first when there is none. The item price is the product's current price.
	AddItemToPending(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (int64, error)
	GetByIDForUser(ctx context.Context, orderID int64, userID uuid.UUID) (*model.Order, error)
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (bool, error)
	DeleteItems(ctx context.Context, userID uuid.UUID, itemIDs []int64) (int64, error)
	MarkPendingDelivered(ctx context.Context, userID uuid.UUID) ([]int64, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func (r *pgOrderRepo) AddItemToPending(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (int64, error) {
	var orderID int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		orderID, err = pendingOrderID(ctx, tx, userID)
		if err != nil {
			return err
		}

		var itemID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 SELECT $1, id, $3, price FROM products WHERE id = $2
			 RETURNING id`,
			orderID, productID, quantity,
		).Scan(&itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductMissing
			}
			return fmt.Errorf("insert order item: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// pendingOrderID finds or creates the pending order and locks it. A concurrent
// insert loses on the partial unique index and re-reads the winner's row.
func pendingOrderID(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	const selectPending = `SELECT id FROM orders WHERE user_id = $1 AND status = 'Pending' FOR UPDATE`

	var id int64
	err := tx.QueryRow(ctx, selectPending, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("find pending order: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, status) VALUES ($1, 'Pending')
		 ON CONFLICT (user_id) WHERE status = 'Pending' DO NOTHING
		 RETURNING id`, userID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("create pending order: %w", err)
	}

	if err := tx.QueryRow(ctx, selectPending, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("re-read pending order: %w", err)
	}
	return id, nil
}

func (r *pgOrderRepo) GetByIDForUser(ctx context.Context, orderID int64, userID uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx,
		`SELECT id, user_id, status, creation_date FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT id, user_id, status, creation_date FROM orders WHERE id = $1`, orderID)
}

func (r *pgOrderRepo) getOne(ctx context.Context, query string, args ...any) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(&order.ID, &order.UserID, &order.Status, &order.CreationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.itemsFor(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, creation_date FROM orders
		 WHERE user_id = $1 ORDER BY creation_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	var ids []int64
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreationDate); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *pgOrderRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = ANY($1)
		 ORDER BY oi.id`, orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return items, nil
}

// UpdateItemQuantity only touches zero-priced items.
func (r *pgOrderRepo) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE order_items SET quantity = $2 WHERE id = $1 AND price = 0`, itemID, quantity)
	if err != nil {
		return false, fmt.Errorf("update order item: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgOrderRepo) DeleteItems(ctx context.Context, userID uuid.UUID, itemIDs []int64) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM order_items oi USING orders o
		 WHERE oi.order_id = o.id AND o.user_id = $1 AND oi.id = ANY($2)`,
		userID, itemIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("delete order items: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgOrderRepo) MarkPendingDelivered(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE orders SET status = 'Delivered', updated_at = NOW()
		 WHERE user_id = $1 AND status = 'Pending'
		 RETURNING id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark orders delivered: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("mark orders delivered: %w", err)
	}
	return ids, nil
}
