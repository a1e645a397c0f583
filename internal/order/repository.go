package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "address", "city", "postal_code",
	"notes", "products", "total", "shipping_method", "payment_method", "is_delivered", "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o            Order
		notes        sql.NullString
		productsJSON []byte
	)

	err := row.Scan(
		&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.Phone, &o.Address, &o.City, &o.PostalCode,
		&notes, &productsJSON, &o.Total, &o.ShippingMethod, &o.PaymentMethod, &o.IsDelivered, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		o.Notes = &notes.String
	}

	o.Products = []LineItem{}
	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &o.Products); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
	}

	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	productsJSON, err := json.Marshal(o.Products)
	if err != nil {
		return apperr.Store("encode line items", err)
	}

	var notes sql.NullString
	if o.Notes != nil {
		notes = sql.NullString{String: *o.Notes, Valid: true}
	}

	query, args, err := psql.Insert("orders").SetMap(map[string]any{
		"id":              o.ID,
		"first_name":      o.FirstName,
		"last_name":       o.LastName,
		"email":           o.Email,
		"phone":           o.Phone,
		"address":         o.Address,
		"city":            o.City,
		"postal_code":     o.PostalCode,
		"notes":           notes,
		"products":        string(productsJSON),
		"total":           o.Total,
		"shipping_method": o.ShippingMethod,
		"payment_method":  o.PaymentMethod,
		"is_delivered":    o.IsDelivered,
		"created_at":      o.CreatedAt,
	}).ToSql()
	if err != nil {
		return apperr.Store("build order insert", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Store("insert order", err)
	}
	return nil
}

// List returns every order, newest first.
func (r *repository) List(ctx context.Context) ([]Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, apperr.Store("build order list query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("list orders", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Store("scan order", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterate orders", err)
	}
	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperr.Store("build order query", err)
	}

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperr.Store("get order", err)
	}
	return o, nil
}

// MarkDelivered sets the delivered flag and returns the updated order.
// Setting it on an already delivered order is not an error.
func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID) (*Order, error) {
	query, args, err := psql.Update("orders").
		Set("is_delivered", true).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, apperr.Store("build deliver update", err)
	}

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperr.Store("mark order delivered", err)
	}
	return o, nil
}
