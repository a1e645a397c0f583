package review

import (
	"context"
	"database/sql"

	"storefront-be/internal/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	List(ctx context.Context, productID *uuid.UUID) ([]Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) Create(ctx context.Context, rv *Review) error {
	var tel sql.NullString
	if rv.Tel != nil {
		tel = sql.NullString{String: *rv.Tel, Valid: true}
	}

	query, args, err := psql.Insert("reviews").
		Columns("id", "product_id", "nom", "prenom", "email", "tel", "stars", "commentaire", "created_at").
		Values(rv.ID, rv.ProductID, rv.Nom, rv.Prenom, rv.Email, tel, rv.Stars, rv.Commentaire, rv.CreatedAt).
		ToSql()
	if err != nil {
		return apperr.Store("build review insert", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Store("insert review", err)
	}
	return nil
}

// List returns reviews newest first, optionally restricted to one product.
func (r *repository) List(ctx context.Context, productID *uuid.UUID) ([]Review, error) {
	q := psql.Select("id", "product_id", "nom", "prenom", "email", "tel", "stars", "commentaire", "created_at").
		From("reviews")
	if productID != nil {
		q = q.Where(sq.Eq{"product_id": *productID})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, apperr.Store("build review list query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("list reviews", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var (
			rv  Review
			tel sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.Nom, &rv.Prenom, &rv.Email, &tel,
			&rv.Stars, &rv.Commentaire, &rv.CreatedAt); err != nil {
			return nil, apperr.Store("scan review", err)
		}
		if tel.Valid {
			rv.Tel = &tel.String
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterate reviews", err)
	}
	return reviews, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperr.Store("delete review", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("delete review", err)
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
