package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, items []Decrement) ([]DecrementOutcome, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var productColumns = []string{
	"id", "title", "price", "price_after_solde", "category", "description", "images",
	"xs_quantity", "s_quantity", "m_quantity", "l_quantity",
	"xl_quantity", "xxl_quantity", "xxxl_quantity",
	"eur_quantities", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p          Product
		salePrice  decimal.NullDecimal
		imagesJSON []byte
		eurJSON    []byte
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Price, &salePrice, &p.Category, &p.Description, &imagesJSON,
		&p.XS, &p.S, &p.M, &p.L, &p.XL, &p.XXL, &p.XXXL,
		&eurJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if salePrice.Valid {
		p.PriceAfterSolde = &salePrice.Decimal
	}

	p.Images = []Image{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}

	if len(eurJSON) > 0 {
		if err := json.Unmarshal(eurJSON, &p.EurQuantities); err != nil {
			return nil, fmt.Errorf("decode eur quantities: %w", err)
		}
		if len(p.EurQuantities) == 0 {
			p.EurQuantities = nil
		}
	}

	return &p, nil
}

// List returns products newest first. An empty category means no filter;
// the comparison is case-insensitive.
func (r *repository) List(ctx context.Context, category string) ([]Product, error) {
	q := psql.Select(productColumns...).From("products")
	if category != "" {
		q = q.Where(sq.Expr("LOWER(category) = LOWER(?)", category))
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, apperr.Store("build product list query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("list products", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Store("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterate products", err)
	}

	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperr.Store("build product query", err)
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperr.Store("get product", err)
	}
	return p, nil
}

// writableColumns maps every column an admin write sets to its value.
func writableColumns(p *Product) (map[string]any, error) {
	images := p.Images
	if images == nil {
		images = []Image{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	eur := p.EurQuantities
	if eur == nil {
		eur = map[string]int{}
	}
	eurJSON, err := json.Marshal(eur)
	if err != nil {
		return nil, err
	}

	var salePrice decimal.NullDecimal
	if p.PriceAfterSolde != nil {
		salePrice = decimal.NewNullDecimal(*p.PriceAfterSolde)
	}

	// JSONB parameters go over the wire as text; lib/pq would send []byte as bytea.
	return map[string]any{
		"title":             p.Title,
		"price":             p.Price,
		"price_after_solde": salePrice,
		"category":          string(p.Category),
		"description":       p.Description,
		"images":            string(imagesJSON),
		"xs_quantity":       p.XS,
		"s_quantity":        p.S,
		"m_quantity":        p.M,
		"l_quantity":        p.L,
		"xl_quantity":       p.XL,
		"xxl_quantity":      p.XXL,
		"xxxl_quantity":     p.XXXL,
		"eur_quantities":    string(eurJSON),
		"updated_at":        p.UpdatedAt,
	}, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	values, err := writableColumns(p)
	if err != nil {
		return apperr.Store("encode product", err)
	}
	values["id"] = p.ID
	values["created_at"] = p.CreatedAt

	query, args, err := psql.Insert("products").SetMap(values).ToSql()
	if err != nil {
		return apperr.Store("build product insert", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Store("insert product", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	values, err := writableColumns(p)
	if err != nil {
		return apperr.Store("encode product", err)
	}

	query, args, err := psql.Update("products").
		SetMap(values).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return apperr.Store("build product update", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Store("update product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("update product", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperr.Store("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("delete product", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock applies every decrement as a guarded update
// (counter >= quantity) inside one transaction. A decrement that fails the
// guard leaves the counter untouched and is reported, it does not abort the
// batch. Outcomes are returned in input order.
func (r *repository) DecrementStock(ctx context.Context, items []Decrement) ([]DecrementOutcome, error) {
	outcomes := make([]DecrementOutcome, len(items))
	if len(items) == 0 {
		return outcomes, nil
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DecrementStock"),
		zap.Int("item_count", len(items)),
	)

	// Rows are locked in id order so concurrent batches cannot deadlock.
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].ProductID.String() < items[order[b]].ProductID.String()
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Store("begin stock transaction", err)
	}
	defer tx.Rollback()

	for _, idx := range order {
		item := items[idx]

		var outcome DecrementOutcome
		if item.EurLabel != "" {
			outcome, err = decrementEur(ctx, tx, item)
		} else {
			outcome, err = decrementCounter(ctx, tx, item)
		}
		if err != nil {
			return nil, err
		}
		outcomes[idx] = outcome

		if outcome != OutcomeApplied {
			log.Debug("stock decrement skipped",
				zap.String("product_id", item.ProductID.String()),
				zap.String("size", item.Label()),
				zap.Int("quantity", item.Quantity),
				zap.Int("outcome", int(outcome)),
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Store("commit stock transaction", err)
	}
	return outcomes, nil
}

func decrementCounter(ctx context.Context, tx *sql.Tx, item Decrement) (DecrementOutcome, error) {
	col := item.Size.Column()
	query, args, err := psql.Update("products").
		Set(col, sq.Expr(col+" - ?", item.Quantity)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": item.ProductID}).
		Where(sq.GtOrEq{col: item.Quantity}).
		ToSql()
	if err != nil {
		return 0, apperr.Store("build stock update", err)
	}

	applied, err := execGuarded(ctx, tx, query, args)
	if err != nil {
		return 0, err
	}
	if applied {
		return OutcomeApplied, nil
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, item.ProductID,
	).Scan(&exists)
	if err != nil {
		return 0, apperr.Store("check product existence", err)
	}
	if exists {
		return OutcomeInsufficient, nil
	}
	return OutcomeMissing, nil
}

// decrementEur lowers one key of eur_quantities, guarded the same way as the
// garment counters.
func decrementEur(ctx context.Context, tx *sql.Tx, item Decrement) (DecrementOutcome, error) {
	query, args, err := psql.Update("products").
		Set("eur_quantities", sq.Expr(
			"jsonb_set(eur_quantities, ARRAY[?::text], to_jsonb((eur_quantities->>?::text)::int - ?::int))",
			item.EurLabel, item.EurLabel, item.Quantity,
		)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": item.ProductID}).
		Where(sq.Expr("(eur_quantities->>?::text)::int >= ?::int", item.EurLabel, item.Quantity)).
		ToSql()
	if err != nil {
		return 0, apperr.Store("build eur stock update", err)
	}

	applied, err := execGuarded(ctx, tx, query, args)
	if err != nil {
		return 0, err
	}
	if applied {
		return OutcomeApplied, nil
	}

	var hasLabel bool
	err = tx.QueryRowContext(ctx,
		`SELECT eur_quantities -> $2::text IS NOT NULL FROM products WHERE id = $1`, item.ProductID, item.EurLabel,
	).Scan(&hasLabel)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return OutcomeMissing, nil
	case err != nil:
		return 0, apperr.Store("check eur size", err)
	case hasLabel:
		return OutcomeInsufficient, nil
	default:
		return OutcomeUnknownSize, nil
	}
}

// execGuarded runs a guarded update and reports whether its row matched.
func execGuarded(ctx context.Context, tx *sql.Tx, query string, args []interface{}) (bool, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperr.Store("decrement stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Store("decrement stock", err)
	}
	return n == 1, nil
}
