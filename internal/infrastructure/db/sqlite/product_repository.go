package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// ProductRepository implements ports.ProductRepository on the products store.
type ProductRepository struct {
	db  *sqlx.DB
	now func() timestamp
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db, now: nowTimestamp}
}

type productRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	CreatedAt   timestamp       `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		Price:       r.Price,
		Stock:       r.Stock,
		CreatedAt:   r.CreatedAt.Time(),
	}
}

const productColumns = `id, name, description, price, stock, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		query += ` WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Skip)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	p := row.toDomain()
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	createdAt := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, description, price, stock, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, nullableText(p.Description), p.Price.InexactFloat64(), p.Stock, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	p.CreatedAt = createdAt.Time()
	return nil
}

// Update replaces name, description, price and stock. CreatedAt is reloaded
// into p.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	var createdAt timestamp
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, stock = ? WHERE id = ? RETURNING created_at`,
		p.Name, nullableText(p.Description), p.Price.InexactFloat64(), p.Stock, p.ID,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ProductNotFoundError{ProductID: p.ID}
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	p.CreatedAt = createdAt.Time()
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete product: %w", err)
	} else if n == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

// AdjustStock guards the check and the write with one conditional UPDATE, so
// concurrent decrements can never oversell. When no row changes, a follow-up
// read tells a missing product from an insufficient one.
func (r *ProductRepository) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	var stock int
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0 RETURNING stock`,
		delta, id, delta,
	).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	p, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return 0, &domain.InsufficientStockError{
		ProductID: id,
		Name:      p.Name,
		Requested: -delta,
		Available: p.Stock,
	}
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
