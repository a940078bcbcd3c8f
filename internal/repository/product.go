package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/e-games-api/internal/model"
)

// ProductFilter narrows and orders a product listing. SortBy must be a column
// returned by SortColumn.
type ProductFilter struct {
	Genres         []string
	AgeRestriction *int
	SortBy         string
	Desc           bool
	Limit          int
	Offset         int
}

var sortColumns = map[string]string{
	"Rating": "total_rating",
	"Price":  "price",
}

// SortColumn maps a public sort key to its column.
func SortColumn(key string) (string, bool) {
	col, ok := sortColumns[key]
	return col, ok
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByName(ctx context.Context, name string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	Search(ctx context.Context, term string, limit, offset int) ([]string, error)
	TopPlatforms(ctx context.Context, n int) ([]model.PlatformCount, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, platform, date_created, total_rating, genre, rating,
	age_restriction, logo, background, price, count`

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Platform, &p.DateCreated, &p.TotalRating, &p.Genre, &p.Rating,
		&p.AgeRestriction, &p.Logo, &p.Background, &p.Price, &p.Count,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	var dateCreated *time.Time
	if !product.DateCreated.IsZero() {
		dateCreated = &product.DateCreated
	}
	query := `INSERT INTO products (name, platform, date_created, genre, rating, age_restriction, logo, background, price, count)
			  VALUES ($1, $2, COALESCE($3, NOW()), $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id, date_created, total_rating`
	err := r.pool.QueryRow(ctx, query,
		product.Name, product.Platform, dateCreated, product.Genre, product.Rating, product.AgeRestriction,
		product.Logo, product.Background, product.Price, product.Count,
	).Scan(&product.ID, &product.DateCreated, &product.TotalRating)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByName returns the lowest id among products sharing the exact name.
func (r *pgProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = $1 ORDER BY id LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by name: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) (bool, error) {
	query := `UPDATE products SET name=$2, platform=$3, genre=$4, rating=$5, age_restriction=$6,
			  logo=$7, background=$8, price=$9, count=$10
			  WHERE id=$1`
	ct, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Platform, product.Genre, product.Rating,
		product.AgeRestriction, product.Logo, product.Background, product.Price, product.Count,
	)
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	sortCol := "total_rating"
	for _, col := range sortColumns {
		if col == f.SortBy {
			sortCol = col
		}
	}
	order := "ASC"
	if f.Desc {
		order = "DESC"
	}

	genres := f.Genres
	if genres == nil {
		genres = []string{}
	}
	where := `WHERE (cardinality($1::text[]) = 0 OR genre = ANY($1::text[]))
		AND ($2::int IS NULL OR age_restriction = $2::int)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, genres, f.AgeRestriction).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s %s, id ASC LIMIT $3 OFFSET $4`,
		productColumns, where, sortCol, order)
	rows, err := r.pool.Query(ctx, query, genres, f.AgeRestriction, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Search matches names containing term, case-insensitively, ordered by name.
func (r *pgProductRepo) Search(ctx context.Context, term string, limit, offset int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM products
		 WHERE strpos(lower(name), lower($1)) > 0
		 ORDER BY name, id LIMIT $2 OFFSET $3`,
		term, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan product name: %w", err)
	}
	return names, nil
}

func (r *pgProductRepo) TopPlatforms(ctx context.Context, n int) ([]model.PlatformCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT platform, COUNT(*) FROM products
		 GROUP BY platform
		 ORDER BY COUNT(*) DESC, platform ASC LIMIT $1`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("top platforms: %w", err)
	}
	defer rows.Close()

	result := []model.PlatformCount{}
	for rows.Next() {
		var pc model.PlatformCount
		if err := rows.Scan(&pc.Platform, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan platform count: %w", err)
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}
