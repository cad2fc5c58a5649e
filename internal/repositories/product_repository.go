package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO products(product_code, name, rental_price, deposit_amount, image_path, is_active)
         VALUES($1, $2, $3, $4, $5, TRUE)
         RETURNING id, created_at, updated_at`,
		p.ProductCode, p.Name, p.RentalPrice, p.DepositAmount, p.ImagePath,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, product_code, name, rental_price, deposit_amount, image_path, is_active,
                created_at, updated_at
         FROM products WHERE id=$1`, id)

	var p models.Product
	err := row.Scan(&p.ID, &p.ProductCode, &p.Name, &p.RentalPrice, &p.DepositAmount,
		&p.ImagePath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, err
}

func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, product_code, name, rental_price, deposit_amount, image_path, is_active,
                created_at, updated_at
         FROM products WHERE product_code=$1`, code)

	var p models.Product
	err := row.Scan(&p.ID, &p.ProductCode, &p.Name, &p.RentalPrice, &p.DepositAmount,
		&p.ImagePath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundKey("product", code)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	query := `SELECT id, product_code, name, rental_price, deposit_amount, image_path, is_active,
                     created_at, updated_at
              FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY product_code`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.ProductCode, &p.Name, &p.RentalPrice, &p.DepositAmount,
			&p.ImagePath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE products SET product_code=$1, name=$2, rental_price=$3, deposit_amount=$4,
                image_path=$5, updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		p.ProductCode, p.Name, p.RentalPrice, p.DepositAmount, p.ImagePath, p.ID)
	return err
}

// SetActive hides or restores a product for new-order selection. Existing
// orders keep their line items either way.
func (r *ProductRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE products SET is_active=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// BulkAdd inserts the products whose codes are not yet taken and reports which
// codes were skipped. The whole batch runs in one transaction.
func (r *ProductRepository) BulkAdd(ctx context.Context, products []*models.Product) (*models.BulkAddResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result := &models.BulkAddResult{}
	for _, p := range products {
		tag, err := tx.Exec(ctx,
			`INSERT INTO products(product_code, name, rental_price, deposit_amount, is_active)
             VALUES($1, $2, $3, $4, TRUE)
             ON CONFLICT (product_code) DO NOTHING`,
			p.ProductCode, p.Name, p.RentalPrice, p.DepositAmount)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			result.Skipped = append(result.Skipped, p.ProductCode)
		} else {
			result.Added = append(result.Added, p.ProductCode)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// CountActive returns the number of products currently offered for rent.
func (r *ProductRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active`).Scan(&n)
	return n, err
}
