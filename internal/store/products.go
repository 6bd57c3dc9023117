package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, code, name, brand, description, category, subcategory, base_price, images,
	spec_size, spec_binding, spec_paper_weight, spec_cover_type,
	total_stock, is_active, is_featured, created_at, updated_at, version`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Code,
		&product.Name,
		&product.Brand,
		&product.Description,
		&product.Category,
		&product.Subcategory,
		&product.BasePrice,
		pq.Array(&product.Images),
		&product.Specs.Size,
		&product.Specs.Binding,
		&product.Specs.PaperWeight,
		&product.Specs.CoverType,
		&product.TotalStock,
		&product.IsActive,
		&product.IsFeatured,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

type ProductInput struct {
	Code        string
	Name        string
	Brand       string
	Description string
	Category    string
	Subcategory string
	BasePrice   decimal.Decimal
	Images      []string
	Specs       models.Specifications
	IsActive    bool
	IsFeatured  bool
	Variants    []models.Variant
	// Stock is used when the product has no variants; otherwise
	// total stock is derived from the variants.
	Stock int
}

// CreateProduct inserts the product and its variants in one transaction.
// total_stock is set to the sum of the variant stocks (or Stock for a
// variant-free product). Duplicate codes or SKUs surface as
// ErrDuplicateEntry.
func CreateProduct(ctx context.Context, db *sql.DB, in ProductInput) (*models.Product, error) {
	var product *models.Product

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		totalStock := in.Stock
		if len(in.Variants) > 0 {
			totalStock = 0
			for _, v := range in.Variants {
				totalStock += v.Stock
			}
		}

		query := `
			INSERT INTO products (code, name, brand, description, category, subcategory, base_price, images,
				spec_size, spec_binding, spec_paper_weight, spec_cover_type,
				total_stock, is_active, is_featured, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW(), 1)
			RETURNING ` + productColumns

		var err error
		product, err = scanProduct(tx.QueryRowContext(ctx, query,
			in.Code, in.Name, in.Brand, in.Description, in.Category, in.Subcategory,
			in.BasePrice, pq.Array(in.Images),
			in.Specs.Size, in.Specs.Binding, in.Specs.PaperWeight, in.Specs.CoverType,
			totalStock, in.IsActive, in.IsFeatured))
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		for _, v := range in.Variants {
			variant := v
			err := tx.QueryRowContext(ctx,
				`INSERT INTO product_variants (product_id, sku, page_type, page_count, color, additional_price, stock)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 RETURNING id`,
				product.ID, v.SKU, v.PageType, v.PageCount, v.Color, v.AdditionalPrice, v.Stock,
			).Scan(&variant.ID)
			if err != nil {
				return fmt.Errorf("create variant %s: %w", v.SKU, err)
			}
			variant.ProductID = product.ID
			product.Variants = append(product.Variants, variant)
		}

		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEntry
		}
		return nil, err
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := listVariants(ctx, db, id)
	if err != nil {
		return nil, err
	}
	product.Variants = variants

	return product, nil
}

func listVariants(ctx context.Context, db *sql.DB, productID int64) ([]models.Variant, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, product_id, sku, page_type, page_count, color, additional_price, stock
		 FROM product_variants
		 WHERE product_id = $1
		 ORDER BY id`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []models.Variant
	for rows.Next() {
		var v models.Variant
		err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.PageType, &v.PageCount, &v.Color, &v.AdditionalPrice, &v.Stock)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return variants, nil
}

type ProductFilter struct {
	Category     string
	ActiveOnly   bool
	FeaturedOnly bool
}

func ListProducts(ctx context.Context, db *sql.DB, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.ActiveOnly {
		where += " AND is_active"
	}
	if filter.FeaturedOnly {
		where += " AND is_featured"
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf(
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

// UpdateProduct replaces the product fields and its variant set. The
// variants are rewritten wholesale and total_stock recomputed in the same
// transaction, so total_stock == sum of variant stocks holds after every
// save.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, in ProductInput) (*models.Product, error) {
	var product *models.Product

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		totalStock := in.Stock
		if len(in.Variants) > 0 {
			totalStock = 0
			for _, v := range in.Variants {
				totalStock += v.Stock
			}
		}

		query := `
			UPDATE products
			SET code = $1, name = $2, brand = $3, description = $4, category = $5, subcategory = $6,
			    base_price = $7, images = $8,
			    spec_size = $9, spec_binding = $10, spec_paper_weight = $11, spec_cover_type = $12,
			    total_stock = $13, is_active = $14, is_featured = $15,
			    updated_at = NOW(), version = version + 1
			WHERE id = $16
			RETURNING ` + productColumns

		var err error
		product, err = scanProduct(tx.QueryRowContext(ctx, query,
			in.Code, in.Name, in.Brand, in.Description, in.Category, in.Subcategory,
			in.BasePrice, pq.Array(in.Images),
			in.Specs.Size, in.Specs.Binding, in.Specs.PaperWeight, in.Specs.CoverType,
			totalStock, in.IsActive, in.IsFeatured, id))
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("update product: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("clear variants: %w", err)
		}

		for _, v := range in.Variants {
			variant := v
			err := tx.QueryRowContext(ctx,
				`INSERT INTO product_variants (product_id, sku, page_type, page_count, color, additional_price, stock)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 RETURNING id`,
				id, v.SKU, v.PageType, v.PageCount, v.Color, v.AdditionalPrice, v.Stock,
			).Scan(&variant.ID)
			if err != nil {
				return fmt.Errorf("create variant %s: %w", v.SKU, err)
			}
			variant.ProductID = id
			product.Variants = append(product.Variants, variant)
		}

		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEntry
		}
		return nil, err
	}

	return product, nil
}

func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

// decrementStock reduces stock for one purchased line inside a checkout
// transaction. Variant lines decrement both the variant row and the
// product's derived total; variant-free lines decrement the product total
// directly. The conditional WHERE keeps stock from going negative.
func decrementStock(ctx context.Context, tx *sql.Tx, productID int64, variantSKU string, quantity int) error {
	if variantSKU != "" {
		result, err := tx.ExecContext(ctx,
			`UPDATE product_variants
			 SET stock = stock - $1
			 WHERE sku = $2 AND product_id = $3 AND stock >= $1`,
			quantity, variantSKU, productID)
		if err != nil {
			return fmt.Errorf("decrement variant stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return database.ErrInsufficientStock
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET total_stock = total_stock - $1, updated_at = NOW()
		 WHERE id = $2 AND total_stock >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}
