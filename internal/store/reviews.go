package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

// CreateReview records a rating and comment. A user may review the same
// product more than once; no uniqueness is enforced.
func CreateReview(ctx context.Context, db *sql.DB, userID, productID int64, rating int, comment string) (*models.Review, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`,
		productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return nil, database.ErrProductNotFound
	}

	review := &models.Review{}
	err = db.QueryRowContext(ctx,
		`INSERT INTO reviews (user_id, product_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, user_id, product_id, rating, comment, created_at`,
		userID, productID, rating, comment).Scan(
		&review.ID,
		&review.UserID,
		&review.ProductID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	return review, nil
}

func ListReviewsByProduct(ctx context.Context, db *sql.DB, productID int64) ([]models.Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, u.name
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.product_id = $1
		 ORDER BY r.created_at DESC`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.ProductID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}

// AverageRating returns the mean rating and review count for a product.
func AverageRating(ctx context.Context, db *sql.DB, productID int64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM reviews WHERE product_id = $1`,
		productID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}

	return avg.Float64, count, nil
}
