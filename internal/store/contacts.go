package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/models"
)

func CreateContact(ctx context.Context, db *sql.DB, name, email, subject, message string) (*models.Contact, error) {
	contact := &models.Contact{}
	err := db.QueryRowContext(ctx,
		`INSERT INTO contacts (name, email, subject, message, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, name, email, subject, message, created_at`,
		name, email, subject, message).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Email,
		&contact.Subject,
		&contact.Message,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	return contact, nil
}

func ListContacts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at
		 FROM contacts
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Email,
			&contact.Subject,
			&contact.Message,
			&contact.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(contacts, total, page, pageSize), nil
}
