// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/contactbook/internal/platform/database/schema"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var contactColumns = strings.Join(schema.Contacts.Columns(), ", ")

func scanContact(row pgx.Row) (*Contact, error) {
	contact := &Contact{}
	err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.Fullname,
		&contact.Email,
		&contact.PhoneNumber,
		&contact.Birthday.Time,
		&contact.Description,
		&contact.UserID,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func collectContacts(rows pgx.Rows) ([]*Contact, error) {
	defer rows.Close()

	items := make([]*Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, contact)
	}
	return items, rows.Err()
}

// searchColumn maps a criterion to its column. Unknown fields never reach SQL.
func searchColumn(field SearchField) (string, error) {
	switch field {
	case ByName:
		return schema.Contacts.Name, nil
	case ByFullname:
		return schema.Contacts.Fullname, nil
	case ByEmail:
		return schema.Contacts.Email, nil
	default:
		return "", fmt.Errorf("unsupported search field %d", field)
	}
}

func (repository *PostgresRepository) List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Contact, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, schema.Contacts.Table, schema.Contacts.UserID)
	if err := repository.pool.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_contacts")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s OFFSET $2 LIMIT $3`,
		contactColumns, schema.Contacts.Table, schema.Contacts.UserID, schema.Contacts.ID,
	)

	rows, err := repository.pool.Query(ctx, query, ownerID, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_contacts")
	}

	items, err := collectContacts(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "scan_contacts")
	}
	return items, total, nil
}

func (repository *PostgresRepository) Get(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		contactColumns, schema.Contacts.Table, schema.Contacts.ID, schema.Contacts.UserID,
	)

	contact, err := scanContact(repository.pool.QueryRow(ctx, query, contactID, ownerID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_contact")
	}
	return contact, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, contact *Contact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.Contacts.Table, schema.Contacts.Name, schema.Contacts.Fullname, schema.Contacts.Email,
		schema.Contacts.PhoneNumber, schema.Contacts.Birthday, schema.Contacts.Description,
		schema.Contacts.UserID, schema.Contacts.CreatedAt, schema.Contacts.UpdatedAt,
		schema.Contacts.ID, schema.Contacts.CreatedAt, schema.Contacts.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Fullname,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday.Time,
		contact.Description,
		contact.UserID,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)

	return dberr.Wrap(err, "create_contact")
}

// Update replaces every writable column. A missing or foreign row yields dberr.ErrNotFound.
func (repository *PostgresRepository) Update(ctx context.Context, contact *Contact) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $7 AND %s = $8
		RETURNING %s, %s
	`,
		schema.Contacts.Table,
		schema.Contacts.Name, schema.Contacts.Fullname, schema.Contacts.Email,
		schema.Contacts.PhoneNumber, schema.Contacts.Birthday, schema.Contacts.Description,
		schema.Contacts.UpdatedAt,
		schema.Contacts.ID, schema.Contacts.UserID,
		schema.Contacts.CreatedAt, schema.Contacts.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Fullname,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday.Time,
		contact.Description,
		contact.ID,
		contact.UserID,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)

	return dberr.Wrap(err, "update_contact")
}

func (repository *PostgresRepository) Delete(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s`,
		schema.Contacts.Table, schema.Contacts.ID, schema.Contacts.UserID, contactColumns,
	)

	contact, err := scanContact(repository.pool.QueryRow(ctx, query, contactID, ownerID))
	if err != nil {
		return nil, dberr.Wrap(err, "delete_contact")
	}
	return contact, nil
}

func (repository *PostgresRepository) Search(ctx context.Context, ownerID int64, criterion SearchCriterion) ([]*Contact, error) {
	column, err := searchColumn(criterion.Field)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		contactColumns, schema.Contacts.Table, schema.Contacts.UserID, column, schema.Contacts.ID,
	)

	rows, err := repository.pool.Query(ctx, query, ownerID, criterion.Value)
	if err != nil {
		return nil, dberr.Wrap(err, "search_contacts")
	}

	items, err := collectContacts(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_contacts")
	}
	return items, nil
}

func (repository *PostgresRepository) BirthdaysOn(ctx context.Context, ownerID int64, monthDays []string) ([]*Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND to_char(%s, 'MM-DD') = ANY($2)
		ORDER BY to_char(%s, 'MM-DD'), %s
	`,
		contactColumns, schema.Contacts.Table,
		schema.Contacts.UserID, schema.Contacts.Birthday,
		schema.Contacts.Birthday, schema.Contacts.ID,
	)

	rows, err := repository.pool.Query(ctx, query, ownerID, monthDays)
	if err != nil {
		return nil, dberr.Wrap(err, "search_birthdays")
	}

	items, err := collectContacts(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_contacts")
	}
	return items, nil
}
