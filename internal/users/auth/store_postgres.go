// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/contactbook/internal/platform/database/schema"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
//
// Storage errors are mapped through [dberr.Wrap] so that callers only ever
// see [apperr.AppError] values.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the projection shared by every SELECT and RETURNING clause.
var userColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.Users.ID, schema.Users.Username, schema.Users.Email, schema.Users.Password,
	schema.Users.Confirmed, schema.Users.RefreshToken, schema.Users.Avatar,
	schema.Users.CreatedAt, schema.Users.UpdatedAt,
)

func scanUser(row pgx.Row) (*identity.User, error) {
	user := &identity.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Confirmed,
		&user.RefreshToken,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *identity.User: Hydrated account entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.Users.Table, schema.Users.Email,
	)

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_email")
	}

	return user, nil
}

/*
Create persists a new user record into the users table.

Description: The database assigns the ID and both timestamps; they are written
back onto the entity.

Parameters:
  - ctx: context.Context
  - user: *identity.User (Entity to persist)

Returns:
  - error: Conflict on a duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *identity.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.Users.Table, schema.Users.Username, schema.Users.Email, schema.Users.Password,
		schema.Users.Confirmed, schema.Users.Avatar, schema.Users.CreatedAt, schema.Users.UpdatedAt,
		schema.Users.ID, schema.Users.CreatedAt, schema.Users.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Confirmed,
		user.Avatar,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "create_user")
}

/*
UpdateRefreshToken overwrites (or clears, when token is nil) the stored refresh token.

Parameters:
  - ctx: context.Context
  - userID: int64
  - token: *string

Returns:
  - error: dberr.ErrNotFound if the account vanished, or execution errors
*/
func (repository *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.Users.Table, schema.Users.RefreshToken, schema.Users.UpdatedAt, schema.Users.ID,
	)

	cmd, err := repository.pool.Exec(ctx, query, userID, token)
	if err != nil {
		return dberr.Wrap(err, "update_refresh_token")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
MarkConfirmed sets confirmed = TRUE for the account owning email.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) MarkConfirmed(ctx context.Context, email string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		schema.Users.Table, schema.Users.Confirmed, schema.Users.UpdatedAt, schema.Users.Email,
	)

	cmd, err := repository.pool.Exec(ctx, query, email)
	if err != nil {
		return dberr.Wrap(err, "mark_confirmed")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
UpdateAvatar stores a new avatar URL and returns the refreshed account.

Parameters:
  - ctx: context.Context
  - email: string
  - url: string

Returns:
  - *identity.User: The account after the update
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) UpdateAvatar(ctx context.Context, email, url string) (*identity.User, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		schema.Users.Table, schema.Users.Avatar, schema.Users.UpdatedAt, schema.Users.Email, userColumns,
	)

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email, url))
	if err != nil {
		return nil, dberr.Wrap(err, "update_avatar")
	}

	return user, nil
}
