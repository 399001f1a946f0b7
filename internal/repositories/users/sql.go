package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"peerchat/internal/common"
	"peerchat/internal/dbx"
	"peerchat/internal/models"
)

// SQLRepository works against both supported backends; the queries use
// $1-style placeholders, valid for pgx and sqlite alike.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (name, phone_no, password, secret_key, admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.PhoneNo, user.Password, user.SecretKey, user.Admin).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByPhone(ctx context.Context, phoneNo uint64) (*models.User, error) {
	query :=
		`SELECT id, name, phone_no, password, secret_key, admin FROM users
		 WHERE phone_no = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, phoneNo).Scan(
		&user.ID, &user.Name, &user.PhoneNo, &user.Password, &user.SecretKey, &user.Admin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
