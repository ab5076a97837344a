package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

const userColumns = `id, username, email, first_name, last_name, password_hash,
	role, phone, address, is_active, date_joined, last_login`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const insertUser = `
	INSERT INTO users (
		username, email, first_name, last_name, password_hash,
		role, phone, address, is_active, date_joined
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
`

func insertUserTx(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now()
	}
	return tx.QueryRowxContext(ctx, insertUser,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.Address,
		user.IsActive,
		user.DateJoined,
	).Scan(&user.ID)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertUserTx(ctx, tx, user)
	})
	if err != nil {
		return wrapErr("create user", err)
	}
	return nil
}

func (r *userRepository) CreateWithPatient(ctx context.Context, user *model.User, patient *model.Patient) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUserTx(ctx, tx, user); err != nil {
			return err
		}
		patient.UserID = user.ID
		return insertPatientTx(ctx, tx, patient)
	})
	if err != nil {
		return wrapErr("create user with patient profile", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	// Usernames win over emails when both could match.
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE username = $1 OR LOWER(email) = LOWER($1)
		ORDER BY (username = $1) DESC, id
		LIMIT 1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, login); err != nil {
		return nil, wrapErr("get user by login", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return wrapErr("update last login", err)
	}
	return requireRows("update last login", result)
}

// Delete removes the account; profiles and their dependants follow the
// schema's cascade rules.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete user", err)
	}
	return requireRows("delete user", result)
}
