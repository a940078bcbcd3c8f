package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/e-games-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, email, user_name, password_hash, phone_number, address_delivery, age, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var age int16
	err := row.Scan(
		&u.ID, &u.Email, &u.UserName, &u.Password, &u.PhoneNumber, &u.AddressDelivery,
		&age, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Age = uint8(age)
	return u, nil
}

func mapUserConflict(err error) error {
	switch name, ok := constraintViolated(err); {
	case ok && name == "uq_users_email":
		return ErrEmailTaken
	case ok && name == "uq_users_user_name":
		return ErrUserNameTaken
	}
	return err
}

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	query := `INSERT INTO users (id, email, user_name, password_hash, phone_number, address_delivery, age, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.UserName, user.Password, user.PhoneNumber, user.AddressDelivery,
		int16(user.Age), user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if mapped := mapUserConflict(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *pgUserRepo) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	return r.getOne(ctx, "get user by user name", `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
}

func (r *pgUserRepo) getOne(ctx context.Context, op, query string, arg any) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepo) UpdateProfile(ctx context.Context, user *model.User) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET user_name = $2, phone_number = $3, address_delivery = $4, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		user.ID, user.UserName, user.PhoneNumber, user.AddressDelivery,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if mapped := mapUserConflict(err); mapped != err {
			return false, mapped
		}
		return false, fmt.Errorf("update user: %w", err)
	}
	return true, nil
}

func (r *pgUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}
