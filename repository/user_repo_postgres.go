package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type PostgresUserRepo struct {
	DB *sql.DB
}

func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{DB: db}
}

// CreateUser hashes the password and inserts the account; the UNIQUE email
// constraint maps to a ConflictError.
func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *models.AppUser) error {
	if user.Password == "" {
		return models.NewValidationError("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, company_name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Name, user.Email, user.Phone, user.CompanyName, user.Role, user.Password, user.CreatedAt)
	if isUniqueViolation(err) {
		return models.NewConflictError("email %s is already registered", user.Email)
	}
	return err
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.AppUser, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, id string) (*models.AppUser, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, where string, arg interface{}) (*models.AppUser, error) {
	user := &models.AppUser{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, phone, company_name, role, password_hash, created_at
		FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CompanyName,
		&user.Role, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
