package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

// ErrEmailTaken est retourné quand un compte existe déjà pour cet email.
var ErrEmailTaken = errors.New("email déjà utilisé")

type UserRepository struct {
	session *gocql.Session
}

func NewUserRepository(session *gocql.Session) *UserRepository {
	return &UserRepository{session: session}
}

// CreateUser réserve l'email avec une LWT avant d'écrire l'utilisateur.
func (r *UserRepository) CreateUser(ctx context.Context, u models.User) error {
	email := normalizeEmail(u.Email)

	var existing string
	applied, err := r.session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, u.ID).WithContext(ctx).ScanCAS(&email, &existing)
	if err != nil {
		return fmt.Errorf("réservation email: %w", err)
	}
	if !applied {
		return ErrEmailTaken
	}

	err = r.session.Query(`INSERT INTO users (user_id, email, password, name, role, locale, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, normalizeEmail(u.Email), u.Password, u.Name, u.Role, u.Locale, u.CreatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("création utilisateur: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var userID string
	err := r.session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, normalizeEmail(email)).
		WithContext(ctx).Scan(&userID)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return r.GetUserByID(ctx, userID)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	u := models.User{ID: id}
	err := r.session.Query(`SELECT email, password, name, role, locale, created_at FROM users WHERE user_id = ?`, id).
		WithContext(ctx).Scan(&u.Email, &u.Password, &u.Name, &u.Role, &u.Locale, &u.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
