package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"photofolio/internal/apperror"
	"photofolio/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdateProfile(id string, username, bio, avatar *string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, username, email, password_hash, bio, avatar, created_at, updated_at"

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Bio, &user.Avatar, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperror.NewNotFoundError("User not found")
		}
		return models.User{}, apperror.NewInternalError("Failed to load user", err)
	}
	return user, nil
}

// getUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) getUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// Register creates a new user with a bcrypt-hashed password. Duplicate
// usernames or emails fail with a conflict error and create no record.
func (s *UserService) Register(username, email, password string) (models.User, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?",
		username, email,
	).Scan(&count)
	if err != nil {
		return models.User{}, apperror.NewInternalError("Failed to check existing users", err)
	}
	if count > 0 {
		return models.User{}, apperror.NewConflictError("Username or email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperror.NewInternalError("Failed to hash password", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(
		"INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)",
		id, username, email, string(hashedPassword),
	)
	if err != nil {
		// Race with a concurrent registration still surfaces as a conflict.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, apperror.NewConflictError("Username or email already exists")
		}
		return models.User{}, apperror.NewInternalError("Failed to create user", err)
	}

	return s.GetUserByID(id)
}

// Authenticate verifies a user's credentials. The error is identical for an
// unknown email and a wrong password.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.getUserByEmail(email)
	if err != nil {
		return models.User{}, apperror.NewAuthenticationError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperror.NewAuthenticationError("Invalid credentials")
	}

	return user, nil
}

// UpdateProfile applies a partial update to the user's own record. Nil fields
// are left untouched.
func (s *UserService) UpdateProfile(id string, username, bio, avatar *string) (models.User, error) {
	current, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	if username != nil && *username != current.Username {
		var count int
		err := s.db.QueryRow(
			"SELECT COUNT(*) FROM users WHERE username = ? AND id != ?",
			*username, id,
		).Scan(&count)
		if err != nil {
			return models.User{}, apperror.NewInternalError("Failed to check username", err)
		}
		if count > 0 {
			return models.User{}, apperror.NewConflictError("Username already taken")
		}
		current.Username = *username
	}
	if bio != nil {
		current.Bio = *bio
	}
	if avatar != nil {
		current.Avatar = *avatar
	}

	_, err = s.db.Exec(
		"UPDATE users SET username = ?, bio = ?, avatar = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		current.Username, current.Bio, current.Avatar, id,
	)
	if err != nil {
		return models.User{}, apperror.NewInternalError("Failed to update profile", err)
	}

	return s.GetUserByID(id)
}
