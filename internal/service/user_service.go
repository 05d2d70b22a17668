package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("unknown role")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// UserService manages accounts and their roles.
type UserService struct {
	db *gorm.DB
}

func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// UserWithRoles is a user as shown on the admin page.
type UserWithRoles struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// Create registers a user with the reader role.
func (s *UserService) Create(ctx context.Context, username, password, fullName string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNameInvalid
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, Password: string(hashed), FullName: strings.TrimSpace(fullName)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&db.UserRole{UserID: user.ID, Role: db.RoleReader}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByUsername loads a user by exact username.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Roles returns the role names of userID in sorted order.
func (s *UserService) Roles(ctx context.Context, userID uint) ([]string, error) {
	var roles []string
	if err := s.db.WithContext(ctx).Model(&db.UserRole{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Grant adds role to userID. Granting a role twice is a no-op.
func (s *UserService) Grant(ctx context.Context, userID uint, role string) error {
	if !db.IsValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.UserRole{UserID: userID, Role: role}).Error
}

// Revoke removes role from userID.
func (s *UserService) Revoke(ctx context.Context, userID uint, role string) error {
	if !db.IsValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&db.UserRole{}).Error
}

// ListWithRoles returns every user with their roles, newest first.
func (s *UserService) ListWithRoles(ctx context.Context) ([]UserWithRoles, error) {
	var users []db.User
	if err := s.db.WithContext(ctx).Preload("Roles").Order("created_at desc").Order("id desc").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserWithRoles, 0, len(users))
	for _, u := range users {
		roles := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			roles = append(roles, r.Role)
		}
		sort.Strings(roles)
		out = append(out, UserWithRoles{
			ID:        u.ID,
			Username:  u.Username,
			FullName:  u.FullName,
			Roles:     roles,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}

func (s *UserService) ensureUser(ctx context.Context, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
