package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ndanilin/account-service/internal/hash"
	"github.com/ndanilin/account-service/internal/models"
)

var (
	ErrValidation = errors.New("validation error")
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("user not found")
)

type UserRepo struct {
	DB *gorm.DB
}

type CreateParams struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

// UpdateParams carries a partial update: nil means "leave unchanged".
type UpdateParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	if strings.TrimSpace(p.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return nil, fmt.Errorf("%w: first_name is required", ErrValidation)
	}
	if strings.TrimSpace(p.LastName) == "" {
		return nil, fmt.Errorf("%w: last_name is required", ErrValidation)
	}
	if p.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	email := NormalizeEmail(p.Email)
	existing, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	pwHash, err := hash.HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
		IsStaff:      p.IsStaff,
		IsSuperuser:  p.IsSuperuser,
	}

	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// concurrent registration with the same email loses here
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// FindByEmail returns (nil, nil) on a miss; an unknown email is not an error.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) VerifyPassword(user *models.User, password string) bool {
	return hash.CheckPassword(user.PasswordHash, password)
}

func (r *UserRepo) Update(ctx context.Context, user *models.User, p UpdateParams) (*models.User, error) {
	updates := map[string]any{}

	if p.FirstName != nil {
		if strings.TrimSpace(*p.FirstName) == "" {
			return nil, fmt.Errorf("%w: first_name may not be blank", ErrValidation)
		}
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		if strings.TrimSpace(*p.LastName) == "" {
			return nil, fmt.Errorf("%w: last_name may not be blank", ErrValidation)
		}
		updates["last_name"] = *p.LastName
	}
	if p.Email != nil {
		email := NormalizeEmail(*p.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email may not be blank", ErrValidation)
		}
		if email != user.Email {
			other, err := r.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrEmailTaken
			}
		}
		updates["email"] = email
	}
	if p.Password != nil {
		if *p.Password == "" {
			return nil, fmt.Errorf("%w: password may not be blank", ErrValidation)
		}
		pwHash, err := hash.HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = pwHash
	}

	if len(updates) == 0 {
		return user, nil
	}

	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return r.GetByID(ctx, user.ID)
}
