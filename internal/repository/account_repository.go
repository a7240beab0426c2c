package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	"github.com/haulbuddy/service-marketplace/internal/identity"
)

// AccountModel is the GORM model for the auth_accounts table.
type AccountModel struct {
	UID          string    `gorm:"primaryKey;size:64"`
	Email        string    `gorm:"uniqueIndex;not null;size:320"`
	DisplayName  string    `gorm:"size:200"`
	PasswordHash string    `gorm:"not null;size:100"`
	Disabled     bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AccountModel) TableName() string {
	return "auth_accounts"
}

// GormAccountRepository is the GORM-based implementation of AccountRepository.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByUID retrieves an account by its UID.
func (r *GormAccountRepository) FindByUID(ctx context.Context, uid string) (*identity.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Account", uid)
		}
		return nil, fmt.Errorf("failed to find account by UID: %w", err)
	}
	return toDomainAccount(&model), nil
}

// FindByEmail retrieves an account by its email address.
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Account", email)
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return toDomainAccount(&model), nil
}

// Save persists a new account.
func (r *GormAccountRepository) Save(ctx context.Context, a *identity.Account) error {
	model := &AccountModel{
		UID:          a.UID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		PasswordHash: a.PasswordHash,
		Disabled:     a.Disabled,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func toDomainAccount(m *AccountModel) *identity.Account {
	return &identity.Account{
		UID:          m.UID,
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		Disabled:     m.Disabled,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
