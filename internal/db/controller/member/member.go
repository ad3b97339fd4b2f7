// Package member stores forum accounts and checks their passwords.
package member

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

const whereID = "id = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrMemberNotFound is returned when a member does not exist.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMemberDisabled is returned when an inactive member tries to log in.
	ErrMemberDisabled = errors.New("member account is disabled")
	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrNameOrEmailExists is returned when registering a taken name or email.
	ErrNameOrEmailExists = errors.New("member name or email already exists")
)

// Provider reads and writes members.
type Provider struct {
	db *gorm.DB
}

// NewProvider creates a member provider.
func NewProvider(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

// Authenticate checks a name and password and returns the member with its groups.
func (p *Provider) Authenticate(ctx context.Context, name, password string) (*models.Member, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	var m models.Member

	err := p.db.WithContext(ctx).Preload("AdditionalGroups").Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}

	if !m.Active {
		return nil, ErrMemberDisabled
	}

	ok, err := m.VerifyPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !ok {
		return nil, ErrInvalidPassword
	}

	return &m, nil
}

// Create registers an active member.
func (p *Provider) Create(
	ctx context.Context,
	name, email, password string,
	primary models.GroupID,
	additional ...models.GroupID,
) (*models.Member, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	var existing models.Member

	err := p.db.WithContext(ctx).Where("name = ? OR email = ?", name, email).First(&existing).Error
	if err == nil {
		return nil, ErrNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m := models.Member{
		Active:       true,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PrimaryGroup: primary,
	}
	for _, g := range additional {
		m.AdditionalGroups = append(m.AdditionalGroups, models.AdditionalGroup{GroupID: g})
	}

	if err := p.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return &m, nil
}

// Get retrieves a member with its groups.
func (p *Provider) Get(ctx context.Context, id uint64) (*models.Member, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	var m models.Member

	err := p.db.WithContext(ctx).Preload("AdditionalGroups").First(&m, whereID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}

	if err != nil {
		return nil, err
	}

	return &m, nil
}

// SetGroups replaces the primary and additional groups of a member.
func (p *Provider) SetGroups(ctx context.Context, id uint64, primary models.GroupID, additional ...models.GroupID) error {
	if p.db == nil {
		return ErrDBNil
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Member{}).Where(whereID, id).Update("primary_group", primary)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}

		if err := tx.Where("member_id = ?", id).Delete(&models.AdditionalGroup{}).Error; err != nil {
			return err
		}

		rows := make([]models.AdditionalGroup, 0, len(additional))
		for _, g := range additional {
			if g == primary {
				continue
			}

			rows = append(rows, models.AdditionalGroup{MemberID: id, GroupID: g})
		}

		if len(rows) == 0 {
			return nil
		}

		return tx.Create(&rows).Error
	})
}

// ResetPassword sets a new password (admin function).
func (p *Provider) ResetPassword(ctx context.Context, id uint64, password string) error {
	if p.db == nil {
		return ErrDBNil
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result := p.db.WithContext(ctx).Model(&models.Member{}).Where(whereID, id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// SetActive enables or disables logging in.
func (p *Provider) SetActive(ctx context.Context, id uint64, active bool) error {
	if p.db == nil {
		return ErrDBNil
	}

	result := p.db.WithContext(ctx).Model(&models.Member{}).Where(whereID, id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// Delete removes a member with its group memberships and board moderator entries.
func (p *Provider) Delete(ctx context.Context, id uint64) error {
	if p.db == nil {
		return ErrDBNil
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Member{}, whereID, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}

		if err := tx.Where("member_id = ?", id).Delete(&models.AdditionalGroup{}).Error; err != nil {
			return err
		}

		return tx.Where("member_id = ?", id).Delete(&models.BoardModerator{}).Error
	})
}
