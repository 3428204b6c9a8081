package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

// ProfileService owns the user profile. Every mutation goes through Update.
type ProfileService struct {
	*env
}

// OnboardInput is what the onboarding form collects.
type OnboardInput struct {
	Name       string `json:"name" validate:"max=64"`
	AgeGroup   string `json:"age_group" validate:"required,max=16"`
	WorkMode   string `json:"work_mode" validate:"max=32"`
	Consent    bool   `json:"consent"`
	Passphrase string `json:"passphrase,omitempty" validate:"omitempty,min=8,max=72"`
}

// DetailsPatch edits identity fields; nil fields are left alone.
type DetailsPatch struct {
	Name     *string `json:"name" validate:"omitempty,max=64"`
	AgeGroup *string `json:"age_group" validate:"omitempty,min=1,max=16"`
	WorkMode *string `json:"work_mode" validate:"omitempty,max=32"`
}

// PreferencesPatch edits toggles; nil fields are left alone.
type PreferencesPatch struct {
	Notifications    *bool   `json:"notifications"`
	ServerAnalytics  *bool   `json:"server_analytics"`
	DemoMode         *bool   `json:"demo_mode"`
	FontSize         *string `json:"font_size" validate:"omitempty,oneof=small medium large"`
	UseLocalInsights *bool   `json:"use_local_insights"`
}

// Onboard creates the profile. Age group is required and consent must be given.
func (s *ProfileService) Onboard(ctx context.Context, in OnboardInput) (*models.User, error) {
	in.Name = utils.Sanitize(in.Name)
	in.AgeGroup = strings.TrimSpace(in.AgeGroup)
	in.WorkMode = strings.TrimSpace(in.WorkMode)
	if err := toValidationError(validate.Struct(in)); err != nil {
		return nil, err
	}
	if !in.Consent {
		return nil, ErrConsentRequired
	}

	user := models.User{
		Name:        in.Name,
		AgeGroup:    in.AgeGroup,
		WorkMode:    in.WorkMode,
		Consent:     true,
		Preferences: models.Preferences{Notifications: true, FontSize: "medium"},
	}
	if in.Passphrase != "" {
		hash, err := utils.HashPassphrase(in.Passphrase)
		if err != nil {
			return nil, err
		}
		user.PassphraseHash = hash
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		return nil, err
	}
	s.log.Info("profile created", zap.String("user_id", user.ID))
	return &user, nil
}

// Authenticate restores a session for a profile protected by a passphrase.
func (s *ProfileService) Authenticate(ctx context.Context, userID, passphrase string) (*models.User, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !utils.CheckPassphrase(user.PassphraseHash, passphrase) {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

// Get loads the profile with its saved tips and learning records.
func (s *ProfileService) Get(ctx context.Context, uc UserContext) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("SavedTips", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("LearningCompleted", func(db *gorm.DB) *gorm.DB { return db.Order("completed_at ASC") }).
		First(&user, "id = ?", uc.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *ProfileService) find(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update is the single mutation entry point: it locks the profile row, applies mutate and saves the
// profile columns, all in one transaction. mutate may use tx for rows owned by the profile.
func (s *ProfileService) Update(ctx context.Context, uc UserContext, mutate func(tx *gorm.DB, u *models.User) error) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, "id = ?", uc.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if err := mutate(tx, &user); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDetails patches name, age group and work mode.
func (s *ProfileService) UpdateDetails(ctx context.Context, uc UserContext, patch DetailsPatch) (*models.User, error) {
	if err := toValidationError(validate.Struct(patch)); err != nil {
		return nil, err
	}
	return s.Update(ctx, uc, func(_ *gorm.DB, u *models.User) error {
		if patch.Name != nil {
			u.Name = utils.Sanitize(*patch.Name)
		}
		if patch.AgeGroup != nil {
			u.AgeGroup = strings.TrimSpace(*patch.AgeGroup)
		}
		if patch.WorkMode != nil {
			u.WorkMode = strings.TrimSpace(*patch.WorkMode)
		}
		return nil
	})
}

// SetBaseline replaces the whole baseline snapshot.
func (s *ProfileService) SetBaseline(ctx context.Context, uc UserContext, b models.Baseline) (*models.User, error) {
	b.WorkStyle = strings.TrimSpace(b.WorkStyle)
	if err := ValidateBaseline(b); err != nil {
		return nil, err
	}
	return s.Update(ctx, uc, func(_ *gorm.DB, u *models.User) error {
		if !u.Consent {
			return ErrConsentRequired
		}
		u.Baseline = &b
		return nil
	})
}

// UpdatePreferences applies a preference patch, e.g. the local-insights toggle.
func (s *ProfileService) UpdatePreferences(ctx context.Context, uc UserContext, patch PreferencesPatch) (*models.User, error) {
	if err := toValidationError(validate.Struct(patch)); err != nil {
		return nil, err
	}
	return s.Update(ctx, uc, func(_ *gorm.DB, u *models.User) error {
		p := &u.Preferences
		if patch.Notifications != nil {
			p.Notifications = *patch.Notifications
		}
		if patch.ServerAnalytics != nil {
			p.ServerAnalytics = *patch.ServerAnalytics
		}
		if patch.DemoMode != nil {
			p.DemoMode = *patch.DemoMode
		}
		if patch.FontSize != nil {
			p.FontSize = *patch.FontSize
		}
		if patch.UseLocalInsights != nil {
			p.UseLocalInsights = *patch.UseLocalInsights
		}
		return nil
	})
}

// SaveTip pins a tip. Saving the same text twice returns the existing record.
func (s *ProfileService) SaveTip(ctx context.Context, uc UserContext, text string) (*models.SavedTip, error) {
	text = utils.Sanitize(text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "is required"}}
	}
	if len(text) > 512 {
		return nil, &ValidationError{Fields: map[string]string{"text": "must be at most 512 characters"}}
	}

	var tip models.SavedTip
	_, err := s.Update(ctx, uc, func(tx *gorm.DB, u *models.User) error {
		err := tx.Where("user_id = ? AND text = ?", u.ID, text).First(&tip).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tip = models.SavedTip{UserID: u.ID, Text: text}
		return tx.Create(&tip).Error
	})
	if err != nil {
		return nil, err
	}
	return &tip, nil
}

// RemoveTip deletes one saved tip.
func (s *ProfileService) RemoveTip(ctx context.Context, uc UserContext, tipID uint) error {
	_, err := s.Update(ctx, uc, func(tx *gorm.DB, u *models.User) error {
		res := tx.Where("user_id = ? AND id = ?", u.ID, tipID).Delete(&models.SavedTip{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTipNotFound
		}
		return nil
	})
	return err
}

// CompleteLearning records that a module was finished. Completing it again keeps the first timestamp.
func (s *ProfileService) CompleteLearning(ctx context.Context, uc UserContext, moduleID string) (*models.LearningCompletion, error) {
	if _, ok := FindModule(moduleID); !ok {
		return nil, ErrUnknownModule
	}

	var rec models.LearningCompletion
	_, err := s.Update(ctx, uc, func(tx *gorm.DB, u *models.User) error {
		row := models.LearningCompletion{UserID: u.ID, ModuleID: moduleID, CompletedAt: s.now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND module_id = ?", u.ID, moduleID).First(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete wipes the profile with its history, queue, tips and learning records.
func (s *ProfileService) Delete(ctx context.Context, uc UserContext) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", uc.UserID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProfileNotFound
		}
		for _, owned := range []interface{}{&models.CheckIn{}, &models.QueueEntry{}, &models.SavedTip{}, &models.LearningCompletion{}} {
			if err := tx.Where("user_id = ?", uc.UserID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.InvalidateByPrefix(insightCachePrefix(uc.UserID))
	s.log.Info("profile deleted", zap.String("user_id", uc.UserID), zap.Time("at", time.Now()))
	return nil
}
