package referrals

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	apierrors "github.com/refermarket/backend/internal/errors"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScoreFunc recomputes a user's credibility score from their aggregate
// feedback counts. The scoring policy lives outside this service; a nil
// ScoreFunc disables recomputation entirely.
type ScoreFunc func(successCount, failureCount int64) float64

// Config holds the referral policy knobs
type Config struct {
	// MaxActivePerPlatform caps how many ACTIVE referrals a user may
	// hold on a single platform
	MaxActivePerPlatform int
}

// Service implements referral submission, listing, click attribution
// and feedback on top of an injected database handle.
type Service struct {
	db    *gorm.DB
	cfg   Config
	score ScoreFunc
}

// NewService creates a referrals service
func NewService(db *gorm.DB, cfg Config, score ScoreFunc) *Service {
	if cfg.MaxActivePerPlatform <= 0 {
		cfg.MaxActivePerPlatform = 2
	}
	return &Service{
		db:    db,
		cfg:   cfg,
		score: score,
	}
}

// Page is one page of referrals plus listing metadata
type Page struct {
	Referrals  []models.ReferralCode `json:"referrals"`
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	HasMore    bool                  `json:"has_more"`
}

// Create validates and stores a new referral submission.
func (s *Service) Create(userID, platformSlug string, value models.ReferralValue) (*models.ReferralCode, error) {
	var platform models.Platform
	err := s.db.Where("slug = ? AND is_active = ?", platformSlug, true).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.NotFound("platform")
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !platform.AcceptsKind(value.Kind) {
		return nil, apierrors.ValidationError(fmt.Sprintf("platform %s does not accept %s submissions", platform.Slug, value.Kind))
	}

	normalized := validation.Normalize(value.Value)
	if result := validation.Validate(value.Kind, platform.RulesFor(value.Kind), normalized); !result.Valid {
		return nil, apierrors.ValidationError(result.Error)
	}
	value.Value = normalized

	referral := models.ReferralCode{
		PlatformID:   platform.ID,
		PlatformSlug: platform.Slug,
		UserID:       userID,
		SourceType:   models.SourceUserSubmitted,
		Status:       models.StatusActive,
		Version:      1,
	}
	referral.SetValue(value)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var activeCount int64
		if err := tx.Model(&models.ReferralCode{}).
			Where("user_id = ? AND platform_id = ? AND status = ?", userID, platform.ID, models.StatusActive).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if activeCount >= int64(s.cfg.MaxActivePerPlatform) {
			return apierrors.Conflict(fmt.Sprintf("you already have %d active referrals for this platform", activeCount))
		}

		if err := s.checkDuplicate(tx, platform.ID, value, ""); err != nil {
			return err
		}

		if err := tx.Create(&referral).Error; err != nil {
			return fmt.Errorf("failed to create referral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Referral created",
		logger.WithReferralID(referral.ID),
		logger.WithUserID(userID),
		logger.WithPlatform(platform.Slug),
		zap.String("kind", string(value.Kind)),
	)

	return &referral, nil
}

// checkDuplicate rejects a value already held by an ACTIVE referral on
// the platform. The partial unique indexes enforce the same invariant
// at the database level against concurrent submitters.
func (s *Service) checkDuplicate(tx *gorm.DB, platformID string, value models.ReferralValue, excludeID string) error {
	query := tx.Model(&models.ReferralCode{}).
		Where("platform_id = ? AND status = ?", platformID, models.StatusActive)

	switch value.Kind {
	case models.KindCode:
		query = query.Where("code = ?", value.Value)
	case models.KindLink:
		query = query.Where("referral_link = ?", value.Value)
	default:
		return apierrors.ValidationError("unknown referral kind")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return apierrors.Conflict("this referral has already been submitted")
	}
	return nil
}

// GetByID loads a single referral
func (s *Service) GetByID(id string) (*models.ReferralCode, error) {
	var referral models.ReferralCode
	err := s.db.Where("id = ? AND status <> ?", id, models.StatusDeleted).First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.NotFound("referral")
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &referral, nil
}

// Update replaces the value of a referral the caller owns.
func (s *Service) Update(userID, referralID string, value models.ReferralValue) (*models.ReferralCode, error) {
	referral, err := s.GetByID(referralID)
	if err != nil {
		return nil, err
	}
	if referral.UserID != userID {
		return nil, apierrors.Forbidden("you can only update your own referrals")
	}

	var platform models.Platform
	if err := s.db.First(&platform, "id = ?", referral.PlatformID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !platform.AcceptsKind(value.Kind) {
		return nil, apierrors.ValidationError(fmt.Sprintf("platform %s does not accept %s submissions", platform.Slug, value.Kind))
	}

	normalized := validation.Normalize(value.Value)
	if result := validation.Validate(value.Kind, platform.RulesFor(value.Kind), normalized); !result.Valid {
		return nil, apierrors.ValidationError(result.Error)
	}
	value.Value = normalized

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkDuplicate(tx, platform.ID, value, referral.ID); err != nil {
			return err
		}

		referral.SetValue(value)
		referral.Version++
		if err := tx.Save(referral).Error; err != nil {
			return fmt.Errorf("failed to update referral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Referral updated",
		logger.WithReferralID(referral.ID),
		logger.WithUserID(userID),
	)

	return referral, nil
}

// Delete soft-deletes a referral the caller owns. The row survives so
// click and feedback history keep their referent.
func (s *Service) Delete(userID, referralID string) error {
	referral, err := s.GetByID(referralID)
	if err != nil {
		return err
	}
	if referral.UserID != userID {
		return apierrors.Forbidden("you can only delete your own referrals")
	}

	if err := s.db.Model(referral).Update("status", models.StatusDeleted).Error; err != nil {
		return fmt.Errorf("failed to delete referral: %w", err)
	}

	logger.Log.Info("Referral deleted",
		logger.WithReferralID(referral.ID),
		logger.WithUserID(userID),
	)
	return nil
}

// ListByPlatform returns one page of ACTIVE referrals for a platform,
// most-clicked first.
func (s *Service) ListByPlatform(platformSlug string, page, limit int) (*Page, error) {
	var platform models.Platform
	err := s.db.Where("slug = ?", platformSlug).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.NotFound("platform")
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	filter := func() *gorm.DB {
		return s.db.Model(&models.ReferralCode{}).
			Where("platform_slug = ? AND status = ?", platformSlug, models.StatusActive)
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	offset := (page - 1) * limit
	var referrals []models.ReferralCode
	if err := filter().
		Preload("User").
		Order("clicks DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	for i := range referrals {
		referrals[i].Owner = referrals[i].User.Summary()
	}

	return &Page{
		Referrals:  referrals,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		HasMore:    offset+len(referrals) < int(total),
	}, nil
}

// ListByUser returns one page of a user's ACTIVE referrals across
// platforms, newest first.
func (s *Service) ListByUser(userID string, page, limit int) (*Page, error) {
	filter := func() *gorm.DB {
		return s.db.Model(&models.ReferralCode{}).
			Where("user_id = ? AND status = ?", userID, models.StatusActive)
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	offset := (page - 1) * limit
	var referrals []models.ReferralCode
	if err := filter().
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &Page{
		Referrals:  referrals,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		HasMore:    offset+len(referrals) < int(total),
	}, nil
}

// ListByUserPlatform returns the caller's own ACTIVE referrals on a
// single platform, newest first.
func (s *Service) ListByUserPlatform(userID, platformSlug string, page, limit int) (*Page, error) {
	filter := func() *gorm.DB {
		return s.db.Model(&models.ReferralCode{}).
			Where("user_id = ? AND platform_slug = ? AND status = ?", userID, platformSlug, models.StatusActive)
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	offset := (page - 1) * limit
	var referrals []models.ReferralCode
	if err := filter().
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &Page{
		Referrals:  referrals,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		HasMore:    offset+len(referrals) < int(total),
	}, nil
}

// HasActive reports whether the user holds at least one ACTIVE referral
// on the given platform.
func (s *Service) HasActive(userID, platformSlug string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ReferralCode{}).
		Where("user_id = ? AND platform_slug = ? AND status = ?", userID, platformSlug, models.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// RecordClick attributes one click to a referral: the referral counter,
// the owner's aggregate stats and an audit row move together in one
// transaction. Owners clicking their own referral are a silent no-op.
func (s *Service) RecordClick(referralID string, clickerUserID *string, userAgent, ip string) (*models.ReferralCode, error) {
	referral, err := s.GetByID(referralID)
	if err != nil {
		return nil, err
	}

	if clickerUserID != nil && *clickerUserID == referral.UserID {
		return referral, nil
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReferralCode{}).
			Where("id = ?", referral.ID).
			UpdateColumns(map[string]interface{}{
				"clicks":          gorm.Expr("clicks + 1"),
				"last_clicked_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to increment clicks: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", referral.UserID).
			UpdateColumns(map[string]interface{}{
				"total_clicks":    gorm.Expr("total_clicks + 1"),
				"last_clicked_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update owner stats: %w", err)
		}

		click := models.Click{
			ReferralID: referral.ID,
			UserID:     clickerUserID,
			UserAgent:  userAgent,
			IPHash:     hashIP(ip),
		}
		if err := tx.Create(&click).Error; err != nil {
			return fmt.Errorf("failed to record click: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	referral.Clicks++
	referral.LastClickedAt = &now

	logger.Log.Info("Click recorded",
		logger.WithReferralID(referral.ID),
		logger.WithPlatform(referral.PlatformSlug),
	)

	return referral, nil
}

// AddFeedback records a success/failure report against a referral and
// recomputes the owner's credibility score under the injected policy.
func (s *Service) AddFeedback(referralID, userID string, isSuccess bool, comment string) (*models.Feedback, error) {
	referral, err := s.GetByID(referralID)
	if err != nil {
		return nil, err
	}
	if referral.UserID == userID {
		return nil, apierrors.Forbidden("you cannot leave feedback on your own referral")
	}

	var existing int64
	if err := s.db.Model(&models.Feedback{}).
		Where("referral_id = ? AND user_id = ?", referralID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, apierrors.Conflict("you have already left feedback on this referral")
	}

	feedback := models.Feedback{
		ReferralID: referralID,
		UserID:     userID,
		IsSuccess:  isSuccess,
		Comment:    comment,
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	if s.score != nil {
		if err := s.recomputeCredibility(referral.UserID); err != nil {
			// Feedback is already stored; scoring can catch up later
			logger.Log.Warn("Failed to recompute credibility score",
				logger.WithUserID(referral.UserID),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Feedback recorded",
		logger.WithReferralID(referralID),
		logger.WithUserID(userID),
		zap.Bool("is_success", isSuccess),
	)

	return &feedback, nil
}

// ListFeedback returns all feedback for a referral, newest first
func (s *Service) ListFeedback(referralID string) ([]models.Feedback, error) {
	if _, err := s.GetByID(referralID); err != nil {
		return nil, err
	}

	var feedback []models.Feedback
	if err := s.db.Where("referral_id = ?", referralID).
		Order("created_at DESC").
		Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return feedback, nil
}

// recomputeCredibility folds all feedback across the owner's referrals
// through the scoring policy.
func (s *Service) recomputeCredibility(ownerID string) error {
	var successCount, failureCount int64

	countFeedback := func(isSuccess bool, out *int64) error {
		return s.db.Model(&models.Feedback{}).
			Joins("JOIN referral_codes ON referral_codes.id = referral_feedback.referral_id").
			Where("referral_codes.user_id = ? AND referral_feedback.is_success = ?", ownerID, isSuccess).
			Count(out).Error
	}

	if err := countFeedback(true, &successCount); err != nil {
		return err
	}
	if err := countFeedback(false, &failureCount); err != nil {
		return err
	}

	score := s.score(successCount, failureCount)
	return s.db.Model(&models.User{}).
		Where("id = ?", ownerID).
		Update("credibility_score", score).Error
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
