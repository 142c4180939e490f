package referrals

import (
	"testing"

	"github.com/glebarez/sqlite"
	apierrors "github.com/refermarket/backend/internal/errors"
	"github.com/refermarket/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ReferralServiceTestSuite contains referral service tests
type ReferralServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service

	codePlatform models.Platform
	linkPlatform models.Platform
	owner        models.User
	other        models.User
}

func (suite *ReferralServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Platform{},
		&models.ReferralCode{},
		&models.Feedback{},
		&models.Click{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
}

// SetupTest resets data and recreates the fixtures before each test
func (suite *ReferralServiceTestSuite) SetupTest() {
	t := suite.T()

	for _, table := range []string{"referral_clicks", "referral_feedback", "referral_codes", "platforms", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.service = NewService(suite.db, Config{MaxActivePerPlatform: 2}, nil)

	suite.codePlatform = models.Platform{
		Name:               "Chase Sapphire",
		Category:           models.CategoryFinance,
		Icon:               "chase.svg",
		Description:        "Travel rewards credit card",
		BenefitDescription: "60,000 bonus points after qualifying spend",
		IsActive:           true,
		ReferralType:       models.ReferralTypeCode,
		CodeRules: &models.ValidationRules{
			MinLength:      8,
			MaxLength:      8,
			Pattern:        "[A-Z0-9]{8}",
			Case:           "upper",
			InvalidMessage: "Code must be 8 uppercase letters or digits",
		},
	}
	require.NoError(t, suite.db.Create(&suite.codePlatform).Error)

	suite.linkPlatform = models.Platform{
		Name:               "Robinhood",
		Category:           models.CategoryFinance,
		Icon:               "robinhood.svg",
		Description:        "Commission-free investing",
		BenefitDescription: "Free stock for you and your friend",
		IsActive:           true,
		ReferralType:       models.ReferralTypeLink,
		LinkRules: &models.ValidationRules{
			MaxLength:      200,
			Pattern:        `https://join\.robinhood\.com/.+`,
			InvalidMessage: "Must be a join.robinhood.com invite link",
		},
	}
	require.NoError(t, suite.db.Create(&suite.linkPlatform).Error)

	suite.owner = models.User{UID: "uid-owner", Email: "owner@example.com", DisplayName: "Owner"}
	require.NoError(t, suite.db.Create(&suite.owner).Error)

	suite.other = models.User{UID: "uid-other", Email: "other@example.com", DisplayName: "Other"}
	require.NoError(t, suite.db.Create(&suite.other).Error)
}

func (suite *ReferralServiceTestSuite) TestCreateCodeReferral() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("ABCD1234"))
	require.NoError(t, err)
	require.NotNil(t, referral)

	assert.NotEmpty(t, referral.ID)
	assert.Equal(t, suite.codePlatform.ID, referral.PlatformID)
	assert.Equal(t, suite.codePlatform.Slug, referral.PlatformSlug)
	assert.Equal(t, models.StatusActive, referral.Status)
	assert.Equal(t, models.SourceUserSubmitted, referral.SourceType)
	require.NotNil(t, referral.Code)
	assert.Equal(t, "ABCD1234", *referral.Code)
	assert.Nil(t, referral.ReferralLink)
}

func (suite *ReferralServiceTestSuite) TestCreateNormalizesValue() {
	t := suite.T()

	// Fullwidth characters and surrounding whitespace fold away under NFKC
	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("  ＡＢＣＤ１２３４  "))
	require.NoError(t, err)
	require.NotNil(t, referral.Code)
	assert.Equal(t, "ABCD1234", *referral.Code)
}

func (suite *ReferralServiceTestSuite) TestCreateUnknownPlatform() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, "no-such-platform", models.CodeValue("ABCD1234"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrNotFound, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestCreateInactivePlatform() {
	t := suite.T()

	require.NoError(t, suite.db.Model(&suite.codePlatform).Update("is_active", false).Error)

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("ABCD1234"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrNotFound, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestCreateRejectsWrongKind() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.LinkValue("https://example.com/ref"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrValidation, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestCreateRejectsInvalidValue() {
	t := suite.T()

	cases := []string{
		"short",        // too short
		"abcd1234",     // lowercase
		"ABCD-1234",    // pattern mismatch (and too long)
		"",             // empty
		"ABCD\x001234", // control character
	}
	for _, value := range cases {
		_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue(value))
		require.Error(t, err, "value %q should be rejected", value)
		apiErr, ok := err.(*apierrors.APIError)
		require.True(t, ok)
		assert.Equal(t, apierrors.ErrValidation, apiErr.Code)
	}
}

func (suite *ReferralServiceTestSuite) TestCreateSurfacesPlatformMessage() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code must be 8 uppercase letters or digits")
}

func (suite *ReferralServiceTestSuite) TestCreateRejectsHardenedURLs() {
	t := suite.T()

	cases := []string{
		"ftp://join.robinhood.com/alice",  // wrong scheme
		"https://93.184.216.34/alice",     // IPv4-literal host
		"https://jоin.robinhood.com/bob",  // Cyrillic о lookalike
		"join.robinhood.com/alice",        // not absolute
	}
	for _, value := range cases {
		_, err := suite.service.Create(suite.owner.ID, suite.linkPlatform.Slug, models.LinkValue(value))
		require.Error(t, err, "URL %q should be rejected", value)
	}

	referral, err := suite.service.Create(suite.owner.ID, suite.linkPlatform.Slug, models.LinkValue("https://join.robinhood.com/alice"))
	require.NoError(t, err)
	require.NotNil(t, referral.ReferralLink)
	assert.Nil(t, referral.Code)
}

func (suite *ReferralServiceTestSuite) TestCreateEnforcesActiveCap() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	_, err = suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)

	_, err = suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("CCCC3333"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrConflict, apiErr.Code)

	// Another user is unaffected by the owner's cap
	_, err = suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("CCCC3333"))
	require.NoError(t, err)
}

func (suite *ReferralServiceTestSuite) TestCreateRejectsDuplicateValue() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrConflict, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestDuplicateAllowedAfterDelete() {
	t := suite.T()

	first, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	require.NoError(t, suite.service.Delete(suite.owner.ID, first.ID))

	// Only ACTIVE referrals hold a value; deleted ones release it
	_, err = suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
}

func (suite *ReferralServiceTestSuite) TestUpdate() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	originalVersion := referral.Version

	updated, err := suite.service.Update(suite.owner.ID, referral.ID, models.CodeValue("BBBB2222"))
	require.NoError(t, err)
	require.NotNil(t, updated.Code)
	assert.Equal(t, "BBBB2222", *updated.Code)
	assert.Equal(t, originalVersion+1, updated.Version)
}

func (suite *ReferralServiceTestSuite) TestUpdateOwnerOnly() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.Update(suite.other.ID, referral.ID, models.CodeValue("BBBB2222"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrForbidden, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestUpdateRevalidates() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.Update(suite.owner.ID, referral.ID, models.CodeValue("bad"))
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrValidation, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestUpdateToSameValueAllowed() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	// Duplicate check must not trip over the row being updated
	_, err = suite.service.Update(suite.owner.ID, referral.ID, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
}

func (suite *ReferralServiceTestSuite) TestDeleteIsSoft() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	require.NoError(t, suite.service.Delete(suite.owner.ID, referral.ID))

	_, err = suite.service.GetByID(referral.ID)
	require.Error(t, err)

	// Row survives for click/feedback history
	var stored models.ReferralCode
	require.NoError(t, suite.db.First(&stored, "id = ?", referral.ID).Error)
	assert.Equal(t, models.StatusDeleted, stored.Status)
}

func (suite *ReferralServiceTestSuite) TestDeleteOwnerOnly() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	err = suite.service.Delete(suite.other.ID, referral.ID)
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrForbidden, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestListByPlatformOrdersByClicks() {
	t := suite.T()

	low, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	high, err := suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)

	require.NoError(t, suite.db.Model(&models.ReferralCode{}).Where("id = ?", low.ID).Update("clicks", 3).Error)
	require.NoError(t, suite.db.Model(&models.ReferralCode{}).Where("id = ?", high.ID).Update("clicks", 10).Error)

	page, err := suite.service.ListByPlatform(suite.codePlatform.Slug, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 2)
	assert.Equal(t, high.ID, page.Referrals[0].ID)
	assert.Equal(t, low.ID, page.Referrals[1].ID)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.False(t, page.HasMore)
}

func (suite *ReferralServiceTestSuite) TestListByPlatformExcludesDeleted() {
	t := suite.T()

	kept, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	gone, err := suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)
	require.NoError(t, suite.service.Delete(suite.other.ID, gone.ID))

	page, err := suite.service.ListByPlatform(suite.codePlatform.Slug, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 1)
	assert.Equal(t, kept.ID, page.Referrals[0].ID)
}

func (suite *ReferralServiceTestSuite) TestListByPlatformAttachesOwnerSummary() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	page, err := suite.service.ListByPlatform(suite.codePlatform.Slug, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 1)

	owner := page.Referrals[0].Owner
	require.NotNil(t, owner)
	assert.Equal(t, "uid-owner", owner.UID)
	assert.Equal(t, "Owner", owner.DisplayName)
}

func (suite *ReferralServiceTestSuite) TestListByPlatformPagination() {
	t := suite.T()

	_, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	_, err = suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)
	_, err = suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("CCCC3333"))
	require.NoError(t, err)

	page, err := suite.service.ListByPlatform(suite.codePlatform.Slug, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Referrals, 2)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.True(t, page.HasMore)

	page, err = suite.service.ListByPlatform(suite.codePlatform.Slug, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Referrals, 1)
	assert.False(t, page.HasMore)
}

func (suite *ReferralServiceTestSuite) TestListByUser() {
	t := suite.T()

	code, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	link, err := suite.service.Create(suite.owner.ID, suite.linkPlatform.Slug, models.LinkValue("https://join.robinhood.com/alice"))
	require.NoError(t, err)
	_, err = suite.service.Create(suite.other.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)

	page, err := suite.service.ListByUser(suite.owner.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 2)
	ids := []string{page.Referrals[0].ID, page.Referrals[1].ID}
	assert.Contains(t, ids, code.ID)
	assert.Contains(t, ids, link.ID)
}

func (suite *ReferralServiceTestSuite) TestListByUserShowsActiveOnly() {
	t := suite.T()

	kept, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)
	expired, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("BBBB2222"))
	require.NoError(t, err)
	require.NoError(t, suite.db.Model(&models.ReferralCode{}).
		Where("id = ?", expired.ID).
		Update("status", models.StatusExpired).Error)

	page, err := suite.service.ListByUser(suite.owner.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 1)
	assert.Equal(t, kept.ID, page.Referrals[0].ID)

	page, err = suite.service.ListByUserPlatform(suite.owner.ID, suite.codePlatform.Slug, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Referrals, 1)
	assert.Equal(t, kept.ID, page.Referrals[0].ID)
}

func (suite *ReferralServiceTestSuite) TestHasActive() {
	t := suite.T()

	has, err := suite.service.HasActive(suite.owner.ID, suite.codePlatform.Slug)
	require.NoError(t, err)
	assert.False(t, has)

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	has, err = suite.service.HasActive(suite.owner.ID, suite.codePlatform.Slug)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, suite.service.Delete(suite.owner.ID, referral.ID))
	has, err = suite.service.HasActive(suite.owner.ID, suite.codePlatform.Slug)
	require.NoError(t, err)
	assert.False(t, has)
}

func (suite *ReferralServiceTestSuite) TestRecordClick() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	clicked, err := suite.service.RecordClick(referral.ID, &suite.other.ID, "test-agent", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, 1, clicked.Clicks)
	assert.NotNil(t, clicked.LastClickedAt)

	var owner models.User
	require.NoError(t, suite.db.First(&owner, "id = ?", suite.owner.ID).Error)
	assert.Equal(t, 1, owner.TotalClicks)
	assert.NotNil(t, owner.LastClickedAt)

	var click models.Click
	require.NoError(t, suite.db.First(&click, "referral_id = ?", referral.ID).Error)
	require.NotNil(t, click.UserID)
	assert.Equal(t, suite.other.ID, *click.UserID)
	assert.Equal(t, "test-agent", click.UserAgent)
	assert.NotEmpty(t, click.IPHash)
	assert.NotEqual(t, "203.0.113.9", click.IPHash)
}

func (suite *ReferralServiceTestSuite) TestSelfClickIsNoOp() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	clicked, err := suite.service.RecordClick(referral.ID, &suite.owner.ID, "test-agent", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, 0, clicked.Clicks)

	var clickCount int64
	suite.db.Model(&models.Click{}).Count(&clickCount)
	assert.Equal(t, int64(0), clickCount)

	var owner models.User
	require.NoError(t, suite.db.First(&owner, "id = ?", suite.owner.ID).Error)
	assert.Equal(t, 0, owner.TotalClicks)
}

func (suite *ReferralServiceTestSuite) TestAnonymousClick() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	clicked, err := suite.service.RecordClick(referral.ID, nil, "", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, 1, clicked.Clicks)

	var click models.Click
	require.NoError(t, suite.db.First(&click, "referral_id = ?", referral.ID).Error)
	assert.Nil(t, click.UserID)
}

func (suite *ReferralServiceTestSuite) TestAddFeedback() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	feedback, err := suite.service.AddFeedback(referral.ID, suite.other.ID, true, "worked great")
	require.NoError(t, err)
	assert.NotEmpty(t, feedback.ID)
	assert.True(t, feedback.IsSuccess)
	assert.Equal(t, "worked great", feedback.Comment)

	list, err := suite.service.ListFeedback(referral.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func (suite *ReferralServiceTestSuite) TestNoSelfFeedback() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.AddFeedback(referral.ID, suite.owner.ID, true, "")
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrForbidden, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestNoDuplicateFeedback() {
	t := suite.T()

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.AddFeedback(referral.ID, suite.other.ID, true, "")
	require.NoError(t, err)

	_, err = suite.service.AddFeedback(referral.ID, suite.other.ID, false, "")
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrConflict, apiErr.Code)
}

func (suite *ReferralServiceTestSuite) TestFeedbackRecomputesCredibility() {
	t := suite.T()

	// Wilson-ish toy policy: fraction of successful reports
	suite.service = NewService(suite.db, Config{MaxActivePerPlatform: 2}, func(success, failure int64) float64 {
		total := success + failure
		if total == 0 {
			return 0
		}
		return float64(success) / float64(total)
	})

	referral, err := suite.service.Create(suite.owner.ID, suite.codePlatform.Slug, models.CodeValue("AAAA1111"))
	require.NoError(t, err)

	_, err = suite.service.AddFeedback(referral.ID, suite.other.ID, true, "")
	require.NoError(t, err)

	var owner models.User
	require.NoError(t, suite.db.First(&owner, "id = ?", suite.owner.ID).Error)
	assert.InDelta(t, 1.0, owner.CredibilityScore, 1e-9)

	third := models.User{UID: "uid-third", Email: "third@example.com"}
	require.NoError(t, suite.db.Create(&third).Error)

	_, err = suite.service.AddFeedback(referral.ID, third.ID, false, "expired")
	require.NoError(t, err)

	require.NoError(t, suite.db.First(&owner, "id = ?", suite.owner.ID).Error)
	assert.InDelta(t, 0.5, owner.CredibilityScore, 1e-9)
}

func TestReferralServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReferralServiceTestSuite))
}
