package seed

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/referrals"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedPlatforms upserts the curated platform catalog. Safe to run
// repeatedly; existing platforms are matched by slug and left alone.
func (s *Seeder) SeedPlatforms() error {
	created := 0
	for _, platform := range platformFixtures() {
		var existing models.Platform
		err := s.db.Where("slug = ?", platform.Slug).First(&existing).Error
		if err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check platform %s: %w", platform.Slug, err)
		}

		if err := s.db.Create(&platform).Error; err != nil {
			return fmt.Errorf("failed to create platform %s: %w", platform.Slug, err)
		}
		created++
	}

	logger.Log.Info("Platform catalog seeded", zap.Int("created", created))
	return nil
}

// SeedDev fills a development database with the platform catalog plus
// fake users, referrals, clicks and feedback.
func (s *Seeder) SeedDev() error {
	if err := s.SeedPlatforms(); err != nil {
		return err
	}

	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating referrals...")
	seeded, err := s.seedReferrals(users)
	if err != nil {
		return fmt.Errorf("failed to seed referrals: %w", err)
	}

	logger.Log.Info("Creating clicks and feedback...")
	if err := s.seedActivity(users, seeded); err != nil {
		return fmt.Errorf("failed to seed activity: %w", err)
	}

	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			UID:         fmt.Sprintf("seed-uid-%d-%d", time.Now().Unix(), i),
			Email:       fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			DisplayName: gofakeit.Name(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedReferrals(users []models.User) ([]models.ReferralCode, error) {
	var platforms []models.Platform
	if err := s.db.Where("is_active = ?", true).Find(&platforms).Error; err != nil {
		return nil, err
	}

	service := referrals.NewService(s.db, referrals.Config{MaxActivePerPlatform: 2}, nil)

	var seeded []models.ReferralCode
	for _, user := range users {
		// Each user holds referrals on a few random platforms
		for _, platform := range pickPlatforms(platforms, 1+rand.Intn(3)) {
			value, ok := fakeValue(&platform)
			if !ok {
				continue
			}
			referral, err := service.Create(user.ID, platform.Slug, value)
			if err != nil {
				// Duplicates and caps are expected with random data
				continue
			}
			seeded = append(seeded, *referral)
		}
	}

	logger.Log.Info("Referrals seeded", zap.Int("count", len(seeded)))
	return seeded, nil
}

func (s *Seeder) seedActivity(users []models.User, seeded []models.ReferralCode) error {
	service := referrals.NewService(s.db, referrals.Config{MaxActivePerPlatform: 2}, nil)

	for _, referral := range seeded {
		clicks := rand.Intn(20)
		for i := 0; i < clicks; i++ {
			clicker := users[rand.Intn(len(users))]
			if _, err := service.RecordClick(referral.ID, &clicker.ID, gofakeit.UserAgent(), gofakeit.IPv4Address()); err != nil {
				return err
			}
		}

		if rand.Float64() < 0.4 {
			reviewer := users[rand.Intn(len(users))]
			if reviewer.ID == referral.UserID {
				continue
			}
			_, err := service.AddFeedback(referral.ID, reviewer.ID, rand.Float64() < 0.8, gofakeit.Sentence(8))
			if err != nil {
				// Duplicate feedback from the random picks is fine
				continue
			}
		}
	}
	return nil
}

func pickPlatforms(platforms []models.Platform, n int) []models.Platform {
	if n >= len(platforms) {
		return platforms
	}
	shuffled := make([]models.Platform, len(platforms))
	copy(shuffled, platforms)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// fakeValue produces a random value satisfying the platform's rules
func fakeValue(platform *models.Platform) (models.ReferralValue, bool) {
	switch platform.ReferralType {
	case models.ReferralTypeCode:
		return models.CodeValue(fakeCode(platform.CodeRules)), true
	case models.ReferralTypeLink, models.ReferralTypeBoth:
		return models.LinkValue(fmt.Sprintf("https://join.%s.example.com/%s",
			platform.Slug, strings.ToLower(gofakeit.Username()))), true
	}
	return models.ReferralValue{}, false
}

func fakeCode(rules *models.ValidationRules) string {
	length := 8
	if rules != nil && rules.MinLength > 0 {
		length = rules.MinLength
	}
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return sb.String()
}

// platformFixtures is the curated catalog shipped with the app
func platformFixtures() []models.Platform {
	return []models.Platform{
		{
			Name:               "Chase Sapphire",
			Slug:               "chase-sapphire",
			Category:           models.CategoryFinance,
			Icon:               "chase-sapphire.svg",
			Description:        "Premium travel rewards credit card with transferable points.",
			BenefitDescription: "Earn 60,000 bonus points after qualifying spend in the first 3 months.",
			ClaimSteps: models.StringArray{
				"Open the referral link or enter the code during application",
				"Apply for the Chase Sapphire card",
				"Meet the minimum spend requirement",
			},
			GetReferralSteps: models.StringArray{
				"Log in to your Chase account",
				"Visit the Refer-a-Friend page",
				"Copy your personal referral code",
			},
			GetReferralLink: "https://www.referyourchasecard.com",
			WebsiteURL:      "https://www.chase.com",
			IsActive:        true,
			ReferralType:    models.ReferralTypeCode,
			CodeRules: &models.ValidationRules{
				MinLength:      8,
				MaxLength:      8,
				Pattern:        "[A-Z0-9]{8}",
				Case:           "upper",
				Examples:       []string{"F7K2M9QX"},
				InvalidMessage: "Chase referral codes are 8 uppercase letters or digits",
			},
		},
		{
			Name:               "Robinhood",
			Slug:               "robinhood",
			Category:           models.CategoryFinance,
			Icon:               "robinhood.svg",
			Description:        "Commission-free stock, ETF and crypto trading.",
			BenefitDescription: "You and your friend each receive a free fractional share.",
			ClaimSteps: models.StringArray{
				"Open the invite link on your phone",
				"Sign up for a Robinhood account",
				"Link a bank account",
			},
			GetReferralSteps: models.StringArray{
				"Open the Robinhood app",
				"Tap the gift icon",
				"Share your invite link",
			},
			WebsiteURL:   "https://robinhood.com",
			IsActive:     true,
			ReferralType: models.ReferralTypeLink,
			LinkRules: &models.ValidationRules{
				MaxLength:      200,
				Pattern:        `https://join\.robinhood\.com/.+`,
				Examples:       []string{"https://join.robinhood.com/chriss-4f2b1"},
				InvalidMessage: "Robinhood invites are join.robinhood.com links",
			},
		},
		{
			Name:               "Uber Eats",
			Slug:               "uber-eats",
			Category:           models.CategoryFood,
			Icon:               "uber-eats.svg",
			Description:        "Food delivery from local restaurants.",
			BenefitDescription: "New customers get a discount on their first order.",
			ClaimSteps: models.StringArray{
				"Enter the code at checkout",
				"Place your first order",
			},
			GetReferralSteps: models.StringArray{
				"Open the Uber Eats app",
				"Go to Account, then Invite friends",
			},
			WebsiteURL:   "https://www.ubereats.com",
			IsActive:     true,
			ReferralType: models.ReferralTypeCode,
			CodeRules: &models.ValidationRules{
				MinLength:      6,
				MaxLength:      12,
				Pattern:        "[a-zA-Z0-9]+",
				Examples:       []string{"eats-chrisd2"},
				InvalidMessage: "Uber Eats codes are 6-12 letters or digits",
			},
		},
		{
			Name:               "Airbnb",
			Slug:               "airbnb",
			Category:           models.CategoryTravel,
			Icon:               "airbnb.svg",
			Description:        "Book homes and experiences around the world.",
			BenefitDescription: "Friends get travel credit toward their first booking.",
			ClaimSteps: models.StringArray{
				"Sign up through the invite link",
				"Book a qualifying stay",
			},
			GetReferralSteps: models.StringArray{
				"Visit your Airbnb referrals page",
				"Copy your invite link",
			},
			WebsiteURL:   "https://www.airbnb.com",
			IsActive:     true,
			ReferralType: models.ReferralTypeLink,
			LinkRules: &models.ValidationRules{
				MaxLength:      200,
				Pattern:        `https://(www\.)?airbnb\.[a-z.]+/c/.+`,
				Examples:       []string{"https://www.airbnb.com/c/chrisd1024"},
				InvalidMessage: "Airbnb invites look like airbnb.com/c/yourname",
			},
		},
		{
			Name:               "Dropbox",
			Slug:               "dropbox",
			Category:           models.CategoryTechnology,
			Icon:               "dropbox.svg",
			Description:        "Cloud file storage and sync.",
			BenefitDescription: "Both sides earn bonus storage space.",
			ClaimSteps: models.StringArray{
				"Sign up via the referral link",
				"Install the desktop app",
			},
			GetReferralSteps: models.StringArray{
				"Open dropbox.com/referrals",
				"Copy your referral link",
			},
			WebsiteURL:   "https://www.dropbox.com",
			IsActive:     true,
			ReferralType: models.ReferralTypeLink,
			LinkRules: &models.ValidationRules{
				MaxLength: 200,
				Pattern:   `https://(www\.)?dropbox\.com/(referrals|scl)/.+`,
				InvalidMessage: "Dropbox invites are dropbox.com/referrals links",
			},
		},
		{
			Name:               "Coinbase",
			Slug:               "coinbase",
			Category:           models.CategoryFinance,
			Icon:               "coinbase.svg",
			Description:        "Buy, sell and manage crypto.",
			BenefitDescription: "Both parties receive a crypto bonus after a qualifying trade.",
			ClaimSteps: models.StringArray{
				"Sign up through the invite link",
				"Complete identity verification",
				"Make a qualifying trade",
			},
			GetReferralSteps: models.StringArray{
				"Open the Coinbase app",
				"Tap Invite friends",
			},
			WebsiteURL:   "https://www.coinbase.com",
			IsActive:     true,
			ReferralType: models.ReferralTypeLink,
			LinkRules: &models.ValidationRules{
				MaxLength: 200,
				Pattern:   `https://coinbase\.com/join/.+|https://www\.coinbase\.com/join/.+`,
				InvalidMessage: "Coinbase invites are coinbase.com/join links",
			},
		},
	}
}
