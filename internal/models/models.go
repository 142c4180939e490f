package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// StringArray is a custom type for PostgreSQL text[] that implements Scanner and Valuer
type StringArray []string

// Scan implements the sql.Scanner interface for reading from database
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*a = nil
			return nil
		}
	}

	str = strings.TrimPrefix(str, "{")
	str = strings.TrimSuffix(str, "}")

	if str == "" {
		*a = []string{}
		return nil
	}

	// Split by comma (simple case - doesn't handle quoted values with commas)
	*a = strings.Split(str, ",")
	return nil
}

// Value implements the driver.Valuer interface for writing to database
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(a, ",") + "}", nil
}

// ReferralType declares what kind of referral a platform accepts
type ReferralType string

const (
	ReferralTypeCode ReferralType = "code"
	ReferralTypeLink ReferralType = "link"
	ReferralTypeBoth ReferralType = "both"
)

// ReferralKind tags a single submitted value as a code or a link.
// Unlike ReferralType (a platform-level policy), a submission is always
// exactly one of the two.
type ReferralKind string

const (
	KindCode ReferralKind = "code"
	KindLink ReferralKind = "link"
)

// ReferralValue is the closed code-or-link variant carried through the
// submission pipeline. Construct via CodeValue or LinkValue.
type ReferralValue struct {
	Kind  ReferralKind `json:"kind"`
	Value string       `json:"value"`
}

func CodeValue(v string) ReferralValue { return ReferralValue{Kind: KindCode, Value: v} }
func LinkValue(v string) ReferralValue { return ReferralValue{Kind: KindLink, Value: v} }

// PlatformCategory buckets platforms for browsing and related-offer lookups
type PlatformCategory string

const (
	CategoryFinance       PlatformCategory = "finance"
	CategoryTravel        PlatformCategory = "travel"
	CategoryFood          PlatformCategory = "food"
	CategoryShopping      PlatformCategory = "shopping"
	CategoryEntertainment PlatformCategory = "entertainment"
	CategoryTechnology    PlatformCategory = "technology"
	CategoryOther         PlatformCategory = "other"
)

// ValidationRules is the per-platform rule set applied to submitted values.
// Stored as jsonb on the platform row, one set per referral kind.
type ValidationRules struct {
	MinLength         int      `json:"min_length,omitempty"`
	MaxLength         int      `json:"max_length,omitempty"`
	Pattern           string   `json:"pattern,omitempty"`
	Format            string   `json:"format,omitempty"`
	Case              string   `json:"case,omitempty"` // "upper", "lower", "any"
	AllowedCharacters string   `json:"allowed_characters,omitempty"`
	Examples          []string `json:"examples,omitempty"`
	InvalidMessage    string   `json:"invalid_message"`
}

// Platform represents a merchant/offer definition
type Platform struct {
	ID       string           `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string           `gorm:"not null" json:"name"`
	Slug     string           `gorm:"uniqueIndex;not null" json:"slug"`
	Category PlatformCategory `gorm:"not null;index" json:"category"`
	Icon     string           `gorm:"not null" json:"icon"`

	Description        string `gorm:"type:text;not null" json:"description"`
	BenefitDescription string `gorm:"type:text;not null" json:"benefit_description"`

	// Ordered instructions: how to claim a referral, and how to obtain your own
	ClaimSteps       StringArray `gorm:"type:text[]" json:"claim_steps"`
	GetReferralSteps StringArray `gorm:"type:text[]" json:"get_referral_steps"`
	GetReferralLink  string      `json:"get_referral_link,omitempty"`
	WebsiteURL       string      `json:"website_url,omitempty"`

	IsActive     bool         `gorm:"default:true" json:"is_active"`
	ReferralType ReferralType `gorm:"not null" json:"referral_type"`

	// Rule sets must match ReferralType: code-type platforms carry only
	// CodeRules, link-type only LinkRules, both-type carry both.
	CodeRules *ValidationRules `gorm:"type:jsonb;serializer:json" json:"code_rules,omitempty"`
	LinkRules *ValidationRules `gorm:"type:jsonb;serializer:json" json:"link_rules,omitempty"`

	Version int `gorm:"default:1" json:"version"`

	ReferralCodes []ReferralCode `gorm:"foreignKey:PlatformID" json:"referral_codes,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RulesFor returns the rule set governing the given submission kind,
// or nil when the platform declares no rules for it.
func (p *Platform) RulesFor(kind ReferralKind) *ValidationRules {
	switch kind {
	case KindCode:
		return p.CodeRules
	case KindLink:
		return p.LinkRules
	}
	return nil
}

// AcceptsKind reports whether the platform's referral type allows
// submissions of the given kind.
func (p *Platform) AcceptsKind(kind ReferralKind) bool {
	switch p.ReferralType {
	case ReferralTypeCode:
		return kind == KindCode
	case ReferralTypeLink:
		return kind == KindLink
	case ReferralTypeBoth:
		return kind == KindCode || kind == KindLink
	}
	return false
}

// SourceType records how a referral entered the system
type SourceType string

const (
	SourceScraped       SourceType = "SCRAPED"
	SourceUserSubmitted SourceType = "USER_SUBMITTED"
)

// ReferralStatus is the referral lifecycle state
type ReferralStatus string

const (
	StatusActive  ReferralStatus = "ACTIVE"
	StatusExpired ReferralStatus = "EXPIRED"
	StatusBlocked ReferralStatus = "BLOCKED"
	StatusDeleted ReferralStatus = "DELETED"
)

// ReferralCode represents a user's claim to a code or link for a platform
type ReferralCode struct {
	ID         string   `gorm:"primaryKey;type:uuid" json:"id"`
	PlatformID string   `gorm:"not null;index" json:"platform_id"`
	Platform   Platform `gorm:"foreignKey:PlatformID" json:"-"`

	// Denormalized for the hot listing query (platform_slug, status, clicks DESC)
	PlatformSlug string `gorm:"not null;index" json:"platform_slug"`

	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	// Owner is the public projection of User attached to listing
	// responses; the full row never leaves the server
	Owner *UserSummary `gorm:"-" json:"user,omitempty"`

	// Exactly one of Code / ReferralLink is populated, per the submission kind
	Code         *string `json:"code,omitempty"`
	ReferralLink *string `json:"referral_link,omitempty"`

	SourceType SourceType `gorm:"not null;default:USER_SUBMITTED" json:"source_type"`
	SourceURL  string     `json:"source_url,omitempty"`

	Status ReferralStatus `gorm:"not null;default:ACTIVE;index" json:"status"`

	Clicks        int        `gorm:"default:0" json:"clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	Version int `gorm:"default:1" json:"version"`

	Feedback []Feedback `gorm:"foreignKey:ReferralID" json:"feedback,omitempty"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Value returns the populated code or link and its kind.
func (r *ReferralCode) Value() ReferralValue {
	if r.Code != nil {
		return CodeValue(*r.Code)
	}
	if r.ReferralLink != nil {
		return LinkValue(*r.ReferralLink)
	}
	return ReferralValue{}
}

// SetValue stores v in the field matching its kind and clears the other.
func (r *ReferralCode) SetValue(v ReferralValue) {
	switch v.Kind {
	case KindCode:
		r.Code = &v.Value
		r.ReferralLink = nil
	case KindLink:
		r.ReferralLink = &v.Value
		r.Code = nil
	}
}

// User is an account identity bridged from the external identity provider
type User struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	// Stable UID issued by the identity provider
	UID   string `gorm:"uniqueIndex;not null" json:"uid"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	DisplayName    string `json:"display_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`

	// Moved by the feedback scoring policy (externally supplied)
	CredibilityScore float64 `gorm:"default:0" json:"credibility_score"`

	IsPremium     bool       `gorm:"default:false" json:"is_premium"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`

	// Aggregate stats, mutated only by click attribution
	TotalClicks   int        `gorm:"default:0" json:"total_clicks"`
	TotalEarnings float64    `gorm:"default:0" json:"total_earnings"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Version     int        `gorm:"default:1" json:"version"`

	ReferralCodes []ReferralCode `gorm:"foreignKey:UserID" json:"referral_codes,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSummary is the public projection of a referral owner. Email,
// premium status and earnings stay private.
type UserSummary struct {
	UID              string  `json:"uid"`
	DisplayName      string  `json:"display_name"`
	ProfilePicture   string  `json:"profile_picture,omitempty"`
	CredibilityScore float64 `json:"credibility_score"`
}

// Summary returns the owner fields safe to expose publicly.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		UID:              u.UID,
		DisplayName:      u.DisplayName,
		ProfilePicture:   u.ProfilePicture,
		CredibilityScore: u.CredibilityScore,
	}
}

// Feedback is a post-click credibility report against a referral
type Feedback struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	ReferralID string       `gorm:"not null;index" json:"referral_id"`
	Referral   ReferralCode `gorm:"foreignKey:ReferralID" json:"-"`
	UserID     string       `gorm:"not null;index" json:"user_id"`
	User       User         `gorm:"foreignKey:UserID" json:"user,omitempty"`

	IsSuccess bool   `gorm:"not null" json:"is_success"`
	Comment   string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "referral_feedback"
}

// Click is an audit record written alongside the counter increments
type Click struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	ReferralID string       `gorm:"not null;index" json:"referral_id"`
	Referral   ReferralCode `gorm:"foreignKey:ReferralID" json:"-"`

	// Nullable: anonymous visitors click too
	UserID *string `gorm:"index" json:"user_id,omitempty"`

	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
	IPHash    string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (Click) TableName() string {
	return "referral_clicks"
}

// BeforeCreate hooks for GORM

func (p *Platform) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

func (r *ReferralCode) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (c *Click) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}
