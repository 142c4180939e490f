package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/util"
	"github.com/refermarket/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	platformPageSize    = 30
	platformMaxPageSize = 100
	relatedPlatformsMax = 6

	platformListCacheKey = "platforms:list:default"
	platformListCacheTTL = 60 * time.Second
)

// ListPlatforms returns the platform catalog with optional search and
// category filtering.
// GET /api/platforms
func (h *Handlers) ListPlatforms(c *gin.Context) {
	search := validation.Normalize(c.Query("search"))
	category := c.Query("category")
	page, limit := util.ParsePage(c.Query("page"), c.Query("limit"), platformPageSize, platformMaxPageSize)

	// The unfiltered first page is the hottest query in the app
	cacheable := search == "" && category == "" && page == 1 && limit == platformPageSize
	if cacheable && h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if cached, err := h.redis.Get(ctx, platformListCacheKey); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	filter := func() *gorm.DB {
		query := h.db.Model(&models.Platform{}).Where("is_active = ?", true)
		if search != "" {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			query = query.Where(
				"(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(slug) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')",
				pattern, pattern, pattern,
			)
		}
		if category != "" {
			query = query.Where("category = ?", category)
		}
		return query
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	offset := (page - 1) * limit
	var platforms []models.Platform
	if err := filter().
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&platforms).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	response := gin.H{
		"platforms":   platforms,
		"total_count": total,
		"page":        page,
		"limit":       limit,
		"has_more":    offset+len(platforms) < int(total),
	}

	if cacheable && h.redis != nil {
		if body, err := json.Marshal(response); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := h.redis.SetEx(ctx, platformListCacheKey, string(body), platformListCacheTTL); err != nil {
				logger.Log.Debug("Failed to cache platform list", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetPlatform returns a platform by slug along with the first page of
// its active referrals.
// GET /api/platforms/slug/:slug
func (h *Handlers) GetPlatform(c *gin.Context) {
	slug := c.Param("slug")

	var platform models.Platform
	err := h.db.Where("slug = ? AND is_active = ?", slug, true).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "platform")
		return
	} else if err != nil {
		util.RespondError(c, err)
		return
	}

	page, err := h.referrals.ListByPlatform(slug, 1, referralPageSize)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform":  platform,
		"referrals": page,
	})
}

// GetPlatformValidation exposes the platform's submission rule sets so
// clients can validate before submitting. Accepts a slug or a platform
// ID; the two are disambiguated up front because comparing a slug
// against the uuid id column fails at bind time on postgres.
// GET /api/platforms/:slug/validation
func (h *Handlers) GetPlatformValidation(c *gin.Context) {
	param := c.Param("slug")

	query := h.db.Where("is_active = ?", true)
	if _, err := uuid.Parse(param); err == nil {
		query = query.Where("id = ?", param)
	} else {
		query = query.Where("slug = ?", param)
	}

	var platform models.Platform
	err := query.First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "platform")
		return
	} else if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform_slug": platform.Slug,
		"referral_type": platform.ReferralType,
		"code_rules":    platform.CodeRules,
		"link_rules":    platform.LinkRules,
		"version":       platform.Version,
	})
}

// GetRelatedPlatforms returns other active platforms in the same category.
// GET /api/platforms/:slug/related
func (h *Handlers) GetRelatedPlatforms(c *gin.Context) {
	slug := c.Param("slug")

	var platform models.Platform
	err := h.db.Where("slug = ?", slug).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "platform")
		return
	} else if err != nil {
		util.RespondError(c, err)
		return
	}

	var related []models.Platform
	if err := h.db.
		Where("category = ? AND slug <> ? AND is_active = ?", platform.Category, slug, true).
		Order("name ASC").
		Limit(relatedPlatformsMax).
		Find(&related).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platforms": related,
	})
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied search
// terms so they match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
