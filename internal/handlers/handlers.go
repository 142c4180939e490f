package handlers

import (
	"github.com/refermarket/backend/internal/auth"
	"github.com/refermarket/backend/internal/cache"
	"github.com/refermarket/backend/internal/referrals"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db        *gorm.DB
	referrals *referrals.Service
	auth      *auth.Service
	redis     *cache.RedisClient
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, referralService *referrals.Service, authService *auth.Service) *Handlers {
	return &Handlers{
		db:        db,
		referrals: referralService,
		auth:      authService,
	}
}

// SetRedisClient attaches the optional Redis client used for response
// caching on hot read paths.
func (h *Handlers) SetRedisClient(redis *cache.RedisClient) {
	h.redis = redis
}
