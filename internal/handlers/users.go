package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/refermarket/backend/internal/auth"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/util"
)

// GetUser returns a user's public profile by provider UID or email.
// GET /api/users/:identifier
func (h *Handlers) GetUser(c *gin.Context) {
	identifier := c.Param("identifier")

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = h.auth.FindUserByEmail(identifier)
	} else {
		user, err = h.auth.FindUserByUID(identifier)
	}
	if err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	var referralCount int64
	if err := h.db.Model(&models.ReferralCode{}).
		Where("user_id = ? AND status = ?", user.ID, models.StatusActive).
		Count(&referralCount).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"referral_count": referralCount,
	})
}

type upsertUserRequest struct {
	DisplayName    string `json:"display_name" binding:"max=100"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,url"`
}

// UpsertUser syncs the caller's profile. The user row itself is created
// by the auth middleware on first verified request; this endpoint only
// applies optional profile fields on top.
// POST /api/users
func (h *Handlers) UpsertUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		util.RespondUnauthorized(c)
		return
	}

	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if req.ProfilePicture != "" {
		updates["profile_picture"] = req.ProfilePicture
	}

	if len(updates) > 0 {
		if err := h.db.Model(user).Updates(updates).Error; err != nil {
			util.RespondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetMe returns the caller's own profile.
// GET /api/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		util.RespondUnauthorized(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
