package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/refermarket/backend/internal/auth"
	"github.com/refermarket/backend/internal/middleware"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/util"
)

const (
	referralPageSize    = 20
	referralMaxPageSize = 100
)

type submitReferralRequest struct {
	PlatformSlug string `json:"platform_slug" binding:"required"`
	Kind         string `json:"kind" binding:"required,oneof=code link"`
	Value        string `json:"value" binding:"required"`
}

type updateReferralRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=code link"`
	Value string `json:"value" binding:"required"`
}

// CreateReferral submits a new referral code or link.
// POST /api/referrals
func (h *Handlers) CreateReferral(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req submitReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	value := models.ReferralValue{Kind: models.ReferralKind(req.Kind), Value: req.Value}
	referral, err := h.referrals.Create(userID, req.PlatformSlug, value)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	middleware.RecordReferralCreated(referral.PlatformSlug, req.Kind)
	c.JSON(http.StatusCreated, gin.H{"referral": referral})
}

// UpdateReferral replaces the value of one of the caller's referrals.
// PUT /api/referrals/:id
func (h *Handlers) UpdateReferral(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req updateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	value := models.ReferralValue{Kind: models.ReferralKind(req.Kind), Value: req.Value}
	referral, err := h.referrals.Update(userID, c.Param("id"), value)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referral": referral})
}

// DeleteReferral soft-deletes one of the caller's referrals.
// DELETE /api/referrals/:id
func (h *Handlers) DeleteReferral(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.referrals.Delete(userID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetPlatformReferrals lists active referrals for a platform, most
// clicked first.
// GET /api/referrals/platform/:slug
func (h *Handlers) GetPlatformReferrals(c *gin.Context) {
	page, limit := util.ParsePage(c.Query("page"), c.Query("limit"), referralPageSize, referralMaxPageSize)

	result, err := h.referrals.ListByPlatform(c.Param("slug"), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyReferrals lists the caller's referrals across platforms.
// GET /api/referrals/mine
func (h *Handlers) GetMyReferrals(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	page, limit := util.ParsePage(c.Query("page"), c.Query("limit"), referralPageSize, referralMaxPageSize)

	result, err := h.referrals.ListByUser(userID, page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyPlatformReferrals lists the caller's own referrals on one
// platform.
// GET /api/referrals/user/:slug
func (h *Handlers) GetMyPlatformReferrals(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	page, limit := util.ParsePage(c.Query("page"), c.Query("limit"), referralPageSize, referralMaxPageSize)

	result, err := h.referrals.ListByUserPlatform(userID, c.Param("slug"), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckActiveReferral reports whether the caller already holds an
// active referral on the platform. Clients use this to steer users to
// update instead of resubmitting.
// GET /api/referrals/check/:slug
func (h *Handlers) CheckActiveReferral(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	hasActive, err := h.referrals.HasActive(userID, c.Param("slug"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform_slug": c.Param("slug"),
		"has_active":    hasActive,
	})
}

// TrackClick attributes a click to a referral. Works for anonymous
// visitors; authenticated owners clicking their own referral are a
// no-op.
// POST /api/referrals/:id/track-click
func (h *Handlers) TrackClick(c *gin.Context) {
	var clickerID *string
	if user := auth.CurrentUser(c); user != nil {
		clickerID = &user.ID
	}

	referral, err := h.referrals.RecordClick(c.Param("id"), clickerID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		util.RespondError(c, err)
		return
	}

	middleware.RecordClick(referral.PlatformSlug)
	c.JSON(http.StatusOK, gin.H{
		"referral_id": referral.ID,
		"clicks":      referral.Clicks,
		"value":       referral.Value(),
	})
}

type feedbackRequest struct {
	IsSuccess *bool  `json:"is_success" binding:"required"`
	Comment   string `json:"comment" binding:"max=1000"`
}

// CreateFeedback records a success/failure report against a referral.
// POST /api/referrals/:id/feedback
func (h *Handlers) CreateFeedback(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	feedback, err := h.referrals.AddFeedback(c.Param("id"), userID, *req.IsSuccess, req.Comment)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	outcome := "failure"
	if feedback.IsSuccess {
		outcome = "success"
	}
	middleware.RecordFeedback(outcome)

	c.JSON(http.StatusCreated, gin.H{"feedback": feedback})
}

// GetFeedback lists feedback for a referral, newest first.
// GET /api/referrals/:id/feedback
func (h *Handlers) GetFeedback(c *gin.Context) {
	feedback, err := h.referrals.ListFeedback(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
