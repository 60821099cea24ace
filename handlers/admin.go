package handlers

import (
	"net/http"
	"strings"
	"time"

	"saubio/models"
	"saubio/services/flow"
	"saubio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 12 * time.Hour

// AdminHandler encapsulates employee-level operations.
type AdminHandler struct {
	Sessions     flow.SessionService
	Email        string
	PasswordHash string
}

// NewAdminHandler creates a new AdminHandler for the configured employee account.
func NewAdminHandler(sessions flow.SessionService, email, passwordHash string) *AdminHandler {
	return &AdminHandler{
		Sessions:     sessions,
		Email:        email,
		PasswordHash: passwordHash,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler handles POST /api/admin/login.
func (h *AdminHandler) LoginHandler(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if h.Email == "" || h.PasswordHash == "" {
		utils.JSONError(c, http.StatusServiceUnavailable, "admin login is not configured", "")
		return
	}

	emailOK := strings.EqualFold(strings.TrimSpace(req.Email), h.Email)
	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)); err != nil || !emailOK {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, err := utils.GenerateToken(h.Email, utils.RoleAdmin, adminTokenTTL)
	if err != nil {
		getLogger(c).Error("LoginHandler: failed to sign token", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to sign token", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(adminTokenTTL).UTC(),
		"role":      utils.RoleAdmin,
	})
}

type overridesRequest struct {
	Overrides models.StageOverrides `json:"overrides"`
}

// SetOverridesHandler handles PUT /api/admin/flow/session/:sessionID/overrides.
func (h *AdminHandler) SetOverridesHandler(c *gin.Context) {
	var req overridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snapshot, err := h.Sessions.SetOverrides(c.Request.Context(), c.Param("sessionID"), req.Overrides)
	if err != nil {
		respondFlowError(c, "SetOverridesHandler", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
