package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/response"
	"github.com/unitracer/backend/pkg/utils"
)

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo    *Repository
	jwt     *JWTService
	revoker *Revoker
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, revoker *Revoker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, revoker: revoker, logger: logger}
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Unauthorized(c, "invalid username or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Logout handles POST /logout. Revokes the presented token for its remaining
// lifetime so it cannot be reused.
func (h *Handler) Logout(c *gin.Context) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "missing user context")
		return
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		h.logger.Error("revoke token failed", zap.Error(err))
		response.Internal(c, "failed to log out")
		return
	}
	response.OK(c, gin.H{"message": "logged out"})
}

// Me handles GET /me. Returns the authenticated user and, when linked, the
// alumni profile.
func (h *Handler) Me(c *gin.Context) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "missing user context")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	alumni, err := h.repo.GetAlumniByUserID(c.Request.Context(), user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("load alumni profile failed", zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}

	response.OK(c, gin.H{"user": user.ToPublic(), "alumni": alumni})
}

// contextClaimsKey is the gin context key under which the JWT middleware
// stores validated claims.
const contextClaimsKey = "auth_claims"

// SetClaims stores validated claims in the gin context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(contextClaimsKey, claims)
}

// ClaimsFromContext returns the validated claims set by the JWT middleware,
// or nil.
func ClaimsFromContext(c *gin.Context) *Claims {
	v, ok := c.Get(contextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
