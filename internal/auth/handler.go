package auth

import (
	"crypto/rand"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/response"
	"github.com/meetvo/backend/pkg/utils"
)

// SignUpRequest is the body for POST /user/signup.
type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Handler handles user sign-up and login.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// SignUp handles POST /user/signup. Creates a user and issues a JWT cookie.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "all fields (email, password, first_name, last_name) are required")
		return
	}

	ctx := c.Request.Context()
	exists, err := h.repo.EmailExists(ctx, req.Email)
	if err != nil {
		h.logger.Error("email lookup failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if exists {
		response.Conflict(c, "email already in use")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}

	// Random 15-digit IDs; re-roll on the rare collision.
	var id int64
	for {
		id, err = generateUserID()
		if err != nil {
			h.logger.Error("generate user id failed", zap.Error(err))
			response.Internal(c, "internal server error")
			return
		}
		existing, err := h.repo.GetByID(ctx, id)
		if err != nil {
			h.logger.Error("user id lookup failed", zap.Error(err))
			response.Internal(c, "internal server error")
			return
		}
		if existing == nil {
			break
		}
	}

	user := &models.User{
		ID:        id,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}

	token := h.issueCookie(c, user)
	response.Created(c, gin.H{"user": user.ToPublic(), "token": token})
}

// Login handles POST /auth/login. Verifies credentials and issues a JWT cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("user lookup failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token := h.issueCookie(c, user)
	response.OK(c, gin.H{"user": user.ToPublic(), "token": token})
}

// issueCookie generates a token and sets it as an httpOnly cookie. The token
// is also returned so responses can carry it for non-browser clients.
func (h *Handler) issueCookie(c *gin.Context, user *models.User) string {
	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		return ""
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(CookieName, token, int(h.jwt.TTL().Seconds()), "/", "", true, true)
	return token
}

// generateUserID returns a random 15-digit numeric ID.
func generateUserID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000000000000))
	if err != nil {
		return 0, err
	}
	return n.Int64() + 100000000000000, nil
}
