package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/domain/user"
	"github.com/motorline/marketplace/internal/http/middlewares"
	"github.com/motorline/marketplace/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type UsersHandler struct {
	users      UserStore
	jwt        TokenIssuer
	bcryptCost int
}

func NewUsersHandler(users UserStore, jwt TokenIssuer, bcryptCost int) *UsersHandler {
	return &UsersHandler{
		users:      users,
		jwt:        jwt,
		bcryptCost: bcryptCost,
	}
}

type authPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password, h.bcryptCost)

	if err != nil {
		RespondInternal(ctx, "Failed to add user, please try again later.")
		return
	}

	u, err := h.users.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "User with this email already exists.")
			return
		}

		RespondInternal(ctx, "Failed to add user, please try again later.")
		return
	}

	token, err := h.jwt.Issue(u.ID)

	if err != nil {
		RespondInternal(ctx, "Failed to add user, please try again later.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"data": authPayload{
			UserID:   u.ID,
			UserName: u.Username,
			Email:    u.Email,
			Token:    token,
		},
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Invalid email or password.")
			return
		}

		RespondInternal(ctx, "Failed to login, please try again later.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid email or password.")
		return
	}

	token, err := h.jwt.Issue(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Failed to login, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": authPayload{
			UserID:   foundUser.ID,
			UserName: foundUser.Username,
			Email:    foundUser.Email,
			Token:    token,
		},
	})
}

// Me returns the identity the auth middleware resolved for the request.
func (h *UsersHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"userId":   u.ID,
			"userName": u.Username,
			"email":    u.Email,
		},
	})
}
