package auth

import (
	"context"

	"ledger-backend/internal/application/accounts"
	authsvc "ledger-backend/internal/application/auth"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const accountSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Accounts *accounts.Service
	Finder   authsvc.AccountFinder
	Rdb      *redis.Client
	Config   middleware.SessionConfig
}

// Register POST /api/v1/auth/register creates a trader account. It does not log in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in accounts.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if in.Email == "" || in.Password == "" || in.Fullname == "" {
		return response.BadRequest(c, "Email, password and fullname are required")
	}
	a, err := h.Accounts.Register(c.UserContext(), in)
	if err != nil {
		return httperr.Reply(c, err)
	}
	log.Info().Str("account_id", a.AccountID.String()).Msg("Account registered")
	return response.SuccessCreated(c, "Account created", fiber.Map{"account": a}, nil)
}

// Login POST /api/v1/auth/login: authenticate, start a session, track it under
// user_sessions:<account_id> and set the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Finder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, authsvc.ErrEmailPasswordRequired.Error())
	}

	a, err := h.Finder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch err {
		case authsvc.ErrEmailPasswordRequired:
			return response.BadRequest(c, err.Error())
		case authsvc.ErrInvalidEmail, authsvc.ErrIncorrectPassword:
			return response.Unauthorized(c, err.Error())
		default:
			log.Error().Err(err).Msg("Login lookup failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	user := middleware.SessionUser{
		AccountID: a.AccountID.String(),
		Fullname:  a.Fullname,
		Email:     a.Email,
		Role:      a.Role,
	}
	middleware.SetSessionUser(c, user)

	if err := h.Rdb.SAdd(context.Background(), accountSessionsPrefix+user.AccountID, sessionID).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to track session")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SessionCookieValue(sessionID, h.Config.Secret)
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{"user": user}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	user, err := authsvc.VerifySession(sessionUser)
	if err != nil {
		log.Debug().Str("path", c.Path()).Bool("has_session_id", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: forget the session in Redis and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if sessionID != "" {
		if id := middleware.AccountID(c); id != "" {
			_ = h.Rdb.SRem(ctx, accountSessionsPrefix+id, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
