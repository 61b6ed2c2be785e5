package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig shapes the session cookie. Secret signs cookie values; when it
// is empty cookies are issued and accepted unsigned.
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "ledger.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	sessionDataLocal  = "session_data"
	sessionIDLocal    = "session_id"
	sessionDirtyLocal = "session_dirty"
)

// SessionUser is the account snapshot kept in the session under "user".
type SessionUser struct {
	AccountID string `json:"account_id"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Session loads the session named by the cookie from Redis
// ("session:<id>") and writes it back after the handler when it changed.
// Unchanged sessions of signed-in accounts get their TTL refreshed.
func Session(rdb *redis.Client, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok := ParseSessionCookie(c.Cookies(SessionCookieName), secret)
		if !ok {
			sessionID = ""
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			switch {
			case err == nil:
				_ = json.Unmarshal(b, &data)
			case err != redis.Nil:
				log.Warn().Err(err).Msg("Failed to load session")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, data["user"])
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid, _ := c.Locals(sessionIDLocal).(string)
		if sid == "" {
			return nil
		}
		ctx := context.Background()
		updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
		if dirty, _ := c.Locals(sessionDirtyLocal).(bool); dirty && len(updated) > 0 {
			b, _ := json.Marshal(updated)
			if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
				log.Error().Err(err).Str("session_id", sid).Msg("Failed to persist session")
			}
		} else if updated["user"] != nil {
			if err := rdb.Expire(ctx, SessionRedisPrefix+sid, sessionMaxAge).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh session")
			}
		}
		return nil
	}
}

// SessionCookieValue renders the cookie value for id: "s:<id>" followed by
// ".<signature>" when secret is set.
func SessionCookieValue(id, secret string) string {
	if secret == "" {
		return "s:" + id
	}
	return "s:" + id + "." + signSessionID(id, secret)
}

// ParseSessionCookie extracts the session id from a cookie value. With a
// secret the signature must verify.
func ParseSessionCookie(value, secret string) (string, bool) {
	value = strings.TrimPrefix(value, "s:")
	if value == "" {
		return "", false
	}
	id, sig, signed := strings.Cut(value, ".")
	if secret == "" {
		return id, true
	}
	if !signed || !hmac.Equal([]byte(sig), []byte(signSessionID(id, secret))) {
		return "", false
	}
	return id, true
}

func signSessionID(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// GetSessionID returns the id of the request's session, if any.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionUser stores user in the session and marks it for saving. Call
// RegenerateSessionID first when signing in.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"account_id": user.AccountID,
		"fullname":   user.Fullname,
		"email":      user.Email,
		"role":       user.Role,
	}
	c.Locals(sessionDataLocal, data)
	c.Locals(sessionDirtyLocal, true)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID assigns a fresh session id; the handler sets the cookie.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession forgets the session for the rest of the request. The caller
// deletes the Redis key and clears the cookie.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
}

// SessionCookieConfig returns the cookie attributes shared by login and logout.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.AllowCrossSiteDev {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
