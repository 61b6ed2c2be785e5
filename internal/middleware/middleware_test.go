package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUser(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"account_id": "550e8400-e29b-41d4-a716-446655440000",
			"role":       role,
		})
		return c.Next()
	}
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/user", withUser(constants.Viewer), RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(AccountID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthorizePermission(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app := fiber.New()
	app.Post("/viewer", withUser(constants.Viewer), AuthorizePermission(constants.TradeAssets), ok)
	app.Post("/trader", withUser(constants.Trader), AuthorizePermission(constants.TradeAssets), ok)
	app.Post("/unknown", withUser(constants.Trader), AuthorizePermission("nope"), ok)
	app.Post("/anon", AuthorizePermission(constants.TradeAssets), ok)

	cases := map[string]int{
		"/viewer":  fiber.StatusForbidden,
		"/trader":  fiber.StatusOK,
		"/unknown": fiber.StatusInternalServerError,
		"/anon":    fiber.StatusUnauthorized,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestSession_PersistsUserAcrossRequests(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New()
	app.Use(Session(rdb, ""))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{AccountID: "acc-1", Role: constants.Trader})
		return c.SendString(sid)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(AccountID(c))
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	sid := string(b)
	require.NotEmpty(t, sid)
	assert.True(t, mr.Exists(SessionRedisPrefix+sid))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s:" + sid})
	resp, err = app.Test(req)
	require.NoError(t, err)
	b, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "acc-1", string(b))
}

func TestSession_SignedCookies(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	const secret = "s3cret"
	app := fiber.New()
	app.Use(Session(rdb, secret))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{AccountID: "acc-2", Role: constants.Trader})
		return c.SendString(SessionCookieValue(sid, secret))
	})
	app.Get("/whoami", func(c *fiber.Ctx) error { return c.SendString(AccountID(c)) })

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	value := string(b)
	sid, ok := ParseSessionCookie(value, secret)
	require.True(t, ok)
	mr.SetTTL(SessionRedisPrefix+sid, time.Minute)

	whoami := func(cookie string) string {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		return string(b)
	}
	assert.Equal(t, "acc-2", whoami(value))
	// reads slide the expiry forward
	assert.Equal(t, 24*time.Hour, mr.TTL(SessionRedisPrefix+sid))

	assert.Empty(t, whoami("s:"+sid))
	assert.Empty(t, whoami("s:"+sid+".forged"))

	_, ok = ParseSessionCookie("s:"+sid, "")
	assert.True(t, ok)
	_, ok = ParseSessionCookie("", secret)
	assert.False(t, ok)
}

func TestTracing_SetsHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
}

func TestTracing_ReusesInboundTraceID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		if zerolog.Ctx(c.UserContext()).GetLevel() == zerolog.Disabled {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(GetTraceID(c))
	})

	inbound := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, inbound, resp.Header.Get("X-Trace-Id"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	got := resp.Header.Get("X-Trace-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	_, err = uuid.Parse(got)
	assert.NoError(t, err)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".example.com", DevPassword: "letmein"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(method, origin, devPassword string) *http.Response {
		req := httptest.NewRequest(method, "/", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if devPassword != "" {
			req.Header.Set("dev-password", devPassword)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := send("GET", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp = send("GET", "https://app.example.com", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Trace-Id", resp.Header.Get("Access-Control-Expose-Headers"))

	resp = send("OPTIONS", "https://app.example.com", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Trace-Id")

	resp = send("OPTIONS", "http://localhost:5173", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = send("GET", "https://evil.test", "letmein")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = send("GET", "https://evil.test", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRouteLogger_LogsStatusAndAccount(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	app := fiber.New()
	app.Use(withUser(constants.Trader), Tracing(), RouteLogger())
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	_, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)

	var exit map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "Exiting request" {
			exit = entry
		}
	}
	require.NotNil(t, exit)
	assert.Equal(t, float64(404), exit["status"])
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", exit["account_id"])
	assert.Equal(t, "info", exit["level"])
	assert.NotEmpty(t, exit["trace_id"])
}

func TestHealthMarker_CountsAndLogsErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, path := range []string{"/ok", "/boom", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	total, _ := mr.Get(KeyReqTotal)
	assert.Equal(t, "2", total)
	failed, _ := mr.Get(KeyReqErrors)
	assert.Equal(t, "1", failed)

	entries, err := mr.List(KeyErrorLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "/boom", entry["path"])
	assert.Equal(t, "db down", entry["message"])
	assert.Equal(t, float64(500), entry["status"])
}
