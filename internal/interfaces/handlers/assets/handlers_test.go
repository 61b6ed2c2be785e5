package assets

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/domain"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAssetsTest(t *testing.T) (*Handlers, *fiber.App) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Account{}, &domain.WalletEntry{}))

	h := &Handlers{Service: marketplace.New(db, ledger.New(ledger.Options{}))}
	app := fiber.New()
	// X-Account stands in for the session user.
	app.Use(func(c *fiber.Ctx) error {
		if id := strings.Clone(c.Get("X-Account")); id != "" {
			c.Locals("user", map[string]interface{}{"account_id": id, "role": constants.Trader})
		}
		return c.Next()
	})
	app.Post("/assets", h.Create)
	app.Get("/assets/:id", h.Get)
	app.Get("/assets/:id/metadata", h.Metadata)
	app.Get("/assets/:id/history", h.History)
	app.Patch("/assets/:id/metadata", h.UpdateMetadata)
	app.Post("/assets/:id/transfer", h.Transfer)
	app.Post("/assets/:id/transferable", h.SetTransferable)
	app.Post("/assets/:id/lock", h.Lock)
	app.Post("/assets/:id/unlock", h.Unlock)
	app.Post("/assets/:id/burn", h.Burn)
	app.Post("/assets/:id/tokenize", h.Tokenize)
	app.Post("/assets/:id/collateral", h.Collateralize)
	app.Delete("/assets/:id/collateral", h.ReleaseCollateral)
	app.Get("/assets/:id/collateral", h.Collateral)
	app.Get("/users/:address/assets", h.UserAssets)
	app.Get("/users/:address/value", h.UserValue)
	app.Post("/bundles", h.CreateBundle)
	app.Get("/bundles/:id", h.GetBundle)
	app.Delete("/bundles/:id", h.Unbundle)
	return h, app
}

func seedAccount(t *testing.T, h *Handlers) string {
	t.Helper()
	a := &domain.Account{Email: uuid.NewString() + "@example.com", Fullname: "Seed", PasswordHash: "x", Role: constants.Trader}
	require.NoError(t, h.Service.DB.Create(a).Error)
	return a.AccountID.String()
}

func call(t *testing.T, app *fiber.App, method, path, account string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account", account)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

func TestCreateAndGetAsset(t *testing.T) {
	h, app := setupAssetsTest(t)
	alice := seedAccount(t, h)

	code, _ := call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "  "})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := call(t, app, "POST", "/assets", alice, map[string]interface{}{
		"name":     "Warehouse",
		"value":    1000,
		"metadata": map[string]interface{}{"category": "real-estate", "tags": []string{"a", "b"}},
	})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, float64(1), data(out)["id"])
	assert.Equal(t, "active", data(out)["status"])
	assert.Equal(t, alice, data(out)["owner"])

	code, out = call(t, app, "GET", "/assets/1/metadata", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "real-estate", data(out)["category"])

	code, _ = call(t, app, "GET", "/assets/2", "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = call(t, app, "GET", "/assets/0", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestTransferAndOwnership(t *testing.T) {
	h, app := setupAssetsTest(t)
	alice, bob := seedAccount(t, h), seedAccount(t, h)

	code, _ := call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "Car", "value": 300})
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = call(t, app, "POST", "/assets/1/transfer", bob, map[string]interface{}{"to": alice})
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = call(t, app, "POST", "/assets/1/transfer", alice, map[string]interface{}{"to": "not-a-uuid"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := call(t, app, "POST", "/assets/1/transfer", alice, map[string]interface{}{"to": bob})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, bob, data(out)["owner"])

	code, out = call(t, app, "GET", "/users/"+bob+"/value", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(300), data(out)["total_value"])

	code, out = call(t, app, "GET", "/users/"+alice+"/assets", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(0), out["metadata"].(map[string]interface{})["count"])

	code, out = call(t, app, "GET", "/assets/1/history", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []interface{}{alice}, data(out)["previous_owners"])
}

func TestLockedAssetReportsState(t *testing.T) {
	h, app := setupAssetsTest(t)
	alice, bob := seedAccount(t, h), seedAccount(t, h)
	call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "Boat", "value": 500})

	code, out := call(t, app, "POST", "/assets/1/collateral", alice, map[string]interface{}{"amount": 200})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, float64(200), data(out)["amount"])

	code, out = call(t, app, "POST", "/assets/1/transfer", alice, map[string]interface{}{"to": bob})
	assert.Equal(t, fiber.StatusConflict, code)
	details := out["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "collateral", details["lock_reason"])

	code, _ = call(t, app, "POST", "/assets/1/unlock", alice, nil)
	assert.Equal(t, fiber.StatusConflict, code)

	code, out = call(t, app, "DELETE", "/assets/1/collateral", alice, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "active", data(out)["status"])
	code, _ = call(t, app, "GET", "/assets/1/collateral", "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestMetadataTokenizeBurn(t *testing.T) {
	h, app := setupAssetsTest(t)
	alice := seedAccount(t, h)
	call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "Gold", "value": 100})

	code, _ := call(t, app, "PATCH", "/assets/1/metadata", alice, map[string]interface{}{"description": "Bar"})
	require.Equal(t, fiber.StatusOK, code)
	_, out := call(t, app, "GET", "/assets/1/metadata", "", nil)
	assert.Equal(t, "Bar", data(out)["description"])

	code, _ = call(t, app, "POST", "/assets/1/tokenize", alice, map[string]interface{}{"amount": 150})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, out = call(t, app, "POST", "/assets/1/tokenize", alice, map[string]interface{}{"amount": 100})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, data(out)["is_tokenized"])

	code, _ = call(t, app, "POST", "/assets/1/transferable", alice, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, out = call(t, app, "POST", "/assets/1/transferable", alice, map[string]interface{}{"transferable": false})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, data(out)["is_transferable"])

	code, out = call(t, app, "POST", "/assets/1/burn", alice, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "burned", data(out)["status"])
	code, _ = call(t, app, "POST", "/assets/1/lock", alice, map[string]interface{}{"duration_seconds": 60})
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestBundles(t *testing.T) {
	h, app := setupAssetsTest(t)
	alice, bob := seedAccount(t, h), seedAccount(t, h)
	call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "A", "value": 10})
	call(t, app, "POST", "/assets", alice, map[string]interface{}{"name": "B", "value": 15})
	call(t, app, "POST", "/assets", bob, map[string]interface{}{"name": "C", "value": 20})

	code, _ := call(t, app, "POST", "/bundles", alice, map[string]interface{}{"asset_ids": []uint64{}})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = call(t, app, "POST", "/bundles", alice, map[string]interface{}{"asset_ids": []uint64{1, 3}})
	assert.Equal(t, fiber.StatusConflict, code)

	code, out := call(t, app, "POST", "/bundles", alice, map[string]interface{}{"asset_ids": []uint64{1, 2}, "name": "Pair"})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, float64(25), data(out)["total_value"])
	assert.Equal(t, float64(1), data(out)["id"])

	_, out = call(t, app, "GET", "/assets/2", "", nil)
	assert.Equal(t, "locked", data(out)["status"])

	code, _ = call(t, app, "DELETE", "/bundles/1", bob, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = call(t, app, "DELETE", "/bundles/1", alice, nil)
	require.Equal(t, fiber.StatusOK, code)
	code, _ = call(t, app, "GET", "/bundles/1", "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}
