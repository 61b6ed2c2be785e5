package assets

import (
	"strings"
	"time"

	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"
	"ledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *marketplace.Service
}

func pathID(c *fiber.Ctx) (uint64, bool) {
	return validation.ParseID(c.Params("id"))
}

// replyAsset answers a mutation with the asset as it is after the change.
func (h *Handlers) replyAsset(c *fiber.Ctx, message string, id uint64) error {
	a, err := h.Service.Ledger.GetAsset(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, message, a, nil)
}

type metadataBody struct {
	Description string   `json:"description"`
	ImageURI    string   `json:"image_uri"`
	DocumentURI string   `json:"document_uri"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Create POST /api/v1/assets
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		Name     string       `json:"name"`
		Value    int64        `json:"value"`
		Metadata metadataBody `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return response.BadRequest(c, "Asset name is required")
	}
	a, err := h.Service.RegisterAsset(c.UserContext(), middleware.AccountID(c), marketplace.RegisterAssetInput{
		Name:  body.Name,
		Value: body.Value,
		Metadata: ledger.Metadata{
			Description: body.Metadata.Description,
			ImageURI:    body.Metadata.ImageURI,
			DocumentURI: body.Metadata.DocumentURI,
			Category:    body.Metadata.Category,
			Tags:        body.Metadata.Tags,
		},
	})
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.SuccessCreated(c, "Asset registered", a, nil)
}

// Get GET /api/v1/assets/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	return h.replyAsset(c, "Asset fetched", id)
}

func (h *Handlers) Metadata(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	m, err := h.Service.Ledger.GetAssetMetadata(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Asset metadata fetched", m, nil)
}

func (h *Handlers) History(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	hist, err := h.Service.Ledger.GetAssetHistory(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Asset history fetched", hist, nil)
}

// UpdateMetadata PATCH /api/v1/assets/:id/metadata. Absent fields are unchanged.
func (h *Handlers) UpdateMetadata(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		Description *string  `json:"description"`
		ImageURI    *string  `json:"image_uri"`
		DocumentURI *string  `json:"document_uri"`
		Category    *string  `json:"category"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	err := h.Service.UpdateMetadata(c.UserContext(), middleware.AccountID(c), id, ledger.MetadataUpdate{
		Description: body.Description,
		ImageURI:    body.ImageURI,
		DocumentURI: body.DocumentURI,
		Category:    body.Category,
		Tags:        body.Tags,
	})
	if err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset metadata updated", id)
}

func (h *Handlers) Transfer(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		To string `json:"to"`
	}
	if err := c.BodyParser(&body); err != nil || body.To == "" {
		return response.BadRequest(c, "Recipient address is required")
	}
	if err := h.Service.TransferAsset(c.UserContext(), middleware.AccountID(c), id, body.To); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset transferred", id)
}

func (h *Handlers) SetTransferable(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		Transferable *bool `json:"transferable"`
	}
	if err := c.BodyParser(&body); err != nil || body.Transferable == nil {
		return response.BadRequest(c, "transferable is required")
	}
	if err := h.Service.SetTransferable(c.UserContext(), middleware.AccountID(c), id, *body.Transferable); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset updated", id)
}

func (h *Handlers) Lock(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		DurationSeconds int64 `json:"duration_seconds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	d := time.Duration(body.DurationSeconds) * time.Second
	if err := h.Service.LockAsset(c.UserContext(), middleware.AccountID(c), id, d); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset locked", id)
}

func (h *Handlers) Unlock(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	if err := h.Service.UnlockAsset(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset unlocked", id)
}

func (h *Handlers) Burn(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	if err := h.Service.BurnAsset(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset burned", id)
}

func (h *Handlers) Tokenize(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.Service.TokenizeAsset(c.UserContext(), middleware.AccountID(c), id, body.Amount); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Asset tokenized", id)
}

// UserAssets GET /api/v1/users/:address/assets
func (h *Handlers) UserAssets(c *fiber.Ctx) error {
	addr := c.Params("address")
	if !validation.IsValidAddress(addr) {
		return response.BadRequest(c, ledger.ErrInvalidAddress.Error())
	}
	ids := h.Service.Ledger.GetUserAssets(ledger.Address(addr))
	out := make([]ledger.Asset, 0, len(ids))
	for _, id := range ids {
		if a, err := h.Service.Ledger.GetAsset(id); err == nil {
			out = append(out, a)
		}
	}
	return response.Success(c, "User assets fetched", out, fiber.Map{"asset_ids": ids, "count": len(ids)})
}

func (h *Handlers) UserValue(c *fiber.Ctx) error {
	addr := c.Params("address")
	if !validation.IsValidAddress(addr) {
		return response.BadRequest(c, ledger.ErrInvalidAddress.Error())
	}
	return response.Success(c, "User asset value fetched", fiber.Map{
		"address":     addr,
		"total_value": h.Service.Ledger.GetUserTotalAssetValue(ledger.Address(addr)),
	}, nil)
}
