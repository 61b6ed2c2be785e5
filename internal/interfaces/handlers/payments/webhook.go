package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"ledger-backend/internal/application/deposits"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// signatureTolerance bounds the age of a signed webhook timestamp.
const signatureTolerance = 5 * time.Minute

type WebhookHandler struct {
	Deposits      *deposits.Service
	WebhookSecret string
}

// HandleWebhook POST /api/v1/stripe/webhook: raw body, signature verification, then process.
// Domain failures still answer 200 so Stripe does not retry them.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("Stripe webhook received empty body (ensure no global body parser consumes the webhook body)")
		return c.Status(400).SendString("Webhook Error: empty body")
	}
	if sig == "" || wh.WebhookSecret == "" {
		log.Warn().Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("Stripe webhook signature verification failed")
		return c.Status(400).SendString("Webhook Error: missing signature or secret")
	}

	event, err := webhook.ConstructEventWithOptions(rawBody, sig, wh.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                signatureTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Stripe webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type != stripe.EventTypePaymentIntentSucceeded || event.Data == nil {
		return c.Status(200).SendString("ok")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("Stripe webhook payment intent parse failed")
		return c.Status(200).SendString("ok")
	}

	_, err = wh.Deposits.Record(c.UserContext(), deposits.SucceededIntent{
		ID:             pi.ID,
		EventID:        event.ID,
		AccountID:      pi.Metadata["account_id"],
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		Status:         string(pi.Status),
		Raw:            event.Data.Raw,
	})
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Str("payment_intent", pi.ID).Msg("Stripe deposit not recorded")
	}
	return c.Status(200).SendString("ok")
}
