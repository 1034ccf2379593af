package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/services/cart"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

const maxWebhookBody = int64(65536)

// zeroDecimal currencies are charged in whole units.
var zeroDecimal = map[string]bool{"JPY": true, "KRW": true, "VND": true}

type PaymentHandler struct {
	Carts         *CartHandler
	Stock         cart.Allocator
	WebhookSecret string

	newIntent func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewPaymentHandler(carts *CartHandler, stock cart.Allocator, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		Carts:         carts,
		Stock:         stock,
		WebhookSecret: strings.TrimSpace(webhookSecret),
		newIntent:     paymentintent.New,
	}
}

func minorUnits(total float64, currency string) int64 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return int64(math.Round(total))
	}
	return int64(math.Round(total * 100))
}

// CreatePaymentIntent starts a Stripe payment for the current cart's total
// and takes the cart out of the open state.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
	defer cancel()

	current, err := h.Carts.Carts.Find(ctx, h.Carts.identity(c))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, cart.ErrEmptyCart)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Carts.Carts.Summarize(ctx, current, h.Carts.DefaultCurrency)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(view.Lines) == 0 || view.Total <= 0 {
		respondError(c, cart.ErrEmptyCart)
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(view.Total, view.Currency)),
		Currency: stripe.String(strings.ToLower(view.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"cartId": current.ID.Hex(),
		},
	}
	pi, err := h.newIntent(params)
	if err != nil {
		logrus.WithError(err).WithField("cartId", current.ID.Hex()).Error("stripe payment intent failed")
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Payment provider error"))
		return
	}

	if err := h.Carts.Carts.AwaitPayment(ctx, current.ID, pi.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent created", gin.H{
		"clientSecret": pi.ClientSecret,
		"amount":       pi.Amount,
		"currency":     view.Currency,
	}))
}

// HandleWebhook verifies and processes asynchronous events from Stripe.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Error reading request body"))
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid signature"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
	defer cancel()

	if err := h.handleEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("event", event.ID).Error("webhook processing failed")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to process event"))
		return
	}
	// 200 for everything else so Stripe does not retry.
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleEvent applies a verified event. Events for unknown carts are ignored.
func (h *PaymentHandler) handleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			logrus.WithError(err).Warn("malformed payment intent in webhook")
			return nil
		}
		_, err := h.Carts.Carts.CompletePayment(ctx, pi.ID, h.Stock)
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("paymentIntent", pi.ID).Warn("payment for unknown cart")
			return nil
		}
		return err
	default:
		logrus.WithField("type", event.Type).Debug("ignoring stripe event")
		return nil
	}
}
