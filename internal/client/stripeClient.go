package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"payment-form-builder/internal/config"
	"payment-form-builder/internal/model"
)

type StripeClient interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, customerEmail string) (*IntentHandle, error)
	FetchIntent(ctx context.Context, transactionRef string) (*IntentStatus, error)
	VerifyWebhook(payload []byte, sigHeader string) (*GatewayEvent, error)
	PublishableKey() string
}

type IntentHandle struct {
	IntentID     string
	ClientSecret string
	Status       model.SubmissionStatus
	Mode         model.PaymentMode
}

type IntentStatus struct {
	IntentID string
	Status   model.SubmissionStatus
	Amount   decimal.Decimal
	Currency string
	Mode     model.PaymentMode
}

// GatewayEvent is a payment event normalized out of the processor's
// webhook payload. TargetStatus is empty for event types we ignore.
type GatewayEvent struct {
	EventID      string
	EventType    string
	IntentID     string
	TargetStatus model.SubmissionStatus
	Amount       decimal.Decimal
	Currency     string
	Mode         model.PaymentMode
}

type stripeClientImpl struct {
	sc             *stripeclient.API
	publishableKey string
	webhookSecret  string
	log            *logrus.Logger
}

func NewStripeClient(cfg *config.Stripe, log *logrus.Logger) StripeClient {
	sc := &stripeclient.API{}
	sc.Init(cfg.SecretKey, nil)

	if cfg.WebhookSecret == "" {
		log.Warn("no stripe webhook secret configured, signature verification is disabled")
	}

	return &stripeClientImpl{
		sc:             sc,
		publishableKey: cfg.PublishableKey,
		webhookSecret:  cfg.WebhookSecret,
		log:            log,
	}
}

func (c *stripeClientImpl) PublishableKey() string {
	return c.publishableKey
}

func (c *stripeClientImpl) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, customerEmail string) (*IntentHandle, error) {
	if !amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount, currency)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	if customerEmail != "" {
		customerID, err := c.findOrCreateCustomer(ctx, customerEmail)
		if err != nil {
			return nil, err
		}
		params.Customer = stripe.String(customerID)
		params.ReceiptEmail = stripe.String(customerEmail)
	}

	pi, err := c.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, c.mapStripeError(err)
	}

	return &IntentHandle{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
		Mode:         modeFromLivemode(pi.Livemode),
	}, nil
}

// findOrCreateCustomer reuses the gateway-side customer record keyed by
// email so repeat purchases do not pile up duplicate customers.
func (c *stripeClientImpl) findOrCreateCustomer(ctx context.Context, email string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	iter := c.sc.Customers.List(listParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", c.mapStripeError(err)
	}

	custParams := &stripe.CustomerParams{Email: stripe.String(email)}
	custParams.Context = ctx
	cust, err := c.sc.Customers.New(custParams)
	if err != nil {
		return "", c.mapStripeError(err)
	}
	return cust.ID, nil
}

func (c *stripeClientImpl) FetchIntent(ctx context.Context, transactionRef string) (*IntentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.sc.PaymentIntents.Get(transactionRef, params)
	if err != nil {
		return nil, c.mapStripeError(err)
	}

	// prefer the settled amount once money actually moved
	minor := pi.Amount
	if pi.AmountReceived > 0 {
		minor = pi.AmountReceived
	}

	return &IntentStatus{
		IntentID: pi.ID,
		Status:   mapIntentStatus(pi.Status),
		Amount:   fromMinorUnits(minor, string(pi.Currency)),
		Currency: string(pi.Currency),
		Mode:     modeFromLivemode(pi.Livemode),
	}, nil
}

func (c *stripeClientImpl) VerifyWebhook(payload []byte, sigHeader string) (*GatewayEvent, error) {
	var event stripe.Event

	if c.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidSignature, err)
		}
		event = verified
	} else {
		// no secret configured: trust the raw body (test/staging installs)
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: malformed event payload", model.ErrInvalidSignature)
		}
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		return &GatewayEvent{EventID: event.ID, EventType: string(event.Type)}, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event carries no data object", model.ErrInvalidSignature)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: malformed payment_intent object", model.ErrInvalidSignature)
	}

	ev := &GatewayEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
		IntentID:  pi.ID,
		Currency:  string(pi.Currency),
		Mode:      modeFromLivemode(pi.Livemode),
	}

	if event.Type == "payment_intent.succeeded" {
		ev.TargetStatus = model.StatusCompleted
		minor := pi.Amount
		if pi.AmountReceived > 0 {
			minor = pi.AmountReceived
		}
		ev.Amount = fromMinorUnits(minor, string(pi.Currency))
	} else {
		ev.TargetStatus = model.StatusFailed
		ev.Amount = fromMinorUnits(pi.Amount, string(pi.Currency))
		if pi.LastPaymentError != nil {
			c.log.WithFields(logrus.Fields{
				"intent_id": pi.ID,
				"code":      pi.LastPaymentError.Code,
			}).Info("payment failed at gateway")
		}
	}

	return ev, nil
}

// mapStripeError translates library errors into domain errors so stripe-go
// never leaks into the service layer. Declined cards and similar business
// outcomes become ErrPaymentRejected, gateway outages ErrProviderUnavailable.
func (c *stripeClientImpl) mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Code {
		case stripe.ErrorCodeCardDeclined,
			stripe.ErrorCodeExpiredCard,
			stripe.ErrorCodeIncorrectCVC,
			stripe.ErrorCodeBalanceInsufficient:
			return fmt.Errorf("%w: %s", model.ErrPaymentRejected, stripeErr.Msg)
		}
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", model.ErrProviderUnavailable, stripeErr.Msg)
		}
		return fmt.Errorf("stripe: %s: %w", stripeErr.Msg, err)
	}
	return fmt.Errorf("stripe request: %w", err)
}

func mapIntentStatus(status stripe.PaymentIntentStatus) model.SubmissionStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return model.StatusCompleted
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		return model.StatusFailed
	default:
		// processing, requires_action, requires_confirmation, requires_capture
		return model.StatusPending
	}
}

func modeFromLivemode(livemode bool) model.PaymentMode {
	if livemode {
		return model.ModeLive
	}
	return model.ModeTest
}

// currencies whose minor unit equals the major unit
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
	"xpf": true,
}

func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(minor int64, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[currency] {
		return decimal.NewFromInt(minor)
	}
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
