package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	mq "github.com/ZisanUlHaque/RedHope-Server/mq"
	payments "github.com/ZisanUlHaque/RedHope-Server/payments"
	store "github.com/ZisanUlHaque/RedHope-Server/store"
)

const (
	fundingProductName = "Donation to RedHope"
	fundingType        = "funding"

	// Stripe caps a single charge at 999,999.99 in two-decimal currencies.
	maxCheckoutAmount = 999_999

	msgAlreadyExists = "already exists"
	msgNotCompleted  = "payment not completed"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount reads a checkout amount given as a JSON number or numeric
// string. The amount must be a whole, positive number of major units.
func ParseAmount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errorf(ErrInvalidAmount, "amount is required")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, errorf(ErrInvalidAmount, "amount %s is not a number", raw)
		}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, errorf(ErrInvalidAmount, "amount %q is not a number", text)
	}
	if !d.IsInteger() {
		return 0, errorf(ErrInvalidAmount, "amount %s must be a whole number", d)
	}
	if !d.IsPositive() {
		return 0, errorf(ErrInvalidAmount, "amount must be greater than 0")
	}
	if d.GreaterThan(decimal.NewFromInt(maxCheckoutAmount)) {
		return 0, errorf(ErrInvalidAmount, "amount exceeds %d", maxCheckoutAmount)
	}
	return d.IntPart(), nil
}

// MinorToMajor converts provider minor units (cents) into major units.
func MinorToMajor(minor int64) float64 {
	return decimal.NewFromInt(minor).Div(hundred).InexactFloat64()
}

// CheckoutConfig holds the fixed parts of every checkout session.
type CheckoutConfig struct {
	Currency   string
	SiteDomain string
}

// FundingService mediates between the hosted checkout and the funding store.
// It keeps no state of its own.
type FundingService struct {
	store    FundingStore
	provider PaymentProvider
	events   EventPublisher
	cfg      CheckoutConfig
	now      func() time.Time
}

func NewFundingService(s FundingStore, provider PaymentProvider, events EventPublisher, cfg CheckoutConfig) *FundingService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.SiteDomain = strings.TrimRight(cfg.SiteDomain, "/")
	return &FundingService{store: s, provider: provider, events: events, cfg: cfg, now: time.Now}
}

// CreateCheckout opens a hosted payment session and returns its URL. Nothing
// is stored until the session is confirmed.
func (s *FundingService) CreateCheckout(ctx context.Context, amount int64, donorName, donorEmail string) (string, error) {
	if amount <= 0 || amount > maxCheckoutAmount {
		return "", errorf(ErrInvalidAmount, "amount must be between 1 and %d", maxCheckoutAmount)
	}

	sess, err := s.provider.CreateSession(ctx, payments.SessionRequest{
		ProductName:   fundingProductName,
		Currency:      s.cfg.Currency,
		UnitAmount:    decimal.NewFromInt(amount).Mul(hundred).IntPart(),
		Quantity:      1,
		Mode:          payments.ModePayment,
		CustomerEmail: donorEmail,
		Metadata: map[string]string{
			"donorName":  donorName,
			"donorEmail": donorEmail,
			"type":       fundingType,
		},
		SuccessURL: s.cfg.SiteDomain + "/funding?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.cfg.SiteDomain + "/funding",
	})
	if err != nil {
		return "", wrap(ErrProvider, "create checkout session", err)
	}
	if sess.URL == "" {
		return "", errorf(ErrProvider, "checkout session %s has no url", sess.ID)
	}

	slog.Info("checkout session created", "session", sess.ID, "amount", amount, "currency", s.cfg.Currency)
	return sess.URL, nil
}

// ConfirmSession settles a checkout session at most once per payment. The
// payment intent id is the dedupe key; repeated calls report "already exists".
func (s *FundingService) ConfirmSession(ctx context.Context, sessionID string) (models.ConfirmResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return models.ConfirmResult{}, errorf(ErrValidation, "missing session_id")
	}

	sess, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return models.ConfirmResult{}, wrap(ErrProvider, "retrieve checkout session", err)
	}
	if sess == nil {
		return models.ConfirmResult{}, errorf(ErrProvider, "checkout session %s not found", sessionID)
	}

	txID := sess.PaymentIntentID
	if txID != "" {
		_, err := s.store.FindByTransactionID(ctx, txID)
		switch {
		case err == nil:
			return alreadyExists(txID), nil
		case !errors.Is(err, store.ErrNotFound):
			return models.ConfirmResult{}, wrap(ErrStore, "look up funding", err)
		}
	}

	if sess.PaymentStatus != payments.PaymentStatusPaid {
		return models.ConfirmResult{Success: false, Message: msgNotCompleted}, nil
	}
	if txID == "" {
		return models.ConfirmResult{}, errorf(ErrProvider, "paid session %s has no payment intent", sessionID)
	}

	fund := models.Funding{
		DonorName:     donorName(sess),
		DonorEmail:    donorEmail(sess),
		Amount:        MinorToMajor(sess.AmountTotal),
		Currency:      sess.Currency,
		TransactionID: txID,
		PaymentStatus: sess.PaymentStatus,
		CreatedAt:     s.now().UTC(),
	}

	id, err := s.store.Insert(ctx, &fund)
	if errors.Is(err, store.ErrDuplicate) {
		// a concurrent confirmation won the insert
		return alreadyExists(txID), nil
	}
	if err != nil {
		return models.ConfirmResult{}, wrap(ErrStore, "insert funding", err)
	}

	slog.Info("funding recorded", "id", id.Hex(), "transaction", txID, "amount", fund.Amount, "currency", fund.Currency)
	publish(ctx, s.events, mq.KeyFundingRecorded, fund)
	return models.ConfirmResult{Success: true, FundID: id.Hex(), TransactionID: txID}, nil
}

// List returns every funding record, newest first.
func (s *FundingService) List(ctx context.Context) ([]models.Funding, error) {
	fundings, err := s.store.List(ctx)
	if err != nil {
		return nil, wrap(ErrStore, "list fundings", err)
	}
	return fundings, nil
}

func alreadyExists(txID string) models.ConfirmResult {
	return models.ConfirmResult{Success: true, Message: msgAlreadyExists, TransactionID: txID, AlreadyExists: true}
}

func donorName(sess *payments.Session) string {
	if name := sess.Metadata["donorName"]; name != "" {
		return name
	}
	return sess.CustomerEmail
}

func donorEmail(sess *payments.Session) string {
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	return sess.Metadata["donorEmail"]
}
