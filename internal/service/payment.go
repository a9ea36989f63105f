package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-form-builder/internal/client"
	"payment-form-builder/internal/dto"
	"payment-form-builder/internal/model"
	"payment-form-builder/internal/repository"
)

type PaymentService interface {
	Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error)
	SaveOrder(ctx context.Context, req *dto.SaveOrderRequest) (*dto.SubmissionResponse, error)
	Poll(ctx context.Context, transactionRef string) (*dto.SubmissionResponse, error)
	SubmissionStatus(ctx context.Context, submissionID string) (*dto.SubmissionResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type paymentServiceImpl struct {
	stripeClient     client.StripeClient
	formRepo         repository.FormRepository
	submissionRepo   repository.SubmissionRepository
	webhookEventRepo repository.WebhookEventRepository
	reconciler       Reconciler
	nonces           *NonceService
	log              *logrus.Logger
}

func NewPaymentService(
	stripeClient client.StripeClient,
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	webhookEventRepo repository.WebhookEventRepository,
	reconciler Reconciler,
	nonces *NonceService,
	log *logrus.Logger,
) PaymentService {
	return &paymentServiceImpl{
		stripeClient:     stripeClient,
		formRepo:         formRepo,
		submissionRepo:   submissionRepo,
		webhookEventRepo: webhookEventRepo,
		reconciler:       reconciler,
		nonces:           nonces,
		log:              log,
	}
}

// Submit handles a visitor's form submission: validate against the form
// definition, create the payment intent, and persist a pending
// submission row referencing it. The client completes the card payment
// against the gateway with the returned client secret.
func (s *paymentServiceImpl) Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error) {
	if err := s.nonces.Verify(req.Nonce, req.FormID); err != nil {
		return nil, err
	}

	form, err := s.formRepo.Get(ctx, req.FormID)
	if err != nil {
		return nil, err
	}

	if err := validateRequired(form, req.FormData); err != nil {
		return nil, err
	}

	customerEmail := ""
	if label := form.CustomerEmailLabel(); label != "" {
		customerEmail = req.FormData[label]
	}

	intent, err := s.stripeClient.CreateIntent(ctx, form.Amount, form.Currency, customerEmail)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		ID:             uuid.NewString(),
		FormID:         form.FormID,
		Data:           req.FormData,
		Status:         model.StatusPending,
		TransactionRef: &intent.IntentID,
		Amount:         form.Amount,
		Currency:       form.Currency,
		Mode:           intent.Mode,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"submission_id":   sub.ID,
		"form_id":         form.FormID,
		"transaction_ref": intent.IntentID,
		"mode":            intent.Mode,
	}).Info("submission created")

	return &dto.SubmitResponse{
		SubmissionID: sub.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// SaveOrder idempotently links a submission to its transaction after the
// client finished the card flow. The client-reported status is advisory
// only; the gateway is fetched and its answer drives the reconciler.
func (s *paymentServiceImpl) SaveOrder(ctx context.Context, req *dto.SaveOrderRequest) (*dto.SubmissionResponse, error) {
	sub, err := s.submissionRepo.FindByTransactionRef(ctx, req.PaymentIntentID)
	if errors.Is(err, model.ErrSubmissionNotFound) {
		sub, err = s.createFromOrder(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if len(req.FormData) > 0 && sub.Status == model.StatusPending {
		if err := s.submissionRepo.UpdateData(ctx, sub.ID, req.FormData); err != nil {
			return nil, fmt.Errorf("refresh submission data: %w", err)
		}
		sub.Data = req.FormData
	}

	if err := s.reconcileFromGateway(ctx, req.PaymentIntentID); err != nil {
		return nil, err
	}

	sub, err = s.submissionRepo.FindByTransactionRef(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponse(sub), nil
}

// createFromOrder covers intents created out-of-band, e.g. a save that
// arrives before the submit response was stored or after cleanup.
func (s *paymentServiceImpl) createFromOrder(ctx context.Context, req *dto.SaveOrderRequest) (*model.Submission, error) {
	form, err := s.formRepo.Get(ctx, req.FormID)
	if err != nil {
		return nil, err
	}

	ref := req.PaymentIntentID
	sub := &model.Submission{
		ID:             uuid.NewString(),
		FormID:         form.FormID,
		Data:           req.FormData,
		Status:         model.StatusPending,
		TransactionRef: &ref,
		Amount:         form.Amount,
		Currency:       form.Currency,
		Mode:           model.ModeTest,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	return sub, nil
}

// Poll is the manual reconciliation trigger: ask the gateway for the
// intent's current status and feed it through the reconciler.
func (s *paymentServiceImpl) Poll(ctx context.Context, transactionRef string) (*dto.SubmissionResponse, error) {
	if err := s.reconcileFromGateway(ctx, transactionRef); err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.FindByTransactionRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponse(sub), nil
}

func (s *paymentServiceImpl) reconcileFromGateway(ctx context.Context, transactionRef string) error {
	status, err := s.stripeClient.FetchIntent(ctx, transactionRef)
	if err != nil {
		return err
	}
	return s.reconciler.Apply(ctx, transactionRef, status.Status, &status.Amount, status.Currency)
}

func (s *paymentServiceImpl) SubmissionStatus(ctx context.Context, submissionID string) (*dto.SubmissionResponse, error) {
	sub, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponse(sub), nil
}

// HandleWebhook verifies, deduplicates and applies an asynchronous
// gateway notification. Unknown transactions and ignored event types are
// success from the caller's point of view.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.stripeClient.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return err
	}

	if event.TargetStatus == "" {
		s.log.WithField("event_type", event.EventType).Debug("ignoring webhook event type")
		return nil
	}

	seen, err := s.webhookEventRepo.Exists(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.log.WithField("event_id", event.EventID).Debug("webhook event already processed")
		return nil
	}

	amount := event.Amount
	if err := s.reconciler.Apply(ctx, event.IntentID, event.TargetStatus, &amount, event.Currency); err != nil {
		return err
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.EventID, event.EventType); err != nil {
		// reconciliation already happened and is idempotent; a replay is safe
		s.log.WithError(err).Warn("failed to record processed webhook event")
	}
	return nil
}

func validateRequired(form *model.FormDefinition, data map[string]string) error {
	for _, field := range form.Fields {
		for _, label := range field.RequiredLabels() {
			if data[label] == "" {
				return fmt.Errorf("%w: missing required field %q", model.ErrValidation, label)
			}
		}
	}
	return nil
}
