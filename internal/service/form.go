package service

import (
	"context"

	"payment-form-builder/internal/client"
	"payment-form-builder/internal/dto"
	"payment-form-builder/internal/model"
	"payment-form-builder/internal/repository"
)

type FormService interface {
	PutForm(ctx context.Context, form *model.FormDefinition) error
	GetForm(ctx context.Context, formID string) (*model.FormDefinition, error)
	Session(ctx context.Context, formID string) (*dto.FormSessionResponse, error)
	ListSubmissions(ctx context.Context, limit, offset int) ([]*dto.SubmissionResponse, error)
}

type formServiceImpl struct {
	formRepo       repository.FormRepository
	submissionRepo repository.SubmissionRepository
	stripeClient   client.StripeClient
	nonces         *NonceService
}

func NewFormService(
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	stripeClient client.StripeClient,
	nonces *NonceService,
) FormService {
	return &formServiceImpl{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		stripeClient:   stripeClient,
		nonces:         nonces,
	}
}

func (s *formServiceImpl) PutForm(ctx context.Context, form *model.FormDefinition) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.formRepo.Put(ctx, form)
}

func (s *formServiceImpl) GetForm(ctx context.Context, formID string) (*model.FormDefinition, error) {
	return s.formRepo.Get(ctx, formID)
}

// Session returns what the embedded payment widget needs to render a
// form: its shape, a fresh nonce, and the gateway publishable key.
func (s *formServiceImpl) Session(ctx context.Context, formID string) (*dto.FormSessionResponse, error) {
	form, err := s.formRepo.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	nonce, err := s.nonces.Issue(form.FormID)
	if err != nil {
		return nil, err
	}

	return &dto.FormSessionResponse{
		FormID:         form.FormID,
		Title:          form.Title,
		Fields:         form.Fields,
		Amount:         form.Amount.StringFixed(2),
		Currency:       form.Currency,
		Nonce:          nonce,
		PublishableKey: s.stripeClient.PublishableKey(),
	}, nil
}

func (s *formServiceImpl) ListSubmissions(ctx context.Context, limit, offset int) ([]*dto.SubmissionResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	subs, err := s.submissionRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.SubmissionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = dto.NewSubmissionResponse(sub)
	}
	return resp, nil
}
