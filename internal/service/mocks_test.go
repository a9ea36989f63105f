package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"payment-form-builder/internal/client"
	"payment-form-builder/internal/model"
)

// --- mocks shared by the service tests ---

type mockSubmissionRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Submission

	transitionCalls int
}

func newMockSubmissionRepo(subs ...*model.Submission) *mockSubmissionRepo {
	repo := &mockSubmissionRepo{byID: map[string]*model.Submission{}}
	for _, sub := range subs {
		copied := *sub
		repo.byID[sub.ID] = &copied
	}
	return repo
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sub
	m.byID[sub.ID] = &copied
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.byID[id]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, model.ErrSubmissionNotFound
}

func (m *mockSubmissionRepo) FindByTransactionRef(ctx context.Context, ref string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.byID {
		if sub.TransactionRef != nil && *sub.TransactionRef == ref {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, model.ErrSubmissionNotFound
}

func (m *mockSubmissionRepo) List(ctx context.Context, limit, offset int) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var subs []*model.Submission
	for _, sub := range m.byID {
		copied := *sub
		subs = append(subs, &copied)
	}
	return subs, nil
}

func (m *mockSubmissionRepo) UpdateData(ctx context.Context, id string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.byID[id]; ok {
		sub.Data = data
	}
	return nil
}

func (m *mockSubmissionRepo) TransitionFromPending(ctx context.Context, ref string, newStatus model.SubmissionStatus, amount *decimal.Decimal, currency string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCalls++
	for _, sub := range m.byID {
		if sub.TransactionRef == nil || *sub.TransactionRef != ref {
			continue
		}
		if sub.Status != model.StatusPending {
			return 0, nil
		}
		sub.Status = newStatus
		if amount != nil {
			sub.Amount = *amount
		}
		if currency != "" {
			sub.Currency = currency
		}
		return 1, nil
	}
	return 0, nil
}

func (m *mockSubmissionRepo) MarkNotified(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.byID[id]; ok && !sub.Notified {
		sub.Notified = true
		return 1, nil
	}
	return 0, nil
}

func (m *mockSubmissionRepo) get(id string) *model.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type mockFormRepo struct {
	forms map[string]*model.FormDefinition
}

func newMockFormRepo(forms ...*model.FormDefinition) *mockFormRepo {
	repo := &mockFormRepo{forms: map[string]*model.FormDefinition{}}
	for _, form := range forms {
		repo.forms[form.FormID] = form
	}
	return repo
}

func (m *mockFormRepo) Get(ctx context.Context, formID string) (*model.FormDefinition, error) {
	if form, ok := m.forms[formID]; ok {
		return form, nil
	}
	return nil, model.ErrFormNotFound
}

func (m *mockFormRepo) Put(ctx context.Context, form *model.FormDefinition) error {
	m.forms[form.FormID] = form
	return nil
}

type mockDispatcher struct {
	calls []string // submission IDs notified
	err   error
}

func (m *mockDispatcher) NotifyPaymentCompleted(ctx context.Context, form *model.FormDefinition, sub *model.Submission) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, sub.ID)
	return nil
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{Recipient: recipient, Subject: subject, Body: htmlBody})
	return nil
}

type mockWebhookEventRepo struct {
	processed map[string]string
}

func newMockWebhookEventRepo() *mockWebhookEventRepo {
	return &mockWebhookEventRepo{processed: map[string]string{}}
}

func (m *mockWebhookEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	_, ok := m.processed[eventID]
	return ok, nil
}

func (m *mockWebhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	m.processed[eventID] = eventType
	return nil
}

type mockStripeClient struct {
	intent      *client.IntentHandle
	intentErr   error
	status      *client.IntentStatus
	statusErr   error
	event       *client.GatewayEvent
	eventErr    error
	createCalls int
}

func (m *mockStripeClient) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, customerEmail string) (*client.IntentHandle, error) {
	m.createCalls++
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	return m.intent, nil
}

func (m *mockStripeClient) FetchIntent(ctx context.Context, transactionRef string) (*client.IntentStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.status, nil
}

func (m *mockStripeClient) VerifyWebhook(payload []byte, sigHeader string) (*client.GatewayEvent, error) {
	if m.eventErr != nil {
		return nil, m.eventErr
	}
	return m.event, nil
}

func (m *mockStripeClient) PublishableKey() string {
	return "pk_test_mock"
}
