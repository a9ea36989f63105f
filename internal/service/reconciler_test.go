package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-form-builder/internal/model"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func strPtr(s string) *string { return &s }

func pendingSubmission(id, ref string) *model.Submission {
	return &model.Submission{
		ID:             id,
		FormID:         "form-1",
		Data:           map[string]string{"Name": "Ada"},
		Status:         model.StatusPending,
		TransactionRef: strPtr(ref),
		Amount:         decimal.RequireFromString("25.00"),
		Currency:       "usd",
		Mode:           model.ModeTest,
	}
}

func TestReconcilerCompletesPendingAndNotifiesOnce(t *testing.T) {
	subRepo := newMockSubmissionRepo(pendingSubmission("sub-1", "pi_abc"))
	dispatcher := &mockDispatcher{}
	rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

	amount := decimal.RequireFromString("25.00")
	err := rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, &amount, "usd")
	require.NoError(t, err)

	stored := subRepo.get("sub-1")
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.True(t, stored.Notified)
	assert.Len(t, dispatcher.calls, 1)

	// replayed webhook: no second transition, no second notification
	err = rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, &amount, "usd")
	require.NoError(t, err)
	assert.Len(t, dispatcher.calls, 1)
	assert.Equal(t, 1, subRepo.transitionCalls)
}

func TestReconcilerUnknownRefIsNoop(t *testing.T) {
	subRepo := newMockSubmissionRepo()
	dispatcher := &mockDispatcher{}
	rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

	err := rec.Apply(context.Background(), "pi_missing", model.StatusCompleted, nil, "")
	require.NoError(t, err)
	assert.Empty(t, dispatcher.calls)
	assert.Zero(t, subRepo.transitionCalls)
}

func TestReconcilerTerminalStatesAreSticky(t *testing.T) {
	tests := []struct {
		name      string
		current   model.SubmissionStatus
		requested model.SubmissionStatus
	}{
		{"failed stays failed", model.StatusFailed, model.StatusCompleted},
		{"completed stays completed", model.StatusCompleted, model.StatusFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := pendingSubmission("sub-1", "pi_abc")
			sub.Status = tc.current
			sub.Notified = true
			subRepo := newMockSubmissionRepo(sub)
			dispatcher := &mockDispatcher{}
			rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

			err := rec.Apply(context.Background(), "pi_abc", tc.requested, nil, "")
			require.NoError(t, err)

			assert.Equal(t, tc.current, subRepo.get("sub-1").Status)
			assert.Empty(t, dispatcher.calls)
		})
	}
}

func TestReconcilerRetriesMissedNotification(t *testing.T) {
	// status already written by an earlier webhook, but the send crashed
	sub := pendingSubmission("sub-1", "pi_abc")
	sub.Status = model.StatusCompleted
	sub.Notified = false
	subRepo := newMockSubmissionRepo(sub)
	dispatcher := &mockDispatcher{}
	rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

	err := rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, nil, "")
	require.NoError(t, err)

	assert.Len(t, dispatcher.calls, 1)
	assert.True(t, subRepo.get("sub-1").Notified)
}

func TestReconcilerNotificationFailureDoesNotRollBack(t *testing.T) {
	subRepo := newMockSubmissionRepo(pendingSubmission("sub-1", "pi_abc"))
	dispatcher := &mockDispatcher{err: assert.AnError}
	rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

	err := rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, nil, "")
	require.NoError(t, err)

	stored := subRepo.get("sub-1")
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.False(t, stored.Notified, "failed send must stay retryable")

	// next reconcile retries the send
	dispatcher.err = nil
	err = rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, nil, "")
	require.NoError(t, err)
	assert.Len(t, dispatcher.calls, 1)
	assert.True(t, subRepo.get("sub-1").Notified)
}

func TestReconcilerFailedTransitionSendsNoMail(t *testing.T) {
	subRepo := newMockSubmissionRepo(pendingSubmission("sub-1", "pi_abc"))
	dispatcher := &mockDispatcher{}
	rec := NewReconciler(subRepo, newMockFormRepo(), dispatcher, testLogger())

	err := rec.Apply(context.Background(), "pi_abc", model.StatusFailed, nil, "")
	require.NoError(t, err)

	stored := subRepo.get("sub-1")
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.False(t, stored.Notified)
	assert.Empty(t, dispatcher.calls)
}

func TestReconcilerRefreshesSettledAmount(t *testing.T) {
	subRepo := newMockSubmissionRepo(pendingSubmission("sub-1", "pi_abc"))
	rec := NewReconciler(subRepo, newMockFormRepo(), &mockDispatcher{}, testLogger())

	// gateway settled a slightly different amount than quoted
	settled := decimal.RequireFromString("24.87")
	err := rec.Apply(context.Background(), "pi_abc", model.StatusCompleted, &settled, "eur")
	require.NoError(t, err)

	stored := subRepo.get("sub-1")
	assert.True(t, stored.Amount.Equal(settled))
	assert.Equal(t, "eur", stored.Currency)
}

func TestReconcilerIgnoresNonTerminalReports(t *testing.T) {
	subRepo := newMockSubmissionRepo(pendingSubmission("sub-1", "pi_abc"))
	rec := NewReconciler(subRepo, newMockFormRepo(), &mockDispatcher{}, testLogger())

	err := rec.Apply(context.Background(), "pi_abc", model.StatusPending, nil, "")
	require.NoError(t, err)
	assert.Zero(t, subRepo.transitionCalls)
}
