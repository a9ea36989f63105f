package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"payment-form-builder/internal/model"
	"payment-form-builder/internal/repository"
)

// Reconciler applies a payment status reported by the gateway to the
// matching submission. It is reached from both webhook delivery and
// manual polling, so every path through Apply must be idempotent.
type Reconciler interface {
	Apply(ctx context.Context, transactionRef string, newStatus model.SubmissionStatus, amount *decimal.Decimal, currency string) error
}

type reconcilerImpl struct {
	submissionRepo repository.SubmissionRepository
	formRepo       repository.FormRepository
	notifier       NotificationDispatcher
	log            *logrus.Logger
}

func NewReconciler(
	submissionRepo repository.SubmissionRepository,
	formRepo repository.FormRepository,
	notifier NotificationDispatcher,
	log *logrus.Logger,
) Reconciler {
	return &reconcilerImpl{
		submissionRepo: submissionRepo,
		formRepo:       formRepo,
		notifier:       notifier,
		log:            log,
	}
}

func (r *reconcilerImpl) Apply(ctx context.Context, transactionRef string, newStatus model.SubmissionStatus, amount *decimal.Decimal, currency string) error {
	if !newStatus.Terminal() {
		// nothing to do for pending/processing reports
		return nil
	}

	sub, err := r.submissionRepo.FindByTransactionRef(ctx, transactionRef)
	if errors.Is(err, model.ErrSubmissionNotFound) {
		// replayed webhook for an unknown or old transaction; expected traffic
		r.log.WithField("transaction_ref", transactionRef).
			Debug("no submission for transaction, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find submission by transaction ref: %w", err)
	}

	if sub.Status == newStatus {
		// already there; a success may still owe its notification if an
		// earlier attempt crashed between the status write and the send
		if newStatus == model.StatusCompleted {
			return r.notifyIfNeeded(ctx, sub)
		}
		return nil
	}

	if sub.Status.Terminal() {
		// first terminal write wins; conflicting reports are dropped
		r.log.WithFields(logrus.Fields{
			"transaction_ref": transactionRef,
			"current":         sub.Status,
			"requested":       newStatus,
		}).Warn("conflicting terminal status from gateway, keeping first")
		return nil
	}

	rows, err := r.submissionRepo.TransitionFromPending(ctx, transactionRef, newStatus, amount, currency)
	if err != nil {
		return fmt.Errorf("transition submission status: %w", err)
	}
	if rows == 0 {
		// lost the race to a concurrent delivery; re-read and degrade to
		// the idempotent path
		cur, err := r.submissionRepo.FindByTransactionRef(ctx, transactionRef)
		if err != nil {
			return nil
		}
		if cur.Status == newStatus && newStatus == model.StatusCompleted {
			return r.notifyIfNeeded(ctx, cur)
		}
		return nil
	}

	r.log.WithFields(logrus.Fields{
		"transaction_ref": transactionRef,
		"submission_id":   sub.ID,
		"status":          newStatus,
	}).Info("submission status reconciled")

	if newStatus == model.StatusCompleted {
		sub.Status = newStatus
		if amount != nil {
			sub.Amount = *amount
		}
		if currency != "" {
			sub.Currency = currency
		}
		return r.notifyIfNeeded(ctx, sub)
	}

	return nil
}

// notifyIfNeeded sends the terminal-success emails at most once per
// submission. Send failures are logged and swallowed: the status write
// stands, and a later Apply for the same transaction retries the send.
func (r *reconcilerImpl) notifyIfNeeded(ctx context.Context, sub *model.Submission) error {
	if sub.Notified {
		return nil
	}

	form, err := r.formRepo.Get(ctx, sub.FormID)
	if errors.Is(err, model.ErrFormNotFound) {
		form = nil // form deleted since; admin mail still goes out
	} else if err != nil {
		return fmt.Errorf("load form for notification: %w", err)
	}

	if err := r.notifier.NotifyPaymentCompleted(ctx, form, sub); err != nil {
		r.log.WithFields(logrus.Fields{
			"submission_id": sub.ID,
		}).WithError(err).Warn("notification failed, will retry on next reconcile")
		return nil
	}

	if _, err := r.submissionRepo.MarkNotified(ctx, sub.ID); err != nil {
		return fmt.Errorf("mark submission notified: %w", err)
	}
	return nil
}
