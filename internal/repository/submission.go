package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"payment-form-builder/internal/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	FindByTransactionRef(ctx context.Context, ref string) (*model.Submission, error)
	List(ctx context.Context, limit, offset int) ([]*model.Submission, error)
	UpdateData(ctx context.Context, id string, data map[string]string) error

	// TransitionFromPending is the compare-and-set the reconciler relies on:
	// only rows still in pending move, so concurrent writers cannot both
	// claim the transition. Returns the number of rows updated (0 or 1).
	TransitionFromPending(ctx context.Context, ref string, newStatus model.SubmissionStatus, amount *decimal.Decimal, currency string) (int64, error)

	// MarkNotified flips the notified flag, but only when it is still false.
	MarkNotified(ctx context.Context, id string) (int64, error)
}

type submissionRepoImpl struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepoImpl{
		db: db,
	}
}

func (r *submissionRepoImpl) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepoImpl) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *submissionRepoImpl) FindByTransactionRef(ctx context.Context, ref string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("transaction_ref = ?", ref).
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *submissionRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Submission, error) {
	var subs []*model.Submission
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *submissionRepoImpl) UpdateData(ctx context.Context, id string, data map[string]string) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(model.Submission{Data: data}).Error
}

func (r *submissionRepoImpl) TransitionFromPending(ctx context.Context, ref string, newStatus model.SubmissionStatus, amount *decimal.Decimal, currency string) (int64, error) {
	updates := map[string]interface{}{
		"status":     newStatus,
		"updated_at": time.Now(),
	}
	// gateway is authoritative for the settled amount
	if amount != nil {
		updates["amount"] = *amount
	}
	if currency != "" {
		updates["currency"] = currency
	}

	result := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("transaction_ref = ? AND status = ?", ref, model.StatusPending).
		Updates(updates)

	return result.RowsAffected, result.Error
}

func (r *submissionRepoImpl) MarkNotified(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND notified = ?", id, false).
		Updates(map[string]interface{}{
			"notified":   true,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}
