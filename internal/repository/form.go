package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payment-form-builder/internal/model"
)

type FormRepository interface {
	Get(ctx context.Context, formID string) (*model.FormDefinition, error)
	Put(ctx context.Context, form *model.FormDefinition) error
}

type formRepoImpl struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepoImpl{
		db: db,
	}
}

func (r *formRepoImpl) Get(ctx context.Context, formID string) (*model.FormDefinition, error) {
	var form model.FormDefinition
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		First(&form).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}

	return &form, nil
}

func (r *formRepoImpl) Put(ctx context.Context, form *model.FormDefinition) error {
	form.Currency = strings.ToLower(form.Currency)
	form.NormalizeCustomerEmail()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "form_id"}},
			UpdateAll: true,
		}).
		Create(form).Error
}
