package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type FieldType string

const (
	FieldText      FieldType = "text"
	FieldEmail     FieldType = "email"
	FieldTextarea  FieldType = "textarea"
	FieldTwoColumn FieldType = "two_column"
)

// FieldSpec is a tagged union: Type selects which variant pointer is set.
type FieldSpec struct {
	Type      FieldType       `json:"type"`
	Text      *TextField      `json:"text,omitempty"`
	Email     *EmailField     `json:"email,omitempty"`
	Textarea  *TextareaField  `json:"textarea,omitempty"`
	TwoColumn *TwoColumnField `json:"two_column,omitempty"`
}

type TextField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type EmailField struct {
	Label         string `json:"label"`
	Required      bool   `json:"required"`
	CustomerEmail bool   `json:"customer_email"`
}

type TextareaField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type TwoColumnField struct {
	Labels   [2]string `json:"labels"`
	Required [2]bool   `json:"required"`
}

func (f *FieldSpec) Validate() error {
	switch f.Type {
	case FieldText:
		if f.Text == nil || f.Text.Label == "" {
			return fmt.Errorf("%w: text field needs a label", ErrValidation)
		}
	case FieldEmail:
		if f.Email == nil || f.Email.Label == "" {
			return fmt.Errorf("%w: email field needs a label", ErrValidation)
		}
	case FieldTextarea:
		if f.Textarea == nil || f.Textarea.Label == "" {
			return fmt.Errorf("%w: textarea field needs a label", ErrValidation)
		}
	case FieldTwoColumn:
		if f.TwoColumn == nil || f.TwoColumn.Labels[0] == "" || f.TwoColumn.Labels[1] == "" {
			return fmt.Errorf("%w: two_column field needs both labels", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown field type %q", ErrValidation, f.Type)
	}
	return nil
}

// Labels returns the submission-data keys this field contributes.
func (f *FieldSpec) Labels() []string {
	switch f.Type {
	case FieldText:
		return []string{f.Text.Label}
	case FieldEmail:
		return []string{f.Email.Label}
	case FieldTextarea:
		return []string{f.Textarea.Label}
	case FieldTwoColumn:
		return []string{f.TwoColumn.Labels[0], f.TwoColumn.Labels[1]}
	}
	return nil
}

// RequiredLabels returns the labels that must be present in a submission.
func (f *FieldSpec) RequiredLabels() []string {
	switch f.Type {
	case FieldText:
		if f.Text.Required {
			return []string{f.Text.Label}
		}
	case FieldEmail:
		if f.Email.Required {
			return []string{f.Email.Label}
		}
	case FieldTextarea:
		if f.Textarea.Required {
			return []string{f.Textarea.Label}
		}
	case FieldTwoColumn:
		var labels []string
		for i := 0; i < 2; i++ {
			if f.TwoColumn.Required[i] {
				labels = append(labels, f.TwoColumn.Labels[i])
			}
		}
		return labels
	}
	return nil
}

type FormDefinition struct {
	FormID    string          `gorm:"primaryKey;size:64;not null" json:"form_id"`
	Title     string          `gorm:"size:255" json:"title"`
	Fields    []FieldSpec     `gorm:"serializer:json" json:"fields"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string          `gorm:"size:8;not null" json:"currency"` // lowercase 3-letter code
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CustomerEmailLabel returns the label of the email field flagged as the
// customer address, or "" when the form has none.
func (f *FormDefinition) CustomerEmailLabel() string {
	for _, field := range f.Fields {
		if field.Type == FieldEmail && field.Email != nil && field.Email.CustomerEmail {
			return field.Email.Label
		}
	}
	return ""
}

// NormalizeCustomerEmail keeps at most one customer_email flag set.
// When several email fields carry the flag the last one wins.
func (f *FormDefinition) NormalizeCustomerEmail() {
	last := -1
	for i, field := range f.Fields {
		if field.Type == FieldEmail && field.Email != nil && field.Email.CustomerEmail {
			last = i
		}
	}
	for i, field := range f.Fields {
		if i != last && field.Type == FieldEmail && field.Email != nil {
			field.Email.CustomerEmail = false
		}
	}
}

func (f *FormDefinition) Validate() error {
	if f.FormID == "" {
		return fmt.Errorf("%w: missing form id", ErrValidation)
	}
	if f.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if len(f.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	for i := range f.Fields {
		if err := f.Fields[i].Validate(); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	return nil
}
