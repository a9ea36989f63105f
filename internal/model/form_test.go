package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   FieldSpec
		wantErr bool
	}{
		{"valid text", FieldSpec{Type: FieldText, Text: &TextField{Label: "Name"}}, false},
		{"valid email", FieldSpec{Type: FieldEmail, Email: &EmailField{Label: "Email"}}, false},
		{"valid textarea", FieldSpec{Type: FieldTextarea, Textarea: &TextareaField{Label: "Message"}}, false},
		{"valid two_column", FieldSpec{Type: FieldTwoColumn, TwoColumn: &TwoColumnField{Labels: [2]string{"First", "Last"}}}, false},
		{"text without variant", FieldSpec{Type: FieldText}, true},
		{"text with empty label", FieldSpec{Type: FieldText, Text: &TextField{}}, true},
		{"two_column missing second label", FieldSpec{Type: FieldTwoColumn, TwoColumn: &TwoColumnField{Labels: [2]string{"First", ""}}}, true},
		{"unknown type", FieldSpec{Type: "checkbox"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.field.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldSpecLabels(t *testing.T) {
	two := FieldSpec{Type: FieldTwoColumn, TwoColumn: &TwoColumnField{
		Labels:   [2]string{"First", "Last"},
		Required: [2]bool{false, true},
	}}
	assert.Equal(t, []string{"First", "Last"}, two.Labels())
	assert.Equal(t, []string{"Last"}, two.RequiredLabels())

	text := FieldSpec{Type: FieldText, Text: &TextField{Label: "Name", Required: true}}
	assert.Equal(t, []string{"Name"}, text.Labels())
	assert.Equal(t, []string{"Name"}, text.RequiredLabels())

	optional := FieldSpec{Type: FieldTextarea, Textarea: &TextareaField{Label: "Notes"}}
	assert.Empty(t, optional.RequiredLabels())
}

func TestFormDefinitionValidate(t *testing.T) {
	form := FormDefinition{
		FormID:   "7",
		Amount:   decimal.RequireFromString("25.00"),
		Currency: "usd",
		Fields: []FieldSpec{
			{Type: FieldText, Text: &TextField{Label: "Name"}},
		},
	}
	require.NoError(t, form.Validate())

	t.Run("negative amount", func(t *testing.T) {
		bad := form
		bad.Amount = decimal.RequireFromString("-1")
		assert.ErrorIs(t, bad.Validate(), ErrValidation)
	})

	t.Run("bad currency", func(t *testing.T) {
		bad := form
		bad.Currency = "dollars"
		assert.ErrorIs(t, bad.Validate(), ErrValidation)
	})

	t.Run("missing form id", func(t *testing.T) {
		bad := form
		bad.FormID = ""
		assert.ErrorIs(t, bad.Validate(), ErrValidation)
	})

	t.Run("zero amount allowed", func(t *testing.T) {
		free := form
		free.Amount = decimal.Zero
		assert.NoError(t, free.Validate())
	})
}

func TestNormalizeCustomerEmailLastWriteWins(t *testing.T) {
	form := FormDefinition{
		FormID: "7",
		Fields: []FieldSpec{
			{Type: FieldEmail, Email: &EmailField{Label: "A", CustomerEmail: true}},
			{Type: FieldText, Text: &TextField{Label: "Name"}},
			{Type: FieldEmail, Email: &EmailField{Label: "B", CustomerEmail: true}},
		},
	}
	form.NormalizeCustomerEmail()

	assert.False(t, form.Fields[0].Email.CustomerEmail)
	assert.True(t, form.Fields[2].Email.CustomerEmail)
	assert.Equal(t, "B", form.CustomerEmailLabel())
}

func TestCustomerEmailLabelAbsent(t *testing.T) {
	form := FormDefinition{
		Fields: []FieldSpec{
			{Type: FieldText, Text: &TextField{Label: "Name"}},
			{Type: FieldEmail, Email: &EmailField{Label: "Email"}},
		},
	}
	assert.Empty(t, form.CustomerEmailLabel())
}
