package dto

import "payment-form-builder/internal/model"

type SubmitRequest struct {
	FormID   string            `json:"form_id" validate:"required"`
	FormData map[string]string `json:"form_data" validate:"required"`
	Nonce    string            `json:"nonce" validate:"required"`
}

type SubmitResponse struct {
	SubmissionID string `json:"submission_id"`
	ClientSecret string `json:"client_secret"`
}

type SaveOrderRequest struct {
	FormID          string            `json:"form_id" validate:"required"`
	FormData        map[string]string `json:"form_data"`
	PaymentIntentID string            `json:"payment_intent_id" validate:"required"`
	PaymentStatus   string            `json:"payment_status"`
}

type ReconcileRequest struct {
	TransactionRef string `json:"transaction_ref" validate:"required"`
}

type SubmissionResponse struct {
	SubmissionID   string                 `json:"submission_id"`
	FormID         string                 `json:"form_id"`
	Status         model.SubmissionStatus `json:"status"`
	TransactionRef string                 `json:"transaction_ref,omitempty"`
	Amount         string                 `json:"amount"`
	Currency       string                 `json:"currency"`
	Mode           model.PaymentMode      `json:"mode"`
	Notified       bool                   `json:"notified"`
}

type FormSessionResponse struct {
	FormID         string            `json:"form_id"`
	Title          string            `json:"title"`
	Fields         []model.FieldSpec `json:"fields"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	Nonce          string            `json:"nonce"`
	PublishableKey string            `json:"publishable_key"`
}

func NewSubmissionResponse(sub *model.Submission) *SubmissionResponse {
	resp := &SubmissionResponse{
		SubmissionID: sub.ID,
		FormID:       sub.FormID,
		Status:       sub.Status,
		Amount:       sub.Amount.StringFixed(2),
		Currency:     sub.Currency,
		Mode:         sub.Mode,
		Notified:     sub.Notified,
	}
	if sub.TransactionRef != nil {
		resp.TransactionRef = *sub.TransactionRef
	}
	return resp
}
