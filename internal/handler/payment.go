package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"payment-form-builder/internal/dto"
	"payment-form-builder/internal/model"
	"payment-form-builder/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.paymentService.Submit(ctx, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) SaveOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SaveOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.paymentService.SaveOrder(ctx, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) SubmissionStatus(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.paymentService.SubmissionStatus(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Reconcile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ReconcileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.paymentService.Poll(ctx, req.TransactionRef)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(ctx, body, sigHeader); err != nil {
		if errors.Is(err, model.ErrInvalidSignature) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return httpError(err)
	}

	return c.NoContent(http.StatusOK)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidNonce),
		errors.Is(err, model.ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrFormNotFound),
		errors.Is(err, model.ErrSubmissionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrPaymentRejected):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, model.ErrProviderUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return err
}
