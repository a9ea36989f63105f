package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"payment-form-builder/internal/model"
	"payment-form-builder/internal/service"
)

type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{
		formService: formService,
	}
}

func (h *FormHandler) PutForm(c echo.Context) error {
	ctx := c.Request().Context()

	var form model.FormDefinition
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	form.FormID = c.Param("id")

	if err := h.formService.PutForm(ctx, &form); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &form)
}

func (h *FormHandler) GetForm(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := h.formService.GetForm(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, form)
}

func (h *FormHandler) Session(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.formService.Session(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *FormHandler) ListSubmissions(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.formService.ListSubmissions(ctx, limit, offset)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}
