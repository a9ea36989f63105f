package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"payment-form-builder/internal/handler"
	appmiddleware "payment-form-builder/internal/middleware"
	"payment-form-builder/internal/service"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	formHandler    *handler.FormHandler
	adminAPIKey    string
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(paymentService service.PaymentService, formService service.FormService, adminAPIKey string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(paymentService),
		formHandler:    handler.NewFormHandler(formService),
		adminAPIKey:    adminAPIKey,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	pfb := s.echo.Group("/pfb/v1")

	// -------- public form + payment flow --------
	pfb.GET("/forms/:id/session", s.formHandler.Session)
	pfb.POST("/submit", s.paymentHandler.Submit)
	pfb.POST("/order", s.paymentHandler.SaveOrder)
	pfb.GET("/submissions/:id", s.paymentHandler.SubmissionStatus)

	// -------- gateway webhooks --------
	pfb.POST("/webhook", s.paymentHandler.Webhook)

	// -------- admin --------
	admin := pfb.Group("/admin", appmiddleware.AdminAuth(s.adminAPIKey))
	admin.PUT("/forms/:id", s.formHandler.PutForm)
	admin.GET("/forms/:id", s.formHandler.GetForm)
	admin.GET("/submissions", s.formHandler.ListSubmissions)
	admin.POST("/reconcile", s.paymentHandler.Reconcile)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
