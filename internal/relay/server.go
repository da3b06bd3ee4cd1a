package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"textsummarizer/internal/domain"
)

const (
	warmingUpMessage     = "The AI model is warming up. Please wait 20-30 seconds and try again."
	gatewayFailedMessage = "Failed to generate summary. Please try again."
	internalDetails      = "An unexpected error occurred. Please try again later."
)

type summarizeRequest struct {
	Inputs *string `json:"inputs"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

type errorResponse struct {
	Kind          domain.ErrorKind `json:"kind,omitempty"`
	Error         string           `json:"error"`
	EstimatedTime float64          `json:"estimated_time,omitempty"`
	Message       string           `json:"message,omitempty"`
	Details       string           `json:"details,omitempty"`
}

// Server exposes the relay over HTTP.
type Server struct {
	echo    *echo.Echo
	service *Service
	metrics *Metrics
	addr    string
	log     *slog.Logger
}

func NewServer(service *Service, metrics *Metrics, addr string, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		service: service,
		metrics: metrics,
		addr:    addr,
		log:     log,
	}

	e.HTTPErrorHandler = s.handleError

	e.Pre(allowAllOrigins)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.log.ErrorContext(c.Request().Context(), "Recovered from panic",
				"error", err,
				"stackBytes", len(stack),
				"uri", c.Request().RequestURI)

			return err
		},
	}))

	e.GET("/", s.handleHealth)
	e.POST("/summarize", s.handleSummarize)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("Relay is listening",
		"addr", s.addr)

	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "AI Summarizer Backend is running!",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Endpoints: map[string]string{
			"health":    "/",
			"summarize": "/summarize",
		},
	})
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:  domain.KindValidation,
			Error: "Request body must be a JSON object with an inputs string",
		})
	}

	var inputs string
	if req.Inputs != nil {
		inputs = *req.Inputs
	}

	result, err := s.service.Handle(c.Request().Context(), inputs)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSONBlob(http.StatusOK, result)
}

func writeError(c echo.Context, err error) error {
	var relayErr *domain.Error
	if !errors.As(err, &relayErr) {
		relayErr = &domain.Error{Kind: domain.KindInternal, Message: "Internal Server Error", Err: err}
	}

	switch relayErr.Kind {
	case domain.KindValidation:
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:  relayErr.Kind,
			Error: relayErr.Message,
		})
	case domain.KindRetryable:
		return c.JSON(http.StatusServiceUnavailable, errorResponse{
			Kind:          relayErr.Kind,
			Error:         relayErr.Message,
			EstimatedTime: relayErr.EstimatedTime,
			Message:       warmingUpMessage,
		})
	case domain.KindGateway:
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Kind:    relayErr.Kind,
			Error:   relayErr.Message,
			Message: gatewayFailedMessage,
		})
	default:
		message := relayErr.Message
		if relayErr.Err != nil {
			message = relayErr.Err.Error()
		}

		return c.JSON(http.StatusInternalServerError, errorResponse{
			Kind:    domain.KindInternal,
			Error:   "Internal Server Error",
			Message: message,
			Details: internalDetails,
		})
	}
}

// handleError renders errors that escape handlers, including recovered
// panics.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}

		if httpErr.Code == http.StatusMethodNotAllowed {
			msg = "Method not allowed. Please use POST."
		}

		if writeErr := c.JSON(httpErr.Code, errorResponse{Error: msg}); writeErr != nil {
			s.log.ErrorContext(c.Request().Context(), "Failed to write error response",
				"error", writeErr,
				"status", httpErr.Code)
		}

		return
	}

	if writeErr := writeError(c, fmt.Errorf("unhandled: %w", err)); writeErr != nil {
		s.log.ErrorContext(c.Request().Context(), "Failed to write error response",
			"error", writeErr)
	}
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	ctx := c.Request().Context()
	fields := []any{
		"method", v.Method,
		"uri", v.URI,
		"status", v.Status,
		"latency", v.Latency,
		"requestID", v.RequestID,
	}

	if v.Error != nil {
		s.log.WarnContext(ctx, "Request failed", append(fields, "error", v.Error)...)
		return nil
	}

	s.log.InfoContext(ctx, "Request is served", fields...)

	return nil
}

// allowAllOrigins answers every preflight with 200 and opens CORS to any
// origin.
func allowAllOrigins(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
		h.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}
