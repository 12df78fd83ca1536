package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"canvass/docs"
	"canvass/internal/config"
	apperrors "canvass/internal/errors"
	"canvass/internal/handler"
	"canvass/internal/logging"
	"canvass/internal/validation"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Me      *handler.MeHandler
	Records *handler.RecordHandler
}

// Register wires routes and middleware. gate guards every route except
// registration, login, health and docs.
func Register(e *echo.Echo, cfg *config.Config, log logging.Logger, h Handlers, gate echo.MiddlewareFunc) {
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(log)
	e.Validator = validation.New()

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes
	secured := api.Group("", gate)
	secured.GET("/me", h.Me.Me)

	secured.GET("/records", h.Records.List)
	secured.GET("/records/export", h.Records.Export)
	secured.GET("/records/:id", h.Records.Get)
	secured.POST("/records", h.Records.Create)
	secured.PUT("/records/:id", h.Records.Update)
	secured.DELETE("/records/:id", h.Records.Delete)
}

// errorHandler renders every error in the ErrorResponse shape, including
// the ones echo raises itself (unknown route, body too large).
func errorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch msg := he.Message.(type) {
			case apperrors.ErrorResponse:
				body = msg
			default:
				body = apperrors.ErrorResponse{
					Error: strings.ToLower(fmt.Sprint(msg)),
					Code:  statusCode(status),
				}
			}
		}
		if status >= http.StatusInternalServerError && he == nil {
			log.Error(c.Request().Context(), "unhandled error", "error", err, "path", c.Path())
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn(c.Request().Context(), "write error response", "error", err)
		}
	}
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
