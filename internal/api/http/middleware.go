package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/observability"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "requestid"
)

// MiddlewareConfig bundles dependencies of the global middlewares.
type MiddlewareConfig struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Localizer      *i18n.Localizer
	Timeout        time.Duration
	AllowedOrigins []string
	SessionHeader  string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{
		Header:     requestIDHeader,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(requestLogger(cfg.Logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.Localizer))
	if len(cfg.AllowedOrigins) > 0 {
		app.Use(corsMiddleware(cfg.AllowedOrigins, cfg.SessionHeader))
	}
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func corsMiddleware(origins []string, sessionHeader string) fiber.Handler {
	headers := []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization, requestIDHeader}
	if sessionHeader != "" {
		headers = append(headers, sessionHeader)
	}
	allowOrigins := strings.Join(origins, ",")
	return cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: strings.Join(headers, ","),
		// Credentialed CORS cannot be combined with a wildcard origin.
		AllowCredentials: !strings.Contains(allowOrigins, "*"),
		ExposeHeaders:    requestIDHeader,
	})
}

func requestLogger(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		done := metrics.TrackInFlight()
		defer done()

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path
		latency := time.Since(start)
		metrics.RecordRequest(route, c.Method(), status, latency)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("request_id", requestIDFrom(c)),
		)
		return err
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, localizer *i18n.Localizer) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, err, logger, metrics, localizer)
			}
		}()
		return c.Next()
	}
}

// writeError renders err as the JSON error envelope.
func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics, localizer *i18n.Localizer) error {
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	message := domainErr.Message
	if domainErr.Key != "" && localizer != nil {
		message = localizer.T(c, domainErr.Key)
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = localizeDetails(c, domainErr.Details, localizer)
	}
	if id := requestIDFrom(c); id != "" {
		body["requestId"] = id
	}

	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("code", domainErr.Code),
			zap.String("path", c.Path()),
			zap.String("request_id", requestIDFrom(c)),
			zap.Error(domainErr))
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

func localizeDetails(c *fiber.Ctx, details map[string]any, localizer *i18n.Localizer) map[string]any {
	out := make(map[string]any, len(details))
	for field, v := range details {
		key, ok := v.(string)
		if !ok || localizer == nil {
			out[field] = v
			continue
		}
		out[field] = localizer.T(c, key)
	}
	return out
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
