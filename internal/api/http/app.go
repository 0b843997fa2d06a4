package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/observability"
)

// AppConfig configures the fiber application.
type AppConfig struct {
	Name      string
	BodyLimit int
	Timeout   time.Duration
}

// NewApp builds the fiber app. Errors raised before the middleware chain
// (e.g. an oversized body) still use the JSON error envelope.
func NewApp(cfg AppConfig, logger *zap.Logger, metrics *observability.Metrics, localizer *i18n.Localizer) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.Timeout,
		WriteTimeout:          cfg.Timeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if werr := writeError(c, err, logger, metrics, localizer); werr != nil {
				return errors.Join(err, werr)
			}
			return nil
		},
	})
}
