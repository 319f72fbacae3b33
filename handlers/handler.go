package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/models"
	"github.com/krishkalaria12/remake/report"
	"github.com/krishkalaria12/remake/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportGenerator runs the generation pipeline for one caller.
type ReportGenerator interface {
	Run(ctx context.Context, userID string, sub report.Submission) (*models.Report, error)
}

type Deps struct {
	Pipeline ReportGenerator
	Reports  store.ReportStore
	DB       *gorm.DB
	Tokens   *token.Service
	TokenTTL time.Duration
	Log      *zap.Logger
}

type Handler struct {
	pipeline ReportGenerator
	reports  store.ReportStore
	db       *gorm.DB
	tokens   *token.Service
	tokenTTL time.Duration
	log      *zap.Logger
}

func New(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		pipeline: deps.Pipeline,
		reports:  deps.Reports,
		db:       deps.DB,
		tokens:   deps.Tokens,
		tokenTTL: deps.TokenTTL,
		log:      log,
	}
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and
// recovered panics. Internal details are logged, never returned.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		message := "Server error"
		switch code {
		case fiber.StatusRequestEntityTooLarge:
			message = "Request body too large"
		case fiber.StatusNotFound:
			message = "Not found"
		case fiber.StatusMethodNotAllowed:
			message = "Method not allowed"
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
