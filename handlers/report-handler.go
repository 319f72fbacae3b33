package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/middleware"
	"github.com/krishkalaria12/remake/report"
	"go.uber.org/zap"
)

// GenerateReport handles POST /api/report.
func (h *Handler) GenerateReport(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	sub, err := decodeSubmission(c)
	if err != nil {
		return h.pipelineError(c, err)
	}

	stored, err := h.pipeline.Run(c.UserContext(), userID, sub)
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"report": stored})
}

// ListReports handles GET /api/reports.
func (h *Handler) ListReports(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	reports, err := h.reports.ListByOwner(c.UserContext(), userID)
	if err != nil {
		h.log.Error("failed to list reports", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load reports"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"reports": reports})
}

func (h *Handler) pipelineError(c *fiber.Ctx, err error) error {
	status, message := fiber.StatusInternalServerError, "Server error"

	switch {
	case errors.Is(err, report.ErrUnauthenticated):
		status, message = fiber.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, report.ErrMissingFields):
		status, message = fiber.StatusBadRequest, "Missing required fields"
	case errors.Is(err, report.ErrInvalidStyle):
		status, message = fiber.StatusBadRequest, "Invalid style"
	case errors.Is(err, report.ErrPersistence):
		message = "Database insert failed"
	}

	if status >= fiber.StatusInternalServerError {
		h.log.Error("report generation failed", zap.String("user_id", middleware.CurrentUserID(c)), zap.Error(err))
	} else {
		h.log.Warn("report request rejected", zap.Int("status", status), zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

// decodeSubmission reads the text fields and, once they are valid, the
// image parts. Parts that are not images or are empty are skipped.
func decodeSubmission(c *fiber.Ctx) (report.Submission, error) {
	sub := report.Submission{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Style:       report.NormalizeStyle(c.FormValue("style")),
	}
	if err := sub.Validate(); err != nil {
		return sub, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		// not a multipart body, so there are no images
		return sub, nil
	}

	for i, fh := range form.File["images"] {
		contentType := fh.Header.Get(fiber.HeaderContentType)
		if !report.IsImageType(contentType) || fh.Size == 0 {
			continue
		}

		data, err := readPart(fh)
		if err != nil {
			return sub, fmt.Errorf("read image #%d: %w", i+1, err)
		}

		sub.Images = append(sub.Images, report.Image{
			Index:    i,
			Filename: fh.Filename,
			MIMEType: contentType,
			Data:     data,
		})
	}

	return sub, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
