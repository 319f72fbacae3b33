package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/middleware"
	"github.com/krishkalaria12/remake/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed templates/reports.html
var reportsPageSource string

var reportsPage = template.Must(template.New("reports").Parse(reportsPageSource))

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const createdAtLayout = "Jan 2, 2006 15:04 MST"

type reportsPageData struct {
	SignedIn bool
	Failed   bool
	Name     string
	Reports  []reportView
}

type reportView struct {
	ID          string
	Title       string
	Style       string
	CreatedAt   string
	RawInput    string
	ContentHTML template.HTML
	Latest      bool
}

// ReportsPage handles GET /reports: the caller's report library, newest first.
func (h *Handler) ReportsPage(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok || user.ID == "" {
		return h.renderReports(c, fiber.StatusOK, reportsPageData{})
	}

	reports, err := h.reports.ListByOwner(c.UserContext(), user.ID)
	if err != nil {
		h.log.Error("failed to load reports page", zap.String("user_id", user.ID), zap.Error(err))
		return h.renderReports(c, fiber.StatusInternalServerError, reportsPageData{SignedIn: true, Failed: true})
	}

	return h.renderReports(c, fiber.StatusOK, reportsPageData{
		SignedIn: true,
		Name:     user.Name,
		Reports:  buildReportViews(reports),
	})
}

func (h *Handler) renderReports(c *fiber.Ctx, status int, data reportsPageData) error {
	var buf bytes.Buffer
	if err := reportsPage.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func buildReportViews(reports []models.Report) []reportView {
	views := make([]reportView, 0, len(reports))
	for i, r := range reports {
		style := r.Style
		if style == "" {
			style = "default"
		}
		views = append(views, reportView{
			ID:          r.ID,
			Title:       r.Title,
			Style:       style,
			CreatedAt:   r.CreatedAt.In(time.UTC).Format(createdAtLayout),
			RawInput:    r.RawInput,
			ContentHTML: renderMarkdown(r.ReportContent),
			Latest:      i == 0,
		})
	}
	return views
}

// renderMarkdown converts generated report text to HTML. Raw HTML in the
// source is dropped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
