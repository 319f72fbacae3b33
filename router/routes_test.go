package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/ai"
	"github.com/krishkalaria12/remake/auth"
	"github.com/krishkalaria12/remake/database"
	handler "github.com/krishkalaria12/remake/handlers"
	"github.com/krishkalaria12/remake/models"
	"github.com/krishkalaria12/remake/report"
	"github.com/krishkalaria12/remake/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	mu        sync.Mutex
	ocr       map[string]string
	report    string
	reportErr error
	ocrCalls  int
	genCalls  int
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) ExtractText(ctx context.Context, instruction string, img ai.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ocrCalls++
	return f.ocr[string(img.Data)], nil
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genCalls++
	if f.reportErr != nil {
		return "", f.reportErr
	}
	return f.report, nil
}

type failingStore struct{ store.ReportStore }

func (failingStore) Create(ctx context.Context, r models.Report) (*models.Report, error) {
	return nil, errors.New("connection reset")
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	gen     *fakeGenerator
	reports store.ReportStore
	tokens  map[string]string
}

func newTestEnv(t *testing.T, wrap func(store.ReportStore) store.ReportStore) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := database.MigrateModels(db, &models.User{}, &models.Report{}); err != nil {
		t.Fatalf("MigrateModels error: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	var reports store.ReportStore = store.NewReportStore(db)
	if wrap != nil {
		reports = wrap(reports)
	}

	gen := &fakeGenerator{ocr: map[string]string{}, report: "# Report\n\n- done"}
	authService := auth.NewService(auth.Options{Secret: "test-secret", TokenTTL: time.Hour})
	pipeline := report.NewPipeline(gen, reports, report.Options{FailurePolicy: report.AbortOnFailure, OCRConcurrency: 1}, zap.NewNop())

	h := handler.New(handler.Deps{
		Pipeline: pipeline,
		Reports:  reports,
		DB:       db,
		Tokens:   authService.TokenService(),
		TokenTTL: time.Hour,
		Log:      zap.NewNop(),
	})
	app := NewApp(AppConfig{BodyLimitMB: 1}, h, authService.TokenService(), zap.NewNop())

	env := &testEnv{app: app, db: db, gen: gen, reports: reports, tokens: map[string]string{}}
	for _, name := range []string{"alice", "bob"} {
		hash, err := auth.HashPassword("password123")
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		u := &models.User{Email: name + "@example.com", Username: name, FullName: name, Password: hash}
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
		tok, err := auth.IssueToken(authService.TokenService(), u, time.Hour)
		if err != nil {
			t.Fatalf("IssueToken: %v", err)
		}
		env.tokens[name] = tok
	}
	return env
}

type imagePart struct {
	name, contentType, data string
}

func reportRequest(t *testing.T, token string, fields map[string]string, images ...imagePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+img.name+`"`)
		h.Set("Content-Type", img.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = io.WriteString(pw, img.data)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/report", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func countReports(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Report{}).Count(&n).Error; err != nil {
		t.Fatalf("count reports: %v", err)
	}
	return n
}

var standup = map[string]string{"title": "Standup", "description": "Did X, Y", "style": "technical"}

func TestGenerateReport_TextOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], standup))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var resp struct {
		Report models.Report `json:"report"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	r := resp.Report
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Errorf("expected stored id and created_at, got %+v", r)
	}
	if r.InputType != "text" || r.RawInput != "Did X, Y" || r.ReportContent == "" {
		t.Errorf("unexpected report %+v", r)
	}
	if r.UserID != "user_1" {
		t.Errorf("expected owner user_1, got %s", r.UserID)
	}
}

func TestGenerateReport_WithImages(t *testing.T) {
	env := newTestEnv(t, nil)
	env.gen.ocr["img-a"] = "Agenda: launch"
	env.gen.ocr["img-b"] = ""

	req := reportRequest(t, env.tokens["alice"], standup,
		imagePart{"a.png", "image/png", "img-a"},
		imagePart{"notes.txt", "text/plain", "ignored"},
		imagePart{"b.png", "image/png", "img-b"},
	)
	status, body := do(t, env.app, req)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if env.gen.ocrCalls != 2 {
		t.Errorf("expected OCR only for image parts, got %d calls", env.gen.ocrCalls)
	}

	var resp struct {
		Report models.Report `json:"report"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Report.InputType != "text+image" {
		t.Errorf("expected text+image, got %s", resp.Report.InputType)
	}
	want := "Did X, Y\n\nText extracted from attached images:\nAgenda: launch"
	if resp.Report.RawInput != want {
		t.Errorf("raw_input = %q, want %q", resp.Report.RawInput, want)
	}
}

func TestGenerateReport_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := do(t, env.app, reportRequest(t, "", standup, imagePart{"a.png", "image/png", "x"}))
	if status != 401 || string(body) != `{"error":"Not authenticated"}` {
		t.Fatalf("expected 401 Not authenticated, got %d %s", status, body)
	}
	if env.gen.ocrCalls != 0 || env.gen.genCalls != 0 {
		t.Error("expected no calls to the generation service")
	}
}

func TestGenerateReport_MissingFields(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, missing := range []string{"title", "description", "style"} {
		fields := map[string]string{}
		for k, v := range standup {
			if k != missing {
				fields[k] = v
			}
		}
		status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], fields))
		if status != 400 || string(body) != `{"error":"Missing required fields"}` {
			t.Errorf("missing %s: expected 400, got %d %s", missing, status, body)
		}
	}
	if n := countReports(t, env.db); n != 0 {
		t.Errorf("expected no stored reports, got %d", n)
	}
	if env.gen.genCalls != 0 {
		t.Error("expected no generation calls")
	}
}

func TestGenerateReport_InvalidStyle(t *testing.T) {
	env := newTestEnv(t, nil)

	fields := map[string]string{"title": "T", "description": "d", "style": "poetic"}
	status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], fields))
	if status != 400 || string(body) != `{"error":"Invalid style"}` {
		t.Fatalf("expected 400 Invalid style, got %d %s", status, body)
	}
}

func TestGenerateReport_GenerationFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.gen.reportErr = errors.New("quota exceeded: secret provider detail")

	status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], standup))
	if status != 500 || string(body) != `{"error":"Server error"}` {
		t.Fatalf("expected 500 Server error, got %d %s", status, body)
	}
	if n := countReports(t, env.db); n != 0 {
		t.Errorf("expected no stored reports, got %d", n)
	}
}

func TestGenerateReport_PersistenceFailure(t *testing.T) {
	env := newTestEnv(t, func(s store.ReportStore) store.ReportStore { return failingStore{s} })

	status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], standup))
	if status != 500 || string(body) != `{"error":"Database insert failed"}` {
		t.Fatalf("expected 500 Database insert failed, got %d %s", status, body)
	}
}

func TestGenerateReport_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	big := strings.Repeat("x", 2*1024*1024)
	status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], standup, imagePart{"big.png", "image/png", big}))
	if status != 413 || string(body) != `{"error":"Request body too large"}` {
		t.Fatalf("expected 413, got %d %s", status, body)
	}
}

func TestListReports_ScopedAndNewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, title := range []string{"first", "second", "third"} {
		fields := map[string]string{"title": title, "description": "notes", "style": "casual"}
		if status, body := do(t, env.app, reportRequest(t, env.tokens["alice"], fields)); status != 200 {
			t.Fatalf("create %s: %d %s", title, status, body)
		}
		// created_at must differ between reports
		time.Sleep(5 * time.Millisecond)
	}

	list := func(token string) []models.Report {
		req := httptest.NewRequest("GET", "/api/reports", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		status, body := do(t, env.app, req)
		if status != 200 {
			t.Fatalf("list: %d %s", status, body)
		}
		var resp struct {
			Reports []models.Report `json:"reports"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return resp.Reports
	}

	alice := list(env.tokens["alice"])
	want := []string{"third", "second", "first"}
	if len(alice) != len(want) {
		t.Fatalf("expected %d reports, got %d", len(want), len(alice))
	}
	for i, title := range want {
		if alice[i].Title != title {
			t.Errorf("alice[%d] = %s, want %s", i, alice[i].Title, title)
		}
	}

	again := list(env.tokens["alice"])
	for i := range alice {
		if alice[i].ID != again[i].ID {
			t.Errorf("repeated read differs at %d", i)
		}
	}

	bob := list(env.tokens["bob"])
	if bob == nil || len(bob) != 0 {
		t.Errorf("expected empty list for bob, got %v", bob)
	}
}

func TestListReports_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := do(t, env.app, httptest.NewRequest("GET", "/api/reports", nil))
	if status != 401 || string(body) != `{"error":"Not authenticated"}` {
		t.Fatalf("expected 401, got %d %s", status, body)
	}
}

func TestReportsPage(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := do(t, env.app, httptest.NewRequest("GET", "/reports", nil))
	if status != 200 || !strings.Contains(string(body), "Please sign in to view your reports.") {
		t.Fatalf("expected sign-in prompt, got %d %s", status, body)
	}

	req := httptest.NewRequest("GET", "/reports", nil)
	req.Header.Set("Cookie", "JWT="+env.tokens["alice"])
	_, body = do(t, env.app, req)
	if !strings.Contains(string(body), "No reports yet.") {
		t.Errorf("expected empty state, got %s", body)
	}

	if status, b := do(t, env.app, reportRequest(t, env.tokens["alice"], standup)); status != 200 {
		t.Fatalf("create report: %d %s", status, b)
	}

	req = httptest.NewRequest("GET", "/reports", nil)
	req.Header.Set("Cookie", "JWT="+env.tokens["alice"])
	_, body = do(t, env.app, req)
	page := string(body)
	for _, want := range []string{"Standup", "technical", "Did X, Y", "<h1>Report</h1>", "<details open>"} {
		if !strings.Contains(page, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	reg := httptest.NewRequest("POST", "/api/user", strings.NewReader(
		`{"email":"carol@example.com","username":"carol","name":"Carol","password":"password123"}`))
	reg.Header.Set("Content-Type", "application/json")
	if status, body := do(t, env.app, reg); status != 200 {
		t.Fatalf("register: %d %s", status, body)
	}

	dup := httptest.NewRequest("POST", "/api/user", strings.NewReader(
		`{"email":"carol@example.com","username":"carol2","password":"password123"}`))
	dup.Header.Set("Content-Type", "application/json")
	if status, _ := do(t, env.app, dup); status != 409 {
		t.Errorf("expected 409 for duplicate email, got %d", status)
	}

	bad := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"identity":"carol","password":"wrong"}`))
	bad.Header.Set("Content-Type", "application/json")
	if status, _ := do(t, env.app, bad); status != 401 {
		t.Errorf("expected 401 for wrong password, got %d", status)
	}

	login := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"identity":"carol@example.com","password":"password123"}`))
	login.Header.Set("Content-Type", "application/json")
	status, body := do(t, env.app, login)
	if status != 200 {
		t.Fatalf("login: %d %s", status, body)
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data.Token == "" {
		t.Fatalf("expected token in login response: %v %s", err, body)
	}

	me := httptest.NewRequest("GET", "/api/user/me", nil)
	me.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	status, body = do(t, env.app, me)
	if status != 200 || !strings.Contains(string(body), `"id":"user_3"`) {
		t.Errorf("expected identity user_3, got %d %s", status, body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := do(t, env.app, httptest.NewRequest("GET", "/api/health", nil))
	if status != 200 || string(body) != `{"status":"ok"}` {
		t.Fatalf("expected healthy, got %d %s", status, body)
	}
}
