package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"verifact/internal/server/middleware"
	"verifact/pkg/common"
	"verifact/pkg/store"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

// reportStore stubs the store methods GetReportHandler touches; anything
// else panics via the embedded nil interface.
type reportStore struct {
	store.Store
	report   *common.Report
	article  *common.Article
	analyses []common.Analysis
}

func (s *reportStore) GetReportByID(ctx context.Context, id int64) (*common.Report, error) {
	if s.report == nil || s.report.ID != id {
		return nil, store.ErrNotFound
	}
	return s.report, nil
}

func (s *reportStore) GetArticleByID(ctx context.Context, id int64) (*common.Article, error) {
	if s.article == nil || s.article.ID != id {
		return nil, store.ErrNotFound
	}
	return s.article, nil
}

func (s *reportStore) GetAnalysesByOriginalArticle(ctx context.Context, originalID int64) ([]common.Analysis, error) {
	return s.analyses, nil
}

func newReportContext(t *testing.T, st store.Store, target string) (*middleware.AppContext, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return &middleware.AppContext{
		Context: c,
		App:     &middleware.App{Store: st},
		User:    &middleware.AppUser{UserID: 1, Role: "user"},
	}, rec
}

func TestGetReportIncludesArticleAndAnalyses(t *testing.T) {
	st := &reportStore{
		report: &common.Report{
			ID:                7,
			OriginalArticleID: 3,
			OverallScore:      81.5,
			ConfidenceLevel:   "medium",
			SourcesChecked:    2,
		},
		article: &common.Article{
			ID:         3,
			URL:        "https://original.example.com/fire",
			Title:      "Warehouse fire downtown",
			SourceType: "news_general",
		},
		analyses: []common.Analysis{
			{ID: 11, OriginalArticleID: 3, ComparisonArticleID: 4, AccuracyScore: 80},
			{ID: 12, OriginalArticleID: 3, ComparisonArticleID: 5, AccuracyScore: 83},
		},
	}

	c, rec := newReportContext(t, st, "/api/reports/7")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := GetReportHandler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Report   *common.Report    `json:"report"`
		Article  *common.Article   `json:"article"`
		Analyses []common.Analysis `json:"analyses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Report == nil || body.Report.ID != 7 {
		t.Fatalf("expected report 7, got %+v", body.Report)
	}
	if body.Article == nil || body.Article.ID != 3 {
		t.Fatalf("expected article 3 alongside the report, got %+v", body.Article)
	}
	if body.Article != nil && body.Article.URL != "https://original.example.com/fire" {
		t.Fatalf("unexpected article url %q", body.Article.URL)
	}
	if len(body.Analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(body.Analyses))
	}
}

func TestGetReportNotFound(t *testing.T) {
	c, _ := newReportContext(t, &reportStore{}, "/api/reports/99")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := GetReportHandler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if c.Response().Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", c.Response().Status)
	}
}
