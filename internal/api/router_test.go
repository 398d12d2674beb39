package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/internal/api/handlers"
	"github.com/athebyme/struct-commerce-sync/internal/domain/services"
	"github.com/athebyme/struct-commerce-sync/internal/security"
	"github.com/athebyme/struct-commerce-sync/internal/webhook"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	events []webhook.Event
	result webhook.Result
}

func (s *stubDispatcher) Dispatch(_ context.Context, event webhook.Event) webhook.Result {
	s.events = append(s.events, event)
	return s.result
}

type stubRunner struct {
	importErr error
	cleanErrs []string
	cleanErr  error
}

func (s *stubRunner) RunInitialImport(context.Context) error { return s.importErr }

func (s *stubRunner) RunClean(context.Context) ([]string, error) { return s.cleanErrs, s.cleanErr }

type stubPIM struct {
	interfaces.PIMPort
	categories map[int]*models.CategoryModel
	structure  *models.ProductStructure
	err        error
}

func (s *stubPIM) GetCategory(_ context.Context, id int) (*models.CategoryModel, error) {
	return s.categories[id], s.err
}

func (s *stubPIM) GetVariantIDs(_ context.Context, productID *int) ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []int{*productID * 10, *productID*10 + 1}, nil
}

func (s *stubPIM) GetProductStructure(_ context.Context, uid uuid.UUID) (*models.ProductStructure, error) {
	if s.structure != nil && s.structure.Uid == uid {
		return s.structure, s.err
	}
	return nil, s.err
}

type stubRuns struct {
	interfaces.StoragePort
	runs  []*interfaces.ImportRun
	limit int
}

func (s *stubRuns) ListRuns(_ context.Context, limit int) ([]*interfaces.ImportRun, error) {
	s.limit = limit
	return s.runs, nil
}

type routerFixture struct {
	dispatcher *stubDispatcher
	runner     *stubRunner
	pim        *stubPIM
	runs       *stubRuns
	deps       Dependencies
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		dispatcher: &stubDispatcher{result: webhook.Result{Status: http.StatusOK}},
		runner:     &stubRunner{},
		pim:        &stubPIM{categories: map[int]*models.CategoryModel{}},
		runs:       &stubRuns{},
	}
	f.deps = Dependencies{
		Dispatcher:         f.dispatcher,
		NewImporter:        func() handlers.ImportRunner { return f.runner },
		Runs:               f.runs,
		PIM:                f.pim,
		APIKey:             security.NewAPIKeyVerifier(""),
		Logger:             logger.NewNopLogger(),
		CORSAllowedOrigins: []string{"*"},
		RequestTimeout:     time.Second,
		MetricsEndpoint:    "/metrics",
	}
	return f
}

func (f *routerFixture) do(method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	SetupRouter(f.deps).ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	f := newRouterFixture()
	f.do(http.MethodGet, "/health", "", nil)

	rec := f.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_WebhookRoutes(t *testing.T) {
	routes := map[string]string{
		"/catalogue/webhook":        webhook.FamilyCatalogues,
		"/category/webhook":         webhook.FamilyCategories,
		"/language/webhook":         webhook.FamilyLanguages,
		"/productstructure/webhook": webhook.FamilyProductStructures,
		"/product/webhook":          webhook.FamilyProducts,
		"/variant/webhook":          webhook.FamilyVariants,
		"/attribute/webhook":        webhook.FamilyAttributes,
	}

	for path, family := range routes {
		t.Run(path, func(t *testing.T) {
			f := newRouterFixture()

			rec := f.do(http.MethodPost, path, `{"Ids":[1]}`, map[string]string{"X-Event-Key": family + ":created"})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			require.Len(t, f.dispatcher.events, 1)
			event := f.dispatcher.events[0]
			assert.Equal(t, family, event.Family)
			assert.Equal(t, family+":created", event.Key)
			assert.Equal(t, "http", event.Source)
			assert.JSONEq(t, `{"Ids":[1]}`, string(event.Body))
		})
	}
}

func TestRouter_WebhookResponses(t *testing.T) {
	t.Run("сообщение отказа текстом", func(t *testing.T) {
		f := newRouterFixture()
		f.dispatcher.result = webhook.Result{Status: http.StatusBadRequest, Message: "X-Event-Key is missing"}

		rec := f.do(http.MethodPost, "/product/webhook", `{}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "X-Event-Key is missing", rec.Body.String())
		assert.Empty(t, f.dispatcher.events[0].Key)
	})

	t.Run("накопленные ошибки списком", func(t *testing.T) {
		f := newRouterFixture()
		f.dispatcher.result = webhook.Result{
			Status: http.StatusBadRequest,
			Errors: []string{"Failed to create the product struct_1 in Commercetools."},
		}

		rec := f.do(http.MethodPost, "/product/webhook", `{"ProductIds":[1]}`, map[string]string{"X-Event-Key": "products:created"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var errs []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
		assert.Equal(t, []string{"Failed to create the product struct_1 in Commercetools."}, errs)
	})
}

func TestRouter_APIKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{name: "нет ключа", status: http.StatusUnauthorized, body: "Api Key was not provided"},
		{name: "неверный ключ", headers: map[string]string{"XApiKey": "wrong"}, status: http.StatusUnauthorized, body: "Unauthorized client"},
		{name: "верный ключ", headers: map[string]string{"XApiKey": "secret"}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			f.deps.APIKey = security.NewAPIKeyVerifier("secret")

			rec := f.do(http.MethodGet, "/import/initial", "", tt.headers)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
			}
		})
	}

	t.Run("health без ключа", func(t *testing.T) {
		f := newRouterFixture()
		f.deps.APIKey = security.NewAPIKeyVerifier("secret")

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", nil).Code)
	})
}

func TestRouter_BearerToken(t *testing.T) {
	manager, err := security.NewJWTManager("jwt-secret", time.Hour, "struct-commerce-sync")
	require.NoError(t, err)

	readOnly, err := manager.Generate("dashboard", []string{security.PermissionRead})
	require.NoError(t, err)

	f := newRouterFixture()
	f.deps.APIKey = security.NewAPIKeyVerifier("secret")
	f.deps.JWT = manager

	rec := f.do(http.MethodGet, "/import/runs", "", map[string]string{"Authorization": "Bearer " + readOnly})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/import/initial", "", map[string]string{"Authorization": "Bearer " + readOnly})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/import/runs", "", map[string]string{"Authorization": "Bearer broken"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Import(t *testing.T) {
	t.Run("успех", func(t *testing.T) {
		f := newRouterFixture()

		rec := f.do(http.MethodGet, "/import/initial", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Import success", rec.Body.String())
	})

	t.Run("ошибка", func(t *testing.T) {
		f := newRouterFixture()
		f.runner.importErr = &services.ImportError{Errors: []string{"a", "b"}}

		rec := f.do(http.MethodGet, "/import/initial", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Import failed: a,b", rec.Body.String())
	})

	t.Run("очистка запрещена", func(t *testing.T) {
		f := newRouterFixture()
		f.runner.cleanErr = services.ErrCleanNotAllowed

		rec := f.do(http.MethodGet, "/import/clean", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Not allowed", rec.Body.String())
	})

	t.Run("очистка с ошибками", func(t *testing.T) {
		f := newRouterFixture()
		f.runner.cleanErrs = []string{"Failed to delete the category struct_1 in Commercetools."}

		rec := f.do(http.MethodGet, "/import/clean", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["Failed to delete the category struct_1 in Commercetools."]`, rec.Body.String())
	})

	t.Run("очистка без ошибок", func(t *testing.T) {
		f := newRouterFixture()

		rec := f.do(http.MethodGet, "/import/clean", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("прерванная очистка", func(t *testing.T) {
		f := newRouterFixture()
		f.runner.cleanErr = errors.New("failed to get catalogues: timeout")

		rec := f.do(http.MethodGet, "/import/clean", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "failed to get catalogues: timeout", rec.Body.String())
	})
}

func TestRouter_ImportRuns(t *testing.T) {
	f := newRouterFixture()
	f.runs.runs = []*interfaces.ImportRun{{ID: "run-1", Kind: services.RunKindInitial, Succeeded: true}}

	rec := f.do(http.MethodGet, "/import/runs?limit=5", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.runs.limit)
	var runs []interfaces.ImportRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)

	f.deps.Runs = nil
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/import/runs", "", nil).Code)
}

func TestRouter_PIMPassthrough(t *testing.T) {
	catalogue := uuid.New()
	structure := &models.ProductStructure{Uid: uuid.New(), Alias: "shoes"}

	f := newRouterFixture()
	f.pim.categories[3] = &models.CategoryModel{Id: 3, CatalogueUid: catalogue}
	f.pim.structure = structure

	rec := f.do(http.MethodGet, "/category?categoryId=3", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"`+catalogue.String()+`"`, rec.Body.String())

	rec = f.do(http.MethodGet, "/category?categoryId=4", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `null`, rec.Body.String())

	rec = f.do(http.MethodGet, "/category?categoryId=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/product/7/variants", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[70,71]`, rec.Body.String())

	rec = f.do(http.MethodGet, "/productstructure/"+structure.Uid.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"shoes"`)

	rec = f.do(http.MethodGet, "/productstructure/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.pim.err = errors.New("struct pim unavailable")
	rec = f.do(http.MethodGet, "/product/7/variants", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "struct pim unavailable", rec.Body.String())
}

func TestRouter_WebhookEndToEnd(t *testing.T) {
	f := newRouterFixture()
	log := logger.NewNopLogger()
	factory := services.NewFactory(nil, f.pim, log, services.Options{})
	f.deps.Dispatcher = webhook.NewDispatcher(factory, f.pim, log)

	tests := []struct {
		name   string
		path   string
		key    string
		body   string
		status int
		text   string
	}{
		{name: "нет ключа события", path: "/category/webhook", body: `{"CategoryIds":[1]}`, status: http.StatusBadRequest, text: "X-Event-Key is missing"},
		{name: "пустое тело", path: "/category/webhook", key: "categories:created", status: http.StatusBadRequest, text: "No model provided"},
		{name: "неизвестное действие", path: "/category/webhook", key: "categories:bogus", body: `{"CategoryIds":[1]}`, status: http.StatusBadRequest, text: "No handler for webhook categories:bogus"},
		{name: "удаление языка", path: "/language/webhook", key: "languages:deleted", status: http.StatusBadRequest, text: "Deleting language in Commercetools not supported"},
		{name: "успех", path: "/attribute/webhook", key: "attributes:updated", body: `{"AttributeUids":[]}`, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.key != "" {
				headers["X-Event-Key"] = tt.key
			}

			rec := f.do(http.MethodPost, tt.path, tt.body, headers)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.text, rec.Body.String())
		})
	}
}
