package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/internal/auth"
	triggerDatamodel "github.com/coparently/coparently/internal/core/datamodel/trigger"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/transport/rest"
	"github.com/coparently/coparently/internal/trigger"
)

type stubTokenRepository struct {
	tokens map[string]*triggerDatamodel.ActionToken
}

func (s *stubTokenRepository) Insert(_ context.Context, token *triggerDatamodel.ActionToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *stubTokenRepository) GetByToken(_ context.Context, token string) (*triggerDatamodel.ActionToken, error) {
	row, ok := s.tokens[token]
	if !ok {
		return nil, internal.ErrTokenNotFound
	}
	return row, nil
}

type stubExpenseService struct{}

func (s *stubExpenseService) GetExpense(_ context.Context, id, _ string) (*expense.Expense, error) {
	return &expense.Expense{ID: id, Status: expense.StatusPending}, nil
}

func (s *stubExpenseService) Approve(_ context.Context, id string, _ expense.Actor) (*expense.Expense, error) {
	return &expense.Expense{ID: id, Status: expense.StatusApproved}, nil
}

func (s *stubExpenseService) Dispute(_ context.Context, id string, _ expense.Actor, _ string) (*expense.Expense, error) {
	return &expense.Expense{ID: id, Status: expense.StatusDisputed}, nil
}

// logSink is a goroutine-safe writer the middleware logger drains into.
type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *logSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		sink   *logSink
	)

	BeforeEach(func() {
		sink = &logSink{}
		lg := slog.New(slog.NewTextHandler(sink, nil))

		repo := &stubTokenRepository{tokens: map[string]*triggerDatamodel.ActionToken{
			"tok-1": {Token: "tok-1", ExpenseID: "expense-1"},
		}}
		triggerService := trigger.NewService(
			repo, &stubExpenseService{}, nil, nil, nil, nil, nil,
			"http://localhost:8080", lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, auth.NewVerifier("router-test-secret-0123456789abcdef"),
			rest.Handlers{Trigger: trigger.NewHandler(triggerService)},
			&internal.Config{}, lg)
	})

	Describe("token actions", func() {
		It("serves the emailed link form over GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/actions/tok-1?action=approve", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var result trigger.ActionResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
			Expect(result.ExpenseID).To(Equal("expense-1"))
			Expect(result.Status).To(Equal(expense.StatusApproved))
		})

		It("accepts the action in a POST body", func() {
			body := strings.NewReader(`{"action": "clarify"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/actions/tok-1", body)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var result trigger.ActionResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Status).To(Equal(expense.StatusDisputed))
		})

		It("returns not found for an unknown token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/actions/tok-missing?action=approve", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("request logging", func() {
		It("logs request and response for every routed call", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			logged := sink.String()
			Expect(logged).To(ContainSubstring("incoming request"))
			Expect(logged).To(ContainSubstring("/api/v1/ping"))
			Expect(logged).To(ContainSubstring("response"))
		})

		It("masks sensitive headers", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
			req.Header.Set("Authorization", "Bearer super-secret-value")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			logged := sink.String()
			Expect(logged).To(ContainSubstring("[FILTERED]"))
			Expect(logged).NotTo(ContainSubstring("super-secret-value"))
		})
	})
})
