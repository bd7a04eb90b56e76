package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/supakorn-kn/go-book-store/apis"
	"github.com/supakorn-kn/go-book-store/env"
	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/middleware"
	"github.com/supakorn-kn/go-book-store/models"
	"github.com/supakorn-kn/go-book-store/models/books"
	"github.com/supakorn-kn/go-book-store/objects"
	"github.com/supakorn-kn/go-book-store/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// singleBookStore holds at most one book, enough to drive requests through the engine.
type singleBookStore struct {
	book *objects.Book
}

func (s *singleBookStore) Insert(_ context.Context, book objects.Book) (objects.Book, error) {

	book.ID = primitive.NewObjectID()
	s.book = &book

	return book, nil
}

func (s *singleBookStore) GetByID(_ context.Context, bookID string) (objects.Book, error) {

	if s.book == nil || s.book.GetID() != bookID {
		return objects.Book{}, errors.ObjectIDNotFoundError.New(bookID)
	}

	return *s.book, nil
}

func (s *singleBookStore) Search(_ context.Context, opt books.ListOption) (models.PaginationData[objects.Book], error) {

	data := []objects.Book{}
	if s.book != nil {
		data = append(data, *s.book)
	}

	return models.PaginationData[objects.Book]{
		Page:       opt.CurrentPage,
		Limit:      opt.Limit,
		TotalPages: len(data),
		Count:      len(data),
		Data:       data,
	}, nil
}

func (s *singleBookStore) Update(ctx context.Context, bookID string, changes objects.BookChanges) (objects.Book, error) {

	book, err := s.GetByID(ctx, bookID)
	if err != nil {
		return objects.Book{}, err
	}

	updated := changes.Apply(book)
	s.book = &updated

	return updated, nil
}

func (s *singleBookStore) Delete(ctx context.Context, bookID string) (objects.Book, error) {

	book, err := s.GetByID(ctx, bookID)
	if err != nil {
		return objects.Book{}, err
	}

	s.book = nil

	return book, nil
}

type EngineTestSuite struct {
	suite.Suite
	cfg     *env.Env
	store   *singleBookStore
	pingErr error
	g       *gin.Engine
}

func (s *EngineTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *EngineTestSuite) SetupTest() {

	cfg, err := env.Load("")
	s.Require().NoError(err)

	cfg.Server.StaticDir = s.T().TempDir()
	cfg.CORS.Origin = "http://localhost:3000"
	s.Require().NoError(os.WriteFile(filepath.Join(cfg.Server.StaticDir, "books.html"), []byte("<h1>Books</h1>"), 0o600))

	s.cfg = cfg
	s.store = &singleBookStore{}
	s.pingErr = nil
	s.g = s.engine(cfg, nil)
}

func (s *EngineTestSuite) engine(cfg *env.Env, limiter ratelimit.Limiter) *gin.Engine {

	g, err := newEngine(cfg, s.store, func(context.Context) error { return s.pingErr }, limiter)
	s.Require().NoError(err)

	return g
}

func (s *EngineTestSuite) request(g *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	g.ServeHTTP(recorder, req)

	return recorder
}

func (s *EngineTestSuite) decode(recorder *httptest.ResponseRecorder) apis.APIResponse {

	var resp apis.APIResponse
	s.Require().NoError(json.Unmarshal(recorder.Body.Bytes(), &resp))

	return resp
}

func fakeBookBody() map[string]any {

	return map[string]any{
		"name":              gofakeit.BookTitle(),
		"author":            gofakeit.BookAuthor(),
		"yearOfPublication": gofakeit.Year(),
		"price":             gofakeit.Price(1, 100),
		"numberOfPages":     gofakeit.IntRange(1, 1000),
		"condition":         gofakeit.RandomString([]string{"new", "used"}),
	}
}

func (s *EngineTestSuite) TestHealth() {

	s.Run("Should report healthy store", func() {

		recorder := s.request(s.g, http.MethodGet, "/health", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		resp := s.decode(recorder)
		s.Require().True(resp.Success)
		s.Require().Equal(map[string]any{"status": "ok"}, resp.Data)
	})

	s.Run("Should hide store failure details", func() {

		s.pingErr = fmt.Errorf("server selection timeout")

		recorder := s.request(s.g, http.MethodGet, "/health", nil)
		s.Require().Equal(http.StatusInternalServerError, recorder.Code)

		resp := s.decode(recorder)
		s.Require().False(resp.Success)
		s.Require().Equal(errors.UnknownError.New().Message, resp.Message)
		s.Require().NotContains(recorder.Body.String(), "server selection")
	})
}

func (s *EngineTestSuite) TestNoRoute() {

	recorder := s.request(s.g, http.MethodGet, "/api/book/unknown", nil)
	s.Require().Equal(http.StatusNotFound, recorder.Code)

	resp := s.decode(recorder)
	s.Require().False(resp.Success)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
	s.Require().Nil(resp.Data)
	s.Require().Equal(errors.RouteNotFoundError.New(http.MethodGet, "/api/book/unknown").Message, resp.Message)
}

func (s *EngineTestSuite) TestBookRoutes() {

	recorder := s.request(s.g, http.MethodPost, "/api/book/create", fakeBookBody())
	s.Require().Equal(http.StatusCreated, recorder.Code)

	created := s.decode(recorder).Data.(map[string]any)
	bookID := created["id"].(string)

	recorder = s.request(s.g, http.MethodGet, "/api/book/getBookById/"+bookID, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)

	recorder = s.request(s.g, http.MethodGet, "/api/book/getAllBooks?page=1&limit=5", nil)
	s.Require().Equal(http.StatusOK, recorder.Code)

	page := s.decode(recorder).Data.(map[string]any)
	s.Require().EqualValues(1, page["totalBooks"])
	s.Require().EqualValues(1, page["currentPage"])

	recorder = s.request(s.g, http.MethodPut, "/api/book/update/"+bookID, map[string]any{"price": 12.5})
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.Require().EqualValues(12.5, s.decode(recorder).Data.(map[string]any)["price"])

	recorder = s.request(s.g, http.MethodDelete, "/api/book/deleteBookById/"+bookID, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)

	recorder = s.request(s.g, http.MethodGet, "/api/book/getBookById/"+bookID, nil)
	s.Require().Equal(http.StatusNotFound, recorder.Code)
}

func (s *EngineTestSuite) TestMiddlewareChain() {

	s.Run("Should set request id and security headers", func() {

		recorder := s.request(s.g, http.MethodGet, "/api/book/getAllBooks", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().NotEmpty(recorder.Header().Get(middleware.RequestIDHeader))
		s.Require().Equal("nosniff", recorder.Header().Get("X-Content-Type-Options"))
		s.Require().Equal("SAMEORIGIN", recorder.Header().Get("X-Frame-Options"))
	})

	s.Run("Should allow the configured origin", func() {

		req := httptest.NewRequest(http.MethodGet, "/api/book/getAllBooks", nil)
		req.Header.Set("Origin", "http://localhost:3000")

		recorder := httptest.NewRecorder()
		s.g.ServeHTTP(recorder, req)

		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal("http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	s.Run("Should reject oversize body", func() {

		body := fakeBookBody()
		body["description"] = strings.Repeat("a", int(s.cfg.Server.BodyLimit))

		recorder := s.request(s.g, http.MethodPost, "/api/book/create", body)
		s.Require().Equal(http.StatusRequestEntityTooLarge, recorder.Code)
		s.Require().Nil(s.store.book)
	})

	s.Run("Should serve static files", func() {

		recorder := s.request(s.g, http.MethodGet, "/public/books.html", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal("<h1>Books</h1>", recorder.Body.String())
	})
}

func (s *EngineTestSuite) TestRateLimit() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter, closeLimiter, err := newLimiter(ctx, s.withRateLimit(2, time.Minute))
	s.Require().NoError(err)
	defer closeLimiter()

	g := s.engine(s.cfg, limiter)

	for i := 0; i < 2; i++ {
		s.Require().Equal(http.StatusOK, s.request(g, http.MethodGet, "/health", nil).Code)
	}

	recorder := s.request(g, http.MethodGet, "/health", nil)
	s.Require().Equal(http.StatusTooManyRequests, recorder.Code)
	s.Require().Equal("60", recorder.Header().Get(middleware.RetryAfterHeader))
	s.Require().False(s.decode(recorder).Success)
}

func (s *EngineTestSuite) TestRateLimitClientIP() {

	healthFrom := func(g *gin.Engine, forwardedFor string) int {

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", forwardedFor)

		recorder := httptest.NewRecorder()
		g.ServeHTTP(recorder, req)

		return recorder.Code
	}

	s.Run("Should limit by socket address when forwarded header is forged", func() {

		g := s.engine(s.cfg, ratelimit.NewMemoryLimiter(1, time.Minute))

		s.Require().Equal(http.StatusOK, healthFrom(g, "10.0.0.0"))
		for i := 1; i < 5; i++ {
			s.Require().Equal(http.StatusTooManyRequests, healthFrom(g, fmt.Sprintf("10.0.0.%d", i)))
		}
	})

	s.Run("Should limit by forwarded address behind a trusted proxy", func() {

		cfg := *s.cfg
		cfg.Server.TrustedProxies = []string{"203.0.113.0/24"}

		g := s.engine(&cfg, ratelimit.NewMemoryLimiter(1, time.Minute))

		s.Require().Equal(http.StatusOK, healthFrom(g, "10.0.0.1"))
		s.Require().Equal(http.StatusOK, healthFrom(g, "10.0.0.2"))
		s.Require().Equal(http.StatusTooManyRequests, healthFrom(g, "10.0.0.1"))
	})

	s.Run("Should reject an invalid trusted proxy", func() {

		cfg := *s.cfg
		cfg.Server.TrustedProxies = []string{"proxy.internal"}

		g, err := newEngine(&cfg, s.store, func(context.Context) error { return nil }, nil)
		s.Require().Error(err)
		s.Require().Nil(g)
	})
}

func (s *EngineTestSuite) TestRateLimitDisabled() {

	cfg := s.withRateLimit(1, time.Minute)
	cfg.RateLimit.Enabled = false

	limiter, closeLimiter, err := newLimiter(context.Background(), cfg)
	s.Require().NoError(err)
	defer closeLimiter()
	s.Require().Nil(limiter)

	g := s.engine(cfg, limiter)
	for i := 0; i < 3; i++ {
		recorder := s.request(g, http.MethodGet, "/health", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Empty(recorder.Header().Get(middleware.RateLimitHeader))
	}
}

func (s *EngineTestSuite) withRateLimit(requests int, window time.Duration) *env.Env {

	cfg := *s.cfg
	cfg.RateLimit = env.RateLimitConfig{Enabled: true, Requests: requests, Window: window, Backend: env.MemoryBackend}

	return &cfg
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
