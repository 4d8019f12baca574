// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

const testJWTSecret = "test_secret_with_at_least_32_characters_for_testing"

// testSource is a 12-rating dataset. Book 5 has no ratings.
//
//	U1: 1=8 2=6 3=5
//	U2: 1=9 2=7 4=5
//	U3: 2=4 3=9 4=7
//	U4: 1=3 3=6 4=8
//
// "Dune" anchors on U3, whose only positive neighbor is U4, so the single
// recommendation is book 1 scored 3. "Harry" anchors on U2, whose only
// positive neighbor is U1, so the single recommendation is book 3 scored 5.
func testSource() *recommend.SourceData {
	src := &recommend.SourceData{
		Items: []recommend.ItemRecord{
			{ItemID: "1", Title: "Harry Potter", Author: "J. K. Rowling", Year: "1997", Publisher: "Bloomsbury"},
			{ItemID: "2", Title: "The Hobbit", Author: "J. R. R. Tolkien", Year: "1937", Publisher: "Allen & Unwin"},
			{ItemID: "3", Title: "Dune", Author: "Frank Herbert", Year: "1965", Publisher: "Chilton"},
			{ItemID: "4", Title: "Emma", Author: "Jane Austen", Year: "1815", Publisher: "John Murray"},
			{ItemID: "5", Title: "Unrated Book", Author: "Nobody", Year: "2000", Publisher: "None"},
		},
	}
	ratings := map[string]map[string]int{
		"U1": {"1": 8, "2": 6, "3": 5},
		"U2": {"1": 9, "2": 7, "4": 5},
		"U3": {"2": 4, "3": 9, "4": 7},
		"U4": {"1": 3, "3": 6, "4": 8},
	}
	for _, user := range []string{"U1", "U2", "U3", "U4"} {
		src.Raters = append(src.Raters, recommend.RaterRecord{UserID: user})
		for _, item := range []string{"1", "2", "3", "4"} {
			if rating, ok := ratings[user][item]; ok {
				src.Ratings = append(src.Ratings, recommend.RatingTriple{UserID: user, ItemID: item, Rating: rating})
			}
		}
	}
	return src
}

type staticProvider struct {
	data *recommend.SourceData
}

func (p staticProvider) Load(context.Context) (*recommend.SourceData, error) {
	return p.data, nil
}

// gatedProvider blocks Load until release is closed, signalling started
// on the first call.
type gatedProvider struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedProvider) Load(ctx context.Context) (*recommend.SourceData, error) {
	p.once.Do(func() { close(p.started) })
	select {
	case <-p.release:
		return testSource(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// newTestEngine returns an engine over provider, or testSource when provider
// is nil, built when build is set.
func newTestEngine(t *testing.T, provider recommend.DataProvider, build bool) *recommend.Engine {
	t.Helper()
	if provider == nil {
		provider = staticProvider{data: testSource()}
	}
	cfg := recommend.DefaultConfig()
	cfg.SimilarityWorkers = 2
	cfg.BuildTimeout = 10 * time.Second
	engine, err := recommend.NewEngine(cfg, provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if build {
		if _, err := engine.Build(context.Background()); err != nil {
			t.Fatalf("Build() error = %v", err)
		}
	}
	return engine
}

// mockRebuilder records Rebuild calls and returns canned results.
type mockRebuilder struct {
	mu      sync.Mutex
	engine  *recommend.Engine
	err     error
	trigger string
	calls   int
}

func (m *mockRebuilder) snapshot() (calls int, trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.trigger
}

func (m *mockRebuilder) Rebuild(ctx context.Context, trigger string) (*recommend.Snapshot, error) {
	m.mu.Lock()
	m.calls++
	m.trigger = trigger
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.engine.Build(ctx)
}

// mockPublisher records published rebuild requests.
type mockPublisher struct {
	mu     sync.Mutex
	events []events.RebuildRequested
	err    error
}

func (m *mockPublisher) PublishRebuild(_ context.Context, e events.RebuildRequested) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func testRecommendConfig() *config.RecommendConfig {
	return &config.RecommendConfig{
		Enabled:      true,
		BuildTimeout: 10 * time.Second,
		DefaultK:     10,
		DefaultTopN:  10,
		MaxTopN:      50,
		CacheSize:    100,
		CacheTTL:     time.Minute,
	}
}

type testServer struct {
	engine    *recommend.Engine
	handler   *Handler
	router    http.Handler
	jwt       *auth.JWTManager
	rebuilder *mockRebuilder
}

type serverOptions struct {
	build     bool
	provider  recommend.DataProvider
	publisher RebuildPublisher
	noAuth    bool
	chiConfig *ChiMiddlewareConfig
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	engine := newTestEngine(t, opts.provider, opts.build)
	rebuilder := &mockRebuilder{engine: engine}
	handler := NewHandler(engine, rebuilder, opts.publisher, testRecommendConfig())
	t.Cleanup(handler.Close)
	engine.OnPublish(handler.OnSnapshotPublished)

	var jwtManager *auth.JWTManager
	if !opts.noAuth {
		var err error
		jwtManager, err = auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testJWTSecret, SessionTimeout: time.Hour})
		if err != nil {
			t.Fatalf("NewJWTManager() error = %v", err)
		}
	}

	chiConfig := opts.chiConfig
	if chiConfig == nil {
		chiConfig = DefaultChiMiddlewareConfig()
		chiConfig.CORSAllowedOrigins = []string{"*"}
		chiConfig.RateLimitDisabled = true
	}

	return &testServer{
		engine:    engine,
		handler:   handler,
		router:    NewRouter(handler, NewChiMiddleware(chiConfig), jwtManager).Setup(),
		jwt:       jwtManager,
		rebuilder: rebuilder,
	}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, err := s.jwt.GenerateToken("alice", role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// testEnvelope mirrors APIResponse with a raw payload.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v\ndata: %s", err, env.Data)
	}
}

func errorKind(env testEnvelope) string {
	if env.Error == nil {
		return ""
	}
	details, ok := env.Error.Details.(map[string]interface{})
	if !ok {
		return ""
	}
	kind, _ := details["kind"].(string)
	return kind
}
