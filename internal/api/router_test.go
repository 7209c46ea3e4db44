package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/service"
	"github.com/skinscan/api/internal/infrastructure/predictor"
	"github.com/skinscan/api/internal/infrastructure/ratelimit"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	u := *user
	u.ID = "id-" + user.Email
	r.users[user.Email] = u
	return &u, nil
}

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.calls++
	return "echo: " + prompt, nil
}

type testServer struct {
	handler   http.Handler
	generator *countingGenerator
	predicted int
	form      map[string][]string
}

func newTestServer(t *testing.T, authPerMinute int) *testServer {
	t.Helper()
	ts := &testServer{generator: &countingGenerator{}}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.predicted++
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			ts.form = r.MultipartForm.Value
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":"benign","confidence":0.9}`))
	}))
	t.Cleanup(upstream.Close)

	log := zerolog.Nop()
	deps := Dependencies{
		AuthService:    service.NewAuthService(&memoryUserRepo{users: map[string]domain.User{}}, bcrypt.MinCost, log),
		ChatService:    service.NewChatService(ts.generator, "", time.Second, log),
		PredictService: service.NewPredictService(predictor.NewClient(upstream.URL, time.Second), log),
		MaxUploadSize:  "1K",
		Registry:       prometheus.NewRegistry(),
		Logger:         log,
	}
	if authPerMinute > 0 {
		deps.AuthLimiter = ratelimit.NewMemoryLimiter(authPerMinute, time.Minute)
	}
	ts.handler = NewRouter(deps)
	return ts
}

func (ts *testServer) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouter_RegisterTwiceConflicts(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(jsonRequest("/register", `{"email":"a@example.com","password":"secret1"}`))
	if rec.Code != http.StatusCreated || body["email"] != "a@example.com" {
		t.Fatalf("first register: %d %+v", rec.Code, body)
	}

	rec, body = ts.do(jsonRequest("/register", `{"email":"a@example.com","password":"secret2"}`))
	if rec.Code != http.StatusConflict || body["message"] != "User already exists" {
		t.Fatalf("second register: %d %+v", rec.Code, body)
	}
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.do(jsonRequest("/register", `{"email":"a@example.com","password":"secret1"}`))

	wrongRec, wrongBody := ts.do(jsonRequest("/login", `{"email":"a@example.com","password":"nope!!"}`))
	ghostRec, ghostBody := ts.do(jsonRequest("/login", `{"email":"ghost@example.com","password":"secret1"}`))

	if wrongRec.Code != http.StatusUnauthorized || ghostRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongRec.Code, ghostRec.Code)
	}
	if wrongRec.Body.String() != ghostRec.Body.String() {
		t.Fatalf("bodies differ: %+v vs %+v", wrongBody, ghostBody)
	}

	rec, body := ts.do(jsonRequest("/login", `{"email":"a@example.com","password":"secret1"}`))
	if rec.Code != http.StatusOK || body["message"] != "Login successful" {
		t.Fatalf("login: %d %+v", rec.Code, body)
	}
}

func TestRouter_PasswordLengthBoundary(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, _ := ts.do(jsonRequest("/register", `{"email":"five@example.com","password":"12345"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("5-char password: expected 400, got %d", rec.Code)
	}
	rec, _ = ts.do(jsonRequest("/register", `{"email":"six@example.com","password":"123456"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("6-char password: expected 201, got %d", rec.Code)
	}
}

func TestRouter_ChatbotEmptyQueryNeverCallsUpstream(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(jsonRequest("/chatbot", `{"query":""}`))
	if rec.Code != http.StatusBadRequest || body["error"] != "Prompt required" {
		t.Fatalf("expected 400 Prompt required, got %d %+v", rec.Code, body)
	}
	if ts.generator.calls != 0 {
		t.Fatalf("generator called %d times", ts.generator.calls)
	}

	rec, body = ts.do(jsonRequest("/chatbot", `{"query":"hi"}`))
	if rec.Code != http.StatusOK || body["response"] != "echo: hi" {
		t.Fatalf("expected reply, got %d %+v", rec.Code, body)
	}
}

func predictRequest(t *testing.T, withImage bool, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if withImage {
		part, err := w.CreateFormFile("image", "spot.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte("fake-jpeg"))
	}
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRouter_PredictWithoutImageNeverCallsUpstream(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(predictRequest(t, false, map[string]string{"age": "30"}))
	if rec.Code != http.StatusBadRequest || body["error"] != "No image uploaded" {
		t.Fatalf("expected 400 No image uploaded, got %d %+v", rec.Code, body)
	}
	if ts.predicted != 0 {
		t.Fatalf("upstream called %d times", ts.predicted)
	}
}

func TestRouter_PredictForwardsEmptyMetadata(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, _ := ts.do(predictRequest(t, true, map[string]string{"gender": "female"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"prediction":"benign","confidence":0.9}` {
		t.Fatalf("upstream body altered: %s", rec.Body.String())
	}

	want := map[string]string{"age": "", "gender": "female", "weight": "", "lat": "", "lon": ""}
	for k, v := range want {
		if got := ts.form[k]; len(got) != 1 || got[0] != v {
			t.Fatalf("field %s: expected [%q], got %v", k, v, got)
		}
	}
}

func TestRouter_PredictBodyLimit(t *testing.T) {
	ts := newTestServer(t, 0)

	big := strings.Repeat("x", 4096)
	rec, _ := ts.do(predictRequest(t, true, map[string]string{"age": big}))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if ts.predicted != 0 {
		t.Fatalf("upstream called %d times", ts.predicted)
	}
}

func TestRouter_PredictBodyLimitChunked(t *testing.T) {
	ts := newTestServer(t, 0)

	req := predictRequest(t, true, map[string]string{"age": strings.Repeat("x", 4096)})
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	rec, body := ts.do(req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %+v", rec.Code, body)
	}
	if ts.predicted != 0 {
		t.Fatalf("upstream called %d times", ts.predicted)
	}
}

func TestRouter_RegisterLongPasswords(t *testing.T) {
	ts := newTestServer(t, 0)

	for i, password := range []string{strings.Repeat("a", 73), strings.Repeat("é", 40)} {
		email := fmt.Sprintf("long%d@example.com", i)
		payload := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)

		rec, body := ts.do(jsonRequest("/register", payload))
		if rec.Code != http.StatusCreated {
			t.Fatalf("register %d bytes: expected 201, got %d %+v", len(password), rec.Code, body)
		}
		rec, body = ts.do(jsonRequest("/login", payload))
		if rec.Code != http.StatusOK {
			t.Fatalf("login %d bytes: expected 200, got %d %+v", len(password), rec.Code, body)
		}
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	ts := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rec, _ := ts.do(jsonRequest("/login", `{"email":"a@example.com","password":"secret1"}`))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	rec, body := ts.do(jsonRequest("/register", `{"email":"a@example.com","password":"secret1"}`))
	if rec.Code != http.StatusTooManyRequests || body["message"] != "Too many requests" {
		t.Fatalf("expected 429, got %d %+v", rec.Code, body)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected error envelope, got %+v", body)
	}
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("expected ready, got %d %+v", rec.Code, body)
	}
}

func TestRouter_Metrics(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skinscan_http_requests_total") {
		t.Fatalf("expected http request metrics in exposition")
	}
}
