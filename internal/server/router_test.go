package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/planetsapi/planets/internal/auth"
	"github.com/planetsapi/planets/internal/handler"
	"github.com/planetsapi/planets/internal/handler/dto"
	"github.com/planetsapi/planets/internal/metrics"
	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/repository"
	"github.com/planetsapi/planets/internal/server"
	"github.com/planetsapi/planets/internal/service"
	"github.com/planetsapi/planets/internal/stocks"
	"github.com/planetsapi/planets/internal/testutil"
)

const stockCSV = `Ticker,Date,Adj_Close
AAPL,2020-10-05,116.5
AAPL,2020-10-06,113.16
AAPL,2020-10-07,115.08
DUP,2020-10-07,1
DUP,2020-10-07,2
BAD,2020-10-07,n/a
SHORT,2020-10-07
`

type testApp struct {
	srv     *httptest.Server
	repo    *repository.Repository
	tokens  *auth.TokenIssuer
	metrics *metrics.PrometheusRecorder
}

func newTestApp(t *testing.T, limiter middleware.Limiter) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := testutil.NewRepository(t)

	hasher, err := auth.NewPasswordHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	if err != nil {
		t.Fatalf("NewPasswordHasher failed: %v", err)
	}
	tokens, err := auth.NewTokenIssuer([]byte("router-test-secret-0123456789"), "planets-test", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}
	if _, err := service.Seed(t.Context(), repo, hasher); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	rec := metrics.NewPrometheus()
	csvPath := testutil.WriteFile(t, "all_stocks.csv", stockCSV)
	stockCache := stocks.NewTableCache(stocks.FileLoader(csvPath), time.Minute,
		stocks.WithMetrics(rec), stocks.WithLogger(logger))

	router := server.NewRouter(server.RouterConfig{
		Logger:         logger,
		Metrics:        rec,
		MetricsHandler: rec.Handler(),
		Users:          service.NewUserService(repo, hasher, tokens, rec),
		Planets:        service.NewPlanetService(repo, rec),
		Stocks:         stocks.NewService(stockCache, "2020-10-07"),
		Tokens:         tokens,
		Health: map[string]handler.HealthChecker{
			"database": repo,
			"redis":    nil,
		},
		Limiter:          limiter,
		RateLimitEnabled: limiter != nil,
		IsDevelopment:    true,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, repo: repo, tokens: tokens, metrics: rec}
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testApp) postJSON(t *testing.T, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	return a.do(t, req)
}

func (a *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	resp := a.postForm(t, "/login", url.Values{
		"email":    {service.SeedUserEmail},
		"password": {service.SeedUserPassword},
	}, "")
	expectStatus(t, resp, http.StatusOK)
	return decode[dto.LoginResponse](t, resp).AccessToken
}

func TestRegister(t *testing.T) {
	app := newTestApp(t, nil)
	form := url.Values{
		"email":      {"caroline@example.com"},
		"first_name": {"Caroline"},
		"last_name":  {"Herschel"},
		"password":   {"comets"},
	}

	resp := app.postForm(t, "/register", form, "")
	expectStatus(t, resp, http.StatusCreated)
	if msg := decode[dto.MessageResponse](t, resp).Message; msg != "User created successfully." {
		t.Errorf("unexpected message %q", msg)
	}

	resp = app.postForm(t, "/register", form, "")
	expectStatus(t, resp, http.StatusConflict)
	errResp := decode[dto.ErrorResponse](t, resp)
	if errResp.Message != "That email already exists." || errResp.Code != "EMAIL_EXISTS" {
		t.Errorf("unexpected error %+v", errResp)
	}

	user, err := app.repo.GetUserByEmail(t.Context(), "caroline@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.PasswordHash == "comets" {
		t.Error("password stored in plain text")
	}

	resp = app.postJSON(t, "/register", `{"email":"no-password@example.com"}`, "")
	expectStatus(t, resp, http.StatusBadRequest)
	if code := decode[dto.ErrorResponse](t, resp).Code; code != "MISSING_FIELD" {
		t.Errorf("expected MISSING_FIELD, got %s", code)
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, nil)

	token := app.login(t)
	principal, err := app.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if principal.Subject != service.SeedUserEmail {
		t.Errorf("expected subject %s, got %s", service.SeedUserEmail, principal.Subject)
	}

	resp := app.postJSON(t, "/login", `{"email":"test@test.com","password":"P@ssw0rd"}`, "")
	expectStatus(t, resp, http.StatusOK)
	if msg := decode[dto.LoginResponse](t, resp).Message; msg != "Login succeeded!" {
		t.Errorf("unexpected message %q", msg)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", service.SeedUserEmail, "password"},
		{"unknown email", "nobody@test.com", service.SeedUserPassword},
		{"both wrong", "nobody@test.com", "password"},
		{"empty password", service.SeedUserEmail, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.postForm(t, "/login", url.Values{"email": {tt.email}, "password": {tt.password}}, "")
			expectStatus(t, resp, http.StatusUnauthorized)
			errResp := decode[dto.ErrorResponse](t, resp)
			if errResp.Message != "Bad email or password" {
				t.Errorf("unexpected message %q", errResp.Message)
			}
		})
	}
}

func TestPlanets(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.get(t, "/planets")
	expectStatus(t, resp, http.StatusOK)
	planets := decode[[]dto.PlanetResponse](t, resp)

	want := service.SamplePlanets()
	if len(planets) != len(want) {
		t.Fatalf("expected %d planets, got %d", len(want), len(planets))
	}
	for i, p := range planets {
		w := want[i]
		if p.Name != w.Name || p.Type != w.Type || p.HomeStar != w.HomeStar ||
			p.Mass != w.Mass || p.Radius != w.Radius || p.Distance != w.Distance {
			t.Errorf("planet %d: expected %+v, got %+v", i, w, p)
		}
	}

	resp = app.get(t, "/planet_details/"+strconv.FormatInt(planets[2].ID, 10))
	expectStatus(t, resp, http.StatusOK)
	if got := decode[dto.PlanetResponse](t, resp); got != planets[2] {
		t.Errorf("expected %+v, got %+v", planets[2], got)
	}

	for _, path := range []string{"/planet_details/999", "/planet_details/earth", "/planet_details/-1"} {
		resp := app.get(t, path)
		expectStatus(t, resp, http.StatusNotFound)
		if msg := decode[dto.ErrorResponse](t, resp).Message; msg != "That planet does not exist" {
			t.Errorf("%s: unexpected message %q", path, msg)
		}
	}
}

func TestAddPlanet(t *testing.T) {
	app := newTestApp(t, nil)
	mars := url.Values{
		"planet_name": {"Mars"},
		"planet_type": {"Class K"},
		"home_star":   {"Sol"},
		"mass":        {"6.39e23"},
		"radius":      {"2106"},
		"distance":    {"141.6e6"},
	}

	// Rejected before the handler runs: nothing is stored.
	expectStatus(t, app.postForm(t, "/add_planet", mars, ""), http.StatusUnauthorized)
	expectStatus(t, app.postForm(t, "/add_planet", mars, "not-a-token"), http.StatusUnauthorized)
	if planets, _ := app.repo.ListPlanets(t.Context()); len(planets) != 3 {
		t.Fatalf("unauthorized request changed the table: %d planets", len(planets))
	}

	token := app.login(t)

	resp := app.postForm(t, "/add_planet", mars, token)
	expectStatus(t, resp, http.StatusCreated)
	if msg := decode[dto.MessageResponse](t, resp).Message; msg != "You added a planet" {
		t.Errorf("unexpected message %q", msg)
	}

	resp = app.postForm(t, "/add_planet", mars, token)
	expectStatus(t, resp, http.StatusConflict)
	if msg := decode[dto.ErrorResponse](t, resp).Message; msg != "There is already a planet by that name" {
		t.Errorf("unexpected message %q", msg)
	}

	resp = app.postJSON(t, "/add_planet",
		`{"planet_name":"Jupiter","planet_type":"Class J","home_star":"Sol","mass":"heavy","radius":43441,"distance":483.8e6}`, token)
	expectStatus(t, resp, http.StatusBadRequest)
	if code := decode[dto.ErrorResponse](t, resp).Code; code != "INVALID_NUMBER" {
		t.Errorf("expected INVALID_NUMBER, got %s", code)
	}

	resp = app.postJSON(t, "/add_planet",
		`{"planet_name":"Jupiter","planet_type":"Class J","home_star":"Sol","mass":1.898e27,"radius":43441,"distance":483.8e6}`, token)
	expectStatus(t, resp, http.StatusCreated)

	planets, err := app.repo.ListPlanets(t.Context())
	if err != nil {
		t.Fatalf("ListPlanets failed: %v", err)
	}
	if len(planets) != 5 || planets[4].Name != "Jupiter" || planets[4].Mass != 1.898e27 {
		t.Errorf("unexpected planets after insert: %+v", planets)
	}
}

func TestStocks(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"quote", "/stocks/aapl", http.StatusOK, "This is the page for the aapl ticker, recent price: 115.08"},
		{"unknown ticker", "/stocks/MSFT", http.StatusOK, "Not valid"},
		{"ambiguous", "/stocks/DUP", http.StatusOK, "Not valid"},
		{"malformed price", "/stocks/BAD", http.StatusOK, "Not valid"},
		{"short row", "/stocks/SHORT", http.StatusOK, "Not valid"},
		{"history bad date", "/stocks/AAPL/yesterday", http.StatusOK, "Not valid"},
		{"history empty", "/stocks/AAPL/2020-10-01", http.StatusOK, "Not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.get(t, tt.path)
			expectStatus(t, resp, tt.status)
			if body := readBody(t, resp); body != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, body)
			}
		})
	}

	resp := app.get(t, "/stocks/AAPL/2020-10-07")
	expectStatus(t, resp, http.StatusOK)
	points := decode[[]stocks.Point](t, resp)
	want := []stocks.Point{{Date: "2020-10-05", AdjClose: 116.5}, {Date: "2020-10-06", AdjClose: 113.16}}
	if len(points) != len(want) || points[0] != want[0] || points[1] != want[1] {
		t.Errorf("expected %+v, got %+v", want, points)
	}
}

func TestRateLimit(t *testing.T) {
	app := newTestApp(t, middleware.NewLocalLimiter(0.001, 2))
	form := url.Values{"email": {"nobody@test.com"}, "password": {"x"}}

	expectStatus(t, app.postForm(t, "/login", form, ""), http.StatusUnauthorized)
	expectStatus(t, app.postForm(t, "/login", form, ""), http.StatusUnauthorized)

	resp := app.postForm(t, "/login", form, "")
	expectStatus(t, resp, http.StatusTooManyRequests)
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Other scopes and routes are unaffected.
	expectStatus(t, app.postForm(t, "/register", url.Values{"email": {"new@test.com"}, "password": {"pw"}}, ""), http.StatusCreated)
	expectStatus(t, app.get(t, "/planets"), http.StatusOK)
}

func TestServiceEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	expectStatus(t, app.get(t, "/"), http.StatusOK)
	expectStatus(t, app.get(t, "/healthz"), http.StatusOK)

	resp := app.get(t, "/readyz")
	expectStatus(t, resp, http.StatusOK)
	health := decode[handler.HealthResponse](t, resp)
	if health.Checks["database"] != "ok" || health.Checks["redis"] != "not configured" {
		t.Errorf("unexpected checks %v", health.Checks)
	}

	resp = app.get(t, "/no/such/route")
	expectStatus(t, resp, http.StatusNotFound)
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request ID header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	expectStatus(t, app.get(t, "/stocks/AAPL"), http.StatusOK)
	resp = app.get(t, "/metrics")
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	for _, want := range []string{
		`planets_http_requests_total{method="GET",route="/stocks/{ticker}",status="200"} 1`,
		"planets_stocks_table_loads_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
