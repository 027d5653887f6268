package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/careercounsel/internal/accounts"
	"github.com/geocoder89/careercounsel/internal/ai"
	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/cache"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/http/handlers"
	"github.com/geocoder89/careercounsel/internal/http/middlewares"
	"github.com/geocoder89/careercounsel/internal/profiles"
	"github.com/geocoder89/careercounsel/internal/repo/memory"
	"github.com/geocoder89/careercounsel/internal/security"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	mu      sync.Mutex
	actions []string
}

func (n *recordingNotifier) Notify(_ context.Context, username, action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, username+": "+action)
}

type harness struct {
	r        *gin.Engine
	sessions *auth.Manager
	accounts *accounts.Service
	users    *memory.UsersRepo
	projects *memory.ProjectsRepo
	notifier *recordingNotifier
	gateway  *switchableGateway
}

// switchableGateway lets a test change the model answer between requests.
type switchableGateway struct {
	mu   sync.Mutex
	next ai.Gateway
}

func (s *switchableGateway) set(gw ai.Gateway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = gw
}

func (s *switchableGateway) Ask(ctx context.Context, prompt, system string) (string, error) {
	s.mu.Lock()
	gw := s.next
	s.mu.Unlock()
	return gw.Ask(ctx, prompt, system)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	users := memory.NewUsersRepo()
	projects := memory.NewProjectsRepo()
	sessions := auth.NewManager("test-secret", time.Hour, false)
	acc := accounts.NewService(users, security.PlaintextHasher{})
	prof := profiles.NewService(users, nil)
	notifier := &recordingNotifier{}
	gw := &switchableGateway{next: ai.Static{Text: "MATCHED: Python, SQL, Git | MISSING: Docker, Kubernetes, System Design"}}

	authH := handlers.NewAuthHandler(acc, sessions, notifier, nil)
	pages := handlers.NewPagesHandler(sessions, prof, projects, memory.NewEnrollmentsRepo(), nil)
	goals := handlers.NewGoalsHandler(sessions, prof, notifier, nil)
	counselor := handlers.NewCounselorHandler(sessions, prof, gw, nil)
	admin := handlers.NewAdminHandler(sessions, acc, projects, nil)

	r := gin.New()
	r.Use(middlewares.Sessions(sessions))
	r.GET("/", pages.Index)
	r.GET("/signup", authH.SignupPage)
	r.POST("/signup", authH.Signup)
	r.GET("/login", authH.LoginPage)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)

	student := r.Group("/", middlewares.RequireLogin(sessions))
	student.GET("/home", pages.Home)
	student.GET("/setup-goal", goals.SetupGoalPage)
	student.POST("/setup-goal", goals.SetupGoal)
	student.GET("/dashboard", counselor.Dashboard)
	student.POST("/generate-roadmap", counselor.GenerateRoadmap)
	student.POST("/api/chat", counselor.Chat)

	adm := r.Group("/", middlewares.RequireAdmin(sessions))
	adm.GET("/admin/dashboard", admin.Dashboard)
	adm.POST("/admin/create-project", admin.CreateProject)

	return &harness{r: r, sessions: sessions, accounts: acc, users: users, projects: projects, notifier: notifier, gateway: gw}
}

func (h *harness) do(t *testing.T, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.r.ServeHTTP(rec, req)
	return rec
}

func (h *harness) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req, cookie)
}

func (h *harness) loginAs(t *testing.T, username string, isAdmin bool) *http.Cookie {
	t.Helper()
	raw, err := h.sessions.Encode(auth.Session{Username: username, IsAdmin: isAdmin})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: raw}
}

func (h *harness) flashes(t *testing.T, rec *httptest.ResponseRecorder) []auth.Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			s, err := h.sessions.Decode(c.Value)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			return s.Flashes
		}
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func TestSignup(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm(t, "/signup", url.Values{"username": {"alice"}, "password": {"pw1"}, "role": {"student"}}, nil)
	assertRedirect(t, rec, "/login")

	flashes := h.flashes(t, rec)
	if len(flashes) != 1 || flashes[0].Message != "Student account created! Please login." {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
	if len(h.notifier.actions) != 1 || h.notifier.actions[0] != "alice: Registered as student" {
		t.Fatalf("unexpected notifications: %v", h.notifier.actions)
	}

	// signup does not log in
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			s, _ := h.sessions.Decode(c.Value)
			if s.Authenticated() {
				t.Fatalf("signup must not authenticate the session")
			}
		}
	}
}

func TestSignup_Duplicate(t *testing.T) {
	h := newHarness(t)

	if _, err := h.accounts.Create(context.Background(), "alice", "pw1", user.RoleStudent); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := h.postForm(t, "/signup", url.Values{"username": {"alice"}, "password": {"different"}}, nil)
	assertRedirect(t, rec, "/signup")

	flashes := h.flashes(t, rec)
	if len(flashes) != 1 || flashes[0].Message != "Username already exists." {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
	if len(h.notifier.actions) != 0 {
		t.Fatalf("duplicate signup must not notify")
	}
}

func TestSignup_ValidationFlash(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm(t, "/signup", url.Values{"username": {"bob"}, "password": {"pw"}, "role": {"mentor"}}, nil)
	assertRedirect(t, rec, "/signup")

	flashes := h.flashes(t, rec)
	if len(flashes) != 1 || !strings.HasPrefix(flashes[0].Message, "Role must be one of") {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}

func TestSignup_PasswordOverBcryptLimit(t *testing.T) {
	users := memory.NewUsersRepo()
	sessions := auth.NewManager("test-secret", time.Hour, false)
	notifier := &recordingNotifier{}
	acc := accounts.NewService(users, security.BcryptHasher{Cost: bcrypt.MinCost})
	authH := handlers.NewAuthHandler(acc, sessions, notifier, nil)

	r := gin.New()
	r.POST("/signup", authH.Signup)

	// 40 characters pass the form rule but are 80 bytes
	form := url.Values{"username": {"bob"}, "password": {strings.Repeat("é", 40)}}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assertRedirect(t, rec, "/signup")

	h := &harness{sessions: sessions}
	flashes := h.flashes(t, rec)
	if len(flashes) != 1 || flashes[0].Message != "Password must be at most 72 bytes." {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
	if _, err := users.Get(context.Background(), "bob"); err == nil {
		t.Fatalf("user must not be stored")
	}
	if len(notifier.actions) != 0 {
		t.Fatalf("failed signup must not notify")
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.accounts.Create(ctx, "alice", "pw1", user.RoleStudent)
	_, _ = h.accounts.Create(ctx, "root", "pw2", user.RoleAdmin)

	tests := []struct {
		name     string
		form     url.Values
		location string
		flash    string
	}{
		{"student", url.Values{"username": {"alice"}, "password": {"pw1"}, "role": {"student"}}, "/home", ""},
		{"role defaults to student", url.Values{"username": {"alice"}, "password": {"pw1"}}, "/home", ""},
		{"admin", url.Values{"username": {"root"}, "password": {"pw2"}, "role": {"admin"}}, "/admin-dashboard", ""},
		{"role mismatch", url.Values{"username": {"alice"}, "password": {"pw1"}, "role": {"admin"}}, "/login", "This account is not registered as a admin."},
		{"wrong password", url.Values{"username": {"alice"}, "password": {"nope"}, "role": {"student"}}, "/login", "Invalid username or password."},
		{"unknown user", url.Values{"username": {"ghost"}, "password": {"pw1"}}, "/login", "Invalid username or password."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.postForm(t, "/login", tc.form, nil)
			assertRedirect(t, rec, tc.location)

			if tc.flash == "" {
				return
			}
			flashes := h.flashes(t, rec)
			if len(flashes) != 1 || flashes[0].Message != tc.flash {
				t.Fatalf("unexpected flashes: %+v", flashes)
			}
		})
	}
}

func TestIndexRedirects(t *testing.T) {
	h := newHarness(t)

	assertRedirect(t, h.do(t, httptest.NewRequest(http.MethodGet, "/", nil), nil), "/login")
	assertRedirect(t, h.do(t, httptest.NewRequest(http.MethodGet, "/", nil), h.loginAs(t, "alice", false)), "/home")
	assertRedirect(t, h.do(t, httptest.NewRequest(http.MethodGet, "/", nil), h.loginAs(t, "root", true)), "/admin-dashboard")
}

func TestLoginPage_ConsumesFlashes(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm(t, "/login", url.Values{"username": {"ghost"}, "password": {"x"}}, nil)
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}

	page := h.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), cookie)
	if page.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", page.Code)
	}

	var body struct {
		Page    string       `json:"page"`
		Flashes []auth.Flash `json:"flashes"`
	}
	if err := json.Unmarshal(page.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Page != "login" || len(body.Flashes) != 1 || body.Flashes[0].Message != "Invalid username or password." {
		t.Fatalf("unexpected page: %+v", body)
	}
}

func TestSetupGoal(t *testing.T) {
	h := newHarness(t)
	_, _ = h.accounts.Create(context.Background(), "dev", "pw", user.RoleStudent)
	cookie := h.loginAs(t, "dev", false)

	form := url.Values{
		"college":     {"NIT"},
		"education":   {"B.Tech"},
		"cgpa":        {"8.2"},
		"skills":      {"Python, SQL"},
		"target_goal": {"Data Scientist"},
	}
	rec := h.postForm(t, "/setup-goal", form, cookie)
	assertRedirect(t, rec, "/dashboard")

	u, err := h.users.Get(context.Background(), "dev")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.TargetGoal != "Data Scientist" || u.College != "NIT" || u.CGPA != "8.2" {
		t.Fatalf("profile not updated: %+v", u)
	}
	if len(h.notifier.actions) != 1 || h.notifier.actions[0] != "dev: Updated target to Data Scientist" {
		t.Fatalf("unexpected notifications: %v", h.notifier.actions)
	}
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	cookie := h.loginAs(t, "dev", false)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Matching []string `json:"matching_skills"`
		Missing  []string `json:"missing_skills"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if strings.Join(body.Matching, ",") != "Python,SQL,Git" || strings.Join(body.Missing, ",") != "Docker,Kubernetes,System Design" {
		t.Fatalf("unexpected gap: %+v", body)
	}

	h.gateway.set(ai.Static{Text: "no delimiter here"})
	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookie)
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body.Matching[0] != "Check Profile" || body.Missing[0] != "AI Sync Failed" {
		t.Fatalf("expected fallback gap, got %d %+v", rec.Code, body)
	}
}

type countingGateway struct {
	mu    sync.Mutex
	calls int
	next  ai.Gateway
}

func (g *countingGateway) Ask(ctx context.Context, prompt, system string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.next.Ask(ctx, prompt, system)
}

func TestDashboard_GapCache(t *testing.T) {
	sessions := auth.NewManager("test-secret", time.Hour, false)
	users := memory.NewUsersRepo()
	gw := &countingGateway{next: ai.Static{Err: errors.New("overloaded")}}

	counselor := handlers.NewCounselorHandler(sessions, profiles.NewService(users, nil), gw, nil).
		WithGapCache(cache.New[ai.Gap](time.Minute, 8))

	r := gin.New()
	r.GET("/dashboard", counselor.Dashboard)

	raw, _ := sessions.Encode(auth.Session{Username: "dev"})
	get := func() {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: raw})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	// fallbacks are not remembered
	get()
	get()
	if gw.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", gw.calls)
	}

	gw.next = ai.Static{Text: "MATCHED: SQL | MISSING: Tableau"}
	get()
	get()
	if gw.calls != 3 {
		t.Fatalf("expected cached gap after success, got %d calls", gw.calls)
	}
}

func TestGenerateRoadmap(t *testing.T) {
	h := newHarness(t)
	_, _ = h.accounts.Create(context.Background(), "dev", "pw", user.RoleStudent)
	cookie := h.loginAs(t, "dev", false)

	h.gateway.set(ai.Static{Text: "PHASE 1: Foundations"})
	rec := h.do(t, httptest.NewRequest(http.MethodPost, "/generate-roadmap", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	u, _ := h.users.Get(context.Background(), "dev")
	if u.RoadmapText == nil || *u.RoadmapText != "PHASE 1: Foundations" {
		t.Fatalf("roadmap not persisted: %+v", u.RoadmapText)
	}

	h.gateway.set(ai.Static{Err: errors.New("model overloaded")})
	rec = h.do(t, httptest.NewRequest(http.MethodPost, "/generate-roadmap", nil), cookie)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Success || body.Error != "model overloaded" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestChat_DegradesOnAIFailure(t *testing.T) {
	h := newHarness(t)
	cookie := h.loginAs(t, "dev", false)
	h.gateway.set(ai.Static{Err: errors.New("dial tcp 10.0.0.1:443: connect: connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message":"What should I learn?","goal":"SRE"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(t, req, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Response string `json:"response"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !strings.HasPrefix(body.Response, "AI Connection Error: ") || !strings.Contains(body.Response, "connection refused") {
		t.Fatalf("unexpected response %q", body.Response)
	}
}

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t)
	_, _ = h.accounts.Create(context.Background(), "alice", "secret-pw", user.RoleStudent)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), h.loginAs(t, "root", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-pw") {
		t.Fatalf("password leaked in admin view: %s", rec.Body.String())
	}

	var body struct {
		UserCount int `json:"user_count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.UserCount != 1 {
		t.Fatalf("expected 1 user, got %d", body.UserCount)
	}

	assertRedirect(t, h.do(t, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), h.loginAs(t, "alice", false)), "/login")
}

func TestCreateProject_Multipart(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Smart Farming")
	_ = mw.WriteField("problem_statement", "Water waste")
	_ = mw.WriteField("solution_overview", "Soil sensors")
	fw, _ := mw.CreateFormFile("image", "../../etc/my farm.png")
	_, _ = fw.Write([]byte("\x89PNG"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/create-project", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.do(t, req, h.loginAs(t, "root", true))
	assertRedirect(t, rec, "/admin/dashboard")

	list, _ := h.projects.List(context.Background())
	if len(list) != 1 || list[0].ID != 1 || list[0].Title != "Smart Farming" {
		t.Fatalf("unexpected projects: %+v", list)
	}
	if list[0].Image == nil || *list[0].Image != "my_farm.png" {
		t.Fatalf("unexpected image name: %v", list[0].Image)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/logout", nil), h.loginAs(t, "alice", false))
	assertRedirect(t, rec, "/login")

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be expired, got %+v", cleared)
	}
}
