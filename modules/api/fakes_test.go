package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

const testPassword = "correct-horse"

// mockAuthPort implements auth.AuthPort for testing.
type mockAuthPort struct {
	users             map[string]*user.User
	validateTokenFunc func(ctx context.Context, token string) (user.Identity, error)
}

func newMockAuthPort(emails ...string) *mockAuthPort {
	m := &mockAuthPort{users: make(map[string]*user.User)}
	for _, email := range emails {
		m.users[email] = &user.User{ID: "u-" + strings.Split(email, "@")[0], Email: email, CreatedAt: testNow}
	}
	return m
}

func (m *mockAuthPort) Register(_ context.Context, email, password string) (*user.User, error) {
	if len(password) < 8 {
		return nil, auth.ErrWeakPassword
	}
	if _, ok := m.users[email]; ok {
		return nil, auth.ErrUserExists
	}
	u := &user.User{ID: "u-" + strings.Split(email, "@")[0], Email: email, CreatedAt: testNow}
	m.users[email] = u
	return u, nil
}

func (m *mockAuthPort) Authenticate(_ context.Context, email, password string) (*user.User, error) {
	u, ok := m.users[email]
	if !ok || password != testPassword {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

func (m *mockAuthPort) Login(ctx context.Context, email, password string) (*user.TokenPair, error) {
	u, err := m.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &user.TokenPair{AccessToken: "access-" + u.ID, RefreshToken: "refresh-" + u.ID, ExpiresIn: 900, TokenType: "Bearer"}, nil
}

func (m *mockAuthPort) Refresh(_ context.Context, refreshToken string) (*user.TokenPair, error) {
	if !strings.HasPrefix(refreshToken, "refresh-") {
		return nil, auth.ErrInvalidToken
	}
	id := strings.TrimPrefix(refreshToken, "refresh-")
	return &user.TokenPair{AccessToken: "access-" + id, RefreshToken: refreshToken, ExpiresIn: 900, TokenType: "Bearer"}, nil
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (user.Identity, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	for _, u := range m.users {
		if token == "access-"+u.ID {
			return user.Identity{UserID: u.ID, Email: u.Email}, nil
		}
	}
	return user.Identity{}, auth.ErrInvalidToken
}

func (m *mockAuthPort) GetUser(_ context.Context, userID string) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// fakeTaskPort is an in-memory task.TaskPort with owner checks.
type fakeTaskPort struct {
	mu      sync.Mutex
	seq     int
	tasks   map[string]*domain.Task
	listErr error
}

func newFakeTaskPort() *fakeTaskPort {
	return &fakeTaskPort{tasks: make(map[string]*domain.Task)}
}

// seed stores a task directly, bypassing validation.
func (f *fakeTaskPort) seed(owner, title string, mutate func(*domain.Task)) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &domain.Task{
		ID:        fmt.Sprintf("t%d", f.seq),
		UserID:    owner,
		Title:     title,
		Priority:  domain.PriorityMedium,
		Category:  domain.DefaultCategory,
		CreatedAt: testNow.Add(time.Duration(f.seq) * time.Minute),
	}
	if mutate != nil {
		mutate(t)
	}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeTaskPort) get(id string) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

func (f *fakeTaskPort) owned(owner user.Identity, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != owner.UserID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func validate(in task.TaskInput) (string, domain.Priority, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", "", domain.ErrTitleRequired
	}
	p, err := domain.ParsePriority(in.Priority)
	return title, p, err
}

func (f *fakeTaskPort) CreateTask(_ context.Context, owner user.Identity, in task.TaskInput) (*domain.Task, error) {
	title, p, err := validate(in)
	if err != nil {
		return nil, err
	}
	return f.seed(owner.UserID, title, func(t *domain.Task) {
		t.Priority = p
		t.Description = in.Description
		t.Notes = in.Notes
		if c := strings.TrimSpace(in.Category); c != "" {
			t.Category = c
		}
		t.DueDate = domain.ParseDueDate(in.DueDate)
	}), nil
}

func (f *fakeTaskPort) GetTask(_ context.Context, owner user.Identity, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(owner, id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskPort) UpdateTask(_ context.Context, owner user.Identity, id string, in task.TaskInput) (*domain.Task, error) {
	title, p, err := validate(in)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(owner, id)
	if err != nil {
		return nil, err
	}
	t.Title, t.Priority = title, p
	if due := domain.ParseDueDate(in.DueDate); due != nil {
		t.DueDate = due
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskPort) ToggleTask(_ context.Context, owner user.Identity, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(owner, id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (f *fakeTaskPort) DeleteTask(_ context.Context, owner user.Identity, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(owner, id); err != nil {
		return err
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskPort) ownedBy(owner user.Identity) []*domain.Task {
	var out []*domain.Task
	for _, t := range f.tasks {
		if t.UserID == owner.UserID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeTaskPort) ListTasks(_ context.Context, owner user.Identity, filter domain.Filter) (*task.ListTasksResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	filter = filter.Normalize()
	var out []*domain.Task
	for _, t := range f.ownedBy(owner) {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return &task.ListTasksResponse{Tasks: out, Total: len(out), Filter: filter}, nil
}

func (f *fakeTaskPort) ListCategories(_ context.Context, owner user.Identity) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range f.ownedBy(owner) {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeTaskPort) Stats(_ context.Context, owner user.Identity) (*stats.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := stats.Compute(f.ownedBy(owner), testNow, nil)
	return &r, nil
}

// stubActivityPort returns a fixed feed.
type stubActivityPort struct {
	entries   []activity.Entry
	lastLimit int
}

func (s *stubActivityPort) Recent(_ context.Context, owner user.Identity, limit int) ([]activity.Entry, error) {
	s.lastLimit = limit
	if owner.IsZero() {
		return nil, errors.New("no owner")
	}
	return s.entries, nil
}

type testServer struct {
	app      *fiber.App
	auth     *mockAuthPort
	tasks    *fakeTaskPort
	activity *stubActivityPort
	sessions *session.Store
	cfg      *config.Config
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	s := &testServer{
		auth:     newMockAuthPort("alice@example.com", "bob@example.com"),
		tasks:    newFakeTaskPort(),
		activity: &stubActivityPort{},
		sessions: NewSessionStore(cfg.Session, nil),
		cfg:      cfg,
	}
	h := NewHandlers(s.auth, s.tasks, s.activity, s.sessions, func() time.Time { return testNow })
	s.app = NewApp(cfg.HTTP, h, nil, nil)
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request, cookie *http.Cookie) *http.Response {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

// login signs email in through the form and returns the session cookie.
func (s *testServer) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := s.do(t, formRequest(http.MethodPost, "/login", url.Values{"email": {email}, "password": {testPassword}}), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == s.cfg.Session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie after login")
	return nil
}
