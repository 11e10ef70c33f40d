package web

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/amonks/todomvc/session"
	"github.com/amonks/todomvc/todo"
)

const (
	demoEmail    = "johnsmith@outlook.com"
	demoPassword = "J0hn5M1th"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	store   *todo.Store
	handler *Handler
	server  *httptest.Server
	client  *http.Client
	logs    *syncBuffer
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store, err := todo.Open(filepath.Join(t.TempDir(), todo.DefaultFilename), todo.OpenOptions{
		BcryptCost: bcrypt.MinCost,
		SaveDelay:  time.Hour,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	sessions, err := session.NewManager([]byte("test-secret"), session.Options{})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	logs := &syncBuffer{}
	opts.Store = store
	opts.Sessions = sessions
	opts.Logger = log.New(logs, "", 0)
	handler, err := NewHandler(opts)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	t.Cleanup(handler.Close)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{store: store, handler: handler, server: server, client: client, logs: logs}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()

	resp, err := e.client.PostForm(e.server.URL+path, form)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) login(t *testing.T, email, password string) {
	t.Helper()

	resp, body := e.post(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
		"intent":   {"login"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d: %s", resp.StatusCode, body)
	}
}

func (e *testEnv) todoID(t *testing.T, email, title string) string {
	t.Helper()

	user, err := e.store.UserByEmail(email)
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	todos, _, err := e.store.SelectTodos(user.ID)
	if err != nil {
		t.Fatalf("select todos: %v", err)
	}
	for _, item := range todos {
		if item.Title == title {
			return item.ID
		}
	}
	t.Fatalf("no todo titled %q", title)
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return string(body)
}

func requireRedirect(t *testing.T, resp *http.Response, status int, location string) {
	t.Helper()

	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

var draftIDPattern = regexp.MustCompile(`name="id" value="(NEW-[0-9]+)"`)

func draftID(t *testing.T, body string) string {
	t.Helper()

	match := draftIDPattern.FindStringSubmatch(body)
	if match == nil {
		t.Fatalf("no draft id in page: %s", body)
	}
	return match[1]
}

func requireContains(t *testing.T, body string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q, got %s", want, body)
		}
	}
}
