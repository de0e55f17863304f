package site

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"blog/account"
	"blog/config"
	"blog/constants"
	"blog/demo"
	"blog/posts"
	"blog/server"
	"blog/storage"

	"go.uber.org/zap"
)

const demoHost = "me.github.io"

var testAccount = config.Account{Username: "admin", Password: "admin123", DisplayName: "Blog Admin"}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestSite builds a site over store, the same way a fresh page load
// would find it.
func newTestSite(t *testing.T, store storage.Store, envs []config.Environment) http.Handler {
	t.Helper()
	verifier, err := account.NewVerifier(testAccount)
	if err != nil {
		t.Fatal(err)
	}
	demoAPI, err := demo.New(context.Background(), store, verifier, demo.WithLatency(0))
	if err != nil {
		t.Fatal(err)
	}
	if envs == nil {
		envs = config.DefaultEnvironments()
	}
	cfg := &config.Config{Account: testAccount, Environments: envs}
	return New(cfg, store, demoAPI, zap.NewNop().Sugar()).Routes()
}

func send(t *testing.T, h http.Handler, method, target, host string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	req.Host = host
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// post submits a form, expects a redirect and returns the page it points to.
func post(t *testing.T, h http.Handler, target, host string, form url.Values) (*url.URL, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	rr := send(t, h, http.MethodPost, target, host, form)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("POST %s status = %d, expected %d", target, rr.Code, http.StatusSeeOther)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	return loc, page(t, h, loc.RequestURI(), host)
}

func page(t *testing.T, h http.Handler, target, host string) string {
	t.Helper()
	rr := send(t, h, http.MethodGet, target, host, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, expected %d", target, rr.Code, http.StatusOK)
	}
	return rr.Body.String()
}

func login(t *testing.T, h http.Handler, host string) {
	t.Helper()
	loc, _ := post(t, h, "/login", host, url.Values{"username": {"admin"}, "password": {"admin123"}})
	if kind := loc.Query().Get("kind"); kind != "success" {
		t.Fatalf("login notice kind = %q (%s)", kind, loc.Query().Get("notice"))
	}
}

func TestThemeDefaultsToLightAndPersists(t *testing.T) {
	store := newTestStore(t)
	h := newTestSite(t, store, nil)

	if body := page(t, h, "/", demoHost); !strings.Contains(body, `data-theme="light"`) {
		t.Fatalf("fresh page is not light themed")
	}

	post(t, h, "/theme", demoHost, nil)

	reloaded := newTestSite(t, store, nil)
	if body := page(t, reloaded, "/", demoHost); !strings.Contains(body, `data-theme="dark"`) {
		t.Errorf("dark theme did not survive a reload")
	}

	_, body := post(t, reloaded, "/theme", demoHost, nil)
	if !strings.Contains(body, `data-theme="light"`) {
		t.Errorf("second toggle did not go back to light")
	}

	_, body = post(t, reloaded, "/theme", demoHost, url.Values{"theme": {"light"}})
	if !strings.Contains(body, `data-theme="light"`) {
		t.Errorf("explicit theme value was not honoured")
	}
}

func TestDemoLogin(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		password     string
		expectedKind string
		expectedText string
	}{
		{name: "Exact credentials", username: "admin", password: "admin123", expectedKind: "success", expectedText: "Logged in as Blog Admin"},
		{name: "Wrong password", username: "admin", password: "admin", expectedKind: "error", expectedText: "Invalid credentials"},
		{name: "Empty", expectedKind: "error", expectedText: "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestSite(t, newTestStore(t), nil)

			loc, body := post(t, h, "/login", demoHost, url.Values{"username": {tt.username}, "password": {tt.password}})
			if kind := loc.Query().Get("kind"); kind != tt.expectedKind {
				t.Errorf("notice kind = %q, expected %q", kind, tt.expectedKind)
			}
			if !strings.Contains(body, tt.expectedText) {
				t.Errorf("page does not contain %q", tt.expectedText)
			}
		})
	}
}

func TestDemoCreateAndDelete(t *testing.T) {
	store := newTestStore(t)
	h := newTestSite(t, store, nil)

	loc, _ := post(t, h, "/posts", demoHost, url.Values{"title": {"Too early"}, "content": {"x"}})
	if loc.Query().Get("kind") != "error" || !strings.Contains(loc.Query().Get("notice"), "Please login first") {
		t.Fatalf("create without login: notice = %q", loc.Query().Get("notice"))
	}

	login(t, h, demoHost)

	loc, body := post(t, h, "/posts", demoHost, url.Values{
		"title":    {"Hello Go"},
		"content":  {"Some **bold** words"},
		"tags":     {"go, web"},
		"category": {"Notes"},
	})
	if kind := loc.Query().Get("kind"); kind != "success" {
		t.Fatalf("create notice kind = %q (%s)", kind, loc.Query().Get("notice"))
	}
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("post body was not rendered as markdown")
	}

	// A new site over the same store stands in for a page reload.
	reloaded := newTestSite(t, store, nil)
	body = page(t, reloaded, "/", demoHost)
	newAt, oldAt := strings.Index(body, "Hello Go"), strings.Index(body, "Welcome to My Blog")
	if newAt < 0 || oldAt < 0 || newAt > oldAt {
		t.Fatalf("new post is not listed first after reload (new at %d, old at %d)", newAt, oldAt)
	}

	var list []posts.Post
	if _, err := storage.GetJSON(context.Background(), store, constants.KEY_DEMO_POSTS, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Title != "Hello Go" {
		t.Fatalf("stored posts = %+v", list)
	}

	loc, body = post(t, reloaded, "/posts/"+list[0].ID+"/delete", demoHost, nil)
	if kind := loc.Query().Get("kind"); kind != "success" {
		t.Fatalf("delete notice kind = %q (%s)", kind, loc.Query().Get("notice"))
	}
	if strings.Contains(body, "Hello Go") {
		t.Errorf("deleted post is still listed")
	}
	for _, title := range []string{"Welcome to My Blog", "Getting Started with Web Development"} {
		if !strings.Contains(body, title) {
			t.Errorf("delete removed %q too", title)
		}
	}

	loc, _ = post(t, reloaded, "/posts/"+list[0].ID+"/delete", demoHost, nil)
	if loc.Query().Get("kind") != "error" {
		t.Errorf("deleting an unknown post did not report an error")
	}
}

func TestPostHTMLIsNotRendered(t *testing.T) {
	h := newTestSite(t, newTestStore(t), nil)
	login(t, h, demoHost)

	_, body := post(t, h, "/posts", demoHost, url.Values{
		"title":   {"Markup"},
		"content": {"hi <script>alert(document.cookie)</script> <img src=x onerror=alert(1)>\n\n<script>alert(2)</script>"},
	})
	if !strings.Contains(body, "Markup") {
		t.Fatalf("post was not created")
	}
	for _, raw := range []string{"<script", "onerror", "<img"} {
		if strings.Contains(body, raw) {
			t.Errorf("page contains raw %q from post content", raw)
		}
	}
}

func TestDemoEditUsesSharedForm(t *testing.T) {
	h := newTestSite(t, newTestStore(t), nil)
	login(t, h, demoHost)

	if body := page(t, h, "/", demoHost); !strings.Contains(body, "Create post") {
		t.Fatalf("form is not in create mode")
	}

	rr := send(t, h, http.MethodGet, "/posts/1/edit", demoHost, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("edit status = %d", rr.Code)
	}

	body := page(t, h, "/", demoHost)
	if !strings.Contains(body, "Update post") || !strings.Contains(body, `value="Welcome to My Blog"`) {
		t.Fatalf("form is not prefilled for editing")
	}

	_, body = post(t, h, "/posts", demoHost, url.Values{"title": {"Renamed"}, "content": {"Rewritten"}})
	if !strings.Contains(body, "Renamed") || strings.Contains(body, "Welcome to My Blog") {
		t.Errorf("post was not updated in place")
	}
	if !strings.Contains(body, "Create post") {
		t.Errorf("form did not return to create mode")
	}

	send(t, h, http.MethodGet, "/posts/2/edit", demoHost, nil)
	_, body = post(t, h, "/posts/cancel", demoHost, nil)
	if !strings.Contains(body, "Create post") {
		t.Errorf("cancel did not leave edit mode")
	}
}

func TestServerBackend(t *testing.T) {
	verifier, err := account.NewVerifier(testAccount)
	if err != nil {
		t.Fatal(err)
	}
	routes := server.New(verifier, zap.NewNop().Sugar()).Routes()
	var verifyCalls atomic.Int32
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/verify" {
			verifyCalls.Add(1)
		}
		routes.ServeHTTP(w, r)
	}))
	t.Cleanup(apiServer.Close)

	envs := []config.Environment{{Name: "local", Hosts: []string{"localhost"}, APIBaseURL: apiServer.URL}}
	store := newTestStore(t)
	h := newTestSite(t, store, envs)
	const host = "localhost:8080"

	body := page(t, h, "/", host)
	if !strings.Contains(body, "Welcome to My Blog") || strings.Contains(body, "Demo mode") {
		t.Fatalf("page was not served from the API")
	}
	if n := verifyCalls.Load(); n != 0 {
		t.Errorf("session verified %d times without a token", n)
	}

	login(t, h, host)

	// The API server has no verify route, so the check fails and the stored
	// login is kept.
	calls := verifyCalls.Load()
	if body := page(t, h, "/", host); !strings.Contains(body, "Logged in as Blog Admin") {
		t.Errorf("logged in user is not shown")
	}
	if verifyCalls.Load() <= calls {
		t.Errorf("page load did not verify the session")
	}
	if token, err := storage.GetString(context.Background(), store, constants.KEY_AUTH_TOKEN, ""); err != nil || token == "" {
		t.Errorf("token after failed verify = %q, %v", token, err)
	}

	// The API server has no mutation routes.
	loc, _ := post(t, h, "/posts", host, url.Values{"title": {"Nope"}, "content": {"x"}})
	if loc.Query().Get("kind") != "error" {
		t.Errorf("create against the API server did not fail")
	}

	_, body = post(t, h, "/logout", host, nil)
	if strings.Contains(body, "Logged in as") {
		t.Errorf("still logged in after logout")
	}
}

func TestUnreachableAPIShowsEmptyList(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	envs := []config.Environment{{Name: "production", APIBaseURL: dead.URL}}
	h := newTestSite(t, newTestStore(t), envs)

	body := page(t, h, "/", "blog.example.org")
	if !strings.Contains(body, "No posts yet.") {
		t.Errorf("post list did not degrade to empty")
	}
	if !strings.Contains(body, "Failed to load posts") {
		t.Errorf("no error banner shown")
	}
}

func TestAssets(t *testing.T) {
	h := newTestSite(t, newTestStore(t), nil)

	body := page(t, h, "/assets/css/main.css", demoHost)
	if !strings.Contains(body, `[data-theme="dark"]`) {
		t.Errorf("stylesheet is missing the dark theme")
	}
}
