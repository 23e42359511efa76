package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notebin/internal/app"
	"notebin/pkg/domain"
	"notebin/pkg/store"
)

type stubVerifier struct {
	valid string
}

func (v stubVerifier) Verify(orderID, paymentID, signature string) bool {
	return signature == v.valid
}

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()
	sessions, err := store.NewJWTSessionStore("test-secret-0123456789abcdef", time.Hour, store.JWTOptions{})
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	a, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Sessions: sessions,
		Verifier: stubVerifier{valid: "sig-ok"},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return New(Config{App: a}), a
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, h http.Handler, email, username string) (domain.User, string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	decodeBody(t, rec, &resp)
	return resp.User, resp.Token
}

func TestLoginSetsCookieAndMeResolves(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	user, _ := registerUser(t, h, "alice@example.com", "alice")

	rec := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"login":    "alice",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no token cookie set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie attributes: %+v", cookie)
	}

	me := doJSON(t, h, http.MethodGet, "/auth/me", cookie.Value, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me: status %d", me.Code)
	}
	var got domain.User
	decodeBody(t, me, &got)
	if got.ID != user.ID || got.Plan != domain.PlanFree {
		t.Fatalf("me = %+v, want id %s plan free", got, user.ID)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	registerUser(t, h, "alice@example.com", "alice")

	rec := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"login":    "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	missing := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{"login": "alice"})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: status = %d, want 400", missing.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	if rec := doJSON(t, h, http.MethodGet, "/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/auth/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("malformed token: status = %d, want 401", rec.Code)
	}
}

func TestPinForeignFileIsNotFound(t *testing.T) {
	srv, a := newTestServer(t)
	h := srv.Router()
	alice, _ := registerUser(t, h, "alice@example.com", "alice")
	_, bobToken := registerUser(t, h, "bob@example.com", "bob")

	f, err := a.CreateFile(alice, app.CreateFileInput{Name: "note", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := doJSON(t, h, http.MethodPatch, "/files/"+f.ID+"/pin", bobToken, map[string]bool{"pinned": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (not 403)", rec.Code)
	}
}

func TestPinRequiresBoolean(t *testing.T) {
	srv, a := newTestServer(t)
	h := srv.Router()
	alice, token := registerUser(t, h, "alice@example.com", "alice")

	f, err := a.CreateFile(alice, app.CreateFileInput{Name: "note", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := doJSON(t, h, http.MethodPatch, "/files/"+f.ID+"/pin", token, map[string]string{"other": "field"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSharedFolderEndpoint(t *testing.T) {
	srv, a := newTestServer(t)
	h := srv.Router()
	alice, token := registerUser(t, h, "alice@example.com", "alice")

	folder, err := a.CreateFile(alice, app.CreateFileInput{Name: "docs", Type: domain.TypeFolder, Path: "/docs"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	inside, err := a.CreateFile(alice, app.CreateFileInput{Name: "in", Content: "inside", Path: "/docs/sub"})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	outside, err := a.CreateFile(alice, app.CreateFileInput{Name: "out", Content: "outside", Path: "/private"})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	url := fmt.Sprintf("/shared-folder/%s/file/%s", folder.ID, inside.ID)
	if rec := doJSON(t, h, http.MethodGet, url, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unshared folder: status = %d, want 404", rec.Code)
	}

	if rec := doJSON(t, h, http.MethodPost, "/files/"+folder.ID+"/share", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("share: status %d body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodGet, url, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("contained fetch: status %d body %s", rec.Code, rec.Body.String())
	}
	var got domain.File
	decodeBody(t, rec, &got)
	if got.Content != "inside" {
		t.Fatalf("content = %q", got.Content)
	}

	bad := fmt.Sprintf("/shared-folder/%s/file/%s", folder.ID, outside.ID)
	if rec := doJSON(t, h, http.MethodGet, bad, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("escaped fetch: status = %d, want 404", rec.Code)
	}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	registerUser(t, h, "admin@example.com", "admin")
	_, userToken := registerUser(t, h, "user@example.com", "user")

	rec := doJSON(t, h, http.MethodGet, "/admin/users", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status = %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/admin/users", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", rec.Code)
	}
}

func TestAdminSetPlanInvalid(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	_, adminToken := registerUser(t, h, "admin@example.com", "admin")
	target, _ := registerUser(t, h, "user@example.com", "user")

	rec := doJSON(t, h, http.MethodPatch, "/admin/users/"+target.ID+"/plan", adminToken, map[string]string{"plan": "platinum"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	ok := doJSON(t, h, http.MethodPatch, "/admin/users/"+target.ID+"/plan", adminToken, map[string]string{"plan": "premium"})
	if ok.Code != http.StatusOK {
		t.Fatalf("valid plan: status %d body %s", ok.Code, ok.Body.String())
	}
	var updated domain.User
	decodeBody(t, ok, &updated)
	if updated.Plan != domain.PlanPremium {
		t.Fatalf("plan = %q, want premium", updated.Plan)
	}
}

func TestAdminDeleteFilesSelfForbidden(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	admin, adminToken := registerUser(t, h, "admin@example.com", "admin")

	rec := doJSON(t, h, http.MethodDelete, "/admin/users/"+admin.ID+"/delete-files", adminToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	missing := doJSON(t, h, http.MethodDelete, "/admin/users/no-such-user/delete-files", adminToken, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing user: status = %d, want 404", missing.Code)
	}
}

func TestAnonymousUploadAndSharedFetch(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	zero := 0
	rec := doJSON(t, h, http.MethodPost, "/anonymous/files", "", map[string]any{
		"name":        "drop",
		"content":     "payload",
		"expiryHours": &zero,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}
	var f domain.File
	decodeBody(t, rec, &f)
	if f.ShareCode == "" {
		t.Fatal("no share code issued")
	}
	if f.ExpiresAt != nil {
		t.Fatalf("expiresAt = %v, want null for zero hours", f.ExpiresAt)
	}

	shared := doJSON(t, h, http.MethodGet, "/shared/"+f.ShareCode, "", nil)
	if shared.Code != http.StatusOK {
		t.Fatalf("shared fetch: status %d", shared.Code)
	}

	bad := doJSON(t, h, http.MethodPost, "/anonymous/files", "", map[string]string{"name": "x"})
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("missing content: status = %d, want 400", bad.Code)
	}
}

func TestUnshareTwiceReturns200(t *testing.T) {
	srv, a := newTestServer(t)
	h := srv.Router()
	alice, token := registerUser(t, h, "alice@example.com", "alice")

	f, err := a.CreateFile(alice, app.CreateFileInput{Name: "note", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec := doJSON(t, h, http.MethodPost, "/files/"+f.ID+"/share", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("share: status %d", rec.Code)
	}
	for i := 0; i < 2; i++ {
		rec := doJSON(t, h, http.MethodPost, "/files/"+f.ID+"/unshare", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unshare #%d: status = %d, want 200", i+1, rec.Code)
		}
		var got domain.File
		decodeBody(t, rec, &got)
		if got.IsPublic || got.ShareCode != "" {
			t.Fatalf("unshare #%d left sharing state: %+v", i+1, got)
		}
	}
}

func TestPaymentVerify(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	_, token := registerUser(t, h, "payer@example.com", "payer")

	forged := doJSON(t, h, http.MethodPost, "/payments/verify", token, map[string]string{
		"orderId":   "order-1",
		"paymentId": "pay-1",
		"signature": "forged",
		"plan":      "premium",
	})
	if forged.Code != http.StatusBadRequest {
		t.Fatalf("forged: status = %d, want 400", forged.Code)
	}

	ok := doJSON(t, h, http.MethodPost, "/payments/verify", token, map[string]string{
		"orderId":   "order-1",
		"paymentId": "pay-1",
		"signature": "sig-ok",
		"plan":      "premium",
	})
	if ok.Code != http.StatusOK {
		t.Fatalf("valid: status %d body %s", ok.Code, ok.Body.String())
	}

	history := doJSON(t, h, http.MethodGet, "/payments/history", token, nil)
	if history.Code != http.StatusOK {
		t.Fatalf("history: status %d", history.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, history, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
}

func TestDeleteAccountClearsCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	_, token := registerUser(t, h, "gone@example.com", "gone")

	rec := doJSON(t, h, http.MethodDelete, "/user/delete", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cleared)
	}

	// the token still verifies; it is the user record that is gone
	if me := doJSON(t, h, http.MethodGet, "/auth/me", token, nil); me.Code != http.StatusNotFound {
		t.Fatalf("token after delete: status = %d, want 404", me.Code)
	}
}

func TestRegisterShortPasswordIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "tiny@example.com",
		"username": "tiny",
		"password": "tiny",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestAvatarWithoutObjectStorage(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	_, token := registerUser(t, h, "pic@example.com", "pic")

	if rec := doJSON(t, h, http.MethodGet, "/user/avatar", token, nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("get: status = %d, want 503", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/user/avatar", token, nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("post: status = %d, want 503", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
