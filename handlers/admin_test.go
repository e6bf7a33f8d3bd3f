package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/admin"
	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/config"
	"github.com/ThanimaVITC/thanima-connect/internal/sessions"
	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "hunter2-but-longer"

var adminSecret = []byte("handlers-admin-secret-xxxxxxxxxxxx")

type adminFixture struct {
	router *gin.Engine
	repo   repository.Repository
	blobs  *storage.MemoryStorage
}

func newAdminFixture(t *testing.T, password string) adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo(false)
	blobs := storage.NewMemoryStorage()
	cfg := config.AdminConfig{
		Password:   password,
		SessionTTL: time.Hour,
		CookieName: "admin-auth",
	}
	r := gin.New()
	NewAdminHandler(admin.New(repo, blobs), cfg, adminSecret, 5*time.Second).Register(r)
	return adminFixture{router: r, repo: repo, blobs: blobs}
}

func (f adminFixture) do(method, target string, body io.Reader, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f adminFixture) login(t *testing.T, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"password": {password}}
	return f.do(http.MethodPost, LoginPath, strings.NewReader(form.Encode()), nil)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "admin-auth" {
			return c
		}
	}
	t.Fatalf("no admin-auth cookie in %v", w.Header().Values("Set-Cookie"))
	return nil
}

func (f adminFixture) seed(t *testing.T, name, regNo, resume string) string {
	t.Helper()
	rec := &application.Record{
		Name:                    name,
		RegNo:                   regNo,
		BranchAndYear:           "CSE, 2nd Year",
		Email:                   "a@b.co",
		Phone:                   "9876543210",
		PrimaryPreference:       "Design",
		SecondaryPreference:     "Media",
		DepartmentJustification: "because",
		SkillsAndExperience:     "stuff",
		SubmittedAt:             time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	if resume != "" {
		id, err := f.blobs.Put(context.Background(), resume, strings.NewReader("%PDF-1.4"), 8, "application/pdf")
		require.NoError(t, err)
		rec.ResumeFileID = id
	}
	id, err := f.repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	return id
}

func TestLoginSuccessSetsCookie(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	w := f.login(t, adminPassword)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	assert.NotEqual(t, "true", c.Value)

	dash := f.do(http.MethodGet, "/admin", nil, c)
	assert.Equal(t, http.StatusOK, dash.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	w := f.login(t, "nope")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login?error=Invalid%20password", w.Header().Get("Location"))
	assert.Empty(t, w.Result().Cookies())

	page := f.do(http.MethodGet, "/admin/login?error=Invalid%20password", nil, nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Invalid password")
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	f := newAdminFixture(t, "")
	w := f.login(t, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	forged := &http.Cookie{Name: "admin-auth", Value: "true"}
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/admin"},
		{http.MethodGet, "/api/admin/submissions"},
		{http.MethodGet, "/api/admin/export/csv"},
		{http.MethodGet, "/api/admin/export/files"},
		{http.MethodDelete, "/api/admin/submissions/abc"},
	} {
		for _, c := range []*http.Cookie{nil, forged} {
			w := f.do(tc.method, tc.path, nil, c)
			assert.Equal(t, http.StatusSeeOther, w.Code, tc.path)
			assert.Equal(t, LoginPath, w.Header().Get("Location"), tc.path)
		}
	}
}

func TestListSubmissions(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	f.seed(t, "Jane Doe", "24CSE1234", "")
	f.seed(t, "John Roe", "23BCE0001", "")
	c := sessionCookie(t, f.login(t, adminPassword))

	w := f.do(http.MethodGet, "/api/admin/submissions", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0]["name"])
	assert.NotEmpty(t, got[0]["_id"])
	assert.Equal(t, "2024-07-01T10:00:00.000Z", got[0]["submittedAt"])
}

func TestExportCSV(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	c := sessionCookie(t, f.login(t, adminPassword))

	var empty struct {
		Content string `json:"content"`
	}
	w := f.do(http.MethodGet, "/api/admin/export/csv", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Empty(t, empty.Content)

	f.seed(t, "Doe, Jane", "24CSE1234", "")
	w = f.do(http.MethodGet, "/api/admin/export/csv", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	lines := strings.Split(strings.TrimSpace(resp.Content), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "_id,name,regNo"), lines[0])
	assert.Contains(t, lines[1], `"Doe, Jane"`)
}

func TestExportFiles(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	c := sessionCookie(t, f.login(t, adminPassword))

	f.seed(t, "No Resume", "24CSE0001", "")
	w := f.do(http.MethodGet, "/api/admin/export/files", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var none struct {
		Content string `json:"content"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &none))
	assert.Empty(t, none.Content)
	assert.Equal(t, "No files to download.", none.Error)

	f.seed(t, "Jane Doe", "24CSE1234", "0b6f-cv.pdf")
	w = f.do(http.MethodGet, "/api/admin/export/files", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	raw, err := base64.StdEncoding.DecodeString(resp.Content)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Jane_Doe_24CSE1234.pdf", zr.File[0].Name)
}

func TestDeleteSubmission(t *testing.T) {
	f := newAdminFixture(t, adminPassword)
	c := sessionCookie(t, f.login(t, adminPassword))
	id := f.seed(t, "Jane Doe", "24CSE1234", "0b6f-cv.pdf")

	w := f.do(http.MethodDelete, "/api/admin/submissions/"+id, nil, c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	subs, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)

	w = f.do(http.MethodDelete, "/api/admin/submissions/"+id, nil, c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodDelete, "/api/admin/submissions/not-an-id", nil, c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	f := newAdminFixture(t, adminPassword)
	c := sessionCookie(t, f.login(t, adminPassword))
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/submissions", nil, c).Code)

	out := f.do(http.MethodPost, "/admin/logout", nil, c)
	require.Equal(t, http.StatusSeeOther, out.Code)
	assert.Equal(t, LoginPath, out.Header().Get("Location"))
	cleared := sessionCookie(t, out)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// a copy of the old cookie no longer works
	w := f.do(http.MethodGet, "/api/admin/submissions", nil, c)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}
