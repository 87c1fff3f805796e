package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/notify"
	"userdir/internal/repository/jsonfile"
	"userdir/internal/service"
	"userdir/internal/upload"
)

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := jsonfile.NewUserRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, repo.Init(context.Background()))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	uploadDir := t.TempDir()
	users := service.NewUserService(repo, notify.Noop{}, logger)
	handler := NewHandler(users, upload.NewReceiver(uploadDir), logger)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, uploadDir
}

func postForm(t *testing.T, router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func postMultipart(t *testing.T, router *gin.Engine, path string, fields map[string]string, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		fileWriter, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fileWriter.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestEntryPagesServed(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/", "/create_user", "/edit_user", "/view_user", "/delete_user"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code, "GET %s", path)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
	}
}

func TestCreateRedirectsAndStoresUpload(t *testing.T) {
	router, uploadDir := setupRouter(t)

	resp := postMultipart(t, router, "/create_user", map[string]string{
		"user-name": "bob",
		"email":     "b@x.com",
		"telephone": "555",
	}, "bob.png", "png bytes")

	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))

	data, err := os.ReadFile(filepath.Join(uploadDir, "bob.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postForm(t, router, "/create_user", url.Values{"user-name": {"alice"}})
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/create_user", url.Values{"user-name": {"alice"}})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "already exists")
}

func TestSearchRendersEditForm(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postMultipart(t, router, "/create_user", map[string]string{
		"user-name": "bob",
		"email":     "b@x.com",
		"telephone": "555",
	}, "bob.png", "png bytes")
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/search_user", url.Values{"username": {"bob"}})
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `value="bob"`)
	assert.Contains(t, body, `value="b@x.com"`)
	assert.Contains(t, body, `value="555"`)
	assert.Contains(t, body, `/uploads/bob.png`)
	assert.Contains(t, body, `name="edit-username" value="bob"`)
}

func TestSearchMissingIsNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postForm(t, router, "/search_user", url.Values{"username": {"nobody"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "User not found")
}

func TestEditWithoutUploadPreservesImage(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postMultipart(t, router, "/create_user", map[string]string{
		"user-name": "bob",
		"email":     "b@x.com",
		"telephone": "555",
	}, "bob.png", "png bytes")
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/edit_user", url.Values{
		"edit-username": {"bob"},
		"user-name":     {"bob"},
		"email":         {"new@x.com"},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/search_user", url.Values{"username": {"bob"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `value="new@x.com"`)
	assert.Contains(t, resp.Body.String(), `/uploads/bob.png`)
}

func TestEditRename(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postForm(t, router, "/create_user", url.Values{"user-name": {"alice"}, "email": {"a@x.com"}})
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/edit_user", url.Values{
		"edit-username": {"alice"},
		"user-name":     {"alice2"},
		"email":         {"a2@x.com"},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/search_user", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = postForm(t, router, "/search_user", url.Values{"username": {"alice2"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `value="a2@x.com"`)
}

func TestEditMissingIsNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postForm(t, router, "/edit_user", url.Values{
		"edit-username": {"nobody"},
		"user-name":     {"nobody"},
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestViewListsAllUsers(t *testing.T) {
	router, _ := setupRouter(t)

	for _, name := range []string{"u1", "u2", "u3"} {
		resp := postForm(t, router, "/create_user", url.Values{"user-name": {name}})
		require.Equal(t, http.StatusSeeOther, resp.Code)
	}

	resp := postForm(t, router, "/view_user", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	for _, name := range []string{"u1", "u2", "u3"} {
		assert.Contains(t, body, "<h2>"+name+"</h2>")
	}
}

func TestDeleteFlow(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postForm(t, router, "/create_user", url.Values{"user-name": {"alice"}})
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = postForm(t, router, "/delete_user", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))

	resp = postForm(t, router, "/delete_user", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = postForm(t, router, "/search_user", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadedImageServedBack(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postMultipart(t, router, "/create_user", map[string]string{
		"user-name": "bob",
	}, "bob.png", "png bytes")
	require.Equal(t, http.StatusSeeOther, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/uploads/bob.png", nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "png bytes", got.Body.String())
}

func TestRequestIDHeaderSet(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, "abc-123", resp.Header().Get("X-Request-ID"))
}
