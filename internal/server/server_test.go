package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/repository"
	"inkwell/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret-key"

// newTestServer builds a server over an in-memory SQLite database with a
// temporary upload directory and no Redis.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	uploads, err := storage.New(t.TempDir())
	require.NoError(t, err)

	cache.SetClient(nil)

	s := &Server{
		config:   &config.Config{JWTSecret: testSecret},
		db:       db,
		userRepo: repository.NewUserRepository(db),
		postRepo: repository.NewPostRepository(db),
		uploads:  uploads,
	}

	app := fiber.New()
	s.SetupRoutes(app)

	t.Cleanup(func() {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
	})

	return s, app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	_ = resp.Body.Close()
}

// registerAndLogin creates a user and returns its session token and user ID.
func registerAndLogin(t *testing.T, app *fiber.App, username, password string) (string, uint) {
	t.Helper()

	resp := doJSON(t, app, "POST", "/register", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token, "login did not set the session cookie")

	var body struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, username, body.Username)

	return token, body.ID
}

// multipartBody builds a multipart form with the given fields and, when
// filename is non-empty, a single attached file.
func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf, w.FormDataContentType()
}

func doMultipart(t *testing.T, app *fiber.App, method, path string, fields map[string]string, filename string, content []byte, cookie string) *http.Response {
	t.Helper()

	body, contentType := multipartBody(t, fields, filename, content)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
