// Package e2e drives the assembled HTTP API in-process: sqlite stands in for
// Postgres and miniredis for Redis, everything else is production wiring.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/app"
	"github.com/you/nirogsvc/internal/infrastructure/auth"
	"github.com/you/nirogsvc/internal/infrastructure/clock"
	"github.com/you/nirogsvc/internal/infrastructure/database"
	"github.com/you/nirogsvc/internal/infrastructure/storage"
	testconfig "github.com/you/nirogsvc/internal/tests/config"
)

// TestServer is a running API backed by in-memory stores.
type TestServer struct {
	Server    *httptest.Server
	Container *app.Container
	DB        *gorm.DB
	Redis     *miniredis.Miniredis
	Clock     *clock.ManagedClock
	Notifier  *RecordingNotifier
}

// NewTestServer builds the full container over sqlite and miniredis and
// starts an HTTP server for it.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testconfig.LoadTestConfig(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cas, err := auth.NewCasbinService(db, cfg.CasbinModelPath)
	if err != nil {
		t.Fatalf("casbin: %v", err)
	}
	if err := cas.SeedDefaultPolicies(zerolog.Nop()); err != nil {
		t.Fatalf("seed policies: %v", err)
	}

	blobs, err := storage.New(cfg.StorageDriver, cfg.StoragePath, "", "", "", cfg.MaxUploadBytes)
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	clk := clock.NewManaged(time.Now().UTC())
	notifier := NewRecordingNotifier()
	container := app.Build(cfg, zerolog.Nop(), app.Infra{
		DB:        db,
		Redis:     rdb,
		Blobs:     blobs,
		Notifier:  notifier,
		Enforcer:  cas.E,
		Clock:     clk,
		Passwords: auth.NewPasswordServiceWithCost(bcrypt.MinCost),
	})

	srv := httptest.NewServer(container.Router)
	ts := &TestServer{
		Server:    srv,
		Container: container,
		DB:        db,
		Redis:     mr,
		Clock:     clk,
		Notifier:  notifier,
	}
	t.Cleanup(func() {
		srv.Close()
		_ = container.Close()
	})
	return ts
}

// URL returns the absolute URL of path.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// NewClient returns a client with its own cookie jar, i.e. its own browser session.
func (ts *TestServer) NewClient(t *testing.T) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Client{
		ts:   ts,
		http: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

// SeedAdmin creates an admin account directly in the store.
func (ts *TestServer) SeedAdmin(t *testing.T, email, phone, password string) *domain.User {
	t.Helper()
	user, _, err := app.SeedAdmin(context.Background(), ts.Container.UserRepo, ts.Container.Passwords, app.AdminSeed{
		Email: email, Phone: phone, Password: password,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return user
}

// Client is a session-holding API client.
type Client struct {
	ts   *TestServer
	http *http.Client
}

// Response is a decoded API response.
type Response struct {
	Status int
	Header http.Header
	Body   map[string]interface{}
	Raw    string
}

// Error returns the {"error"} message, if any.
func (r *Response) Error() string {
	s, _ := r.Body["error"].(string)
	return s
}

// Do sends a request with an optional JSON body.
func (c *Client) Do(t *testing.T, method, path string, body interface{}) *Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, c.ts.URL(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(t, req)
}

// Upload sends a multipart form. files maps field name to file name; each
// file gets a small PDF-like payload.
func (c *Client) Upload(t *testing.T, path string, fields, files map[string]string) *Response {
	t.Helper()
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fmt.Fprintf(fw, "%%PDF-1.4\n%s\n", name)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.ts.URL(path), strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(t, req)
}

func (c *Client) send(t *testing.T, req *http.Request) *Response {
	t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := &Response{Status: resp.StatusCode, Header: resp.Header, Raw: string(raw)}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

// SentMessage is one recorded notification.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// RecordingNotifier captures SMS and email instead of sending them.
type RecordingNotifier struct {
	mu     sync.Mutex
	sms    []SentMessage
	emails []SentMessage
}

// NewRecordingNotifier creates an empty recorder.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// SendSMS implements domain.NotificationService
func (n *RecordingNotifier) SendSMS(to, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, SentMessage{To: to, Body: message})
	return nil
}

// SendEmail implements domain.NotificationService
func (n *RecordingNotifier) SendEmail(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, SentMessage{To: to, Subject: subject, Body: body})
	return nil
}

// SMS returns the recorded text messages.
func (n *RecordingNotifier) SMS() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMessage(nil), n.sms...)
}

// Emails returns the recorded emails.
func (n *RecordingNotifier) Emails() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMessage(nil), n.emails...)
}

var _ domain.NotificationService = (*RecordingNotifier)(nil)
