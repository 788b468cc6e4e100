package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"backoffice/database"
	"backoffice/handlers"
	"backoffice/models"
	"backoffice/routes"
	"backoffice/services/aggregator"
	"backoffice/services/notification"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sourceServer serves one page of each listing.
func sourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	created := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	paid := created.Add(time.Hour)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/customers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var customers []models.Customer
		if r.URL.Query().Get("page") == "1" {
			customers = []models.Customer{{ID: "c1", Name: "Banque Atlantique", Type: models.CustomerTypeFinancial, CreatedAt: &created}}
		}
		writeJSON(w, http.StatusOK, models.CustomerPage{Customers: customers})
	})
	mux.HandleFunc("/api/admin/payments", func(w http.ResponseWriter, r *http.Request) {
		req := models.ListRequest{Page: 1, Limit: 50}
		writeJSON(w, http.StatusOK, models.NewPage([]models.Payment{{ID: "p1", CustomerID: "c1", Amount: 250, Currency: "XOF", Status: "succeeded", PaymentDate: &paid}}, 1, req))
	})
	mux.HandleFunc("/api/admin/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.NewPage[models.Subscription](nil, 0, models.ListRequest{Page: 1, Limit: 50}))
	})
	mux.HandleFunc("/api/admin/tokens/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("status") {
			t.Errorf("token listing received a status filter")
		}
		writeJSON(w, http.StatusOK, models.NewPage[models.TokenTransaction](nil, 0, models.ListRequest{Page: 1, Limit: 50}))
	})
	return httptest.NewServer(mux)
}

func TestAggregatorOverClientSources(t *testing.T) {
	srv := sourceServer(t)
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	agg := aggregator.NewAggregator(c.Sources())
	res, err := agg.Aggregate(context.Background(), models.DefaultFilterState())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.TotalCount != 2 {
		t.Fatalf("total = %d, want 2", res.TotalCount)
	}
	if res.Items[0].Kind != models.KindPayment || res.Items[0].CustomerType != models.CustomerTypeFinancial {
		t.Errorf("newest item should be the payment of the financial customer: %+v", res.Items[0])
	}
}

func TestClientReportsUnauthorized(t *testing.T) {
	srv := sourceServer(t)
	defer srv.Close()

	_, err := NewClient(srv.URL, "wrong").Sources().Customers.List(context.Background(), models.ListRequest{Page: 1, Limit: 10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "unauthorized" {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded. Try again later."})
			return
		}
		writeJSON(w, http.StatusOK, models.UnreadCount{Count: 4})
	}))
	defer srv.Close()

	n, err := NewClient(srv.URL, "t").UnreadCount(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("UnreadCount = %d, %v", n, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "t", WithMaxRetries(1)).MarkAllRead(context.Background())
	if err == nil || !strings.Contains(err.Error(), "max retries (1)") {
		t.Fatalf("expected max retries error, got %v", err)
	}
}

func TestClientAPIErrorCarriesCauses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"message": "Failed to load activity",
			"causes":  []string{"payment source: timeout", "token source: timeout"},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "t").Aggregate(context.Background(), models.DefaultFilterState())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.Causes) != 2 {
		t.Fatalf("expected APIError with causes, got %v", err)
	}
}

func TestEventReader(t *testing.T) {
	stream := ": keepalive\n\nevent:ready\ndata:ok\n\nevent: notification\ndata: {\"id\":\"n1\",\ndata: \"title\":\"x\"}\n\ndata:plain\n\n"
	er := newEventReader(strings.NewReader(stream))

	want := []event{
		{Name: "ready", Data: []byte("ok")},
		{Name: "notification", Data: []byte("{\"id\":\"n1\",\n\"title\":\"x\"}")},
		{Name: "message", Data: []byte("plain")},
	}
	for i, w := range want {
		got, err := er.Next()
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if got.Name != w.Name || string(got.Data) != string(w.Data) {
			t.Errorf("event %d = %s %q, want %s %q", i, got.Name, got.Data, w.Name, w.Data)
		}
	}
	if _, err := er.Next(); err == nil {
		t.Errorf("expected EOF")
	}
}

// memRepo is an in-memory NotificationRepository.
type memRepo struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *memRepo) List(_ context.Context, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Notification(nil), r.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) UnreadCount(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Insert(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]models.Notification{n}, r.items...)
	return nil
}

func (r *memRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Read = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *memRepo) MarkAllRead(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// apiServer runs the real admin routes over an in-memory notification feed.
func apiServer(t *testing.T, repo *memRepo) (*httptest.Server, *notification.DefaultNotificationService) {
	t.Helper()
	svc, err := notification.NewDefaultNotificationService(repo, notification.NewMemoryHub(), nil, nil)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	nh := handlers.NewNotificationHandler(svc, nil)
	r := gin.New()
	routes.RegisterRoutes(r, &handlers.HandlerBundle{
		AdminToken:                "secret",
		ListNotificationsHandler:  nh.ListNotificationsHandler,
		UnreadCountHandler:        nh.UnreadCountHandler,
		MarkNotificationRead:      nh.MarkNotificationRead,
		MarkAllNotificationsRead:  nh.MarkAllNotificationsRead,
		DeleteNotificationHandler: nh.DeleteNotificationHandler,
		CreateNotificationHandler: nh.CreateNotificationHandler,
		StreamNotifications:       nh.StreamNotifications,
	})
	return httptest.NewServer(r), svc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChannelOverHTTP(t *testing.T) {
	repo := &memRepo{items: []models.Notification{{ID: "seed", Type: models.NotificationInfo, Title: "Welcome"}}}
	srv, svc := apiServer(t, repo)
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	ch := notification.NewChannel(c, notification.WithSubscribeTimeout(3*time.Second))
	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ch.Mode() != notification.ModeRealTime {
		t.Fatalf("mode = %v, want realtime", ch.Mode())
	}
	if snap := ch.Snapshot(); len(snap.Notifications) != 1 || snap.UnreadCount != 1 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	created, err := svc.Create(context.Background(), models.NotificationDraft{Type: models.NotificationPayment, Title: "Payment received"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitFor(t, "pushed notification", func() bool { return ch.Snapshot().UnreadCount == 2 })
	if got := ch.Snapshot().Notifications[0].ID; got != created.ID {
		t.Errorf("newest id = %q, want %q", got, created.ID)
	}

	if err := ch.MarkAllAsRead(); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}
	waitFor(t, "server-side mark all read", func() bool {
		n, _ := repo.UnreadCount(context.Background())
		return n == 0
	})

	ch.Close()
	for err := range ch.Errors() {
		t.Errorf("unexpected channel error: %v", err)
	}
}

func TestSubscribeRejectedWithoutAuth(t *testing.T) {
	srv, _ := apiServer(t, &memRepo{})
	defer srv.Close()

	_, err := NewClient(srv.URL, "wrong").Subscribe(context.Background(), func(models.Notification) {})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestCreateNotificationOverHTTP(t *testing.T) {
	repo := &memRepo{}
	srv, _ := apiServer(t, repo)
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	res, err := c.CreateNotification(context.Background(), models.NotificationDraft{Type: models.NotificationWarning, Title: "Card declined"})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if res.Notification == nil || res.Notification.ID == "" || res.TaskID != "" {
		t.Fatalf("result = %+v", res)
	}
	if err := c.Delete(context.Background(), res.Notification.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var apiErr *APIError
	if err := c.MarkRead(context.Background(), res.Notification.ID); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %v", err)
	}
}
