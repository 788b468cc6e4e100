package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/models"
	"backoffice/services/aggregator"
	"backoffice/services/notification"
	"backoffice/services/tasks"
	"backoffice/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func activityRouter(agg aggregator.AggregationService) *gin.Engine {
	r := gin.New()
	r.GET("/activity", NewActivityHandler(agg).GetActivityHandler)
	return r
}

func TestGetActivityBindsFilters(t *testing.T) {
	agg := &stubAggregator{}
	w := serve(activityRouter(agg), http.MethodGet, "/activity?kind=payment&search=kiota&page=2&pageSize=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	got := agg.got[0]
	if got.Kind != models.KindPayment || got.Search != "kiota" || got.Page != 2 || got.PageSize != 5 {
		t.Errorf("filters = %+v", got)
	}
	if got.SortBy != models.SortByOccurredAt || got.SortDirection != models.SortDesc {
		t.Errorf("omitted fields should keep their defaults: %+v", got)
	}

	var res aggregator.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Page != 2 || res.PageSize != 5 {
		t.Errorf("result = %+v", res)
	}
}

func TestGetActivityInvalidFilter(t *testing.T) {
	agg := &stubAggregator{err: aggregator.ErrInvalidFilter}
	if w := serve(activityRouter(agg), http.MethodGet, "/activity?kind=invoice", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w := serve(activityRouter(&stubAggregator{}), http.MethodGet, "/activity?page=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric page: status = %d, want 400", w.Code)
	}
}

func TestGetActivityReportsEverySourceFailure(t *testing.T) {
	agg := &stubAggregator{err: &aggregator.AggregationError{Causes: []*aggregator.SourceFetchError{
		{Kind: models.KindPayment, Cause: errUpstream},
		{Kind: models.KindToken, Cause: errUpstream},
	}}}
	w := serve(activityRouter(agg), http.MethodGet, "/activity", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var body utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Causes) != 2 || !strings.HasPrefix(body.Causes[0], "payment") {
		t.Errorf("causes = %v", body.Causes)
	}
}

func TestSourceListings(t *testing.T) {
	customers := &stubCustomers{}
	payments := &stubPayments{}
	tokens := &stubTokens{}
	h := NewSourceHandler(aggregator.Sources{
		Customers:     customers,
		Payments:      payments,
		Subscriptions: &stubSubscriptions{},
		Tokens:        tokens,
	})
	r := gin.New()
	r.GET("/customers", h.ListCustomersHandler)
	r.GET("/payments", h.ListPaymentsHandler)
	r.GET("/subscriptions", h.ListSubscriptionsHandler)
	r.GET("/tokens/transactions", h.ListTokenTransactionsHandler)

	if w := serve(r, http.MethodGet, "/customers", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Kiota Tech") {
		t.Fatalf("customers: %d %s", w.Code, w.Body)
	}
	if customers.req.Page != 1 || customers.req.Limit != defaultListLimit {
		t.Errorf("customer request not normalized: %+v", customers.req)
	}

	w := serve(r, http.MethodGet, "/payments?page=3&limit=1000&status=succeeded", "")
	if w.Code != http.StatusOK {
		t.Fatalf("payments: %d", w.Code)
	}
	if payments.req.Limit != maxListLimit || payments.req.Status != "succeeded" || payments.req.Page != 3 {
		t.Errorf("payment request = %+v", payments.req)
	}
	var page models.PaymentPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil || len(page.Items) != 1 {
		t.Errorf("payment page = %+v, err %v", page, err)
	}

	if w := serve(r, http.MethodGet, "/subscriptions", ""); !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("empty listings should encode an empty array: %s", w.Body)
	}

	serve(r, http.MethodGet, "/tokens/transactions?status=completed", "")
	if tokens.req.Status != "" {
		t.Errorf("token listing must not forward a status, got %q", tokens.req.Status)
	}
}

func TestSourceListingFailure(t *testing.T) {
	h := NewSourceHandler(aggregator.Sources{Customers: &stubCustomers{err: errUpstream}})
	r := gin.New()
	r.GET("/customers", h.ListCustomersHandler)
	if w := serve(r, http.MethodGet, "/customers", ""); w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func newNotificationRouter(t *testing.T, repo *memRepo, enq *stubEnqueuer) (*gin.Engine, *notification.DefaultNotificationService, *NotificationHandler) {
	t.Helper()
	svc, err := notification.NewDefaultNotificationService(repo, notification.NewMemoryHub(), nil, nil)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	var queue tasks.Enqueuer
	if enq != nil {
		queue = enq
	}
	h := NewNotificationHandler(svc, queue)
	r := gin.New()
	g := r.Group("/notifications")
	g.GET("", h.ListNotificationsHandler)
	g.GET("/unread-count", h.UnreadCountHandler)
	g.GET("/stream", h.StreamNotifications)
	g.POST("", h.CreateNotificationHandler)
	g.PATCH("/read-all", h.MarkAllNotificationsRead)
	g.PATCH("/:id/read", h.MarkNotificationRead)
	g.DELETE("/:id", h.DeleteNotificationHandler)
	return r, svc, h
}

func unreadCount(t *testing.T, r http.Handler) int {
	t.Helper()
	w := serve(r, http.MethodGet, "/notifications/unread-count", "")
	var body models.UnreadCount
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode unread count: %v", err)
	}
	return body.Count
}

func TestNotificationEndpoints(t *testing.T) {
	repo := &memRepo{items: []models.Notification{
		{ID: "n1", Type: models.NotificationPayment, Title: "Payment received"},
		{ID: "n2", Type: models.NotificationToken, Title: "Tokens purchased"},
		{ID: "n3", Type: models.NotificationInfo, Title: "Welcome", Read: true},
	}}
	r, _, _ := newNotificationRouter(t, repo, nil)

	w := serve(r, http.MethodGet, "/notifications?limit=2", "")
	var items []models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil || len(items) != 2 {
		t.Fatalf("list: %v, %d items", err, len(items))
	}
	if w := serve(r, http.MethodGet, "/notifications?limit=zero", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", w.Code)
	}

	if got := unreadCount(t, r); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}
	if w := serve(r, http.MethodPatch, "/notifications/n1/read", ""); w.Code != http.StatusNoContent {
		t.Errorf("mark read: status = %d", w.Code)
	}
	if got := unreadCount(t, r); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
	if w := serve(r, http.MethodPatch, "/notifications/missing/read", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", w.Code)
	}
	if w := serve(r, http.MethodDelete, "/notifications/n2", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", w.Code)
	}
	if got := unreadCount(t, r); got != 0 {
		t.Errorf("deleting an unread record should lower the count, got %d", got)
	}
	if w := serve(r, http.MethodPatch, "/notifications/read-all", ""); w.Code != http.StatusNoContent {
		t.Errorf("read all: status = %d", w.Code)
	}
}

func TestCreateNotificationInline(t *testing.T) {
	repo := &memRepo{}
	r, _, _ := newNotificationRouter(t, repo, nil)

	w := serve(r, http.MethodPost, "/notifications", `{"type":"warning","title":"Payment failed","message":"Card declined"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var n models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &n); err != nil || n.ID == "" {
		t.Fatalf("created = %+v, err %v", n, err)
	}

	if w := serve(r, http.MethodPost, "/notifications", `{"type":"promo","title":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown type: status = %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/notifications", `{"type":"info"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing title: status = %d", w.Code)
	}
}

func TestCreateNotificationEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	repo := &memRepo{}
	r, _, _ := newNotificationRouter(t, repo, enq)

	w := serve(r, http.MethodPost, "/notifications", `{"type":"info","title":"Nightly sync done"}`)
	if w.Code != http.StatusAccepted || !strings.Contains(w.Body.String(), "task-1") {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if len(enq.drafts) != 1 || len(repo.items) != 0 {
		t.Errorf("draft should be queued, not stored inline")
	}

	enq.err = errUpstream
	if w := serve(r, http.MethodPost, "/notifications", `{"type":"info","title":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("queue failure: status = %d", w.Code)
	}
}

func TestStreamNotifications(t *testing.T) {
	r, svc, h := newNotificationRouter(t, &memRepo{}, nil)
	h.heartbeat = time.Hour
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	next := func(event string) string {
		t.Helper()
		current := ""
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				current = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && current == event:
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		t.Fatalf("stream ended before %q event: %v", event, lines.Err())
		return ""
	}

	next("ready")
	created, err := svc.Create(ctx, models.NotificationDraft{Type: models.NotificationCustomer, Title: "New customer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var got models.Notification
	if err := json.Unmarshal([]byte(next("notification")), &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.ID != created.ID || got.Title != "New customer" {
		t.Errorf("event = %+v", got)
	}
}

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthHandler)
	w := serve(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status"`) {
		t.Errorf("health: %d %s", w.Code, w.Body)
	}
}
