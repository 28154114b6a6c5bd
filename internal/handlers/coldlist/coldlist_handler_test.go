package coldlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	vendorHandler "coldlist-service/internal/handlers/vendor"
	"coldlist-service/internal/pkg/lock"
	"coldlist-service/internal/pkg/response"
	"coldlist-service/internal/repository/memory"
	service "coldlist-service/internal/service/coldlist"
	vendorService "coldlist-service/internal/service/vendor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// withIdentity stands in for the auth middleware.
func withIdentity(c *gin.Context) {
	if v := c.GetHeader("X-Identity"); v != "" {
		id, _ := strconv.ParseInt(v, 10, 64)
		c.Set("identity_id", id)
	}
	c.Next()
}

func newRouter() *gin.Engine {
	return newRouterIn(time.UTC)
}

func newRouterIn(loc *time.Location) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := zap.NewNop()

	coldLists := service.NewColdListService(
		store.ColdLists(), store.Vendors(), store.Tasks(),
		lock.NewLocalLocker(time.Second),
		service.Options{Location: loc},
		logger,
	)
	vendors := vendorService.NewVendorService(store.Vendors(), logger)

	h := NewColdListHandler(coldLists)
	vh := vendorHandler.NewVendorHandler(vendors)

	r := gin.New()
	api := r.Group("/api/v1", withIdentity)
	api.POST("/vendors", vh.CreateVendor)
	api.GET("/cold-lists/vendor-contacts-stats", h.GetVendorStats)
	api.POST("/cold-lists", h.CreateColdList)
	api.GET("/cold-lists/:id", h.GetColdList)
	api.POST("/cold-lists/:id/import", h.ImportClients)
	api.POST("/cold-lists/:id/generate-tasks", h.GenerateTasks)
	api.PUT("/cold-lists/:id/contact-client", h.ContactClient)
	api.GET("/cold-lists/:id/daily-contacts", h.GetDailyContacts)

	return r
}

type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func call(t *testing.T, r http.Handler, method, path string, identity int64, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if identity > 0 {
		req.Header.Set("X-Identity", strconv.FormatInt(identity, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func createdID(t *testing.T, env envelope) int64 {
	t.Helper()
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode id: %v", err)
	}
	return out.ID
}

func TestColdListFlow(t *testing.T) {
	r := newRouter()
	const owner = 1

	var vendorIDs []int64
	for _, name := range []string{"Ana", "Bruno"} {
		code, env := call(t, r, http.MethodPost, "/api/v1/vendors", owner, gin.H{"name": name})
		if code != http.StatusCreated {
			t.Fatalf("expected 201 creating vendor, got %d: %s", code, env.Error)
		}
		vendorIDs = append(vendorIDs, createdID(t, env))
	}

	code, env := call(t, r, http.MethodPost, "/api/v1/cold-lists", owner, gin.H{
		"name":               "Leads Q1",
		"project_id":         3,
		"clients_per_day":    10,
		"clients_per_vendor": 10,
		"selected_vendors":   vendorIDs,
		"start_date":         "2024-01-01",
		"end_date":           "2024-01-03",
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201 creating list, got %d: %s", code, env.Error)
	}
	listPath := fmt.Sprintf("/api/v1/cold-lists/%d", createdID(t, env))

	clients := make([]gin.H, 20)
	for i := range clients {
		clients[i] = gin.H{"name": fmt.Sprintf("Client %d", i), "phone": fmt.Sprintf("555-%04d", i)}
	}
	code, env = call(t, r, http.MethodPost, listPath+"/import", owner, gin.H{"clients": clients})
	if code != http.StatusOK {
		t.Fatalf("expected 200 importing, got %d: %s", code, env.Error)
	}

	code, env = call(t, r, http.MethodPost, listPath+"/generate-tasks", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200 generating, got %d: %s", code, env.Error)
	}
	var gen struct {
		TasksGenerated int `json:"tasks_generated"`
		Days           int `json:"days"`
	}
	_ = json.Unmarshal(env.Data, &gen)
	if gen.TasksGenerated != 5 || gen.Days != 3 {
		t.Errorf("expected 5 tasks over 3 days, got %+v", gen)
	}

	t.Run("second generation conflicts", func(t *testing.T) {
		code, env := call(t, r, http.MethodPost, listPath+"/generate-tasks", owner, nil)
		if code != http.StatusConflict || env.Code != "conflict" {
			t.Errorf("expected 409 conflict, got %d %s", code, env.Code)
		}
	})

	t.Run("contact client", func(t *testing.T) {
		code, env := call(t, r, http.MethodPut, listPath+"/contact-client", owner, gin.H{"client_index": 0, "contacted": true})
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", code, env.Error)
		}
		var lead struct {
			Contacted   bool       `json:"contacted"`
			ContactDate *time.Time `json:"contact_date"`
		}
		_ = json.Unmarshal(env.Data, &lead)
		if !lead.Contacted || lead.ContactDate == nil {
			t.Errorf("expected contacted lead with a date, got %+v", lead)
		}
	})

	t.Run("contact index out of range", func(t *testing.T) {
		code, env := call(t, r, http.MethodPut, listPath+"/contact-client", owner, gin.H{"client_index": 99, "contacted": true})
		if code != http.StatusBadRequest || env.Code != "invalid_input" {
			t.Errorf("expected 400 invalid_input, got %d %s", code, env.Code)
		}
	})

	t.Run("contact missing fields", func(t *testing.T) {
		code, _ := call(t, r, http.MethodPut, listPath+"/contact-client", owner, gin.H{"client_index": 1})
		if code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})

	t.Run("daily contacts", func(t *testing.T) {
		code, env := call(t, r, http.MethodGet, listPath+"/daily-contacts?date=2024-01-01", owner, nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", code, env.Error)
		}
		var daily struct {
			Stats struct {
				Total      int `json:"total"`
				Contacted  int `json:"contacted"`
				Percentage int `json:"percentage"`
			} `json:"stats"`
		}
		_ = json.Unmarshal(env.Data, &daily)
		if daily.Stats.Total != 8 || daily.Stats.Contacted != 1 || daily.Stats.Percentage != 13 {
			t.Errorf("unexpected stats %+v", daily.Stats)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		code, _ := call(t, r, http.MethodGet, listPath+"/daily-contacts?date=01-01-2024", owner, nil)
		if code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})

	t.Run("stranger is denied", func(t *testing.T) {
		code, env := call(t, r, http.MethodGet, listPath, 99, nil)
		if code != http.StatusForbidden || env.Code != "permission_denied" {
			t.Errorf("expected 403, got %d %s", code, env.Code)
		}
	})

	t.Run("vendor stats", func(t *testing.T) {
		code, env := call(t, r, http.MethodGet, "/api/v1/cold-lists/vendor-contacts-stats", owner, nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", code, env.Error)
		}
		var report struct {
			Summary struct {
				TotalVendors   int `json:"total_vendors"`
				TotalClients   int `json:"total_clients"`
				TotalContacted int `json:"total_contacted"`
			} `json:"summary"`
		}
		_ = json.Unmarshal(env.Data, &report)
		if report.Summary.TotalVendors != 2 || report.Summary.TotalClients != 20 || report.Summary.TotalContacted != 1 {
			t.Errorf("unexpected summary %+v", report.Summary)
		}
	})
}

func TestColdListHandlerErrors(t *testing.T) {
	r := newRouter()

	t.Run("no identity", func(t *testing.T) {
		code, _ := call(t, r, http.MethodGet, "/api/v1/cold-lists/1", 0, nil)
		if code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		code, _ := call(t, r, http.MethodGet, "/api/v1/cold-lists/abc", 1, nil)
		if code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		code, env := call(t, r, http.MethodGet, "/api/v1/cold-lists/404", 1, nil)
		if code != http.StatusNotFound || env.Code != "not_found" {
			t.Errorf("expected 404 not_found, got %d %s", code, env.Code)
		}
	})

	t.Run("create without vendors", func(t *testing.T) {
		code, _ := call(t, r, http.MethodPost, "/api/v1/cold-lists", 1, gin.H{
			"name":               "x",
			"project_id":         1,
			"clients_per_day":    1,
			"clients_per_vendor": 1,
			"selected_vendors":   []int64{},
			"start_date":         "2024-01-01T00:00:00Z",
			"end_date":           "2024-01-02T00:00:00Z",
		})
		if code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})
}

func TestCreateColdListDates(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	r := newRouterIn(loc)
	const owner = 1

	code, env := call(t, r, http.MethodPost, "/api/v1/vendors", owner, gin.H{"name": "Ana"})
	if code != http.StatusCreated {
		t.Fatalf("expected 201 creating vendor, got %d: %s", code, env.Error)
	}
	vendorID := createdID(t, env)

	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"date only", "2024-01-01", "2024-01-03", http.StatusCreated},
		{"utc midnight keeps its day", "2024-01-01T00:00:00Z", "2024-01-03T00:00:00.000Z", http.StatusCreated},
		{"single day", "2024-01-01", "2024-01-01", http.StatusCreated},
		{"day first", "01/01/2024", "03/01/2024", http.StatusBadRequest},
		{"end before start", "2024-01-03", "2024-01-01", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := call(t, r, http.MethodPost, "/api/v1/cold-lists", owner, gin.H{
				"name":               tc.name,
				"project_id":         1,
				"clients_per_day":    5,
				"clients_per_vendor": 5,
				"selected_vendors":   []int64{vendorID},
				"start_date":         tc.start,
				"end_date":           tc.end,
			})
			if code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, code, env.Error)
			}
			if code != http.StatusCreated {
				return
			}

			var l struct {
				StartDate time.Time `json:"start_date"`
				EndDate   time.Time `json:"end_date"`
			}
			if err := json.Unmarshal(env.Data, &l); err != nil {
				t.Fatalf("failed to decode list: %v", err)
			}
			start, end := l.StartDate.In(loc), l.EndDate.In(loc)
			if start.Format("2006-01-02 15:04") != "2024-01-01 00:00" {
				t.Errorf("expected start at local midnight of 2024-01-01, got %s", start)
			}
			if end.Format("2006-01-02") != tc.end[:10] || end.Hour() != 23 {
				t.Errorf("expected end late on %s, got %s", tc.end[:10], end)
			}
		})
	}
}
