package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eaglebank/account-rest-service/internal/cqrs"
	"github.com/eaglebank/account-rest-service/internal/middleware"
	"github.com/eaglebank/account-rest-service/internal/models"
	"github.com/eaglebank/account-rest-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ---- mock implementations ----

type mockAccountCommander struct {
	createFn func(cqrs.CreateAccountCommand) (*models.Account, error)
	updateFn func(cqrs.UpdateAccountCommand) (*models.Account, error)
	deleteFn func(cqrs.DeleteAccountCommand) error
	deletes  int
}

func (m *mockAccountCommander) CreateAccount(_ context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountCommander) UpdateAccount(_ context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountCommander) DeleteAccount(_ context.Context, cmd cqrs.DeleteAccountCommand) error {
	m.deletes++
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockAccountQuerier struct {
	getFn  func(cqrs.GetAccountQuery) (*models.Account, error)
	listFn func(cqrs.ListAccountsQuery) ([]models.Account, error)
}

func (m *mockAccountQuerier) GetAccount(_ context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountQuerier) ListAccounts(_ context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(cmds AccountCommander, qrys AccountQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(NoMethod)
	r.NoRoute(NoRoute)
	h := NewAccountHandler(cmds, qrys, "")
	requireJSON := middleware.RequireContentType(middleware.MediaTypeJSON)
	r.GET("/health", Health)
	r.GET("/", Index)
	v := r.Group("/accounts")
	v.POST("", requireJSON, h.CreateAccount)
	v.GET("", h.ListAccounts)
	v.GET("/:id", h.GetAccount)
	v.PUT("/:id", requireJSON, h.UpdateAccount)
	v.DELETE("/:id", h.DeleteAccount)
	return r
}

func acctDoRequest(router *gin.Engine, method, url string, body interface{}, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, nil)
	if body != nil {
		var raw string
		if s, ok := body.(string); ok {
			raw = s
		} else {
			b, _ := json.Marshal(body)
			raw = string(b)
		}
		req = httptest.NewRequest(method, url, strings.NewReader(raw))
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

func aTestAccount() *models.Account {
	phone := "555"
	return &models.Account{
		ID: 1, Name: "A", Email: "a@x.com", Address: "1 St",
		PhoneNumber: &phone, DateJoined: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
}

func aValidBody() map[string]interface{} {
	return map[string]interface{}{"name": "A", "email": "a@x.com", "address": "1 St", "phone_number": "555"}
}

func foundFn(q cqrs.GetAccountQuery) (*models.Account, error) {
	if q.AccountID == 1 {
		return aTestAccount(), nil
	}
	return nil, nil
}

// ---- tests ----

func TestHealth(t *testing.T) {
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{})
	w := acctDoRequest(router, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Status != "OK" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestHealth_LogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.LoggingMiddleware(zerolog.New(&buf).Level(zerolog.InfoLevel)))
	r.GET("/health", Health)

	acctDoRequest(r, http.MethodGet, "/health", nil, "")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatal(err)
		}
		if entry["message"] == "Request for health check" {
			if entry["level"] != "info" {
				t.Errorf("expected info level, got %v", entry["level"])
			}
			return
		}
	}
	t.Errorf("health check was not logged: %s", buf.String())
}

func TestIndex(t *testing.T) {
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{})
	w := acctDoRequest(router, http.MethodGet, "/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body IndexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Name != ServiceName || body.Version != ServiceVersion {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		contentType    string
		createFn       func(cqrs.CreateAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "success - create account",
			body:           aValidBody(),
			contentType:    "application/json",
			createFn:       func(cmd cqrs.CreateAccountCommand) (*models.Account, error) { return aTestAccount(), nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{"name": "not enough data"},
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - list instead of object",
			body:           []interface{}{aValidBody()},
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported media type - valid JSON with wrong content type",
			body:           aValidBody(),
			contentType:    "test/html",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "bad request - store rejects the data",
			body:           aValidBody(),
			contentType:    "application/json",
			createFn:       func(cmd cqrs.CreateAccountCommand) (*models.Account, error) { return nil, &pq.Error{Code: "22001"} },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "server error - store unavailable",
			body:           aValidBody(),
			contentType:    "application/json",
			createFn:       func(cmd cqrs.CreateAccountCommand) (*models.Account, error) { return nil, fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{createFn: tt.createFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{})
			w := acctDoRequest(router, http.MethodPost, "/accounts", tt.body, tt.contentType)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateAccount_ResponseAndLocation(t *testing.T) {
	var got cqrs.CreateAccountCommand
	cmds := &mockAccountCommander{createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
		got = cmd
		return aTestAccount(), nil
	}}
	router := newAccountTestRouter(cmds, &mockAccountQuerier{})

	w := acctDoRequest(router, http.MethodPost, "/accounts", aValidBody(), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "http://example.com/accounts/1" {
		t.Errorf("unexpected Location %q", loc)
	}
	if got.Payload.Name != "A" || got.Payload.PhoneNumber == nil || *got.Payload.PhoneNumber != "555" {
		t.Errorf("payload not passed through: %+v", got.Payload)
	}
	var view models.AccountView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != 1 || view.DateJoined != "2024-01-15" || view.Email != "a@x.com" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestCreateAccount_BadRequestNamesField(t *testing.T) {
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{})
	w := acctDoRequest(router, http.MethodPost, "/accounts", map[string]interface{}{"name": "A", "address": "1 St"}, "application/json")

	var body struct {
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "Invalid Account: missing email" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if len(body.Errors) != 1 || body.Errors[0].Field != "email" {
		t.Errorf("unexpected field errors %s", w.Body.String())
	}
}

func TestListAccounts(t *testing.T) {
	tests := []struct {
		name     string
		accounts []models.Account
	}{
		{name: "empty", accounts: []models.Account{}},
		{name: "several", accounts: []models.Account{*aTestAccount(), *aTestAccount(), *aTestAccount()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listFn := func(q cqrs.ListAccountsQuery) ([]models.Account, error) { return tt.accounts, nil }
			router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{listFn: listFn})
			w := acctDoRequest(router, http.MethodGet, "/accounts", nil, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
			}
			var views []models.AccountView
			if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
				t.Fatal(err)
			}
			if views == nil || len(views) != len(tt.accounts) {
				t.Errorf("expected %d accounts, got %s", len(tt.accounts), w.Body.String())
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		getFn          func(cqrs.GetAccountQuery) (*models.Account, error)
		expectedStatus int
	}{
		{name: "success - read account", path: "/accounts/1", getFn: foundFn, expectedStatus: http.StatusOK},
		{name: "not found - id never assigned", path: "/accounts/0", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{name: "not found - non numeric id", path: "/accounts/abc", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{name: "not found - negative id", path: "/accounts/-1", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{name: "not found - signed id", path: "/accounts/+1", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{name: "not found - id above int32", path: "/accounts/3000000000", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{name: "not found - id above int64", path: "/accounts/99999999999999999999", getFn: foundFn, expectedStatus: http.StatusNotFound},
		{
			name:           "server error - store unavailable",
			path:           "/accounts/1",
			getFn:          func(q cqrs.GetAccountQuery) (*models.Account, error) { return nil, fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{getFn: tt.getFn})
			w := acctDoRequest(router, http.MethodGet, tt.path, nil, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetAccount_NotFoundMessage(t *testing.T) {
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{getFn: foundFn})
	w := acctDoRequest(router, http.MethodGet, "/accounts/0", nil, "")
	if !strings.Contains(w.Body.String(), "Account with id [0] could not be found.") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestUpdateAccount(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           interface{}
		contentType    string
		updateFn       func(cqrs.UpdateAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:        "success - update account",
			path:        "/accounts/1",
			body:        map[string]interface{}{"name": "Updated Name", "email": "a@x.com", "address": "1 St"},
			contentType: "application/json",
			updateFn: func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
				a := *cmd.Account
				cmd.Payload.Apply(&a)
				return &a, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - account does not exist",
			path:           "/accounts/0",
			body:           aValidBody(),
			contentType:    "application/json",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unsupported media type - checked before existence",
			path:           "/accounts/0",
			body:           aValidBody(),
			contentType:    "text/plain",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "bad request - invalid payload",
			path:           "/accounts/1",
			body:           `{"name": 42}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "not found - deleted concurrently",
			path:        "/accounts/1",
			body:        aValidBody(),
			contentType: "application/json",
			updateFn: func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
				return nil, repository.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{updateFn: tt.updateFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{getFn: foundFn})
			w := acctDoRequest(router, http.MethodPut, tt.path, tt.body, tt.contentType)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateAccount_KeepsPathIdentifier(t *testing.T) {
	cmds := &mockAccountCommander{updateFn: func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
		a := *cmd.Account
		cmd.Payload.Apply(&a)
		return &a, nil
	}}
	router := newAccountTestRouter(cmds, &mockAccountQuerier{getFn: foundFn})

	body := map[string]interface{}{"id": 77, "name": "Updated Name", "email": "a@x.com", "address": "1 St"}
	w := acctDoRequest(router, http.MethodPut, "/accounts/1", body, "application/json")

	var view models.AccountView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != 1 || view.Name != "Updated Name" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		deleteFn        func(cqrs.DeleteAccountCommand) error
		expectedStatus  int
		expectedDeletes int
	}{
		{
			name:            "success - delete existing account",
			path:            "/accounts/1",
			deleteFn:        func(cmd cqrs.DeleteAccountCommand) error { return nil },
			expectedStatus:  http.StatusNoContent,
			expectedDeletes: 1,
		},
		{
			name:            "success - deleting a missing account is a no-op",
			path:            "/accounts/0",
			expectedStatus:  http.StatusNoContent,
			expectedDeletes: 0,
		},
		{
			name:            "success - id above int32 that does not exist",
			path:            "/accounts/3000000000",
			expectedStatus:  http.StatusNoContent,
			expectedDeletes: 0,
		},
		{
			name:            "server error - store unavailable",
			path:            "/accounts/1",
			deleteFn:        func(cmd cqrs.DeleteAccountCommand) error { return fmt.Errorf("db down") },
			expectedStatus:  http.StatusInternalServerError,
			expectedDeletes: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{deleteFn: tt.deleteFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{getFn: foundFn})
			w := acctDoRequest(router, http.MethodDelete, tt.path, nil, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if cmds.deletes != tt.expectedDeletes {
				t.Errorf("[%s] expected %d deletes, got %d", tt.name, tt.expectedDeletes, cmds.deletes)
			}
			if tt.expectedStatus == http.StatusNoContent && w.Body.Len() != 0 {
				t.Errorf("[%s] expected empty body, got %q", tt.name, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{})
	for _, method := range []string{http.MethodDelete, http.MethodPut} {
		w := acctDoRequest(router, method, "/accounts", nil, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /accounts: expected 405 got %d", method, w.Code)
		}
	}
	w := acctDoRequest(router, http.MethodPost, "/accounts/1", aValidBody(), "application/json")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /accounts/1: expected 405 got %d", w.Code)
	}
}

func TestGetAccount_LargeIdentifierReachesQuery(t *testing.T) {
	var asked int64
	getFn := func(q cqrs.GetAccountQuery) (*models.Account, error) {
		asked = q.AccountID
		return nil, nil
	}
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{getFn: getFn})

	w := acctDoRequest(router, http.MethodGet, "/accounts/3000000000", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if asked != 3000000000 {
		t.Errorf("expected lookup of 3000000000, got %d", asked)
	}
}
