package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipecost/internal/cascade"
	"recipecost/internal/handlers"
	"recipecost/internal/store"
	"recipecost/models"
)

func newServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:server-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Ingredient{}, &models.Recipe{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	db := newServerTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&models.User{Email: "cook@example.com", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	cfg := Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}, Database: db}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() {
		handlers.Configure(nil, nil, nil, nil)
	})

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}
	if srv.httpServer.Handler == nil {
		t.Fatal("expected handler to be configured")
	}

	body, _ := json.Marshal(map[string]string{"email": "cook@example.com", "password": "password123"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "recipecost_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure {
		t.Fatal("expected cookie secure flag to be true")
	}
}

func TestServerHandler(t *testing.T) {
	cfg := Config{Addr: ":9090"}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		handlers.Configure(nil, nil, nil, nil)
	})

	handler := srv.Handler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
}

// TestRecipeCostingFlow drives the stack end to end over HTTP: sign up,
// create an ingredient, build a recipe from it, reprice the ingredient and
// observe the recipe's snapshot catch up.
func TestRecipeCostingFlow(t *testing.T) {
	db := newServerTestDB(t)
	st := store.NewGorm(db)

	cfg := Config{
		Addr:       ":0",
		Database:   db,
		Store:      st,
		Propagator: cascade.New(st, cascade.Synchronous{}),
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() {
		handlers.Configure(nil, nil, nil, nil)
	})

	var sessionCookie *http.Cookie
	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if payload != nil {
			body, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("failed to marshal payload: %v", err)
			}
			req = httptest.NewRequest(method, path, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if sessionCookie != nil {
			req.AddCookie(sessionCookie)
		}
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		for _, cookie := range rr.Result().Cookies() {
			if cookie.Name == "recipecost_session" {
				sessionCookie = cookie
			}
		}
		return rr
	}

	rr := do(http.MethodPost, "/signup", map[string]string{
		"email":    "cook@example.com",
		"password": "password123",
		"name":     "Cook",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 from signup, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(http.MethodPost, "/app/api/ingredients", map[string]any{
		"name": "Flour", "cost": 50, "quantity": 1000, "unit": "g",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 from ingredient create, got %d: %s", rr.Code, rr.Body.String())
	}
	var ingredient struct {
		ID          uint    `json:"id"`
		CostPerUnit float64 `json:"cost_per_unit"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ingredient); err != nil {
		t.Fatalf("failed to decode ingredient: %v", err)
	}
	if ingredient.CostPerUnit != 0.05 {
		t.Fatalf("expected cost per unit 0.05, got %v", ingredient.CostPerUnit)
	}

	rr = do(http.MethodPost, "/app/api/recipes", map[string]any{
		"name":               "Dough",
		"number_of_portions": 4,
		"ingredients": []map[string]any{
			{"ingredient_id": ingredient.ID, "quantity": 200, "unit": "g"},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 from recipe create, got %d: %s", rr.Code, rr.Body.String())
	}
	var recipe struct {
		ID             uint    `json:"id"`
		TotalCost      float64 `json:"total_cost"`
		CostPerPortion float64 `json:"cost_per_portion"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &recipe); err != nil {
		t.Fatalf("failed to decode recipe: %v", err)
	}
	if recipe.TotalCost != 10 || recipe.CostPerPortion != 2.5 {
		t.Fatalf("expected total 10 and cost per portion 2.5, got %+v", recipe)
	}

	// doubling the ingredient price doubles the recipe's snapshot
	rr = do(http.MethodPut, fmt.Sprintf("/app/api/ingredients/%d", ingredient.ID), map[string]any{
		"name": "Flour", "cost": 100, "quantity": 1000, "unit": "g",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from ingredient update, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(http.MethodGet, "/app/api/recipes", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from recipe list, got %d", rr.Code)
	}
	var recipes []struct {
		TotalCost      float64 `json:"total_cost"`
		CostPerPortion float64 `json:"cost_per_portion"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &recipes); err != nil {
		t.Fatalf("failed to decode recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected one recipe, got %d", len(recipes))
	}
	if recipes[0].TotalCost != 20 || recipes[0].CostPerPortion != 5 {
		t.Fatalf("expected repriced total 20 and cost per portion 5, got %+v", recipes[0])
	}
}
