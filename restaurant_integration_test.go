package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-tables/config"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/qr"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/utils"
)

func TestMain(m *testing.M) {
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type app struct {
	engine *gin.Engine
	hub    *hub.Hub
	tokens *utils.TokenManager
}

func setupApp(t *testing.T) *app {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))

	issuer, err := qr.NewFileIssuer(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		BaseURL:        "http://tables.test",
		GinMode:        gin.TestMode,
		Location:       time.UTC,
		CORSOrigin:     "*",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	h := hub.New()
	tokens := utils.NewTokenManager("integration-secret", time.Hour)

	return &app{
		engine: router.SetupRouter(router.Deps{Config: cfg, DB: db, Hub: h, Tokens: tokens, QR: issuer}),
		hub:    h,
		tokens: tokens,
	}
}

func (a *app) call(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w.Code, resp
}

// TestEndToEndIntegration walks the main flow:
// 1. register + login
// 2. create table
// 3. reserve it
// 4. check availability around the booking
// 5. delete blocked, cancel, delete succeeds
func TestEndToEndIntegration(t *testing.T) {
	a := setupApp(t)

	code, _ := a.call(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Host", "email": "host@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, code)

	code, resp := a.call(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "host@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, code)
	token := resp["token"].(string)

	code, resp = a.call(t, http.MethodPost, "/api/tables", map[string]interface{}{
		"tableNumber": 5, "location": "patio", "capacity": 4,
	}, "")
	require.Equal(t, http.StatusCreated, code)
	tableID := uint(resp["table"].(map[string]interface{})["id"].(float64))

	code, resp = a.call(t, http.MethodPost, "/api/tables/reservations", map[string]interface{}{
		"tableId":         tableID,
		"customerName":    "Alex",
		"customerPhone":   "555-0101",
		"reservationDate": "2030-06-01T19:00:00Z",
		"partySize":       4,
	}, token)
	require.Equal(t, http.StatusCreated, code, resp)
	reservationID := resp["reservation"].(map[string]interface{})["id"]

	code, resp = a.call(t, http.MethodGet, fmt.Sprintf("/api/tables/%d", tableID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "reserved", resp["status"])

	code, resp = a.call(t, http.MethodGet, "/api/tables/availability/check?date=2030-06-01&time=20:00&partySize=2", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), resp["totalAvailable"])

	code, resp = a.call(t, http.MethodDelete, fmt.Sprintf("/api/tables/%d", tableID), nil, "")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []interface{}{reservationID}, resp["reservations"])

	code, _ = a.call(t, http.MethodPut, fmt.Sprintf("/api/tables/reservations/%v/status", reservationID),
		map[string]string{"status": "cancelled"}, token)
	require.Equal(t, http.StatusOK, code)

	code, resp = a.call(t, http.MethodGet, "/api/tables/availability/check?date=2030-06-01&time=20:00&partySize=2", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), resp["totalAvailable"])

	code, _ = a.call(t, http.MethodDelete, fmt.Sprintf("/api/tables/%d", tableID), nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthMetricsAndFallbacks(t *testing.T) {
	a := setupApp(t)

	code, resp := a.call(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", resp["status"])

	code, resp = a.call(t, http.MethodGet, "/api/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", resp["message"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "restaurant_tables_http_requests_total")
}

func TestStaticQRCodes(t *testing.T) {
	a := setupApp(t)

	code, resp := a.call(t, http.MethodPost, "/api/tables", map[string]interface{}{
		"tableNumber": 1, "location": "bar", "capacity": 2,
	}, "")
	require.Equal(t, http.StatusCreated, code)
	filename := resp["table"].(map[string]interface{})["qrCode"].(string)

	req := httptest.NewRequest(http.MethodGet, "/public/qrcodes/"+filename, nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestFloorSocketReceivesTableEvents(t *testing.T) {
	a := setupApp(t)
	srv := httptest.NewServer(a.engine)
	defer srv.Close()

	token, err := a.tokens.GenerateToken(1, "server")
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return a.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	code, _ := a.call(t, http.MethodPost, "/api/tables", map[string]interface{}{
		"tableNumber": 9, "location": "main-dining", "capacity": 6,
	}, "")
	require.Equal(t, http.StatusCreated, code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string `json:"event"`
		Data  struct {
			Table struct {
				TableNumber int `json:"tableNumber"`
			} `json:"table"`
			Stats struct {
				Total int `json:"total"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, hub.EventTableCreate, msg.Event)
	assert.Equal(t, 9, msg.Data.Table.TableNumber)
	assert.Equal(t, 1, msg.Data.Stats.Total)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	assert.Error(t, err)
}
