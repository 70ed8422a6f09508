package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/controllers"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/services"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
)

func setupTestDBForSessions(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderSession{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func setupSessionRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	svc := services.NewSessionService(db, false)
	sessionCtrl := controllers.NewSessionController(svc)
	router.POST("/order-sessions", sessionCtrl.CreateSession)
	router.PUT("/order-sessions/:session_id", sessionCtrl.ApplyAction)
	router.POST("/order-sessions/:session_id/reset", sessionCtrl.ResetSession)
	router.GET("/order-sessions/:session_id", sessionCtrl.GetSession)
	router.POST("/fix-broken-sessions", sessionCtrl.RepairBrokenSessions)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(payloadBytes)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)
	router := setupSessionRouter(db)

	// Create
	w := postJSON(t, router, "POST", "/order-sessions", map[string]interface{}{
		"table_number": 7,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	data, ok := createResp["data"].(map[string]interface{})
	assert.True(t, ok, "data response must be a map")
	sessionID, ok := data["session_id"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, sessionID)

	// end_time must be RFC3339 with offset, roughly 30 minutes out
	endTimeStr, ok := data["end_time"].(string)
	assert.True(t, ok)
	endTime, err := time.Parse(time.RFC3339, endTimeStr)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), endTime, 10*time.Second)

	// Pause
	url := "/order-sessions/" + sessionID
	w = postJSON(t, router, "PUT", url, map[string]interface{}{"action": "pause"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Status shows the pause flag but an unchanged deadline
	w = postJSON(t, router, "GET", url, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var getResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	getData := getResp["data"].(map[string]interface{})
	session := getData["session"].(map[string]interface{})
	assert.Equal(t, true, session["is_paused"])
	assert.Equal(t, true, getData["is_active"])
	assert.Greater(t, getData["remaining_seconds"].(float64), float64(0))

	// Resume
	w = postJSON(t, router, "PUT", url, map[string]interface{}{"action": "resume"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Reset grants a fresh window
	w = postJSON(t, router, "POST", url+"/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resetResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resetResp))
	resetData := resetResp["data"].(map[string]interface{})
	newEnd, err := time.Parse(time.RFC3339, resetData["new_end_time"].(string))
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), newEnd, 10*time.Second)

	// Stop, then every further mutation conflicts
	w = postJSON(t, router, "PUT", url, map[string]interface{}{"action": "stop"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "PUT", url, map[string]interface{}{"action": "pause"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, router, "POST", url+"/reset", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionBadRequests(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)
	router := setupSessionRouter(db)

	// missing table_number
	w := postJSON(t, router, "POST", "/order-sessions", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// negative duration
	w = postJSON(t, router, "POST", "/order-sessions", map[string]interface{}{
		"table_number":     1,
		"duration_minutes": -5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown action token fails before touching the row
	w = postJSON(t, router, "POST", "/order-sessions", map[string]interface{}{
		"table_number": 1,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	sessionID := createResp["data"].(map[string]interface{})["session_id"].(string)

	w = postJSON(t, router, "PUT", "/order-sessions/"+sessionID, map[string]interface{}{
		"action": "explode",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionNotFound(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)
	router := setupSessionRouter(db)

	w := postJSON(t, router, "GET", "/order-sessions/SESS-MISSING", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, router, "PUT", "/order-sessions/SESS-MISSING", map[string]interface{}{
		"action": "pause",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, router, "POST", "/order-sessions/SESS-MISSING/reset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFixBrokenSessionsEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)
	router := setupSessionRouter(db)

	start := time.Now().Add(-5 * time.Minute)
	broken := models.OrderSession{
		SessionID:   "SESS-HTTPBROKEN",
		TableNumber: 2,
		StartTime:   start,
		EndTime:     start.Add(500 * time.Minute),
	}
	assert.NoError(t, db.Create(&broken).Error)

	w := postJSON(t, router, "POST", "/fix-broken-sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["data"].(map[string]interface{})["fixed_count"])

	// second sweep finds nothing
	w = postJSON(t, router, "POST", "/fix-broken-sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["data"].(map[string]interface{})["fixed_count"])
}
