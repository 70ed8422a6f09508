package Controllers_test

import (
	"encoding/json"
	"net/http"
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

func setupTestDBForOrders(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderSession{}, &models.Order{},
		&models.OrderItem{}, &models.Sale{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.GET("/orders/table/:table_number", orderCtrl.GetOrdersByTable)
	return router
}

func TestCreateOrderWritesItemsAndSale(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db)

	svc := services.NewSessionService(db, false)
	session, err := svc.CreateSession(4, 30)
	assert.NoError(t, err)

	w := postJSON(t, router, "POST", "/orders", map[string]interface{}{
		"session_id":   session.SessionID,
		"table_number": 4,
		"items": []map[string]interface{}{
			{"item_name": "Sinigang na Baboy", "quantity": 1, "price": 450.0},
			{"item_name": "Garlic Rice", "quantity": 3, "price": 60.0},
		},
		"total_amount": 630.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orderID := int(resp["data"].(map[string]interface{})["order_id"].(float64))

	var order models.Order
	assert.NoError(t, db.Preload("OrderItems").First(&order, orderID).Error)
	assert.Equal(t, models.OrderTypeDineIn, order.OrderType)
	assert.Len(t, order.OrderItems, 2)
	assert.True(t, json.Valid([]byte(order.Items)))

	// one sales fact per order
	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	assert.Equal(t, int64(1), saleCount)
}

func TestCreateOrderValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db)

	// empty items
	w := postJSON(t, router, "POST", "/orders", map[string]interface{}{
		"table_number": 4,
		"items":        []map[string]interface{}{},
		"total_amount": 100.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing table number
	w = postJSON(t, router, "POST", "/orders", map[string]interface{}{
		"items":        []map[string]interface{}{{"item_name": "Halo-Halo", "quantity": 1}},
		"total_amount": 150.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrdersByTableIncludesSessionStart(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db)

	svc := services.NewSessionService(db, false)
	session, err := svc.CreateSession(9, 30)
	assert.NoError(t, err)

	w := postJSON(t, router, "POST", "/orders", map[string]interface{}{
		"session_id":   session.SessionID,
		"table_number": 9,
		"items":        []map[string]interface{}{{"item_name": "Kare-Kare", "quantity": 1, "price": 520.0}},
		"total_amount": 520.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "GET", "/orders/table/9", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp["data"].([]interface{})
	assert.Len(t, rows, 1)

	row := rows[0].(map[string]interface{})
	startStr, ok := row["session_start_time"].(string)
	assert.True(t, ok, "order must carry its session start time")
	start, err := time.Parse(time.RFC3339, startStr)
	assert.NoError(t, err)
	assert.WithinDuration(t, session.StartTime, start, time.Second)

	// other tables stay empty
	w = postJSON(t, router, "GET", "/orders/table/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["data"].([]interface{}), 0)

	// bad table number
	w = postJSON(t, router, "GET", "/orders/table/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
