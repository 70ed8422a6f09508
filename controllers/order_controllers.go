package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/events"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

// CreateOrder -> table-side order; writes the order, its line items and a
// sales fact row
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type itemReq struct {
		ItemName string  `json:"item_name" binding:"required"`
		Quantity int     `json:"quantity" binding:"required"`
		Price    float64 `json:"price"`
	}

	type reqBody struct {
		SessionID   *string   `json:"session_id"`
		TableNumber int       `json:"table_number" binding:"required"`
		Items       []itemReq `json:"items" binding:"required"`
		TotalAmount float64   `json:"total_amount" binding:"required"`
		OrderType   string    `json:"order_type"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(req.Items) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("items must be a non-empty array"))
		return
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDineIn
	}

	// snapshot of the items as sent, kept alongside normalized rows so old
	// receipts survive menu edits
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order := models.Order{
		SessionID:   req.SessionID,
		TableNumber: req.TableNumber,
		TotalAmount: req.TotalAmount,
		OrderType:   req.OrderType,
		Items:       string(itemsJSON),
		Status:      "pending",
		CreatedAt:   time.Now(),
	}

	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for _, item := range req.Items {
		orderItem := models.OrderItem{
			OrderID:  order.ID,
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
		oc.DB.Create(&orderItem)
	}

	sale := models.Sale{
		OrderDate:   time.Now(),
		TotalAmount: req.TotalAmount,
		OrderType:   req.OrderType,
	}
	if err := oc.DB.Create(&sale).Error; err != nil {
		utils.ErrorLogger.Printf("Order %d saved but sales row failed: %v", order.ID, err)
	}

	events.BroadcastOrderCreated(order)
	utils.InfoLogger.Printf("Order %d placed for table %d (%s)",
		order.ID, order.TableNumber, utils.FormatCurrency(order.TotalAmount))

	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", gin.H{
		"order_id": order.ID,
	})
}

// GetOrdersByTable -> history of a table's orders joined with their session
func (oc *OrderController) GetOrdersByTable(c *gin.Context) {
	tableNumber, err := strconv.Atoi(c.Param("table_number"))
	if err != nil || tableNumber <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table number must be a positive integer"))
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").
		Where("table_number = ?", tableNumber).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// attach session start times for the UI's "seated since" column
	type orderWithSession struct {
		models.Order
		SessionStartTime *time.Time `json:"session_start_time,omitempty"`
	}

	result := make([]orderWithSession, 0, len(orders))
	for _, order := range orders {
		row := orderWithSession{Order: order}
		if order.SessionID != nil {
			var session models.OrderSession
			if err := oc.DB.Where("session_id = ?", *order.SessionID).
				First(&session).Error; err == nil {
				row.SessionStartTime = &session.StartTime
			}
		}
		result = append(result, row)
	}

	utils.RespondJSON(c, http.StatusOK, "Orders for table", result)
}

// GetOrderByID -> one order with items
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
