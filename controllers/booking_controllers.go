package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/events"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Payment deadlines: self-service bookings must pay within 2 hours,
// reservations entered by staff get a full day.
const (
	customerPaymentWindow = 2 * time.Hour
	adminPaymentWindow    = 24 * time.Hour
)

type BookingController struct {
	DB *gorm.DB
}

func NewBookingController(db *gorm.DB) *BookingController {
	return &BookingController{DB: db}
}

// CreateBooking -> customer books an event hall or dine-in slot with an
// optional pre-order
func (bc *BookingController) CreateBooking(c *gin.Context) {
	type reqBody struct {
		UserID         uint            `json:"user_id" binding:"required"`
		BookingType    string          `json:"booking_type" binding:"required"`
		Details        json.RawMessage `json:"details" binding:"required"`
		PreOrder       json.RawMessage `json:"pre_order"`
		TotalAmount    float64         `json:"total_amount" binding:"required"`
		PaymentMethod  string          `json:"payment_method"`
		PaymentDetails json.RawMessage `json:"payment_details"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := bc.DB.First(&customer, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	deadline := time.Now().Add(customerPaymentWindow)
	booking := models.Booking{
		CustomerID:      customer.ID,
		BookingRef:      utils.NewBookingRef(),
		BookingType:     req.BookingType,
		Details:         string(req.Details),
		PreOrder:        string(req.PreOrder),
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  string(req.PaymentDetails),
		PaymentDeadline: deadline,
		Status:          models.BookingStatusPending,
	}

	if err := bc.DB.Create(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastBookingCreated(booking)
	utils.InfoLogger.Printf("Booking %s created for customer %d (%s)",
		booking.BookingRef, customer.ID, booking.BookingType)

	utils.RespondJSON(c, http.StatusCreated, "Booking created successfully", gin.H{
		"booking_ref":      booking.BookingRef,
		"payment_deadline": deadline.Format(time.RFC3339),
	})
}

// reservationView flattens a booking with its customer columns for the
// admin list; the JSON text columns go out raw so clients parse them once.
type reservationView struct {
	ID              uint            `json:"id"`
	BookingRef      string          `json:"booking_ref"`
	BookingType     string          `json:"booking_type"`
	Details         json.RawMessage `json:"details"`
	PreOrder        json.RawMessage `json:"pre_order"`
	TotalAmount     float64         `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDetails  json.RawMessage `json:"payment_details"`
	PaymentDeadline time.Time       `json:"payment_deadline"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact"`
	CustomerEmail   string          `json:"customer_email"`
}

func toReservationView(b models.Booking) reservationView {
	return reservationView{
		ID:              b.ID,
		BookingRef:      b.BookingRef,
		BookingType:     b.BookingType,
		Details:         rawOrEmptyObject(b.Details),
		PreOrder:        rawOrEmptyObject(b.PreOrder),
		TotalAmount:     b.TotalAmount,
		PaymentMethod:   b.PaymentMethod,
		PaymentDetails:  rawOrEmptyObject(b.PaymentDetails),
		PaymentDeadline: b.PaymentDeadline,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		CustomerName:    b.Customer.Fullname,
		CustomerContact: b.Customer.Contact,
		CustomerEmail:   b.Customer.Email,
	}
}

func rawOrEmptyObject(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(s)
}

// GetAllReservations -> every booking with its customer, newest first
func (bc *BookingController) GetAllReservations(c *gin.Context) {
	var bookings []models.Booking
	if err := bc.DB.Preload("Customer").Order("created_at DESC").Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]reservationView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, toReservationView(b))
	}

	utils.RespondJSON(c, http.StatusOK, "List of reservations", views)
}

// GetReservationByID -> detail of one reservation
func (bc *BookingController) GetReservationByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var booking models.Booking
	if err := bc.DB.Preload("Customer").First(&booking, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", toReservationView(booking))
}

// CreateReservation -> staff records a reservation; unknown contacts get a
// walk-in customer account
func (bc *BookingController) CreateReservation(c *gin.Context) {
	type reqBody struct {
		CustomerName    string          `json:"customer_name" binding:"required"`
		CustomerContact string          `json:"customer_contact" binding:"required"`
		CustomerEmail   string          `json:"customer_email"`
		BookingType     string          `json:"booking_type" binding:"required"`
		Details         json.RawMessage `json:"details" binding:"required"`
		PreOrder        json.RawMessage `json:"pre_order"`
		TotalAmount     float64         `json:"total_amount" binding:"required"`
		PaymentMethod   string          `json:"payment_method"`
		PaymentDetails  json.RawMessage `json:"payment_details"`
		Status          string          `json:"status"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Status == "" {
		req.Status = models.BookingStatusConfirmed
	}

	var customer models.Customer
	err := bc.DB.Where("contact = ?", req.CustomerContact).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer, err = bc.createWalkInCustomer(req.CustomerName, req.CustomerContact, req.CustomerEmail)
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	booking := models.Booking{
		CustomerID:      customer.ID,
		BookingRef:      utils.NewBookingRef(),
		BookingType:     req.BookingType,
		Details:         string(req.Details),
		PreOrder:        string(req.PreOrder),
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  string(req.PaymentDetails),
		PaymentDeadline: time.Now().Add(adminPaymentWindow),
		Status:          req.Status,
	}

	if err := bc.DB.Create(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastBookingCreated(booking)

	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", gin.H{
		"booking_ref":    booking.BookingRef,
		"reservation_id": booking.ID,
	})
}

// UpdateReservation -> staff edits booking fields and, when provided, the
// customer's name/contact/email
func (bc *BookingController) UpdateReservation(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	type reqBody struct {
		CustomerName    string          `json:"customer_name"`
		CustomerContact string          `json:"customer_contact"`
		CustomerEmail   string          `json:"customer_email"`
		BookingType     string          `json:"booking_type"`
		Details         json.RawMessage `json:"details"`
		PreOrder        json.RawMessage `json:"pre_order"`
		TotalAmount     *float64        `json:"total_amount"`
		PaymentMethod   string          `json:"payment_method"`
		PaymentDetails  json.RawMessage `json:"payment_details"`
		Status          string          `json:"status"`
		PaymentDeadline *time.Time      `json:"payment_deadline"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var booking models.Booking
	if err := bc.DB.First(&booking, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if req.CustomerName != "" || req.CustomerContact != "" || req.CustomerEmail != "" {
		var customer models.Customer
		if err := bc.DB.First(&customer, booking.CustomerID).Error; err == nil {
			if req.CustomerName != "" {
				customer.Fullname = req.CustomerName
			}
			if req.CustomerContact != "" {
				customer.Contact = req.CustomerContact
			}
			if req.CustomerEmail != "" {
				customer.Email = req.CustomerEmail
			}
			bc.DB.Save(&customer)
		}
	}

	if req.BookingType != "" {
		booking.BookingType = req.BookingType
	}
	if len(req.Details) > 0 {
		booking.Details = string(req.Details)
	}
	if len(req.PreOrder) > 0 {
		booking.PreOrder = string(req.PreOrder)
	}
	if req.TotalAmount != nil {
		booking.TotalAmount = *req.TotalAmount
	}
	if req.PaymentMethod != "" {
		booking.PaymentMethod = req.PaymentMethod
	}
	if len(req.PaymentDetails) > 0 {
		booking.PaymentDetails = string(req.PaymentDetails)
	}
	if req.Status != "" {
		booking.Status = req.Status
	}
	if req.PaymentDeadline != nil {
		booking.PaymentDeadline = *req.PaymentDeadline
	}

	if err := bc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastBookingUpdate(booking)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", gin.H{
		"id": booking.ID,
	})
}

// DeleteReservation -> remove a reservation record
func (bc *BookingController) DeleteReservation(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := bc.DB.Delete(&models.Booking{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation deleted successfully", gin.H{"id": id})
}

// GetReservationStats -> booking counts by status for the dashboard
func (bc *BookingController) GetReservationStats(c *gin.Context) {
	var rows []struct {
		Status string
		Count  int64
	}

	if err := bc.DB.Model(&models.Booking{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	stats := gin.H{
		"pending":   int64(0),
		"confirmed": int64(0),
		"cancelled": int64(0),
		"expired":   int64(0),
		"total":     int64(0),
	}
	var total int64
	for _, row := range rows {
		stats[row.Status] = row.Count
		total += row.Count
	}
	stats["total"] = total

	utils.RespondJSON(c, http.StatusOK, "Reservation stats", stats)
}

func (bc *BookingController) createWalkInCustomer(name, contact, email string) (models.Customer, error) {
	if email == "" {
		email = contact + "@walkin.wanamsabukid.com"
	}

	// random password; walk-in accounts are claimable later via the
	// normal reset flow
	hashed, err := bcrypt.GenerateFromPassword([]byte(utils.NewVerifyToken()), bcrypt.DefaultCost)
	if err != nil {
		return models.Customer{}, err
	}

	customer := models.Customer{
		Fullname: name,
		Birthday: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Contact:  contact,
		Email:    email,
		Password: string(hashed),
	}
	if err := bc.DB.Create(&customer).Error; err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}
