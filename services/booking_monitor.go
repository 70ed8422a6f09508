package services

import (
	"log"
	"time"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/events"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"gorm.io/gorm"
)

// BookingMonitor expires pending bookings whose payment deadline has passed.
// It is a plain timestamp comparison on a ticker; nothing is scheduled
// durably and a missed tick is caught by the next one.
type BookingMonitor struct {
	DB       *gorm.DB
	Interval time.Duration
	StopChan chan struct{}
}

func NewBookingMonitor(db *gorm.DB) *BookingMonitor {
	return &BookingMonitor{
		DB:       db,
		Interval: 5 * time.Minute,
		StopChan: make(chan struct{}),
	}
}

func (bm *BookingMonitor) Start() {
	go func() {
		ticker := time.NewTicker(bm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				bm.CheckExpiredBookings()
			case <-bm.StopChan:
				return
			}
		}
	}()
	log.Println("Booking deadline monitor started")
}

func (bm *BookingMonitor) Stop() {
	close(bm.StopChan)
}

// CheckExpiredBookings flips pending bookings past their payment deadline to
// expired and notifies dashboard clients.
func (bm *BookingMonitor) CheckExpiredBookings() {
	var bookings []models.Booking

	now := time.Now()
	if err := bm.DB.Where("status = ? AND payment_deadline < ?",
		models.BookingStatusPending, now).Find(&bookings).Error; err != nil {
		log.Printf("Error checking expired bookings: %v", err)
		return
	}

	for _, booking := range bookings {
		booking.Status = models.BookingStatusExpired
		if err := bm.DB.Save(&booking).Error; err != nil {
			log.Printf("Error expiring booking %s: %v", booking.BookingRef, err)
			continue
		}

		events.BroadcastBookingUpdate(booking)
		log.Printf("Booking %s expired (deadline %s)",
			booking.BookingRef, booking.PaymentDeadline.Format(time.RFC3339))
	}
}
