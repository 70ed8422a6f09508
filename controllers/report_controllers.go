package controllers

import (
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/events"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
	"gorm.io/gorm"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// GetDashboardStats -> today's headline numbers for the admin landing page
func (rc *ReportController) GetDashboardStats(c *gin.Context) {
	var stats struct {
		Revenue      float64 `json:"revenue"`
		Reservations int64   `json:"reservations"`
		MenuItems    int64   `json:"menu_items"`
	}

	todayStart := startOfDay(time.Now())
	tomorrow := todayStart.Add(24 * time.Hour)

	rc.DB.Model(&models.Sale{}).
		Where("order_date >= ? AND order_date < ?", todayStart, tomorrow).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.Revenue)

	rc.DB.Model(&models.Booking{}).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			models.BookingStatusConfirmed, todayStart, tomorrow).
		Count(&stats.Reservations)

	rc.DB.Model(&models.MenuItem{}).
		Where("available = ?", true).
		Count(&stats.MenuItems)

	events.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"revenue":           stats.Revenue,
		"revenue_formatted": utils.FormatCurrency(stats.Revenue),
		"reservations":      stats.Reservations,
		"menu_items":        stats.MenuItems,
	})
}

// salesBucket is one point on a sales chart.
type salesBucket struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// GetSalesData -> chart series for the requested period. Rows are fetched
// for the window and bucketed here rather than with SQL date functions, so
// the result is identical on MySQL and SQLite and immune to database
// time-zone settings.
func (rc *ReportController) GetSalesData(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	now := time.Now()

	var from time.Time
	switch period {
	case "daily":
		from = startOfDay(now)
	case "weekly":
		from = now.AddDate(0, 0, -7)
	case "monthly":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "yearly":
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid period"))
		return
	}

	var sales []models.Sale
	if err := rc.DB.Where("order_date >= ?", from).
		Order("order_date ASC").Find(&sales).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	buckets := map[string]float64{}
	var order []string
	add := func(label string, amount float64) {
		if _, seen := buckets[label]; !seen {
			order = append(order, label)
		}
		buckets[label] += amount
	}

	for _, sale := range sales {
		switch period {
		case "daily":
			add(sale.OrderDate.Format("15:00"), sale.TotalAmount)
		case "weekly":
			add(sale.OrderDate.Weekday().String(), sale.TotalAmount)
		case "monthly":
			_, week := sale.OrderDate.ISOWeek()
			add("Week "+strconv.Itoa(week), sale.TotalAmount)
		case "yearly":
			add(sale.OrderDate.Month().String(), sale.TotalAmount)
		}
	}

	data := make([]salesBucket, 0, len(order))
	for _, label := range order {
		data = append(data, salesBucket{Label: label, Total: buckets[label]})
	}

	utils.RespondJSON(c, http.StatusOK, "Sales data", gin.H{
		"period": period,
		"data":   data,
	})
}

// GetSalesSummary -> headline revenue figures
func (rc *ReportController) GetSalesSummary(c *gin.Context) {
	now := time.Now()
	todayStart := startOfDay(now)
	weekStart := now.AddDate(0, 0, -7)

	var todayRevenue, weeklyRevenue float64
	var ordersToday int64

	rc.DB.Model(&models.Sale{}).
		Where("order_date >= ?", todayStart).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&todayRevenue)

	rc.DB.Model(&models.Sale{}).
		Where("order_date >= ?", weekStart).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&weeklyRevenue)

	rc.DB.Model(&models.Sale{}).
		Where("order_date >= ?", todayStart).
		Count(&ordersToday)

	var avgOrderValue float64
	if ordersToday > 0 {
		avgOrderValue = todayRevenue / float64(ordersToday)
	}

	utils.RespondJSON(c, http.StatusOK, "Sales summary", gin.H{
		"today_revenue":   todayRevenue,
		"weekly_revenue":  weeklyRevenue,
		"orders_today":    ordersToday,
		"avg_order_value": avgOrderValue,
	})
}

// GetDetailedSales -> per-day totals for the last 7 days, newest first
func (rc *ReportController) GetDetailedSales(c *gin.Context) {
	weekStart := time.Now().AddDate(0, 0, -7)

	var sales []models.Sale
	if err := rc.DB.Where("order_date >= ?", weekStart).
		Order("order_date DESC").Find(&sales).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type daily struct {
		SaleDate   string  `json:"sale_date"`
		TotalSales float64 `json:"total_sales"`
		OrderCount int64   `json:"order_count"`
		AvgOrder   float64 `json:"avg_order"`
	}

	byDay := map[string]*daily{}
	var order []string
	for _, sale := range sales {
		day := sale.OrderDate.Format("2006-01-02")
		row, seen := byDay[day]
		if !seen {
			row = &daily{SaleDate: day}
			byDay[day] = row
			order = append(order, day)
		}
		row.TotalSales += sale.TotalAmount
		row.OrderCount++
	}

	result := make([]daily, 0, len(order))
	for _, day := range order {
		row := byDay[day]
		row.AvgOrder = row.TotalSales / float64(row.OrderCount)
		result = append(result, *row)
	}

	utils.RespondJSON(c, http.StatusOK, "Detailed sales", gin.H{"sales": result})
}

// ResetSalesData -> wipe orders and sales facts; superadmin clean slate
// before go-live
func (rc *ReportController) ResetSalesData(c *gin.Context) {
	if err := rc.DB.Where("1 = 1").Delete(&models.OrderItem{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := rc.DB.Where("1 = 1").Delete(&models.Order{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := rc.DB.Where("1 = 1").Delete(&models.Sale{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("All sales data cleared by %v", c.GetString("username"))
	utils.RespondJSON(c, http.StatusOK, "All sales data has been reset to zero", nil)
}

// GetNetworkInfo -> LAN address staff print on table QR codes
func (rc *ReportController) GetNetworkInfo(c *gin.Context) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ip := networkIP()
	utils.RespondJSON(c, http.StatusOK, "Network info", gin.H{
		"network_ip": ip,
		"port":       port,
		"full_url":   "http://" + ip + ":" + port,
	})
}

func networkIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "localhost"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
				return ipNet.IP.String()
			}
		}
	}
	return "localhost"
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
