package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/services"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB     *gorm.DB
	Mailer *services.MailerService
}

func NewCustomerController(db *gorm.DB, mailer *services.MailerService) *CustomerController {
	return &CustomerController{DB: db, Mailer: mailer}
}

// Signup -> create a customer account and send the verification email
func (cc *CustomerController) Signup(c *gin.Context) {
	type reqBody struct {
		Fullname string `json:"fullname" binding:"required"`
		Birthday string `json:"birthday" binding:"required"` // YYYY-MM-DD
		Contact  string `json:"contact" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("birthday must be YYYY-MM-DD"))
		return
	}

	var existing int64
	cc.DB.Model(&models.Customer{}).
		Where("contact = ? OR email = ?", req.Contact, req.Email).
		Count(&existing)
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("user with this contact number or email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	token := utils.NewVerifyToken()
	customer := models.Customer{
		Fullname:    req.Fullname,
		Birthday:    birthday,
		Contact:     req.Contact,
		Email:       req.Email,
		Password:    string(hashed),
		IsVerified:  false,
		VerifyToken: &token,
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	emailSent := cc.Mailer.SendVerificationEmail(customer.Email, token, customer.Fullname)

	message := "Account created successfully! Please check the verification link below."
	if emailSent {
		message = "Account created successfully! Verification email has been sent to your email address."
	}

	data := gin.H{
		"email_sent": emailSent,
		"user": gin.H{
			"id":          customer.ID,
			"fullname":    customer.Fullname,
			"birthday":    customer.Birthday.Format("2006-01-02"),
			"contact":     customer.Contact,
			"email":       customer.Email,
			"is_verified": false,
		},
	}
	if !emailSent {
		// surfaced only when mail delivery failed, mirrors the old
		// development-mode flow
		data["verification_token"] = token
	}

	utils.InfoLogger.Printf("New customer signup: %s (%s)", customer.Fullname, customer.Email)
	utils.RespondJSON(c, http.StatusCreated, message, data)
}

// Login -> customers sign in with contact number or email
func (cc *CustomerController) Login(c *gin.Context) {
	var input struct {
		Contact  string `json:"contact" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	query := "contact = ?"
	if strings.Contains(input.Contact, "@") {
		query = "email = ?"
	}

	var customer models.Customer
	if err := cc.DB.Where(query, input.Contact).First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized,
			errors.New("invalid contact number/email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized,
			errors.New("invalid contact number/email or password"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"user": gin.H{
			"id":          customer.ID,
			"fullname":    customer.Fullname,
			"birthday":    customer.Birthday.Format("2006-01-02"),
			"contact":     customer.Contact,
			"email":       customer.Email,
			"is_verified": customer.IsVerified,
		},
	})
}

// UpdateProfile -> edit account details, keeping contact/email unique
func (cc *CustomerController) UpdateProfile(c *gin.Context) {
	type reqBody struct {
		UserID   uint   `json:"user_id" binding:"required"`
		Fullname string `json:"fullname" binding:"required"`
		Birthday string `json:"birthday" binding:"required"`
		Contact  string `json:"contact" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("birthday must be YYYY-MM-DD"))
		return
	}

	var taken int64
	cc.DB.Model(&models.Customer{}).
		Where("(contact = ? OR email = ?) AND id != ?", req.Contact, req.Email, req.UserID).
		Count(&taken)
	if taken > 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("contact number or email already exists"))
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	customer.Fullname = req.Fullname
	customer.Birthday = birthday
	customer.Contact = req.Contact
	customer.Email = req.Email

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated successfully", gin.H{
		"user": gin.H{
			"id":       customer.ID,
			"fullname": customer.Fullname,
			"birthday": customer.Birthday.Format("2006-01-02"),
			"contact":  customer.Contact,
			"email":    customer.Email,
		},
	})
}

// VerifyEmail -> mark the account verified from the emailed link
func (cc *CustomerController) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("verification token missing"))
		return
	}

	var customer models.Customer
	if err := cc.DB.Where("verify_token = ?", token).First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("invalid verification token"))
		return
	}

	customer.IsVerified = true
	customer.VerifyToken = nil
	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer %s verified email %s", customer.Fullname, customer.Email)
	utils.RespondJSON(c, http.StatusOK, "Email verified successfully", gin.H{
		"email": customer.Email,
	})
}
