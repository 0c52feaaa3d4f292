package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/phone"
	"github.com/brightkatongo/learn-hub/internal/repositories"
	"github.com/brightkatongo/learn-hub/internal/services"
)

// InitiatePaymentRequest is the body for POST /payments/initiate
type InitiatePaymentRequest struct {
	CourseID    string `json:"course_id" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// ValidatePhoneRequest is the body for POST /payments/validate-phone
type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// InboundSMSRequest is the body for POST /payments/webhook/sms. Field
// names follow the SMS gateway's callback payload.
type InboundSMSRequest struct {
	Message string `json:"message"`
	From    string `json:"from"`
}

// ConfirmPaymentRequest is the body for POST /payments/confirm/:reference_code
type ConfirmPaymentRequest struct {
	Notes string `json:"notes"`
}

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService    services.PaymentService
	enrollmentService services.EnrollmentService
	courseRepo        repositories.CourseRepository
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService services.PaymentService, enrollmentService services.EnrollmentService, courseRepo repositories.CourseRepository) *PaymentHandler {
	return &PaymentHandler{
		paymentService:    paymentService,
		enrollmentService: enrollmentService,
		courseRepo:        courseRepo,
	}
}

// currentUserID reads the authenticated user's ID set by the JWT
// middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, _ := c.Get("userID")
	hex, _ := raw.(string)
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var providerErr *services.ProviderUnavailableError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": providerErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// InitiatePayment handles POST /payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID format"})
		return
	}

	course, err := h.courseRepo.FindByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	enrolled, err := h.enrollmentService.IsEnrolled(c.Request.Context(), userID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if enrolled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already enrolled in this course"})
		return
	}

	// Free courses never touch the payment pipeline.
	if course.IsFree || course.Price == 0 {
		enrollment, err := h.enrollmentService.EnrollFree(c.Request.Context(), userID, course)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Enrolled successfully",
			"enrollment": enrollment,
		})
		return
	}

	// Idempotent retry: an unexpired initiated/pending transaction for
	// the same (user, course) is returned as-is instead of creating a
	// competing one.
	if existing, err := h.paymentService.ActiveTransaction(c.Request.Context(), userID, courseID); err == nil && existing != nil {
		resp := gin.H{
			"success":     true,
			"message":     "Payment already in progress",
			"transaction": existing,
		}
		if _, instructions, err := h.paymentService.PaymentInstructions(c.Request.Context(), existing.ReferenceCode, userID); err == nil {
			resp["instructions"] = instructions
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	tx, instructions, err := h.paymentService.InitiatePayment(c.Request.Context(), userID, course, req.Provider, req.PhoneNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Payment initiated. Check your phone for instructions.",
		"transaction":  tx,
		"instructions": instructions,
	})
}

// GetProviders handles GET /payments/providers
func (h *PaymentHandler) GetProviders(c *gin.Context) {
	providers, err := h.paymentService.ActiveProviders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get providers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// ValidatePhone handles POST /payments/validate-phone
func (h *PaymentHandler) ValidatePhone(c *gin.Context) {
	var req ValidatePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The helpers normalize internally, so they all take the raw input;
	// cleaning here and validating the result would strip twice.
	clean := phone.Clean(req.PhoneNumber)
	valid := phone.IsValid(req.PhoneNumber)

	resp := gin.H{
		"is_valid":          valid,
		"clean_phone":       clean,
		"formatted_phone":   "",
		"detected_provider": "",
	}
	if valid {
		resp["formatted_phone"] = phone.Format(req.PhoneNumber)
		resp["detected_provider"] = phone.DetectProvider(req.PhoneNumber)
	}
	c.JSON(http.StatusOK, resp)
}

// GetTransactionStatus handles GET /payments/status/:reference_code
func (h *PaymentHandler) GetTransactionStatus(c *gin.Context) {
	status, err := h.paymentService.TransactionStatus(c.Request.Context(), c.Param("reference_code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelPayment handles POST /payments/cancel/:reference_code
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.paymentService.CancelPayment(c.Request.Context(), c.Param("reference_code"), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment cancelled"})
}

// GetPaymentInstructions handles GET /payments/instructions/:reference_code
func (h *PaymentHandler) GetPaymentInstructions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tx, instructions, err := h.paymentService.PaymentInstructions(c.Request.Context(), c.Param("reference_code"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction":  tx,
		"instructions": instructions,
	})
}

// GetUserTransactions handles GET /payments/transactions
func (h *PaymentHandler) GetUserTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	transactions, err := h.paymentService.UserTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetTransaction handles GET /payments/transactions/:reference_code
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tx, err := h.paymentService.TransactionByReference(c.Request.Context(), c.Param("reference_code"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// InboundSMSWebhook handles POST /payments/webhook/sms. Always returns
// 200 so the SMS gateway does not retry; the outcome is in the body.
func (h *PaymentHandler) InboundSMSWebhook(c *gin.Context) {
	var req InboundSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		formatErr := &services.ExternalFormatError{Message: "unreadable SMS payload"}
		c.JSON(http.StatusOK, gin.H{"success": false, "message": formatErr.Error()})
		return
	}

	outcome, err := h.paymentService.ProcessInboundSMS(c.Request.Context(), req.Message, req.From)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": outcome == services.SMSMatchedSuccess,
		"outcome": outcome.String(),
		"message": smsOutcomeMessage(outcome),
	})
}

func smsOutcomeMessage(outcome services.SMSOutcome) string {
	switch outcome {
	case services.SMSMatchedSuccess:
		return "Payment confirmed"
	case services.SMSMatchedFailure:
		return "Payment failure recorded"
	default:
		return "No matching pending transaction"
	}
}

// ConfirmPayment handles POST /payments/confirm/:reference_code (admin)
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	_ = c.ShouldBindJSON(&req)

	tx, err := h.paymentService.FindByReference(c.Request.Context(), c.Param("reference_code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	confirmed, err := h.paymentService.ConfirmPayment(c.Request.Context(), tx, models.VerificationAdmin, &adminID, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !confirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Transaction is not pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment confirmed", "transaction": tx})
}

// SendReminder handles POST /payments/remind/:reference_code (admin)
func (h *PaymentHandler) SendReminder(c *gin.Context) {
	if err := h.paymentService.SendReminder(c.Request.Context(), c.Param("reference_code")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reminder sent"})
}

// ExpirePending handles POST /payments/expire (admin)
func (h *PaymentHandler) ExpirePending(c *gin.Context) {
	count, err := h.paymentService.ExpirePending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expire transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "expired_count": count})
}
