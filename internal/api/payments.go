package api

import (
	"net/http" // HTTP status codes

	"society_ease/internal/billing"  // Bill lifecycle
	"society_ease/internal/settings" // Default maintenance amount

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money type
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// GenerateBillsRequest is the body for bill generation; every field is optional
type GenerateBillsRequest struct {
	Amount *decimal.Decimal `json:"amount"` // Defaults to the society maintenance amount
	Month  string           `json:"month"`  // Defaults to the current month
	Year   int              `json:"year"`   // Defaults to the current year
}

// SubmitPaymentRequest is the body a resident sends with their UTR
type SubmitPaymentRequest struct {
	PaymentID     uint   `json:"payment_id" binding:"required"`     // Bill being paid
	TransactionID string `json:"transaction_id" binding:"required"` // UTR number
	Method        string `json:"method"`                            // UPI by default
}

// GenerateBillsHandler creates one pending bill per resident for a period
func GenerateBillsHandler(db *gorm.DB, svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateBillsRequest
		// An empty body means "current month, configured amount"
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}
		ctx := c.Request.Context()

		period := svc.CurrentPeriod() // Server side period unless the admin picks one
		if req.Month != "" || req.Year != 0 {
			year := req.Year
			if year == 0 {
				year = period.Year
			}
			month := req.Month
			if month == "" {
				month = period.Month
			}
			p, err := billing.ParsePeriod(month, year)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			period = p
		}

		var amount decimal.Decimal
		if req.Amount != nil {
			amount = *req.Amount
		} else {
			s, err := settings.Load(ctx, db)
			if err != nil {
				respondError(c, err, "Failed to load society settings", nil)
				return
			}
			amount = s.MaintenanceAmount
		}

		created, err := svc.Generate(ctx, amount, period)
		if err != nil {
			respondError(c, err, "Failed to generate bills", logrus.Fields{"period": period.String()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Bills generated successfully!",
			"count":   created,
			"period":  period,
			"amount":  amount,
		})
	}
}

// ListPaymentsHandler lists every bill with its resident, optionally filtered by ?state=
func ListPaymentsHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.List(c.Request.Context(), c.Query("state"))
		if err != nil {
			respondError(c, err, "Failed to load payments", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// PendingVerificationsHandler lists submitted bills awaiting an admin
func PendingVerificationsHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.PendingVerification(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load payments", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// VerifyPaymentHandler marks exactly one submitted bill as Verified
func VerifyPaymentHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		bill, err := svc.Verify(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Database error during verification", logrus.Fields{"payment_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment Verified Successfully!", "status": bill.Status, "payment": bill})
	}
}

// SubmitPaymentHandler attaches the resident's UTR to one of their unpaid bills
func SubmitPaymentHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := mustSession(c)
		if !ok {
			return
		}
		var req SubmitPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment id and transaction id are required"})
			return
		}
		bill, err := svc.Submit(c.Request.Context(), session.UserID, req.PaymentID, req.TransactionID, req.Method)
		if err != nil {
			respondError(c, err, "Could not record payment", logrus.Fields{
				"payment_id":  req.PaymentID,
				"resident_id": session.UserID,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment submitted! Admin will verify your transaction.", "payment": bill})
	}
}

// UnpaidBillsHandler lists the resident's bills awaiting payment
func UnpaidBillsHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		bills, err := svc.UnpaidBills(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Failed to fetch unpaid bills", logrus.Fields{"resident_id": id})
			return
		}
		c.JSON(http.StatusOK, bills)
	}
}

// PaymentHistoryHandler lists every bill of the resident, newest first
func PaymentHistoryHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		bills, err := svc.History(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Failed to fetch payment history", logrus.Fields{"resident_id": id})
			return
		}
		c.JSON(http.StatusOK, bills)
	}
}
