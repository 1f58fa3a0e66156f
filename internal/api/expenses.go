package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Date parsing

	"society_ease/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money type
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

const dateLayout = "2006-01-02" // spent_date wire format

// ExpenseRequest is the body for recording or editing an expense
type ExpenseRequest struct {
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	SpentDate   string          `json:"spent_date"` // YYYY-MM-DD, today when empty
}

// toExpense validates the request and builds the model
func (r ExpenseRequest) toExpense(now time.Time) (domain.Expense, string) {
	e := domain.Expense{
		Title:       strings.TrimSpace(r.Title),
		Category:    strings.TrimSpace(r.Category),
		Amount:      r.Amount,
		Description: r.Description,
	}
	if e.Title == "" || e.Category == "" {
		return e, "Title and category are required"
	}
	if !e.Amount.IsPositive() {
		return e, "Amount must be greater than zero"
	}
	if r.SpentDate == "" {
		y, m, d := now.Date()
		e.SpentDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return e, ""
	}
	day, err := time.Parse(dateLayout, r.SpentDate)
	if err != nil {
		return e, "spent_date must be YYYY-MM-DD"
	}
	e.SpentDate = day
	return e, ""
}

// ListExpensesHandler returns every expense, most recent first
func ListExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		expenses := []domain.Expense{}
		if err := db.WithContext(c.Request.Context()).Order("spent_date DESC, id DESC").Find(&expenses).Error; err != nil {
			respondError(c, err, "Failed to fetch expenses", nil)
			return
		}
		c.JSON(http.StatusOK, expenses)
	}
}

// CreateExpenseHandler records money spent by the society
func CreateExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		expense, problem := req.toExpense(time.Now())
		if problem != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": problem})
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&expense).Error; err != nil {
			respondError(c, err, "Failed to add expense", nil)
			return
		}
		logrus.WithFields(logrus.Fields{
			"expense_id": expense.ID,
			"amount":     expense.Amount.String(),
		}).Info("Expense recorded")
		c.JSON(http.StatusCreated, gin.H{"message": "Expense added successfully!", "expense": expense})
	}
}

// UpdateExpenseHandler replaces an expense's fields
func UpdateExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updated, problem := req.toExpense(time.Now())
		if problem != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": problem})
			return
		}
		ctx := c.Request.Context()
		var expense domain.Expense
		if err := db.WithContext(ctx).First(&expense, id).Error; err != nil {
			respondError(c, err, "Failed to update expense", logrus.Fields{"expense_id": id})
			return
		}
		if err := db.WithContext(ctx).Model(&expense).Updates(map[string]any{
			"title":       updated.Title,
			"category":    updated.Category,
			"amount":      updated.Amount,
			"description": updated.Description,
			"spent_date":  updated.SpentDate,
		}).Error; err != nil {
			respondError(c, err, "Failed to update expense", logrus.Fields{"expense_id": id})
			return
		}
		updated.ID, updated.CreatedAt = expense.ID, expense.CreatedAt
		c.JSON(http.StatusOK, gin.H{"message": "Expense updated", "expense": updated})
	}
}

// DeleteExpenseHandler removes an expense
func DeleteExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&domain.Expense{}, id)
		if res.Error != nil {
			respondError(c, res.Error, "Failed to delete expense", logrus.Fields{"expense_id": id})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
	}
}
