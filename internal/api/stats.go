package api

import (
	"net/http" // HTTP status codes
	"time"     // Expense month grouping

	"society_ease/internal/billing" // Bill aggregates
	"society_ease/internal/domain"  // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money type
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

const chartPeriods = 6 // Months shown on the dashboard chart

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalResidents       int64           `json:"totalResidents"`       // Residents registered
	TotalNotices         int64           `json:"totalNotices"`         // Notices posted
	PendingComplaints    int64           `json:"pendingComplaints"`    // Complaints not yet resolved
	PendingVerifications int64           `json:"pendingVerifications"` // Submitted bills awaiting an admin
	DeleteRequests       int64           `json:"deleteRequests"`       // Residents asking to leave
	MonthlyRevenue       decimal.Decimal `json:"monthlyRevenue"`       // Sum of verified payments
}

// ResidentStats is the resident dashboard summary
type ResidentStats struct {
	FlatNo               string          `json:"flat_no"`              // Resident flat
	PendingDues          decimal.Decimal `json:"pendingDues"`          // Billed and not yet submitted
	AwaitingVerification decimal.Decimal `json:"awaitingVerification"` // Submitted, not yet verified
	OpenComplaints       int64           `json:"openComplaints"`       // Resident's unresolved complaints
	TotalNotices         int64           `json:"totalNotices"`         // Notices posted
}

// AdminStatsHandler returns counts and revenue, computed fresh on every call
func AdminStatsHandler(db *gorm.DB, svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tx := db.WithContext(ctx)
		var stats AdminStats
		var err error
		if err = tx.Model(&domain.User{}).Where("role = ?", domain.RoleResident).Count(&stats.TotalResidents).Error; err == nil {
			err = tx.Model(&domain.Notice{}).Count(&stats.TotalNotices).Error
		}
		if err == nil {
			err = tx.Model(&domain.Complaint{}).Where("status = ?", domain.ComplaintPending).Count(&stats.PendingComplaints).Error
		}
		if err == nil {
			err = tx.Model(&domain.User{}).Where("delete_request = ?", true).Count(&stats.DeleteRequests).Error
		}
		if err == nil {
			stats.PendingVerifications, err = svc.CountSubmitted(ctx)
		}
		if err == nil {
			stats.MonthlyRevenue, err = svc.Revenue(ctx)
		}
		if err != nil {
			respondError(c, err, "Failed to fetch stats", nil)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ResidentStatsHandler returns one resident's dues and counts
func ResidentStatsHandler(db *gorm.DB, svc *billing.Service, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, param)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		tx := db.WithContext(ctx)
		stats := ResidentStats{FlatNo: "N/A"}

		var user domain.User
		err := tx.Select("id", "flat_no").First(&user, id).Error
		if err != nil {
			respondError(c, err, "Failed to fetch stats", logrus.Fields{"user_id": id})
			return
		}
		if user.FlatNo != "" {
			stats.FlatNo = user.FlatNo
		}
		stats.PendingDues, err = svc.PendingDues(ctx, id)
		if err == nil {
			stats.AwaitingVerification, err = svc.AwaitingVerification(ctx, id)
		}
		if err == nil {
			err = tx.Model(&domain.Complaint{}).
				Where("user_id = ? AND status <> ?", id, domain.ComplaintResolved).
				Count(&stats.OpenComplaints).Error
		}
		if err == nil {
			err = tx.Model(&domain.Notice{}).Count(&stats.TotalNotices).Error
		}
		if err != nil {
			respondError(c, err, "Failed to fetch stats", logrus.Fields{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ExpenseLine is a compact expense for dashboard tables
type ExpenseLine struct {
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
}

// FinancialSummaryHandler returns income, outflow and the latest expenses
func FinancialSummaryHandler(db *gorm.DB, svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		income, err := svc.Revenue(ctx)
		if err != nil {
			respondError(c, err, "Failed to fetch financial data", nil)
			return
		}
		var outflow decimal.NullDecimal
		if err := db.WithContext(ctx).Model(&domain.Expense{}).Select("SUM(amount)").Row().Scan(&outflow); err != nil {
			respondError(c, err, "Failed to fetch financial data", nil)
			return
		}
		var recent []domain.Expense
		if err := db.WithContext(ctx).Order("spent_date DESC, id DESC").Limit(5).Find(&recent).Error; err != nil {
			respondError(c, err, "Failed to fetch financial data", nil)
			return
		}
		lines := make([]ExpenseLine, len(recent))
		for i, e := range recent {
			lines[i] = ExpenseLine{Date: e.SpentDate, Category: e.Category, Title: e.Title, Amount: e.Amount}
		}
		c.JSON(http.StatusOK, gin.H{
			"totalIncome":  income,
			"totalOutflow": outflow.Decimal,
			"balance":      income.Sub(outflow.Decimal),
			"expenses":     lines,
		})
	}
}

// ChartDataHandler returns verified income and expenses per month for the last periods
func ChartDataHandler(db *gorm.DB, svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		income, err := svc.RevenueByPeriod(ctx, chartPeriods)
		if err != nil {
			respondError(c, err, "Failed to fetch chart data", nil)
			return
		}
		var expenses []domain.Expense
		if err := db.WithContext(ctx).Select("amount", "spent_date").Find(&expenses).Error; err != nil {
			respondError(c, err, "Failed to fetch chart data", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"income":   chartPoints(income),
			"expenses": chartPoints(expensesByPeriod(expenses)),
		})
	}
}

// ChartPoint is one month on the dashboard chart
type ChartPoint struct {
	Month string          `json:"month"` // e.g. "March 2026"
	Total decimal.Decimal `json:"total"`
}

func chartPoints(totals []billing.PeriodTotal) []ChartPoint {
	points := make([]ChartPoint, len(totals))
	for i, t := range totals {
		points[i] = ChartPoint{Month: t.String(), Total: t.Total}
	}
	return points
}

// expensesByPeriod groups expenses by the month they were spent in
func expensesByPeriod(expenses []domain.Expense) []billing.PeriodTotal {
	sums := map[billing.Period]decimal.Decimal{}
	for _, e := range expenses {
		p := billing.CurrentPeriod(e.SpentDate)
		sums[p] = sums[p].Add(e.Amount)
	}
	totals := make([]billing.PeriodTotal, 0, len(sums))
	for p, total := range sums {
		totals = append(totals, billing.PeriodTotal{Period: p, Total: total})
	}
	return billing.LatestPeriods(totals, chartPeriods)
}
