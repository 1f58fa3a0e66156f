// Package billing owns the maintenance bill lifecycle:
// billed (transaction id NULL) -> submitted (transaction id set) -> verified.
// A bill row is created once per resident per period and then only updated.
package billing

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"society_ease/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Lifecycle errors, mapped to HTTP statuses by the api package
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPeriod        = errors.New("invalid billing period")
	ErrPeriodExists         = errors.New("bills for this period have already been generated")
	ErrNoResidents          = errors.New("no residents to bill")
	ErrBillNotFound         = errors.New("bill not found")
	ErrMissingTransactionID = errors.New("transaction id is required")
	ErrTransactionIDTooLong = errors.New("transaction id must be at most 64 characters")
	ErrAlreadySubmitted     = errors.New("bill has already been paid or submitted")
	ErrNotSubmitted         = errors.New("bill has no transaction id to verify")
	ErrUnknownState         = errors.New("unknown payment state")
)

const (
	maxTransactionIDLen = 64
	defaultMethod       = "UPI"
	defaultBatchSize    = 200
)

// Service runs the bill lifecycle against the database
type Service struct {
	db        *gorm.DB
	now       func() time.Time
	batchSize int // rows per INSERT when generating bills
}

// NewService creates a billing service using the wall clock
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now, batchSize: defaultBatchSize}
}

// WithClock replaces the clock used for submission timestamps and default periods
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CurrentPeriod returns the period bills are generated for when none is given
func (s *Service) CurrentPeriod() Period {
	return CurrentPeriod(s.now())
}

// Generate creates one Pending bill per resident for the period, all or nothing.
// It refuses to run twice for the same period.
func (s *Service) Generate(ctx context.Context, amount decimal.Decimal, p Period) (int, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	var created int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Payment{}).
			Where("month_name = ? AND year = ?", p.Month, p.Year).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrPeriodExists
		}
		var residentIDs []uint
		if err := tx.Model(&domain.User{}).
			Where("role = ?", domain.RoleResident).
			Order("id").
			Pluck("id", &residentIDs).Error; err != nil {
			return err
		}
		if len(residentIDs) == 0 {
			return ErrNoResidents
		}
		bills := make([]domain.Payment, len(residentIDs))
		for i, id := range residentIDs {
			bills[i] = domain.Payment{
				ResidentID: id,
				Amount:     amount,
				Status:     domain.StatusPending,
				MonthName:  p.Month,
				Year:       p.Year,
			}
		}
		if err := tx.CreateInBatches(&bills, s.batchSize).Error; err != nil {
			// The unique (resident, month, year) index catches a concurrent run
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPeriodExists
			}
			return err
		}
		created = len(bills)
		return nil
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"period": p.String(),
		"amount": amount.String(),
		"bills":  created,
	}).Info("Bills generated")
	return created, nil
}

// Submit records the resident's transaction reference on one of their unpaid bills.
// The update is conditional on the bill still being unsubmitted, so of two
// concurrent submissions only the first succeeds.
func (s *Service) Submit(ctx context.Context, residentID, paymentID uint, transactionID, method string) (*domain.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}
	if len(transactionID) > maxTransactionIDLen {
		return nil, ErrTransactionIDTooLong
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = defaultMethod
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&domain.Payment{}).
		Where("id = ? AND resident_id = ? AND status = ? AND transaction_id IS NULL",
			paymentID, residentID, domain.StatusPending).
		Updates(map[string]any{
			"transaction_id": transactionID,
			"method":         method,
			"payment_date":   s.now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	var bill domain.Payment
	if err := db.Where("id = ? AND resident_id = ?", paymentID, residentID).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadySubmitted
	}
	logrus.WithFields(logrus.Fields{
		"payment_id":     bill.ID,
		"resident_id":    residentID,
		"transaction_id": transactionID,
		"method":         method,
	}).Info("Payment submitted")
	return &bill, nil
}

// Verify marks a submitted bill as Verified. Verifying a verified bill is a no-op.
func (s *Service) Verify(ctx context.Context, paymentID uint) (*domain.Payment, error) {
	db := s.db.WithContext(ctx)
	var bill domain.Payment
	if err := db.First(&bill, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	if bill.Status == domain.StatusVerified {
		return &bill, nil
	}
	if bill.TransactionID == nil {
		return nil, ErrNotSubmitted
	}
	if err := db.Model(&domain.Payment{}).
		Where("id = ?", paymentID).
		Update("status", domain.StatusVerified).Error; err != nil {
		return nil, err
	}
	bill.Status = domain.StatusVerified
	logrus.WithFields(logrus.Fields{
		"payment_id":  bill.ID,
		"resident_id": bill.ResidentID,
		"amount":      bill.Amount.String(),
	}).Info("Payment verified")
	return &bill, nil
}

// UnpaidBills lists the resident's bills still awaiting a transaction id, oldest period first
func (s *Service) UnpaidBills(ctx context.Context, residentID uint) ([]domain.Payment, error) {
	bills := []domain.Payment{}
	err := s.db.WithContext(ctx).
		Where("resident_id = ? AND status = ? AND transaction_id IS NULL", residentID, domain.StatusPending).
		Order("id ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	// month_name does not sort chronologically in SQL
	sort.SliceStable(bills, func(i, j int) bool {
		return periodOf(bills[i]).Start().Before(periodOf(bills[j]).Start())
	})
	return bills, nil
}

func periodOf(p domain.Payment) Period {
	return Period{Month: p.MonthName, Year: p.Year}
}

// History lists every bill of the resident, newest first
func (s *Service) History(ctx context.Context, residentID uint) ([]domain.Payment, error) {
	bills := []domain.Payment{}
	err := s.db.WithContext(ctx).
		Where("resident_id = ?", residentID).
		Order("id DESC").
		Find(&bills).Error
	return bills, err
}

// List returns bills joined with their resident, optionally filtered by derived state
func (s *Service) List(ctx context.Context, state string) ([]domain.PaymentRow, error) {
	q := s.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.*, u.name AS user_name, u.flat_no AS flat_no").
		Joins("JOIN users AS u ON u.id = p.resident_id")
	switch state {
	case "":
	case domain.StateBilled:
		q = q.Where("p.status = ? AND p.transaction_id IS NULL", domain.StatusPending)
	case domain.StateSubmitted:
		q = q.Where("p.status = ? AND p.transaction_id IS NOT NULL", domain.StatusPending)
	case domain.StateVerified:
		q = q.Where("p.status = ?", domain.StatusVerified)
	default:
		return nil, ErrUnknownState
	}
	rows := []domain.PaymentRow{}
	err := q.Order("p.id DESC").Scan(&rows).Error
	return rows, err
}

// PendingVerification lists submitted bills waiting for an admin
func (s *Service) PendingVerification(ctx context.Context) ([]domain.PaymentRow, error) {
	return s.List(ctx, domain.StateSubmitted)
}

// PendingDues is the sum of the resident's billed, unsubmitted amounts
func (s *Service) PendingDues(ctx context.Context, residentID uint) (decimal.Decimal, error) {
	return s.sum(s.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("resident_id = ? AND status = ? AND transaction_id IS NULL", residentID, domain.StatusPending))
}

// AwaitingVerification is the sum of the resident's submitted, unverified amounts
func (s *Service) AwaitingVerification(ctx context.Context, residentID uint) (decimal.Decimal, error) {
	return s.sum(s.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("resident_id = ? AND status = ? AND transaction_id IS NOT NULL", residentID, domain.StatusPending))
}

// Revenue is the sum of every verified amount
func (s *Service) Revenue(ctx context.Context) (decimal.Decimal, error) {
	return s.sum(s.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ?", domain.StatusVerified))
}

// CountSubmitted counts bills waiting for verification
func (s *Service) CountSubmitted(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ? AND transaction_id IS NOT NULL", domain.StatusPending).
		Count(&n).Error
	return n, err
}

// PeriodTotal is verified income for one period
type PeriodTotal struct {
	Period
	Total decimal.Decimal `json:"total"`
}

// RevenueByPeriod returns verified income for the most recent periods, oldest first
func (s *Service) RevenueByPeriod(ctx context.Context, limit int) ([]PeriodTotal, error) {
	var rows []periodSum
	err := s.db.WithContext(ctx).Model(&domain.Payment{}).
		Select("month_name, year, SUM(amount) AS total").
		Where("status = ?", domain.StatusVerified).
		Group("year, month_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]PeriodTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, PeriodTotal{Period: Period{Month: r.MonthName, Year: r.Year}, Total: r.Total.Decimal})
	}
	return LatestPeriods(out, limit), nil
}

type periodSum struct {
	MonthName string
	Year      int
	Total     decimal.NullDecimal
}

// LatestPeriods sorts totals chronologically and keeps the last limit entries
func LatestPeriods(totals []PeriodTotal, limit int) []PeriodTotal {
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Start().Before(totals[j].Start())
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[len(totals)-limit:]
	}
	return totals
}

func (s *Service) sum(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
