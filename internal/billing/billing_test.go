package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"society_ease/internal/domain"
	"society_ease/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var march2026 = Period{Month: "March", Year: 2026}

func createUser(t *testing.T, db *gorm.DB, name, role string) domain.User {
	t.Helper()
	u := domain.User{Name: name, Email: name + "@example.com", Password: "x", Role: role, FlatNo: "A-" + name}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.Local)
	return NewService(db).WithClock(func() time.Time { return clock }), db
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("one pending bill per resident", func(t *testing.T) {
		svc, db := newService(t)
		r1 := createUser(t, db, "ravi", domain.RoleResident)
		r2 := createUser(t, db, "meera", domain.RoleResident)
		createUser(t, db, "admin", domain.RoleAdmin)

		n, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		for _, r := range []domain.User{r1, r2} {
			var bills []domain.Payment
			require.NoError(t, db.Where("resident_id = ?", r.ID).Find(&bills).Error)
			require.Len(t, bills, 1)
			assert.Equal(t, domain.StatusPending, bills[0].Status)
			assert.Nil(t, bills[0].TransactionID)
			assert.Equal(t, "March", bills[0].MonthName)
			assert.Equal(t, 2026, bills[0].Year)
			assert.True(t, bills[0].Amount.Equal(decimal.NewFromInt(1000)))
			assert.Equal(t, domain.StateBilled, bills[0].State())
		}
	})

	t.Run("duplicate period is rejected", func(t *testing.T) {
		svc, db := newService(t)
		createUser(t, db, "ravi", domain.RoleResident)

		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.NoError(t, err)
		_, err = svc.Generate(ctx, decimal.NewFromInt(1200), march2026)
		assert.ErrorIs(t, err, ErrPeriodExists)

		var count int64
		require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("different periods are independent", func(t *testing.T) {
		svc, db := newService(t)
		createUser(t, db, "ravi", domain.RoleResident)

		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.NoError(t, err)
		_, err = svc.Generate(ctx, decimal.NewFromInt(1000), Period{Month: "April", Year: 2026})
		require.NoError(t, err)
	})

	t.Run("a failed insert leaves no bills behind", func(t *testing.T) {
		svc, db := newService(t)
		svc.batchSize = 1 // one INSERT per resident
		createUser(t, db, "ravi", domain.RoleResident)
		meera := createUser(t, db, "meera", domain.RoleResident)
		createUser(t, db, "kiran", domain.RoleResident)
		require.NoError(t, db.Exec(fmt.Sprintf(
			"CREATE TRIGGER fail_bill BEFORE INSERT ON payments WHEN NEW.resident_id = %d BEGIN SELECT RAISE(ABORT, 'boom'); END",
			meera.ID)).Error)

		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
		assert.Zero(t, count, "the first resident's bill is rolled back too")

		require.NoError(t, db.Exec("DROP TRIGGER fail_bill").Error)
		n, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.NoError(t, err, "the period is still free after a rollback")
		assert.Equal(t, 3, n)
	})

	t.Run("no residents", func(t *testing.T) {
		svc, db := newService(t)
		createUser(t, db, "admin", domain.RoleAdmin)

		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		assert.ErrorIs(t, err, ErrNoResidents)
	})

	t.Run("non positive amount", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Generate(ctx, decimal.Zero, march2026)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func generateOne(t *testing.T, svc *Service, db *gorm.DB, name string) (domain.User, domain.Payment) {
	t.Helper()
	r := createUser(t, db, name, domain.RoleResident)
	_, err := svc.Generate(context.Background(), decimal.NewFromInt(1000), march2026)
	require.NoError(t, err)
	var bill domain.Payment
	require.NoError(t, db.Where("resident_id = ?", r.ID).First(&bill).Error)
	return r, bill
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("sets transaction id but stays pending", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")

		got, err := svc.Submit(ctx, r.ID, bill.ID, " UPI123456789012 ", "")
		require.NoError(t, err)
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, "UPI123456789012", *got.TransactionID)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, "UPI", got.Method)
		assert.NotNil(t, got.PaymentDate)
		assert.Equal(t, domain.StateSubmitted, got.State())

		var count int64
		require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
		assert.EqualValues(t, 1, count, "submission must update in place")
	})

	t.Run("second submission conflicts and keeps first UTR", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")

		_, err := svc.Submit(ctx, r.ID, bill.ID, "FIRST", "UPI")
		require.NoError(t, err)
		_, err = svc.Submit(ctx, r.ID, bill.ID, "SECOND", "UPI")
		assert.ErrorIs(t, err, ErrAlreadySubmitted)

		var reloaded domain.Payment
		require.NoError(t, db.First(&reloaded, bill.ID).Error)
		assert.Equal(t, "FIRST", *reloaded.TransactionID)
	})

	t.Run("concurrent submissions have one winner", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Submit(ctx, r.ID, bill.ID, "UTR", "UPI")
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, ErrAlreadySubmitted)
			}
		}
		assert.Equal(t, 1, ok)
	})

	t.Run("other residents bill is not found", func(t *testing.T) {
		svc, db := newService(t)
		_, bill := generateOne(t, svc, db, "ravi")
		other := createUser(t, db, "meera", domain.RoleResident)

		_, err := svc.Submit(ctx, other.ID, bill.ID, "UTR", "UPI")
		assert.ErrorIs(t, err, ErrBillNotFound)
	})

	t.Run("blank transaction id", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")

		_, err := svc.Submit(ctx, r.ID, bill.ID, "   ", "UPI")
		assert.ErrorIs(t, err, ErrMissingTransactionID)
	})

	t.Run("overlong transaction id", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")

		_, err := svc.Submit(ctx, r.ID, bill.ID, strings.Repeat("9", 65), "UPI")
		assert.ErrorIs(t, err, ErrTransactionIDTooLong)

		got, err := svc.Submit(ctx, r.ID, bill.ID, strings.Repeat("9", 64), "UPI")
		require.NoError(t, err)
		assert.Len(t, *got.TransactionID, 64)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("verify is idempotent", func(t *testing.T) {
		svc, db := newService(t)
		r, bill := generateOne(t, svc, db, "ravi")
		_, err := svc.Submit(ctx, r.ID, bill.ID, "UTR", "UPI")
		require.NoError(t, err)

		first, err := svc.Verify(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVerified, first.Status)

		second, err := svc.Verify(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVerified, second.Status)
		assert.Equal(t, *first.TransactionID, *second.TransactionID)
	})

	t.Run("unsubmitted bill cannot be verified", func(t *testing.T) {
		svc, db := newService(t)
		_, bill := generateOne(t, svc, db, "ravi")

		_, err := svc.Verify(ctx, bill.ID)
		assert.ErrorIs(t, err, ErrNotSubmitted)
	})

	t.Run("unknown bill", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Verify(ctx, 9999)
		assert.ErrorIs(t, err, ErrBillNotFound)
	})

	t.Run("only the targeted row changes", func(t *testing.T) {
		svc, db := newService(t)
		r1 := createUser(t, db, "ravi", domain.RoleResident)
		r2 := createUser(t, db, "meera", domain.RoleResident)
		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
		require.NoError(t, err)

		var b1, b2 domain.Payment
		require.NoError(t, db.Where("resident_id = ?", r1.ID).First(&b1).Error)
		require.NoError(t, db.Where("resident_id = ?", r2.ID).First(&b2).Error)
		_, err = svc.Submit(ctx, r1.ID, b1.ID, "U1", "UPI")
		require.NoError(t, err)
		_, err = svc.Submit(ctx, r2.ID, b2.ID, "U2", "UPI")
		require.NoError(t, err)

		_, err = svc.Verify(ctx, b1.ID)
		require.NoError(t, err)

		pending, err := svc.PendingVerification(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, b2.ID, pending[0].ID)
		assert.Equal(t, "meera", pending[0].UserName)
	})
}

func TestAggregates(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	r := createUser(t, db, "ravi", domain.RoleResident)

	_, err := svc.Generate(ctx, decimal.NewFromInt(1000), Period{Month: "February", Year: 2026})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, decimal.NewFromInt(1000), march2026)
	require.NoError(t, err)

	dues, err := svc.PendingDues(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, dues.Equal(decimal.NewFromInt(2000)), "dues %s", dues)

	unpaid, err := svc.UnpaidBills(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)

	_, err = svc.Submit(ctx, r.ID, unpaid[0].ID, "UTR-FEB", "UPI")
	require.NoError(t, err)

	dues, err = svc.PendingDues(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, dues.Equal(decimal.NewFromInt(1000)), "submitted bills leave pending dues")

	waiting, err := svc.AwaitingVerification(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, waiting.Equal(decimal.NewFromInt(1000)))

	revenue, err := svc.Revenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())

	_, err = svc.Verify(ctx, unpaid[0].ID)
	require.NoError(t, err)

	revenue, err = svc.Revenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(1000)))

	byPeriod, err := svc.RevenueByPeriod(ctx, 6)
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
	assert.Equal(t, "February", byPeriod[0].Month)

	history, err := svc.History(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.List(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestUnpaidBillsOldestPeriodFirst(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	r := createUser(t, db, "ravi", domain.RoleResident)

	// March is billed before February is back-filled
	for _, p := range []Period{march2026, {Month: "February", Year: 2026}, {Month: "December", Year: 2025}} {
		_, err := svc.Generate(ctx, decimal.NewFromInt(1000), p)
		require.NoError(t, err)
	}

	unpaid, err := svc.UnpaidBills(ctx, r.ID)
	require.NoError(t, err)
	got := make([]string, len(unpaid))
	for i, b := range unpaid {
		got[i] = periodOf(b).String()
	}
	assert.Equal(t, []string{"December 2025", "February 2026", "March 2026"}, got)
}
