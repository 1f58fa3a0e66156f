package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"society_ease/internal/domain"
	"society_ease/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaints(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("admin", domain.RoleAdmin, "")
	ravi, raviToken := s.user("ravi", domain.RoleResident, "A-101")

	w := s.do(http.MethodPost, "/api/complaints", raviToken, map[string]any{"description": "Lift stuck", "category": "Electrical"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusBadRequest,
		s.do(http.MethodPost, "/api/complaints", raviToken, map[string]any{"category": "Electrical"}).Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/resident/complaints/%d", ravi.ID), raviToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	own := decode[[]domain.Complaint](t, w)
	require.Len(t, own, 1)
	assert.Equal(t, ravi.ID, own[0].UserID)
	assert.Equal(t, domain.ComplaintPending, own[0].Status)

	w = s.do(http.MethodGet, "/api/admin/complaints", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]domain.ComplaintRow](t, w)
	require.Len(t, all, 1)
	assert.Equal(t, "ravi", all[0].Name)
	assert.Equal(t, "A-101", all[0].FlatNo)

	resolve := fmt.Sprintf("/api/complaints/%d/resolve", own[0].ID)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, resolve, raviToken, nil).Code)
	for i := 0; i < 2; i++ {
		w = s.do(http.MethodPut, resolve, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	var stored domain.Complaint
	require.NoError(t, s.db.First(&stored, own[0].ID).Error)
	assert.Equal(t, domain.ComplaintResolved, stored.Status)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/resident/dashboard-stats/%d", ravi.ID), raviToken, nil)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["openComplaints"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/complaints/9999/resolve", adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/complaints/%d", own[0].ID), adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/complaints/%d", own[0].ID), adminToken, nil).Code)
}

func TestNoticesCache(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("admin", domain.RoleAdmin, "")
	_, raviToken := s.user("ravi", domain.RoleResident, "A-101")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/admin/notices", adminToken,
		map[string]any{"title": "Water cut", "description": "Tuesday 10-12"}).Code)

	w := s.do(http.MethodGet, "/api/notices", raviToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Notice](t, w), 1)
	assert.True(t, s.redis.Exists(utils.CacheKeyNotices), "list is cached")

	w = s.do(http.MethodPost, "/api/admin/notices", adminToken, map[string]any{"title": "AGM on Sunday"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, s.redis.Exists(utils.CacheKeyNotices), "write invalidates")
	created := decode[struct {
		Notice domain.Notice `json:"notice"`
	}](t, w).Notice

	w = s.do(http.MethodGet, "/api/notices", raviToken, nil)
	assert.Len(t, decode[[]domain.Notice](t, w), 2)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/admin/notices/%d", created.ID), adminToken, map[string]any{"title": "AGM moved to Monday"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/notices", raviToken, nil)
	titles := []string{}
	for _, n := range decode[[]domain.Notice](t, w) {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "AGM moved to Monday")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/admin/notices", raviToken, map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/notices/%d", created.ID), adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/notices/%d", created.ID), adminToken, nil).Code)
}

func TestExpensesAndFinancialSummary(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("admin", domain.RoleAdmin, "")

	for _, body := range []map[string]any{
		{"category": "Repairs", "amount": 100},
		{"title": "Paint", "category": "Repairs", "amount": -5},
		{"title": "Paint", "category": "Repairs", "amount": 500, "spent_date": "05/03/2026"},
	} {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/expenses", adminToken, body).Code, body)
	}

	w := s.do(http.MethodPost, "/api/admin/expenses", adminToken, map[string]any{
		"title": "Paint", "category": "Repairs", "amount": 500, "spent_date": "2026-03-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paint := decode[struct {
		Expense domain.Expense `json:"expense"`
	}](t, w).Expense

	w = s.do(http.MethodPost, "/api/admin/expenses", adminToken, map[string]any{"title": "Guard salary", "category": "Salary", "amount": "1200.25"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPut, fmt.Sprintf("/api/admin/expenses/%d", paint.ID), adminToken, map[string]any{
		"title": "Paint", "category": "Repairs", "amount": 700, "spent_date": "2026-03-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/admin/expenses", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Expense](t, w), 2)

	w = s.do(http.MethodGet, "/api/admin/financial-summary", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]any](t, w)
	assert.True(t, amountOf(t, summary["totalIncome"]).IsZero())
	assert.True(t, amountOf(t, summary["totalOutflow"]).Equal(decimal.RequireFromString("1900.25")))
	assert.True(t, amountOf(t, summary["balance"]).Equal(decimal.RequireFromString("-1900.25")))
	assert.Len(t, summary["expenses"], 2)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/expenses/%d", paint.ID), adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/api/admin/expenses/%d", paint.ID), adminToken, nil).Code)
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("admin", domain.RoleAdmin, "")
	_, raviToken := s.user("ravi", domain.RoleResident, "A-101")

	w := s.do(http.MethodGet, "/api/society/settings", raviToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[domain.SocietySettings](t, w)
	assert.Equal(t, "My Society", current.SocietyName)
	assert.True(t, current.MaintenanceAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.redis.Exists(utils.CacheKeySettings))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/admin/update-society-settings", adminToken,
		map[string]any{"society_name": "Green Park", "maintenance_amount": 0}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/admin/update-society-settings", raviToken,
		map[string]any{"society_name": "Green Park", "maintenance_amount": 1500}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/admin/update-society-settings", adminToken,
		map[string]any{"society_name": "Green Park", "maintenance_amount": 1500}).Code)
	assert.False(t, s.redis.Exists(utils.CacheKeySettings))

	w = s.do(http.MethodGet, "/api/society/settings", raviToken, nil)
	current = decode[domain.SocietySettings](t, w)
	assert.Equal(t, "Green Park", current.SocietyName)

	// New bills default to the updated amount
	w = s.do(http.MethodPost, "/api/admin/generate-bills", adminToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, amountOf(t, decode[map[string]any](t, w)["amount"]).Equal(decimal.NewFromInt(1500)))
}

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadQR(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("admin", domain.RoleAdmin, "")

	img := image.NewRGBA(image.Rect(0, 0, 1024, 512))
	for x := 0; x < 1024; x++ {
		img.Set(x, x%512, color.Black)
	}
	var pngBytes bytes.Buffer
	require.NoError(t, png.Encode(&pngBytes, img))

	upload := func(data []byte) *httptest.ResponseRecorder {
		body, contentType := multipartImage(t, "qrCode", "qr.png", data)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/upload-qr", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload([]byte("definitely not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var tall bytes.Buffer
	require.NoError(t, png.Encode(&tall, image.NewGray(image.Rect(0, 0, 1, 9000))))
	w = upload(tall.Bytes())
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = upload(pngBytes.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url, _ := decode[map[string]any](t, w)["qr_image"].(string)
	require.True(t, strings.HasPrefix(url, "/uploads/"), url)

	f, err := os.Open(filepath.Join(s.cfg.UploadDir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	defer f.Close()
	stored, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 512, stored.Width)
	assert.Equal(t, 256, stored.Height)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "uploads are served statically")

	var settings domain.SocietySettings
	require.NoError(t, s.db.First(&settings, domain.SettingsID).Error)
	assert.Equal(t, url, settings.QRImage)
}
