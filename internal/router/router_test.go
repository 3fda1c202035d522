package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/theLivingSofa/parking-management/internal/config"
	"github.com/theLivingSofa/parking-management/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		QRCode: config.QRCodeConfig{
			Dir:     filepath.Join(t.TempDir(), "qrcodes"),
			URLPath: "/qrcodes",
		},
	}
	return SetupRouter(cfg, db, zap.NewNop(), decimal.RequireFromString("20.00"))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w, parsed := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", parsed["status"])
}

func TestFullParkingFlow(t *testing.T) {
	r := newTestRouter(t)

	// owner registration
	w, _ := doJSON(t, r, http.MethodPost, "/api/owners", gin.H{
		"name":         "Jane Doe",
		"phone_number": "555-1234",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate phone is rejected
	w, _ = doJSON(t, r, http.MethodPost, "/api/owners", gin.H{
		"name":         "Someone Else",
		"phone_number": "555-1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// vehicle registration normalizes the plate
	w, parsed := doJSON(t, r, http.MethodPost, "/api/register", gin.H{
		"license_plate":      "abc 123",
		"owner_phone_number": "555-1234",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := parsed["data"].(map[string]interface{})
	vehicle := data["vehicle"].(map[string]interface{})
	assert.Equal(t, "ABC123", vehicle["license_plate"])
	owner := vehicle["owner"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", owner["name"])
	qrCode := vehicle["qr_code"].(string)
	require.NotEmpty(t, qrCode)
	assert.Equal(t, "/qrcodes/"+qrCode+".png", data["qr_code_path"])

	// registering for an unknown owner fails
	w, _ = doJSON(t, r, http.MethodPost, "/api/register", gin.H{
		"license_plate":      "XYZ789",
		"owner_phone_number": "555-0000",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// seed a spot
	w, _ = doJSON(t, r, http.MethodPost, "/api/spots", gin.H{"spot_number": "A1"})
	require.Equal(t, http.StatusCreated, w.Code)

	// check in
	w, parsed = doJSON(t, r, http.MethodPost, "/api/checkin", gin.H{
		"qr_code":     qrCode,
		"spot_number": "A1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	status := parsed["data"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, true, status["is_checked_in"])
	assert.Equal(t, "ABC123", status["license_plate"])
	assert.NotNil(t, status["entry_time"])

	// double check-in is a conflict
	w, _ = doJSON(t, r, http.MethodPost, "/api/checkin", gin.H{
		"qr_code":     qrCode,
		"spot_number": "A1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// status query sees the open session
	w, parsed = doJSON(t, r, http.MethodPost, "/api/vehicle-status", gin.H{"qr_code": qrCode})
	require.Equal(t, http.StatusOK, w.Code)
	status = parsed["data"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, true, status["is_checked_in"])

	// the spot overview shows the occupant
	w, parsed = doJSON(t, r, http.MethodGet, "/api/spots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	spots := parsed["data"].(map[string]interface{})["spots"].([]interface{})
	require.Len(t, spots, 1)
	spot := spots[0].(map[string]interface{})
	assert.Equal(t, true, spot["is_occupied"])
	occupant := spot["occupant"].(map[string]interface{})
	assert.Equal(t, "ABC123", occupant["license_plate"])

	// check out: a stay of any length bills the first hour in full
	w, parsed = doJSON(t, r, http.MethodPost, "/api/checkout", gin.H{"qr_code": qrCode})
	require.Equal(t, http.StatusOK, w.Code)
	status = parsed["data"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, false, status["is_checked_in"])
	assert.InDelta(t, 20.0, status["fee"].(float64), 0.001)
	assert.NotNil(t, status["exit_time"])

	// a second checkout has nothing to close
	w, _ = doJSON(t, r, http.MethodPost, "/api/checkout", gin.H{"qr_code": qrCode})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown token is 404
	w, _ = doJSON(t, r, http.MethodPost, "/api/vehicle-status", gin.H{"qr_code": "NOPE-12345678"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
