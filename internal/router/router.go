package router

import (
	"net/http"

	"github.com/theLivingSofa/parking-management/internal/config"
	"github.com/theLivingSofa/parking-management/internal/directory"
	"github.com/theLivingSofa/parking-management/internal/handler"
	"github.com/theLivingSofa/parking-management/internal/ledger"
	"github.com/theLivingSofa/parking-management/internal/middleware"
	"github.com/theLivingSofa/parking-management/internal/qrcode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine, static mounts and API routes.
// The hourly rate is parsed once at startup and threaded in here.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger, rate decimal.Decimal) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// generated QR images served as static assets
	r.Static(cfg.QRCode.URLPath, cfg.QRCode.Dir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	gen := qrcode.NewGenerator(cfg.QRCode.Dir)
	dir := directory.New(db, gen)
	led := ledger.New(db, rate)

	// ====== API ======
	api := r.Group("/api")

	ownerHandler := handler.NewOwnerHandler(dir, log)
	api.POST("/owners", ownerHandler.RegisterOwner)

	vehicleHandler := handler.NewVehicleHandler(dir, cfg.QRCode.URLPath, log)
	api.POST("/register", vehicleHandler.RegisterVehicle)

	parkingHandler := handler.NewParkingHandler(led, log)
	api.POST("/checkin", parkingHandler.CheckIn)
	api.POST("/checkout", parkingHandler.CheckOut)
	api.POST("/vehicle-status", parkingHandler.Status)

	spotHandler := handler.NewSpotHandler(led, log)
	api.GET("/spots", spotHandler.ListSpots)
	api.POST("/spots", spotHandler.CreateSpot)

	return r
}
