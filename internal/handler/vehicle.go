package handler

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"

	"github.com/theLivingSofa/parking-management/internal/directory"
	"github.com/theLivingSofa/parking-management/internal/models"
	"github.com/theLivingSofa/parking-management/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VehicleHandler serves vehicle registration.
type VehicleHandler struct {
	Dir       *directory.Directory
	QRURLPath string // static mount prefix where QR images are served
	Log       *zap.Logger
}

func NewVehicleHandler(dir *directory.Directory, qrURLPath string, log *zap.Logger) *VehicleHandler {
	return &VehicleHandler{Dir: dir, QRURLPath: qrURLPath, Log: log}
}

type registerVehicleReq struct {
	LicensePlate     string `json:"license_plate" binding:"required"`
	OwnerPhoneNumber string `json:"owner_phone_number" binding:"required"`
}

func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var req registerVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "license_plate and owner_phone_number are required")
		return
	}

	vehicle, qrPath, err := h.Dir.RegisterVehicle(c.Request.Context(), req.LicensePlate, req.OwnerPhoneNumber)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}

	util.Created(c, util.Response{
		"message":      fmt.Sprintf("Vehicle '%s' registered for owner phone '%s'.", vehicle.LicensePlate, vehicle.Owner.PhoneNumber),
		"vehicle":      vehicleResp(vehicle),
		"qr_code_path": path.Join(h.QRURLPath, filepath.Base(qrPath)),
	})
}

func vehicleResp(v *models.Vehicle) gin.H {
	resp := gin.H{
		"id":            v.ID,
		"license_plate": v.LicensePlate,
		"qr_code":       v.QRCode,
	}
	if v.Owner != nil {
		resp["owner"] = gin.H{
			"id":           v.Owner.ID,
			"name":         v.Owner.Name,
			"phone_number": v.Owner.PhoneNumber,
		}
	}
	return resp
}
