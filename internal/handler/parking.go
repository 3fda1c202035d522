package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/theLivingSofa/parking-management/internal/ledger"
	"github.com/theLivingSofa/parking-management/internal/models"
	"github.com/theLivingSofa/parking-management/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParkingHandler serves check-in, check-out and the status query.
type ParkingHandler struct {
	Ledger *ledger.Ledger
	Log    *zap.Logger
}

func NewParkingHandler(l *ledger.Ledger, log *zap.Logger) *ParkingHandler {
	return &ParkingHandler{Ledger: l, Log: log}
}

type checkInReq struct {
	QRCode     string `json:"qr_code" binding:"required"`
	SpotNumber string `json:"spot_number" binding:"required"`
}

type qrCodeReq struct {
	QRCode string `json:"qr_code" binding:"required"`
}

// statusResp is the shared payload shape for check-in, check-out and the
// status query. Checkout-only fields stay null elsewhere.
type statusResp struct {
	Message          string     `json:"message"`
	IsCheckedIn      bool       `json:"is_checked_in"`
	LicensePlate     string     `json:"license_plate"`
	OwnerName        string     `json:"owner_name"`
	OwnerPhoneNumber string     `json:"owner_phone_number"`
	EntryTime        *time.Time `json:"entry_time"`
	ExitTime         *time.Time `json:"exit_time"`
	DurationHours    *float64   `json:"duration_hours"`
	Fee              *float64   `json:"fee"`
}

func ownerInfo(v *models.Vehicle) (name, phone string) {
	if v.Owner == nil {
		return "N/A", "N/A"
	}
	return v.Owner.Name, v.Owner.PhoneNumber
}

func (h *ParkingHandler) CheckIn(c *gin.Context) {
	var req checkInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "qr_code and spot_number are required")
		return
	}

	res, err := h.Ledger.CheckIn(c.Request.Context(), req.QRCode, req.SpotNumber)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}

	name, phone := ownerInfo(res.Vehicle)
	entry := res.Record.EntryTime
	util.Success(c, util.Response{
		"status": statusResp{
			Message:          fmt.Sprintf("Vehicle %s checked IN at spot %s.", res.Vehicle.LicensePlate, res.Spot.SpotNumber),
			IsCheckedIn:      true,
			LicensePlate:     res.Vehicle.LicensePlate,
			OwnerName:        name,
			OwnerPhoneNumber: phone,
			EntryTime:        &entry,
		},
	})
}

func (h *ParkingHandler) CheckOut(c *gin.Context) {
	var req qrCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "qr_code is required")
		return
	}

	res, err := h.Ledger.CheckOut(c.Request.Context(), req.QRCode)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}

	name, phone := ownerInfo(res.Vehicle)
	entry := res.Record.EntryTime
	duration := res.DurationHours.InexactFloat64()
	fee := res.Fee.InexactFloat64()
	util.Success(c, util.Response{
		"status": statusResp{
			Message:          fmt.Sprintf("Vehicle %s checked OUT successfully.", res.Vehicle.LicensePlate),
			IsCheckedIn:      false,
			LicensePlate:     res.Vehicle.LicensePlate,
			OwnerName:        name,
			OwnerPhoneNumber: phone,
			EntryTime:        &entry,
			ExitTime:         res.Record.ExitTime,
			DurationHours:    &duration,
			Fee:              &fee,
		},
	})
}

func (h *ParkingHandler) Status(c *gin.Context) {
	var req qrCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "qr_code is required")
		return
	}

	status, err := h.Ledger.Status(c.Request.Context(), req.QRCode)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}

	name, phone := ownerInfo(status.Vehicle)
	resp := statusResp{
		IsCheckedIn:      status.OpenRecord != nil,
		LicensePlate:     status.Vehicle.LicensePlate,
		OwnerName:        name,
		OwnerPhoneNumber: phone,
	}
	if status.OpenRecord != nil {
		entry := status.OpenRecord.EntryTime
		resp.EntryTime = &entry
		resp.Message = fmt.Sprintf("Vehicle %s is currently checked IN (since %s).",
			status.Vehicle.LicensePlate, entry.Format("2006-01-02 15:04:05 MST"))
	} else {
		resp.Message = fmt.Sprintf("Vehicle %s is currently checked OUT.", status.Vehicle.LicensePlate)
	}

	util.Success(c, util.Response{"status": resp})
}
