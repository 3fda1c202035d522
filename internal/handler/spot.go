package handler

import (
	"net/http"

	"github.com/theLivingSofa/parking-management/internal/ledger"
	"github.com/theLivingSofa/parking-management/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SpotHandler serves the spot overview and spot seeding.
type SpotHandler struct {
	Ledger *ledger.Ledger
	Log    *zap.Logger
}

func NewSpotHandler(l *ledger.Ledger, log *zap.Logger) *SpotHandler {
	return &SpotHandler{Ledger: l, Log: log}
}

type createSpotReq struct {
	SpotNumber string `json:"spot_number" binding:"required"`
}

func (h *SpotHandler) ListSpots(c *gin.Context) {
	spots, err := h.Ledger.SpotOverview(c.Request.Context())
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"spots": spots})
}

func (h *SpotHandler) CreateSpot(c *gin.Context) {
	var req createSpotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "spot_number is required")
		return
	}

	spot, err := h.Ledger.CreateSpot(c.Request.Context(), req.SpotNumber)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"spot": spot})
}
