package handler

import (
	"net/http"

	"github.com/theLivingSofa/parking-management/internal/directory"
	"github.com/theLivingSofa/parking-management/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OwnerHandler serves owner registration.
type OwnerHandler struct {
	Dir *directory.Directory
	Log *zap.Logger
}

func NewOwnerHandler(dir *directory.Directory, log *zap.Logger) *OwnerHandler {
	return &OwnerHandler{Dir: dir, Log: log}
}

type createOwnerReq struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *OwnerHandler) RegisterOwner(c *gin.Context) {
	var req createOwnerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name and phone_number are required")
		return
	}

	owner, err := h.Dir.CreateOwner(c.Request.Context(), req.Name, req.PhoneNumber)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}

	util.Created(c, util.Response{
		"owner": gin.H{
			"id":           owner.ID,
			"name":         owner.Name,
			"phone_number": owner.PhoneNumber,
		},
	})
}
