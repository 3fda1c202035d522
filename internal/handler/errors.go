package handler

import (
	"errors"
	"net/http"

	"github.com/theLivingSofa/parking-management/internal/apperr"
	"github.com/theLivingSofa/parking-management/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps the error taxonomy onto HTTP statuses and the response
// envelope. Unexpected errors are logged and surfaced as a generic 500 so
// no internals leak to clients.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrAlreadyCheckedIn),
		errors.Is(err, apperr.ErrNotCheckedIn),
		errors.Is(err, apperr.ErrSpotOccupied):
		util.Error(c, http.StatusBadRequest, util.CodeConflict, err.Error())
	default:
		log.Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal server error")
	}
}
