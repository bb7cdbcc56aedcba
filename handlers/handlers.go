package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/claraconfirms/backend/utils"
)

// respondValidationError maps a validation failure to a 400 with per-field
// details
func respondValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	fields := utils.GetValidationFields(err)
	details := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		details[field] = msg
	}

	logger.Warn("request validation failed", zap.Error(err))
	_ = utils.WriteBadRequest(w, "Validation failed", details)
}
