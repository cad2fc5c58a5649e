package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-backend/internal/apperrors"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error maps the service error taxonomy onto HTTP statuses and writes a
// structured body. Conflict responses include the offending product and
// blocking order so the UI can say which item is double-booked.
func Error(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperrors.IsNotFound(err):
		JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case apperrors.IsAuthorization(err):
		JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case apperrors.IsConflict(err):
		var ce *apperrors.ConflictError
		if errors.As(err, &ce) {
			JSON(w, http.StatusConflict, map[string]interface{}{
				"error":        err.Error(),
				"product_code": ce.ProductCode,
				"order_id":     ce.OrderID,
			})
			return
		}
		JSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		JSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
