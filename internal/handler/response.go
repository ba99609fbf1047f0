package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
)

const invalidRequestBody = "Invalid request body"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError answers a rule failure with ruleStatus and its message.
// Anything else is a server fault and its text stays in the log.
func writeServiceError(w http.ResponseWriter, logger *logrus.Logger, err error, ruleStatus int) {
	if ruleErr, ok := model.AsRuleError(err); ok {
		writeError(w, ruleStatus, ruleErr.Message)
		return
	}
	logger.WithError(err).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// parseQuantity reads a JSON number or numeric string. Anything else, including
// a missing value, becomes zero so the quantity rule rejects it.
func parseQuantity(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	text = strings.Trim(text, `"`)
	quantity, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return quantity
}
