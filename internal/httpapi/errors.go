package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/joelpate/equipcost/internal/platformlog"
	"github.com/joelpate/equipcost/pkg/apperr"
)

// errorResponse is the structured body written for every non-2xx response.
type errorResponse struct {
	Error     errorDetails `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
	Path      string       `json:"path"`
}

type errorDetails struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

var statusByCode = map[apperr.ErrorCode]int{
	apperr.CodeNotFound:                  http.StatusNotFound,
	apperr.CodeInsufficientHistory:       http.StatusUnprocessableEntity,
	apperr.CodeInsufficientRepairHistory: http.StatusUnprocessableEntity,
	apperr.CodeNoValidIntervals:          http.StatusUnprocessableEntity,
	apperr.CodeNoData:                    http.StatusUnprocessableEntity,
	apperr.CodeUnsupportedRecoveryPeriod: http.StatusBadRequest,
	apperr.CodeInvalidArgument:           http.StatusBadRequest,
	apperr.CodeStoreError:                http.StatusInternalServerError,
}

func httpStatus(err error) int {
	code, ok := apperr.Code(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders err as a structured JSON response matching the
// equipment core's typed error taxonomy.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	message := err.Error()
	details := map[string]interface{}{}
	code := string(apperr.CodeStoreError)

	if c, ok := apperr.Code(err); ok {
		code = string(c)
	}
	var appErr *apperr.AppError
	if ae, ok := err.(*apperr.AppError); ok {
		appErr = ae
		message = ae.Message
		for k, v := range ae.Details {
			details[k] = v
		}
	}
	if appErr == nil {
		platformlog.Error("httpapi: unclassified error on %s %s: %v", r.Method, r.URL.Path, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorDetails{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
