package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/dropout/pkg/data"
	"github.com/mchmarny/dropout/pkg/model"
	"github.com/mchmarny/dropout/pkg/student"
)

type errorResponse struct {
	Error  string              `json:"error" yaml:"error"`
	Fields []student.FieldError `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &errorResponse{Error: msg})
}

// writeAssessError maps assessment failures onto status codes.
func writeAssessError(w http.ResponseWriter, err error) {
	var ve *student.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, &errorResponse{Error: "invalid input", Fields: ve.Fields})
	case errors.Is(err, student.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model unavailable")
	default:
		slog.Error("failed to assess student", "error", err)
		writeError(w, http.StatusInternalServerError, "error scoring student")
	}
}

func predictAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in student.RawInput
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, serverMaxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}

		res, err := cfg.Assessor.Assess(r.Context(), in)
		if err != nil {
			writeAssessError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func optionsAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, student.GetCatalog())
	}
}

func historyAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryParamInt(r, "limit", data.ListLimitDefault)
		list, err := data.ListPredictions(cfg.DB, limit)
		if err != nil {
			slog.Error("failed to list predictions", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying history")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func summaryAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		list, err := data.GetTierSummary(cfg.DB)
		if err != nil {
			slog.Error("failed to get tier summary", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying summary")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func healthAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := cfg.Model.Status()
		status := http.StatusOK
		if !st.Available {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, st)
	}
}

func queryParamInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		slog.Debug("invalid query param, using default", "name", name, "value", v)
		return def
	}
	return i
}
