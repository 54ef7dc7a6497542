package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/firmsight/firmsight/internal/auth"
	"github.com/firmsight/firmsight/internal/observability"
)

const missingFieldsMessage = "Both 'question' and 'company_name' are required"

type answerRequest struct {
	Question    string `json:"question"`
	CompanyName string `json:"company_name"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

func handleAnswer(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Answerer == nil {
		writeError(w, http.StatusNotImplemented, "answer pipeline is not configured")
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.MarkOutcome(r.Context(), "rejected")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	tenantID := strings.TrimSpace(req.CompanyName)
	if question == "" || tenantID == "" {
		observability.MarkOutcome(r.Context(), "rejected")
		writeError(w, http.StatusBadRequest, missingFieldsMessage)
		return
	}
	observability.MarkTenant(r.Context(), tenantID)

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		if !identity.HasRole("analyst") {
			observability.MarkOutcome(r.Context(), "rejected")
			writeError(w, http.StatusForbidden, "API key lacks the analyst role")
			return
		}
		if identity.TenantID != tenantID {
			observability.MarkOutcome(r.Context(), "rejected")
			writeError(w, http.StatusForbidden, "API key is not authorized for this company")
			return
		}
	}

	answer, err := deps.Answerer.Answer(r.Context(), question, tenantID)
	if err != nil {
		observability.MarkOutcome(r.Context(), "failed")
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "answer pipeline failed",
				slog.String("request_id", observability.RequestIDFromContext(r.Context())),
				slog.String("tenant", tenantID),
				slog.Any("error", err),
			)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	observability.MarkOutcome(r.Context(), "answered")
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}
