package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatdesk/internal/interfaces"
	"chatdesk/internal/model"
	"chatdesk/internal/service"
)

// AdminHandler handles the admin console surface: tenant settings, message
// feedback, and usage analytics.
type AdminHandler struct {
	tenants   interfaces.TenantService
	feedback  interfaces.FeedbackService
	analytics interfaces.AnalyticsService
}

func NewAdminHandler(tenants interfaces.TenantService, feedback interfaces.FeedbackService, analytics interfaces.AnalyticsService) *AdminHandler {
	return &AdminHandler{tenants: tenants, feedback: feedback, analytics: analytics}
}

// HandleGetTenantSettings godoc
// @Summary      Get group settings
// @Description  Returns the group's UI customization and delivery configuration. Unsaved groups get defaults.
// @Tags         Settings
// @Produce      json
// @Param        groupID  path      string  true  "Tenant group identifier"
// @Success      200      {object}  model.TenantSettings
// @Failure      500      {object}  ErrorResponse
// @Router       /v1/groups/{groupID}/settings [get]
func (h *AdminHandler) HandleGetTenantSettings(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	settings, err := h.tenants.GetOrDefault(r.Context(), groupID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// HandleSaveTenantSettings godoc
// @Summary      Save group settings
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        groupID   path      string                true  "Tenant group identifier"
// @Param        settings  body      model.TenantSettings  true  "Settings to save"
// @Success      200       {object}  StatusResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /v1/groups/{groupID}/settings [put]
func (h *AdminHandler) HandleSaveTenantSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.TenantSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	settings.GroupID = chi.URLParam(r, "groupID")
	if err := h.tenants.Save(r.Context(), &settings); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleCreateFeedback godoc
// @Summary      Leave feedback on a message
// @Description  Appends a +1/-1 rating with an optional note. Feedback is never mutated.
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        messageID  path      string                         true  "Message identifier"
// @Param        feedback   body      service.CreateFeedbackRequest  true  "Feedback to record"
// @Success      201        {object}  model.Feedback
// @Failure      400        {object}  ErrorResponse
// @Router       /v1/messages/{messageID}/feedback [post]
func (h *AdminHandler) HandleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	req.MessageID = chi.URLParam(r, "messageID")
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	feedback, err := h.feedback.Create(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, feedback)
}

// HandleListFeedback godoc
// @Summary      List feedback for a message
// @Tags         Feedback
// @Produce      json
// @Param        messageID  path      string  true  "Message identifier"
// @Success      200        {array}   model.Feedback
// @Failure      500        {object}  ErrorResponse
// @Router       /v1/messages/{messageID}/feedback [get]
func (h *AdminHandler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")
	items, err := h.feedback.ListByMessage(r.Context(), messageID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if items == nil {
		items = []model.Feedback{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

// HandleGroupAnalytics godoc
// @Summary      Group usage analytics
// @Description  Session, message, and feedback aggregates for the admin console's usage view.
// @Tags         Analytics
// @Produce      json
// @Param        groupID  path      string  true  "Tenant group identifier"
// @Success      200      {object}  model.GroupAnalytics
// @Failure      500      {object}  ErrorResponse
// @Router       /v1/groups/{groupID}/analytics [get]
func (h *AdminHandler) HandleGroupAnalytics(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	analytics, err := h.analytics.GroupUsage(r.Context(), groupID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, analytics)
}
