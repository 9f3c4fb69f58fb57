package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	alertDomain "stock-alerts/internal/domain/alert"
)

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCampaigns(w, r)
	case http.MethodPost:
		s.handleCreateCampaign(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.registry.ListCampaignsByUser(r.Context(), currentUserID(r))
	if err != nil {
		log.Printf("list campaigns failed user_id=%d: %v", currentUserID(r), err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}

	type item struct {
		ID        int64  `json:"id"`
		Company   string `json:"company"`
		Active    bool   `json:"active"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]item, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, item{
			ID:        c.ID,
			Company:   c.CompanyID,
			Active:    c.Active,
			CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"campaigns": items,
	})
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Company   string `json:"company"`
		Condition string `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	company := strings.ToUpper(strings.TrimSpace(body.Company))
	if company == "" {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "company is required")
		return
	}
	condition := alertDomain.Condition(body.Condition)
	if body.Condition == "" {
		condition = alertDomain.ConditionAll
	}
	if !condition.Valid() {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "condition must be one of all, up, down")
		return
	}

	userID := currentUserID(r)
	id, err := s.registry.CreateCampaign(r.Context(), company, userID, condition)
	if errors.Is(err, alertDomain.ErrCampaignExists) {
		writeError(w, http.StatusConflict, errCodeConflict, "campaign for this company already exists")
		return
	}
	if err != nil {
		log.Printf("create campaign failed user_id=%d company=%s: %v", userID, company, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}

	log.Printf("campaign created campaign_id=%d user_id=%d company=%s condition=%s", id, userID, company, condition)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"campaign_id": id,
		"company":     company,
	})
}

func (s *Server) handleCampaignArchive(w http.ResponseWriter, r *http.Request) {
	id, action := parseResourcePath(r.URL.Path, "/api/campaigns/")
	if id == 0 || action != "archive" {
		writeError(w, http.StatusNotFound, errCodeNotFound, "not found")
		return
	}

	userID := currentUserID(r)
	err := s.registry.ArchiveCampaign(r.Context(), id, userID)
	if errors.Is(err, alertDomain.ErrNotOwner) {
		writeError(w, http.StatusNotFound, errCodeNotFound, "campaign not found")
		return
	}
	if err != nil {
		log.Printf("archive campaign failed campaign_id=%d user_id=%d: %v", id, userID, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"campaign_id": id,
	})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	rules, err := s.registry.ListAlertsByUser(r.Context(), currentUserID(r))
	if err != nil {
		log.Printf("list alerts failed user_id=%d: %v", currentUserID(r), err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}

	type item struct {
		ID             int64  `json:"id"`
		CampaignID     int64  `json:"campaign_id"`
		Company        string `json:"company"`
		Condition      string `json:"condition"`
		Active         bool   `json:"active"`
		CampaignActive bool   `json:"campaign_active"`
		CreatedAt      string `json:"created_at"`
	}
	items := make([]item, 0, len(rules))
	for _, rule := range rules {
		items = append(items, item{
			ID:             rule.ID,
			CampaignID:     rule.CampaignID,
			Company:        rule.Company,
			Condition:      string(rule.Condition),
			Active:         rule.Active,
			CampaignActive: rule.CampaignActive,
			CreatedAt:      rule.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"alerts":  items,
	})
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id, action := parseResourcePath(r.URL.Path, "/api/alerts/")
	if id == 0 || action != "" {
		writeError(w, http.StatusNotFound, errCodeNotFound, "not found")
		return
	}

	var body struct {
		Condition string `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}
	condition := alertDomain.Condition(body.Condition)
	if !condition.Valid() {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "condition must be one of all, up, down")
		return
	}

	userID := currentUserID(r)
	err := s.registry.UpdateAlertCondition(r.Context(), id, userID, condition)
	if errors.Is(err, alertDomain.ErrNotOwner) {
		writeError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
		return
	}
	if err != nil {
		log.Printf("update alert failed alert_id=%d user_id=%d: %v", id, userID, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"alert_id": id,
	})
}
