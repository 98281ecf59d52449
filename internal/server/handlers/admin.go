package handlers

import (
	"net/http"
	"strconv"
	"time"

	auditdomain "volunteens/auth-service/internal/audit/domain"
	auditrepo "volunteens/auth-service/internal/audit/repository"
)

// AdminHandler serves staff-only endpoints.
type AdminHandler struct {
	events auditrepo.Repository
}

// NewAdminHandler returns an AdminHandler.
func NewAdminHandler(events auditrepo.Repository) *AdminHandler {
	return &AdminHandler{events: events}
}

type eventResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListSecurityEvents handles GET /api/v1/admin/security-events. Gated on the
// system:logs permission by the router.
func (h *AdminHandler) ListSecurityEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 200)
	offset := queryInt(r, "offset", 0, 1<<30)
	userID := r.URL.Query().Get("userId")

	var (
		events []*auditdomain.Event
		err    error
	)
	if userID != "" {
		events, err = h.events.ListByUser(r.Context(), userID, limit, offset)
	} else {
		events, err = h.events.ListRecent(r.Context(), limit, offset)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			IP:        e.IP,
			UserAgent: e.UserAgent,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, name string, def, max int32) int32 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	if int32(n) > max {
		return max
	}
	return int32(n)
}
