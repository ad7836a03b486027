package api

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/sandilya-stack/coach-server/internal/api/respond"
	"github.com/sandilya-stack/coach-server/internal/api/validate"
	"github.com/sandilya-stack/coach-server/internal/services"
)

// CoachHandler is the HTTP transport over CoachService.
type CoachHandler struct {
	svc     *services.CoachService
	maxText int
}

func NewCoachHandler(svc *services.CoachService, maxText int) *CoachHandler {
	return &CoachHandler{svc: svc, maxText: maxText}
}

// pathIDs validates the named mux vars and returns them in order.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	vars := mux.Vars(r)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if err := validate.ID(n, vars[n]); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return nil, false
		}
		out = append(out, vars[n])
	}
	return out, true
}

// bodyOverhead covers JSON framing around the request fields.
const bodyOverhead = 1 << 10

// decodeBody reads at most limit bytes and decodes them into v, writing 413 or 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respond.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

// createBodyLimit allows maxText runes of up to 4 UTF-8 bytes each.
func (h *CoachHandler) createBodyLimit() int64 {
	n := h.maxText
	if n <= 0 {
		n = services.DefaultMaxTextLength
	}
	return int64(n)*4 + bodyOverhead
}

// CreateSession POST /api/users/{userId}/sessions
func (h *CoachHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, h.createBodyLimit(), &req) {
		return
	}
	if err := validate.CreateSession(req.Text, h.maxText); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.CreateSession(r.Context(), ids[0], req.Text)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListSessions GET /api/users/{userId}/sessions
func (h *CoachHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId")
	if !ok {
		return
	}
	out, err := h.svc.ListSessions(r.Context(), ids[0])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"sessions": out})
}

// GetSession GET /api/users/{userId}/sessions/{sessionId}
func (h *CoachHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId", "sessionId")
	if !ok {
		return
	}
	out, err := h.svc.GetSession(r.Context(), ids[0], ids[1])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// AnalyzeSession POST /api/users/{userId}/sessions/{sessionId}/analyze
func (h *CoachHandler) AnalyzeSession(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId", "sessionId")
	if !ok {
		return
	}
	out, err := h.svc.AnalyzeSession(r.Context(), ids[0], ids[1])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SwipeTip POST /api/users/{userId}/sessions/{sessionId}/tips/{tipId}/swipe
func (h *CoachHandler) SwipeTip(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId", "sessionId", "tipId")
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if !decodeBody(w, r, bodyOverhead, &req) {
		return
	}
	dir, err := validate.Swipe(req.Direction)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.SwipeTip(r.Context(), ids[0], ids[1], ids[2], dir)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// RegenerateTips POST /api/users/{userId}/sessions/{sessionId}/regenerate
func (h *CoachHandler) RegenerateTips(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId", "sessionId")
	if !ok {
		return
	}
	out, err := h.svc.RegenerateTips(r.Context(), ids[0], ids[1])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetPreferences GET /api/users/{userId}/preferences
func (h *CoachHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId")
	if !ok {
		return
	}
	counts, err := h.svc.GetPreferences(r.Context(), ids[0])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tagCounts": counts})
}

// ValuableTips GET /api/users/{userId}/tips/valuable
func (h *CoachHandler) ValuableTips(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "userId")
	if !ok {
		return
	}
	tips, err := h.svc.ValuableTips(r.Context(), ids[0])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tips": tips})
}
