package http

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	notifications, total, err := s.notifications.List(r.Context(), shopkeeperID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	if err := s.notifications.MarkAsRead(r.Context(), id, shopkeeperID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
