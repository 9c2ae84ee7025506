package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/service"
)

// Server wires the REST handlers onto a gorilla/mux router.
type Server struct {
	plans         service.PlanService
	records       service.RecordService
	notifications service.NotificationService
}

// NewServer creates the HTTP API server.
func NewServer(plans service.PlanService, records service.RecordService, notifications service.NotificationService) *Server {
	return &Server{
		plans:         plans,
		records:       records,
		notifications: notifications,
	}
}

// Handler returns the router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Scheduled-verified plans
	api.HandleFunc("/plans", s.handleCreatePlan).Methods("POST")
	api.HandleFunc("/plans", s.handleListPlans).Methods("GET")
	api.HandleFunc("/plans/stats", s.handlePlanStats).Methods("GET")
	api.HandleFunc("/plans/{id}", s.handleGetPlan).Methods("GET")
	api.HandleFunc("/payments/pending", s.handleListPendingPayments).Methods("GET")
	api.HandleFunc("/payments/overdue", s.handleListOverduePayments).Methods("GET")
	api.HandleFunc("/slots/{id}", s.handleGetSlot).Methods("GET")
	api.HandleFunc("/slots/{id}/submit", s.handleSubmitProof).Methods("POST")
	api.HandleFunc("/slots/{id}/verify", s.handleVerifyPayment).Methods("POST")
	api.HandleFunc("/slots/{id}/reject", s.handleRejectPayment).Methods("POST")

	// Running-balance records
	api.HandleFunc("/records", s.handleCreateRecord).Methods("POST")
	api.HandleFunc("/records", s.handleListRecords).Methods("GET")
	api.HandleFunc("/records/overdue", s.handleListOverdueRecords).Methods("GET")
	api.HandleFunc("/records/{id}", s.handleGetRecord).Methods("GET")
	api.HandleFunc("/records/{id}/status", s.handleRecordStatus).Methods("GET")
	api.HandleFunc("/records/{id}/payments", s.handleAddPayment).Methods("POST")
	api.HandleFunc("/payments/{id}", s.handleGetPayment).Methods("GET")
	api.HandleFunc("/payments/{id}", s.handleDeletePayment).Methods("DELETE")
	api.HandleFunc("/customers/{id}/dues", s.handleCustomerDues).Methods("GET")
	api.HandleFunc("/customers/{id}/records", s.handleListCustomerRecords).Methods("GET")

	// Notifications
	api.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods("POST")

	r.Use(loggingMiddleware)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs each request at debug level.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain sentinel errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidScheduleParameters),
		errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrRecordCompleted),
		errors.Is(err, domain.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
