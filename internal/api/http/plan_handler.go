package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/service"
)

type createPlanRequest struct {
	ShopkeeperID         uuid.UUID        `json:"shopkeeper_id"`
	BuyerID              uuid.UUID        `json:"buyer_id"`
	ProductID            *uuid.UUID       `json:"product_id,omitempty"`
	PlanName             string           `json:"plan_name"`
	TotalAmount          decimal.Decimal  `json:"total_amount"`
	DownPayment          decimal.Decimal  `json:"down_payment"`
	InterestRate         decimal.Decimal  `json:"interest_rate"`
	NumberOfInstallments int              `json:"number_of_installments"`
	Frequency            domain.Frequency `json:"frequency"`
	StartDate            time.Time        `json:"start_date"`
	Notes                string           `json:"notes,omitempty"`
}

type planResponse struct {
	Plan  *domain.Plan             `json:"plan"`
	Slots []domain.InstallmentSlot `json:"slots,omitempty"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, slots, err := s.plans.CreatePlan(r.Context(), service.CreatePlanInput{
		ShopkeeperID:         req.ShopkeeperID,
		BuyerID:              req.BuyerID,
		ProductID:            req.ProductID,
		PlanName:             req.PlanName,
		TotalAmount:          req.TotalAmount,
		DownPayment:          req.DownPayment,
		InterestRate:         req.InterestRate,
		NumberOfInstallments: req.NumberOfInstallments,
		Frequency:            req.Frequency,
		StartDate:            req.StartDate,
		Notes:                req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, planResponse{Plan: plan, Slots: slots})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	plan, slots, err := s.plans.GetPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, planResponse{Plan: plan, Slots: slots})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	// Buyer listing takes precedence when both query params are present.
	if buyerID := r.URL.Query().Get("buyer_id"); buyerID != "" {
		id, err := uuid.Parse(buyerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid buyer_id")
			return
		}
		plans, err := s.plans.ListBuyerPlans(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
		return
	}

	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	status := domain.PlanStatus(r.URL.Query().Get("status"))
	plans, err := s.plans.ListPlans(r.Context(), shopkeeperID, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}

func (s *Server) handlePlanStats(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	stats, err := s.plans.GetPlanStats(r.Context(), shopkeeperID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	slot, err := s.plans.GetSlot(r.Context(), slotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

type submitProofRequest struct {
	PaymentProof  string               `json:"payment_proof"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	TransactionID string               `json:"transaction_id,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

func (s *Server) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	var req submitProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, err := s.plans.SubmitProof(r.Context(), slotID, req.PaymentProof, req.PaymentMethod, req.TransactionID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

type verifyPaymentRequest struct {
	VerifierID uuid.UUID `json:"verifier_id"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, plan, err := s.plans.VerifyPayment(r.Context(), slotID, req.VerifierID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slot": slot,
		"plan": plan,
	})
}

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectPayment(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	var req rejectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, err := s.plans.RejectPayment(r.Context(), slotID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) handleListPendingPayments(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	slots, err := s.plans.ListPendingPayments(r.Context(), shopkeeperID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

func (s *Server) handleListOverduePayments(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	slots, err := s.plans.ListOverduePayments(r.Context(), shopkeeperID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

// pathUUID parses a UUID route variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// queryUUID parses a required UUID query parameter.
func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.URL.Query().Get(name))
}
