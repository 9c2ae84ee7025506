package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/service"
)

type createRecordRequest struct {
	CustomerID         uuid.UUID       `json:"customer_id"`
	ShopkeeperID       uuid.UUID       `json:"shopkeeper_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description,omitempty"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	AdvancePayment     decimal.Decimal `json:"advance_payment"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	StartDate          time.Time       `json:"start_date"`
	DefaultPeriod      int             `json:"default_period,omitempty"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	Notes              string          `json:"notes,omitempty"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.records.CreateRecord(r.Context(), service.CreateRecordInput{
		CustomerID:         req.CustomerID,
		ShopkeeperID:       req.ShopkeeperID,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		TotalCost:          req.TotalCost,
		AdvancePayment:     req.AdvancePayment,
		MonthlyInstallment: req.MonthlyInstallment,
		StartDate:          req.StartDate,
		DefaultPeriod:      req.DefaultPeriod,
		InterestRate:       req.InterestRate,
		Notes:              req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, payments, err := s.records.GetRecord(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":   record,
		"payments": payments,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	completed, err := queryBoolPtr(r, "completed")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid completed filter")
		return
	}

	records, err := s.records.ListRecords(r.Context(), shopkeeperID, completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func (s *Server) handleListCustomerRecords(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	completed, err := queryBoolPtr(r, "completed")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid completed filter")
		return
	}

	records, err := s.records.ListCustomerRecords(r.Context(), customerID, completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

type addPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Notes       string          `json:"notes,omitempty"`
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, record, err := s.records.AddPayment(r.Context(), recordID, req.Amount, req.PaymentDate, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"record":  record,
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := s.records.GetPayment(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	record, err := s.records.DeletePayment(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": record})
}

func (s *Server) handleRecordStatus(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	status, err := s.records.GetStatus(r.Context(), recordID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days, err := s.records.DaysOverdue(r.Context(), recordID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"days_overdue": days,
	})
}

func (s *Server) handleCustomerDues(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	dues, err := s.records.GetCustomerDues(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dues)
}

func (s *Server) handleListOverdueRecords(w http.ResponseWriter, r *http.Request) {
	shopkeeperID, err := queryUUID(r, "shopkeeper_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shopkeeper_id")
		return
	}

	records, err := s.records.ListOverdueRecords(r.Context(), shopkeeperID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// queryBoolPtr parses an optional boolean query parameter. A missing
// parameter returns nil, meaning no filter.
func queryBoolPtr(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
