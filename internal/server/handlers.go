package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/session"
)

type amount struct {
	Value   int64  `json:"value"`
	Display string `json:"display"`
}

func (s *Server) amount(v int64) amount {
	return amount{Value: v, Display: s.money.Format(v)}
}

type entryResponse struct {
	ID      int64     `json:"id"`
	Date    time.Time `json:"date"`
	Kind    string    `json:"kind"`
	Amount  amount    `json:"amount"`
	Reason  string    `json:"reason"`
	Balance amount    `json:"balance"`
}

type studentResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	SchoolName string `json:"school_name"`
}

type bankResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	IFSC string `json:"ifsc"`
}

type passbookResponse struct {
	AccountNumber string           `json:"account_number"`
	IFSC          string           `json:"ifsc"`
	InitialAmount amount           `json:"initial_amount"`
	Student       *studentResponse `json:"student"`
	Bank          *bankResponse    `json:"bank"`
	Entries       []entryResponse  `json:"entries"`
	Balance       amount           `json:"balance"`
}

type historyResponse struct {
	AccountNumber string          `json:"account_number"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Entries       []entryResponse `json:"entries"`
}

type summaryResponse struct {
	TotalInitial     amount `json:"total_initial"`
	TotalDeposits    amount `json:"total_deposits"`
	TotalWithdrawals amount `json:"total_withdrawals"`
	NetBalance       amount `json:"net_balance"`
	AccountCount     int    `json:"account_count"`
	TransactionCount int    `json:"transaction_count"`
}

func (s *Server) entries(steps []ledger.Step) []entryResponse {
	out := make([]entryResponse, 0, len(steps))
	for _, st := range steps {
		out = append(out, entryResponse{
			ID:      st.Transaction.ID,
			Date:    st.Transaction.Date,
			Kind:    string(st.Transaction.Kind),
			Amount:  s.amount(st.Transaction.Amount),
			Reason:  st.Transaction.Reason,
			Balance: s.amount(st.Balance),
		})
	}
	return out
}

func studentView(st *model.Student) *studentResponse {
	if st == nil {
		return nil
	}
	return &studentResponse{ID: st.ID, Name: st.Name, Class: st.Class, SchoolName: st.SchoolName}
}

func bankView(b *model.BankBranch) *bankResponse {
	if b == nil {
		return nil
	}
	return &bankResponse{ID: b.ID, Name: b.Name, IFSC: b.IFSC}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if err := SessionFrom(r.Context()).RequireAdmin(); err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.svc.Summary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalInitial:     s.amount(sum.TotalInitial),
		TotalDeposits:    s.amount(sum.TotalDeposits),
		TotalWithdrawals: s.amount(sum.TotalWithdrawals),
		NetBalance:       s.amount(sum.NetBalance),
		AccountCount:     sum.AccountCount,
		TransactionCount: sum.TransactionCount,
	})
}

// viewable resolves the {number} path parameter and checks the caller may read it.
func (s *Server) viewable(w http.ResponseWriter, r *http.Request) (string, bool) {
	number := chi.URLParam(r, "number")
	if err := SessionFrom(r.Context()).CanView(number); err != nil {
		s.fail(w, r, err)
		return "", false
	}
	return number, true
}

func (s *Server) handlePassbook(w http.ResponseWriter, r *http.Request) {
	number, ok := s.viewable(w, r)
	if !ok {
		return
	}
	pb, err := s.svc.Passbook(r.Context(), number)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, passbookResponse{
		AccountNumber: pb.Account.AccountNumber,
		IFSC:          pb.Account.IFSC,
		InitialAmount: s.amount(pb.Account.InitialAmount),
		Student:       studentView(pb.Student),
		Bank:          bankView(pb.Bank),
		Entries:       s.entries(pb.Statement()),
		Balance:       s.amount(pb.Balance()),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	number, ok := s.viewable(w, r)
	if !ok {
		return
	}
	bal, err := s.svc.Balance(r.Context(), number)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_number": number,
		"balance":        s.amount(bal),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	number, ok := s.viewable(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	h, err := s.svc.HistoryDays(r.Context(), number, q.Get("from"), q.Get("to"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		AccountNumber: number,
		From:          h.From,
		To:            h.To,
		Entries:       s.entries(h.Entries),
	})
}

func statusFor(err error) int {
	var verrs banking.ValidationErrors
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, banking.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
