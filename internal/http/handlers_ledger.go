package http

import (
	"net/http"
	"strings"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"

	"github.com/shopspring/decimal"
)

type (
	createAccountRequest struct {
		Name     string           `json:"name"`
		Type     string           `json:"type"`
		Balance  *decimal.Decimal `json:"balance"`
		Currency string           `json:"currency"`
	}

	createTransactionRequest struct {
		AccountID   string           `json:"accountId"`
		Amount      *decimal.Decimal `json:"amount"`
		Type        string           `json:"type"`
		Category    string           `json:"category"`
		Description string           `json:"description"`
		Date        *string          `json:"date"`
	}

	updateTransactionRequest struct {
		Amount      *decimal.Decimal `json:"amount"`
		Type        *string          `json:"type"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
		Date        *string          `json:"date"`
	}
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Ledger.ListAccounts(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch accounts")
		return
	}
	out := make([]accountView, len(accounts))
	for i, a := range accounts {
		out[i] = newAccountView(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	a, err := s.svc.Ledger.CreateAccount(r.Context(), auth.UserID(r.Context()), services.CreateAccountInput{
		Name:     req.Name,
		Type:     req.Type,
		Balance:  req.Balance,
		Currency: req.Currency,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, newAccountView(core.AccountSummary{Account: a}))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseTransactionQuery(r)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	page, err := s.svc.Ledger.ListTransactions(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		s.fail(w, r, err, "Failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": newTransactionViews(page.Transactions),
		"pagination":   newPaginationView(page),
	})
}

func (s *Server) parseTransactionQuery(r *http.Request) (services.ListTransactionsInput, error) {
	var (
		in  services.ListTransactionsInput
		err error
	)
	if v := queryString(r, "accountId"); v != nil {
		id, err := parseAccountID(*v)
		if err != nil {
			return in, err
		}
		in.AccountID = &id
	}
	if v := queryString(r, "category"); v != nil {
		c, err := core.ParseCategory(*v)
		if err != nil {
			return in, err
		}
		in.Category = &c
	}
	if v := queryString(r, "type"); v != nil {
		t, err := core.ParseTxType(*v)
		if err != nil {
			return in, err
		}
		in.Type = &t
	}
	if in.From, err = parseOptionalTime("from", queryString(r, "from"), s.loc, false); err != nil {
		return in, err
	}
	if in.To, err = parseOptionalTime("to", queryString(r, "to"), s.loc, true); err != nil {
		return in, err
	}
	if in.Limit, err = queryInt(r, "limit"); err != nil {
		return in, err
	}
	if in.Offset, err = queryInt(r, "offset"); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	in, err := s.transactionInput(req)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	t, err := s.svc.Ledger.CreateTransaction(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		s.fail(w, r, err, "Failed to create transaction")
		return
	}
	s.transactionsCreated.Add(1)
	writeJSON(w, http.StatusCreated, newTransactionView(t))
}

func (s *Server) transactionInput(req createTransactionRequest) (services.CreateTransactionInput, error) {
	var in services.CreateTransactionInput
	id, err := parseAccountID(req.AccountID)
	if err != nil {
		return in, err
	}
	txType, err := core.ParseTxType(req.Type)
	if err != nil {
		return in, err
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return in, err
	}
	date, err := parseOptionalTime("date", req.Date, s.loc, false)
	if err != nil {
		return in, err
	}
	return services.CreateTransactionInput{
		AccountID:   id,
		Amount:      req.Amount,
		Type:        txType,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	t, err := s.svc.Ledger.GetTransaction(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		s.fail(w, r, err, "Failed to fetch transaction")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionView(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	var req updateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	patch, err := s.transactionPatch(req)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	t, err := s.svc.Ledger.UpdateTransaction(r.Context(), auth.UserID(r.Context()), id, patch)
	if err != nil {
		s.fail(w, r, err, "Failed to update transaction")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionView(t))
}

func (s *Server) transactionPatch(req updateTransactionRequest) (core.TransactionPatch, error) {
	patch := core.TransactionPatch{Amount: req.Amount}
	if req.Type != nil {
		t, err := core.ParseTxType(*req.Type)
		if err != nil {
			return patch, err
		}
		patch.Type = &t
	}
	if req.Category != nil {
		c, err := core.ParseCategory(*req.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &c
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		patch.Description = &d
	}
	if req.Date != nil {
		d, err := parseTime("date", *req.Date, s.loc, false)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	return patch, nil
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	if err := s.svc.Ledger.DeleteTransaction(r.Context(), auth.UserID(r.Context()), id); err != nil {
		s.fail(w, r, err, "Failed to delete transaction")
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted via API",
		log.FieldTransactionID, id.String())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
