package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cryptify-labs/cryptify-client/internal/model"
	"github.com/cryptify-labs/cryptify-client/wallet"
)

// WalletHandler exposes the wallet core to the presentation layer. It only
// forwards user intents and renders state; all control flow lives in the
// wallet package.
type WalletHandler struct {
	session   *wallet.SessionStore
	guard     *wallet.NetworkGuard
	fetcher   *wallet.AccountFetcher
	submitter *wallet.TransferSubmitter
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(session *wallet.SessionStore, guard *wallet.NetworkGuard, fetcher *wallet.AccountFetcher, submitter *wallet.TransferSubmitter) *WalletHandler {
	return &WalletHandler{
		session:   session,
		guard:     guard,
		fetcher:   fetcher,
		submitter: submitter,
	}
}

// Connect handles POST /wallet/connect
// @Summary      Connect wallet
// @Description  Requests account access from the wallet and opens a session
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.Session
// @Failure      503  {object}  model.ErrorResponse
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.session.Connect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Disconnect handles POST /wallet/disconnect
// @Summary      Disconnect wallet
// @Description  Clears the local session; wallet-side permission is untouched
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.Session
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	if err := h.session.Disconnect(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Session())
}

// Session handles GET /wallet/session
// @Summary      Current session
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.Session
// @Router       /wallet/session [get]
func (h *WalletHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Session())
}

// Balance handles GET /wallet/balance
// @Summary      Get wallet balance (USD = ETH * rate)
// @Description  Returns the last fetched native balance for the session address
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := h.session.Address()
	if address == "" {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "no wallet connected"})
		return
	}

	// Serve the committed value after a best-effort refresh.
	_ = h.fetcher.FetchBalance(r.Context(), address)
	balance := h.fetcher.Balance()
	if balance == nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "balance not available"})
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// NetworkAlert handles GET /network/alert
// @Summary      Wrong-network alert state
// @Tags         network
// @Produce      json
// @Success      200  {object}  model.NetworkAlert
// @Router       /network/alert [get]
func (h *WalletHandler) NetworkAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	alert := h.guard.Alert()
	if alert == nil {
		writeJSON(w, http.StatusOK, model.NetworkAlert{Active: false})
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// DismissAlert handles POST /network/alert/dismiss
// @Summary      Dismiss the wrong-network alert
// @Tags         network
// @Produce      json
// @Success      200  {object}  model.NetworkAlert
// @Router       /network/alert/dismiss [post]
func (h *WalletHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	h.guard.Dismiss()
	writeJSON(w, http.StatusOK, model.NetworkAlert{Active: false})
}

// AllTransactions handles GET /transactions
// @Summary      Full registry transaction log
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  model.TransactionsResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /transactions [get]
func (h *WalletHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	if err := h.fetcher.FetchAllTransactions(r.Context()); err != nil && len(h.fetcher.AllTransactions()) == 0 {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TransactionsResponse{
		Transactions: h.fetcher.AllTransactions(),
	})
}

// UserTransactions handles GET /transactions/user
// @Summary      Transaction log scoped to the session address
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  model.TransactionsResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /transactions/user [get]
func (h *WalletHandler) UserTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := h.session.Address()
	if address == "" {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "no wallet connected"})
		return
	}

	if err := h.fetcher.FetchUserTransactions(r.Context(), address); err != nil && len(h.fetcher.UserTransactions()) == 0 {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TransactionsResponse{
		Address:      address,
		Transactions: h.fetcher.UserTransactions(),
	})
}

// Transfer handles POST /transfer
// @Summary      Submit a value transfer
// @Description  Validates input, submits sendFunds and waits for confirmation
// @Tags         transfer
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Transfer data"
// @Success      200      {object}  model.SubmissionStatus
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
		return
	}

	status, err := h.submitter.Submit(r.Context(), req)
	if err != nil {
		writeErrorWithStatus(w, err, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// TransferStatus handles GET /transfer/status
// @Summary      Current transfer submission status
// @Tags         transfer
// @Produce      json
// @Success      200  {object}  model.SubmissionStatus
// @Router       /transfer/status [get]
func (h *WalletHandler) TransferStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.submitter.Status())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrWalletUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error(), Code: "WALLET_UNAVAILABLE"})
	case errors.Is(err, model.ErrUserRejected):
		writeJSON(w, http.StatusForbidden, model.ErrorResponse{Error: err.Error(), Code: "USER_REJECTED"})
	case errors.Is(err, model.ErrSubmissionInProgress):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: "SUBMISSION_IN_PROGRESS"})
	case model.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
	case model.IsProviderError(err):
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: err.Error(), Code: "PROVIDER_ERROR"})
	default:
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
	}
}

// writeErrorWithStatus is writeError for submission failures, where the
// submitter's terminal status carries the human-readable reason.
func writeErrorWithStatus(w http.ResponseWriter, err error, status model.SubmissionStatus) {
	if model.IsProviderError(err) && status.State == model.SubmissionFailed {
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: status.Reason, Code: "PROVIDER_ERROR"})
		return
	}
	writeError(w, err)
}
