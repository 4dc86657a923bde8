package model

import "time"

// TransferRequest represents request for POST /transfer.
// Recipient may be a hex address or a username registered on the contract.
type TransferRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    string `json:"amount" binding:"required"` // display units, decimal string
	Memo      string `json:"memo"`
}

// SubmissionState is the lifecycle state of a transfer submission
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionValidating SubmissionState = "validating"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionAwaiting   SubmissionState = "awaiting_confirmation"
	SubmissionConfirmed  SubmissionState = "confirmed"
	SubmissionFailed     SubmissionState = "failed"
)

// Terminal reports whether the state allows a fresh submission.
func (s SubmissionState) Terminal() bool {
	return s == SubmissionIdle || s == SubmissionConfirmed || s == SubmissionFailed
}

// SubmissionStatus represents response for GET /transfer/status
type SubmissionStatus struct {
	ID        string          `json:"id,omitempty"`
	State     SubmissionState `json:"state"`
	TxHash    string          `json:"txHash,omitempty"`
	Reason    string          `json:"reason,omitempty"` // human-readable failure reason
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TransferRecord is one transfer as recorded by the registry contract.
// Records are read-only here; they change only on-chain.
type TransferRecord struct {
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    string    `json:"amount"`    // display units
	AmountWei string    `json:"amountWei"` // base units, decimal string
	Memo      string    `json:"memo"`
	Timestamp time.Time `json:"timestamp"`
	TxHash    string    `json:"txHash"`
}

// TransactionsResponse represents response for GET /transactions...
type TransactionsResponse struct {
	Address      string           `json:"address,omitempty"`
	Transactions []TransferRecord `json:"transactions"`
}
