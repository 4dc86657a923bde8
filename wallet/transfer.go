package wallet

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/common"
	"github.com/cryptify-labs/cryptify-client/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// genericFailureReason is surfaced when the provider error carries no
// usable message.
const genericFailureReason = "transaction failed"

// TransferSubmitter validates transfer input, converts display units to base
// units, submits the transaction and tracks it to confirmation or failure.
//
// Lifecycle: idle -> validating -> submitting -> awaiting_confirmation ->
// confirmed | failed. While submitting or awaiting confirmation, further
// submissions are rejected with ErrSubmissionInProgress. There is no
// auto-retry; retry is a fresh user-initiated Submit.
type TransferSubmitter struct {
	session  *SessionStore
	registry Registry
	fetcher  *AccountFetcher
	log      *zap.Logger

	mu     sync.Mutex
	status model.SubmissionStatus
}

// NewTransferSubmitter creates a submitter in the idle state.
func NewTransferSubmitter(session *SessionStore, registry Registry, fetcher *AccountFetcher, log *zap.Logger) *TransferSubmitter {
	return &TransferSubmitter{
		session:  session,
		registry: registry,
		fetcher:  fetcher,
		log:      log,
		status: model.SubmissionStatus{
			State:     model.SubmissionIdle,
			UpdatedAt: time.Now(),
		},
	}
}

// Status returns a snapshot of the current submission status.
func (t *TransferSubmitter) Status() model.SubmissionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Submit runs one transfer through its full lifecycle. It blocks until the
// transaction is confirmed or fails; callers that need the intermediate
// states observe them through Status.
func (t *TransferSubmitter) Submit(ctx context.Context, req model.TransferRequest) (model.SubmissionStatus, error) {
	id := uuid.NewString()

	// Double-submission guard: claim the machine or bail out.
	t.mu.Lock()
	if !t.status.State.Terminal() {
		status := t.status
		t.mu.Unlock()
		return status, model.ErrSubmissionInProgress
	}
	t.status = model.SubmissionStatus{ID: id, State: model.SubmissionValidating, UpdatedAt: time.Now()}
	t.mu.Unlock()

	if err := validateRequest(&req); err != nil {
		// Validation failures return the machine to idle without touching
		// the wallet.
		t.transition(id, model.SubmissionIdle, "", "")
		return t.Status(), err
	}

	amountWei, err := common.EtherToWei(req.Amount)
	if err != nil {
		t.transition(id, model.SubmissionIdle, "", "")
		return t.Status(), &model.ValidationError{Field: "amount", Message: err.Error()}
	}

	if t.registry == nil {
		t.transition(id, model.SubmissionIdle, "", "")
		return t.Status(), model.ErrWalletUnavailable
	}

	sender := t.session.Address()
	if sender == "" {
		t.transition(id, model.SubmissionIdle, "", "")
		return t.Status(), &model.ValidationError{Field: "session", Message: "no wallet connected"}
	}

	t.transition(id, model.SubmissionSubmitting, "", "")
	t.log.Info("submitting transfer",
		zap.String("submission_id", id),
		zap.String("recipient", req.Recipient),
		zap.String("amount", req.Amount))

	pending, err := t.registry.SendFunds(ctx, req.Recipient, req.Memo, amountWei)
	if err != nil {
		reason := failureReason(err)
		t.transition(id, model.SubmissionFailed, "", reason)
		t.log.Warn("transfer submission rejected", zap.String("submission_id", id), zap.Error(err))
		return t.Status(), &model.ProviderError{Op: "transfer submission", Err: err}
	}

	txHash := pending.Hash()
	t.transition(id, model.SubmissionAwaiting, txHash, "")
	t.log.Info("transfer accepted, awaiting confirmation",
		zap.String("submission_id", id), zap.String("tx_hash", txHash))

	if err := pending.Wait(ctx); err != nil {
		reason := failureReason(err)
		t.transition(id, model.SubmissionFailed, txHash, reason)
		t.log.Warn("transfer failed during confirmation wait",
			zap.String("submission_id", id), zap.Error(err))
		return t.Status(), &model.ProviderError{Op: "confirmation wait", Err: err}
	}

	t.transition(id, model.SubmissionConfirmed, txHash, "")
	t.log.Info("transfer confirmed", zap.String("submission_id", id), zap.String("tx_hash", txHash))

	// The request is settled; refresh balance and history for the sender.
	if t.fetcher != nil {
		if err := t.fetcher.Refresh(ctx, sender); err != nil {
			t.log.Warn("post-transfer refresh failed", zap.Error(err))
		}
	}

	return t.Status(), nil
}

func (t *TransferSubmitter) transition(id string, state model.SubmissionState, txHash, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = model.SubmissionStatus{
		ID:        id,
		State:     state,
		TxHash:    txHash,
		Reason:    reason,
		UpdatedAt: time.Now(),
	}
}

// validateRequest checks user input before any provider call.
func validateRequest(req *model.TransferRequest) error {
	req.Recipient = strings.TrimSpace(req.Recipient)
	if req.Recipient == "" {
		return &model.ValidationError{Field: "recipient", Message: "enter a valid recipient username or address"}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return &model.ValidationError{Field: "amount", Message: "enter a valid positive amount"}
	}

	return nil
}

// failureReason extracts a human-readable reason from a provider error.
func failureReason(err error) string {
	if err == nil {
		return genericFailureReason
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return genericFailureReason
	}
	return msg
}
