package domain

import "time"

// Kinds of transaction events.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventTransactionAmended  = "transaction.amended"
)

// TransactionEvent describes a committed balance mutation.
type TransactionEvent struct {
	Kind          string      `json:"kind"`
	Transaction   Transaction `json:"transaction"`
	WalletBalance string      `json:"wallet_balance"`
	OccurredAt    time.Time   `json:"occurred_at"`
}
