package domain

import "time"

type Operation string

const (
	OperationCreate  Operation = "CREATE"
	OperationApprove Operation = "APPROVE"
	OperationReject  Operation = "REJECT"
	OperationExecute Operation = "EXECUTE"
	OperationCancel  Operation = "CANCEL"
)

// OperationLogEntry is an append-only audit record of one application
// transition. Snapshots are JSON-encoded application states.
type OperationLogEntry struct {
	ID            int64
	ApplicationID int64
	Operation     Operation
	Before        []byte
	After         []byte
	ActorID       int64
	ActorName     string
	Remark        string
	CreatedAt     time.Time
}

type FeeType string

const (
	FeeTypeTicketPrice  FeeType = "TICKET_PRICE"
	FeeTypeRefundFee    FeeType = "REFUND_FEE"
	FeeTypeRefundPayout FeeType = "REFUND_PAYOUT"
	FeeTypeChangeFee    FeeType = "CHANGE_FEE"
	FeeTypeServiceFee   FeeType = "SERVICE_FEE"
)

// FeeLedgerEntry is one row of the order fee ledger consumed by downstream
// accounting. TICKET_PRICE rows are the source of record for original fares.
type FeeLedgerEntry struct {
	ID          int64
	OrderID     int64
	PassengerID int64
	FeeType     FeeType
	AmountCents int64
	Currency    string
	Description string
	CreatedAt   time.Time
}
