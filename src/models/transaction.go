package models

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionDividend TransactionType = "DIVIDEND"
	TransactionSplit    TransactionType = "SPLIT"
	TransactionAdjust   TransactionType = "ADJUST" // system correction, e.g. from a snapshot sync
)

// Valid reports whether t is one of the declared transaction kinds.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionDividend, TransactionSplit, TransactionAdjust:
		return true
	}
	return false
}

// Transaction is a single entry in the append-only ledger. The ledger is the
// only source of truth for positions; entries are never updated or deleted.
//
// Quantity is signed: positive for BUY and ADJUST increases, negative for
// SELL and ADJUST decreases. Date is in "2006-01-02" format.
type Transaction struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	SecurityID string          `json:"security_id"`
	Type       TransactionType `json:"type"`
	Quantity   float64         `json:"quantity"`
	Price      float64         `json:"price"` // unit price at execution
	Date       string          `json:"date"`
	Note       string          `json:"note,omitempty"`
}
