// backend/src/services/transaction_service.go
package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/security/validation"
)

type transactionServiceImpl struct {
	accountStore  AccountStore
	securityStore SecurityStore
	ledger        LedgerStore
	locks         *AccountLocks
	invalidator   ReportInvalidator
}

func NewTransactionService(
	accountStore AccountStore,
	securityStore SecurityStore,
	ledger LedgerStore,
	locks *AccountLocks,
	invalidator ReportInvalidator,
) TransactionService {
	return &transactionServiceImpl{
		accountStore:  accountStore,
		securityStore: securityStore,
		ledger:        ledger,
		locks:         locks,
		invalidator:   invalidator,
	}
}

// AddManual appends one manually entered transaction. The ticker is
// normalized to uppercase and its security created on first reference,
// priced at the execution price. A SELL is stored as a negative magnitude
// no matter what sign the caller supplied.
func (s *transactionServiceImpl) AddManual(input ManualTransactionInput) (*models.Transaction, error) {
	ticker := validation.SanitizeText(strings.ToUpper(strings.TrimSpace(input.Ticker)))
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", ErrInvalidInput)
	}
	if err := validation.ValidateStringMaxLength(ticker, validation.MaxTickerLength, "ticker"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be non-zero", ErrInvalidInput)
	}
	if input.Type != "" && !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, input.Type)
	}
	if err := validation.ValidateCurrencyCode(input.Currency); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Date != "" {
		if _, err := validation.ValidateDateString(input.Date, "date"); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if err := validation.ValidateStringMaxLength(input.Note, validation.MaxNoteLength, "note"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock := s.locks.Lock(input.AccountID)
	defer unlock()

	account, err := s.accountStore.GetByID(input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", input.AccountID, err)
	}
	if account == nil {
		return nil, ErrTargetAccountNotFound
	}

	txType := input.Type
	if txType == "" {
		txType = models.TransactionBuy
	}
	date := input.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	security, err := s.securityStore.GetByTicker(ticker)
	if err != nil {
		return nil, fmt.Errorf("resolving security %s: %w", ticker, err)
	}
	if security == nil {
		created := models.Security{
			ID:           "sec_" + uuid.New().String(),
			Ticker:       ticker,
			Name:         ticker,
			Type:         models.SecurityStock,
			Sector:       "Other",
			Industry:     "Unknown",
			Country:      "Global",
			Currency:     currency,
			CurrentPrice: input.Price, // assume executed near market price
			LastUpdated:  date,
		}
		if err := s.securityStore.Insert(created); err != nil {
			return nil, fmt.Errorf("creating security %s: %w", ticker, err)
		}
		security = &created
		logger.L.Info("Created security from manual entry", "ticker", ticker, "currency", currency)
	}

	quantity := math.Abs(input.Quantity)
	if txType == models.TransactionSell {
		quantity = -quantity
	}

	tx := models.Transaction{
		ID:         "tx_man_" + uuid.New().String(),
		AccountID:  input.AccountID,
		SecurityID: security.ID,
		Type:       txType,
		Quantity:   quantity,
		Price:      input.Price,
		Date:       date,
		Note:       validation.SanitizeText(input.Note),
	}
	if err := s.ledger.Append(tx); err != nil {
		return nil, fmt.Errorf("appending transaction: %w", err)
	}

	s.invalidator.InvalidateOrgCache(account.OrgID)
	return &tx, nil
}

func (s *transactionServiceImpl) ListByAccount(accountID string) ([]models.Transaction, error) {
	account, err := s.accountStore.GetByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if account == nil {
		return nil, ErrTargetAccountNotFound
	}
	return s.ledger.ListByAccount(accountID)
}
