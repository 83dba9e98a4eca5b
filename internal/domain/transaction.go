package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single business transaction. Amount is signed: positive
// for sales/income, negative for purchases/expenses, matching the direction
// convention the GST and BAS services expect.
type Transaction struct {
	ID             int32           `json:"id"`
	WorkspaceID    int32           `json:"workspaceId"`
	Description    string          `json:"description"`
	Merchant       string          `json:"merchant"`
	Amount         decimal.Decimal `json:"amount"`
	GSTInclusive   bool            `json:"gstInclusive"`
	GSTAmount      decimal.Decimal `json:"gstAmount"`
	TaxCategory    TaxCategoryCode `json:"taxCategory"`
	BusinessUsePct int32           `json:"businessUsePercentage"`
	IsCapital      bool            `json:"isCapital"`
	Date           time.Time       `json:"date"`
	Notes          *string         `json:"notes,omitempty"`
	ReceiptID      *int32          `json:"receiptId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
}

// ClassifiedTransaction is a transaction annotated with its claimable
// deduction figure. Built transiently per request, never persisted as such.
type ClassifiedTransaction struct {
	Transaction
	ClaimableAmount decimal.Decimal  `json:"claimableAmount"`
	AppliedLimit    *decimal.Decimal `json:"appliedLimit,omitempty"`
}

// TransactionFilters narrows workspace transaction queries.
type TransactionFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *TaxCategoryCode
	Merchant  *string
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedTransactions is a page of transactions plus paging metadata.
type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(workspaceID int32, id int32) (*Transaction, error)
	GetByWorkspace(workspaceID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	GetByDateRange(workspaceID int32, start, end time.Time) ([]*Transaction, error)
	Update(workspaceID int32, id int32, transaction *Transaction) (*Transaction, error)
	SetCategory(workspaceID int32, id int32, category TaxCategoryCode, businessUsePct int32, isCapital bool) (*Transaction, error)
	SoftDelete(workspaceID int32, id int32) error
}
