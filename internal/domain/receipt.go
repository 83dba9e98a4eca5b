package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a captured expense receipt. TotalAmount is the GST-inclusive
// figure printed on the receipt; GSTAmount is derived from it at capture
// time. ImageURL points at the stored display variant when an image was
// uploaded.
type Receipt struct {
	ID             int32           `json:"id"`
	WorkspaceID    int32           `json:"workspaceId"`
	Merchant       string          `json:"merchant"`
	Description    string          `json:"description"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	GSTAmount      decimal.Decimal `json:"gstAmount"`
	TaxCategory    TaxCategoryCode `json:"taxCategory"`
	BusinessUsePct int32           `json:"businessUsePercentage"`
	ReceiptDate    time.Time       `json:"receiptDate"`
	ImageURL       *string         `json:"imageUrl,omitempty"`
	ThumbnailURL   *string         `json:"thumbnailUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
}

// ReceiptFilters narrows workspace receipt queries.
type ReceiptFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *TaxCategoryCode
	Page      int32
	PageSize  int32
}

// PaginatedReceipts is a page of receipts plus paging metadata.
type PaginatedReceipts struct {
	Data       []*Receipt `json:"data"`
	Page       int32      `json:"page"`
	PageSize   int32      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int32      `json:"totalPages"`
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	Create(receipt *Receipt) (*Receipt, error)
	GetByID(workspaceID int32, id int32) (*Receipt, error)
	GetByWorkspace(workspaceID int32, filters *ReceiptFilters) (*PaginatedReceipts, error)
	UpdateImage(workspaceID int32, id int32, imageURL, thumbnailURL string) (*Receipt, error)
	SoftDelete(workspaceID int32, id int32) error
}
