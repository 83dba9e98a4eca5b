package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// ReceiptRepository implements domain.ReceiptRepository using PostgreSQL
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository creates a new ReceiptRepository
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

const receiptColumns = `id, workspace_id, merchant, description, total_amount::text, gst_amount::text,
	tax_category, business_use_pct, receipt_date, image_url, thumbnail_url, created_at, updated_at`

// Create creates a new receipt
func (r *ReceiptRepository) Create(receipt *domain.Receipt) (*domain.Receipt, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO receipts (workspace_id, merchant, description, total_amount, gst_amount,
			tax_category, business_use_pct, receipt_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+receiptColumns,
		receipt.WorkspaceID, receipt.Merchant, receipt.Description,
		receipt.TotalAmount.String(), receipt.GSTAmount.String(),
		string(receipt.TaxCategory), receipt.BusinessUsePct, receipt.ReceiptDate)
	return scanReceipt(row)
}

// GetByID retrieves a receipt scoped to a workspace
func (r *ReceiptRepository) GetByID(workspaceID int32, id int32) (*domain.Receipt, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+receiptColumns+` FROM receipts
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	return scanReceipt(row)
}

// GetByWorkspace retrieves receipts for a workspace with optional filters
// and pagination
func (r *ReceiptRepository) GetByWorkspace(workspaceID int32, filters *domain.ReceiptFilters) (*domain.PaginatedReceipts, error) {
	ctx := context.Background()

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}
	offset := (page - 1) * pageSize

	conditions := []string{"workspace_id = $1", "deleted_at IS NULL"}
	args := []interface{}{workspaceID}

	if filters != nil {
		if filters.StartDate != nil {
			args = append(args, *filters.StartDate)
			conditions = append(conditions, fmt.Sprintf("receipt_date >= $%d", len(args)))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			conditions = append(conditions, fmt.Sprintf("receipt_date <= $%d", len(args)))
		}
		if filters.Category != nil {
			args = append(args, string(*filters.Category))
			conditions = append(conditions, fmt.Sprintf("tax_category = $%d", len(args)))
		}
	}
	where := strings.Join(conditions, " AND ")

	var totalItems int64
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM receipts WHERE "+where, args...).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	args = append(args, pageSize, offset)
	query := fmt.Sprintf("SELECT "+receiptColumns+` FROM receipts
		 WHERE %s ORDER BY receipt_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedReceipts{
		Data:       result,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// UpdateImage stores the uploaded image and thumbnail locations
func (r *ReceiptRepository) UpdateImage(workspaceID int32, id int32, imageURL, thumbnailURL string) (*domain.Receipt, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE receipts SET image_url = $3, thumbnail_url = $4, updated_at = now()
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+receiptColumns,
		workspaceID, id, imageURL, thumbnailURL)
	return scanReceipt(row)
}

// SoftDelete marks a receipt deleted without removing the row
func (r *ReceiptRepository) SoftDelete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE receipts SET deleted_at = now()
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReceiptNotFound
	}
	return nil
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var (
		rc           domain.Receipt
		totalAmount  string
		gstAmount    string
		category     string
		imageURL     pgtype.Text
		thumbnailURL pgtype.Text
	)
	err := row.Scan(&rc.ID, &rc.WorkspaceID, &rc.Merchant, &rc.Description, &totalAmount, &gstAmount,
		&category, &rc.BusinessUsePct, &rc.ReceiptDate, &imageURL, &thumbnailURL,
		&rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}

	if rc.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, err
	}
	if rc.GSTAmount, err = decimal.NewFromString(gstAmount); err != nil {
		return nil, err
	}
	rc.TaxCategory = domain.TaxCategoryCode(category)
	rc.ImageURL = pgTextToStringPtr(imageURL)
	rc.ThumbnailURL = pgTextToStringPtr(thumbnailURL)
	return &rc, nil
}
