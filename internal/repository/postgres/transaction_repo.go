package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, workspace_id, description, merchant, amount::text, gst_inclusive,
	gst_amount::text, tax_category, business_use_pct, is_capital, date, notes, receipt_id,
	created_at, updated_at`

// Create creates a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO transactions (workspace_id, description, merchant, amount, gst_inclusive,
			gst_amount, tax_category, business_use_pct, is_capital, date, notes, receipt_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+transactionColumns,
		transaction.WorkspaceID, transaction.Description, transaction.Merchant,
		transaction.Amount.String(), transaction.GSTInclusive, transaction.GSTAmount.String(),
		string(transaction.TaxCategory), transaction.BusinessUsePct, transaction.IsCapital,
		transaction.Date, stringPtrToPgText(transaction.Notes), transaction.ReceiptID)
	return scanTransaction(row)
}

// GetByID retrieves a transaction scoped to a workspace
func (r *TransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	return scanTransaction(row)
}

// GetByWorkspace retrieves transactions for a workspace with optional
// filters and pagination
func (r *TransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
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
			conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
		}
		if filters.Category != nil {
			args = append(args, string(*filters.Category))
			conditions = append(conditions, fmt.Sprintf("tax_category = $%d", len(args)))
		}
		if filters.Merchant != nil {
			args = append(args, "%"+*filters.Merchant+"%")
			conditions = append(conditions, fmt.Sprintf("merchant ILIKE $%d", len(args)))
		}
	}
	where := strings.Join(conditions, " AND ")

	var totalItems int64
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM transactions WHERE "+where, args...).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	args = append(args, pageSize, offset)
	query := fmt.Sprintf("SELECT "+transactionColumns+` FROM transactions
		 WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       result,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// GetByDateRange retrieves a workspace's transactions inside [start, end)
func (r *TransactionRepository) GetByDateRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE workspace_id = $1 AND date >= $2 AND date < $3 AND deleted_at IS NULL
		 ORDER BY date, id`,
		workspaceID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// Update replaces a transaction's mutable fields
func (r *TransactionRepository) Update(workspaceID int32, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE transactions
		 SET description = $3, merchant = $4, amount = $5, gst_inclusive = $6, gst_amount = $7,
			 tax_category = $8, business_use_pct = $9, is_capital = $10, date = $11, notes = $12,
			 receipt_id = $13, updated_at = now()
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+transactionColumns,
		workspaceID, id, transaction.Description, transaction.Merchant,
		transaction.Amount.String(), transaction.GSTInclusive, transaction.GSTAmount.String(),
		string(transaction.TaxCategory), transaction.BusinessUsePct, transaction.IsCapital,
		transaction.Date, stringPtrToPgText(transaction.Notes), transaction.ReceiptID)
	return scanTransaction(row)
}

// SetCategory reassigns a transaction's tax category and business-use split.
// The capital flag travels with the category because it is derived from it.
func (r *TransactionRepository) SetCategory(workspaceID int32, id int32, category domain.TaxCategoryCode, businessUsePct int32, isCapital bool) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE transactions
		 SET tax_category = $3, business_use_pct = $4, is_capital = $5, updated_at = now()
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+transactionColumns,
		workspaceID, id, string(category), businessUsePct, isCapital)
	return scanTransaction(row)
}

// SoftDelete marks a transaction deleted without removing the row
func (r *TransactionRepository) SoftDelete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE transactions SET deleted_at = now()
		 WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		amount    string
		gstAmount string
		category  string
		notes     pgtype.Text
		receiptID pgtype.Int4
	)
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.Description, &t.Merchant, &amount, &t.GSTInclusive,
		&gstAmount, &category, &t.BusinessUsePct, &t.IsCapital, &t.Date, &notes, &receiptID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	if t.GSTAmount, err = decimal.NewFromString(gstAmount); err != nil {
		return nil, err
	}
	t.TaxCategory = domain.TaxCategoryCode(category)
	t.Notes = pgTextToStringPtr(notes)
	if receiptID.Valid {
		t.ReceiptID = &receiptID.Int32
	}
	return &t, nil
}
