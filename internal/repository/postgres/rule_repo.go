package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// CategoryRuleRepository implements domain.CategoryRuleRepository using
// PostgreSQL. Only user-defined rules are persisted; system defaults live in
// embedded configuration.
type CategoryRuleRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRuleRepository creates a new CategoryRuleRepository
func NewCategoryRuleRepository(pool *pgxpool.Pool) *CategoryRuleRepository {
	return &CategoryRuleRepository{pool: pool}
}

const ruleColumns = "id, workspace_id, name, category, keywords, priority, created_at, updated_at"

// Create creates a new user rule
func (r *CategoryRuleRepository) Create(rule *domain.CategoryRule) (*domain.CategoryRule, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO category_rules (workspace_id, name, category, keywords, priority)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+ruleColumns,
		rule.Workspace, rule.Name, string(rule.Category), rule.Keywords, rule.Priority)
	return scanRule(row)
}

// GetByID retrieves a rule scoped to a workspace
func (r *CategoryRuleRepository) GetByID(workspaceID, id int32) (*domain.CategoryRule, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+ruleColumns+" FROM category_rules WHERE workspace_id = $1 AND id = $2",
		workspaceID, id)
	return scanRule(row)
}

// GetByWorkspace retrieves a workspace's rules ordered by priority
func (r *CategoryRuleRepository) GetByWorkspace(workspaceID int32) ([]*domain.CategoryRule, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+ruleColumns+` FROM category_rules
		 WHERE workspace_id = $1 ORDER BY priority DESC, id`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.CategoryRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

// Update replaces a rule's fields
func (r *CategoryRuleRepository) Update(workspaceID, id int32, rule *domain.CategoryRule) (*domain.CategoryRule, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE category_rules
		 SET name = $3, category = $4, keywords = $5, priority = $6, updated_at = now()
		 WHERE workspace_id = $1 AND id = $2
		 RETURNING `+ruleColumns,
		workspaceID, id, rule.Name, string(rule.Category), rule.Keywords, rule.Priority)
	return scanRule(row)
}

// Delete removes a rule
func (r *CategoryRuleRepository) Delete(workspaceID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM category_rules WHERE workspace_id = $1 AND id = $2",
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

func scanRule(row pgx.Row) (*domain.CategoryRule, error) {
	var (
		rule     domain.CategoryRule
		category string
	)
	err := row.Scan(&rule.ID, &rule.Workspace, &rule.Name, &category, &rule.Keywords,
		&rule.Priority, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}
	rule.Category = domain.TaxCategoryCode(category)
	rule.Source = domain.RuleSourceUser
	// Deductibility is category policy, not a stored rule attribute.
	rule.Deductible = domain.DeductibleCategory(rule.Category)
	return &rule, nil
}
