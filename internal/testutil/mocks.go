// Package testutil provides in-memory mock repositories for service and
// handler tests.
package testutil

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = uuid.New()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates only the user's name by Auth0 ID
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces map[int32]*domain.Workspace
	ByUserID   map[uuid.UUID]*domain.Workspace
	AuthIDs    map[string]*domain.Workspace
	nextID     int32
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[int32]*domain.Workspace),
		ByUserID:   make(map[uuid.UUID]*domain.Workspace),
		AuthIDs:    make(map[string]*domain.Workspace),
		nextID:     1,
	}
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	if workspace, ok := m.Workspaces[id]; ok {
		return workspace, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserID retrieves a workspace by user ID
func (m *MockWorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	if workspace, ok := m.ByUserID[userID]; ok {
		return workspace, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserAuth0ID retrieves a workspace by the owning user's Auth0 ID
func (m *MockWorkspaceRepository) GetByUserAuth0ID(auth0ID string) (*domain.Workspace, error) {
	if workspace, ok := m.AuthIDs[auth0ID]; ok {
		return workspace, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// Create creates a new workspace
func (m *MockWorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	workspace.ID = m.nextID
	m.nextID++
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	return workspace, nil
}

// UpdateProfile updates workspace business details
func (m *MockWorkspaceRepository) UpdateProfile(id int32, name string, abn, businessName *string) (*domain.Workspace, error) {
	workspace, ok := m.Workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	workspace.Name = name
	workspace.ABN = abn
	workspace.BusinessName = businessName
	return workspace, nil
}

// AddWorkspace adds a workspace to the mock repository (helper for tests)
func (m *MockWorkspaceRepository) AddWorkspace(workspace *domain.Workspace, auth0ID string) {
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	if auth0ID != "" {
		m.AuthIDs[auth0ID] = workspace
	}
	if workspace.ID >= m.nextID {
		m.nextID = workspace.ID + 1
	}
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	nextID       int32
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		nextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = m.nextID
	m.nextID++
	transaction.CreatedAt = time.Now().UTC()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID || tx.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// GetByWorkspace retrieves transactions with filters and pagination
func (m *MockTransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.WorkspaceID != workspaceID || tx.DeletedAt != nil {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && !tx.Date.Before(*filters.EndDate) {
				continue
			}
			if filters.Category != nil && tx.TaxCategory != *filters.Category {
				continue
			}
		}
		matched = append(matched, tx)
	}

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}

	return &domain.PaginatedTransactions{
		Data:       matched,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(len(matched)),
		TotalPages: 1,
	}, nil
}

// GetByDateRange retrieves transactions within [start, end)
func (m *MockTransactionRepository) GetByDateRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.WorkspaceID != workspaceID || tx.DeletedAt != nil {
			continue
		}
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		matched = append(matched, tx)
	}
	return matched, nil
}

// Update replaces a transaction's fields
func (m *MockTransactionRepository) Update(workspaceID int32, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	transaction.ID = existing.ID
	transaction.WorkspaceID = workspaceID
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now().UTC()
	m.Transactions[id] = transaction
	return transaction, nil
}

// SetCategory updates the category, business-use percentage and capital flag
func (m *MockTransactionRepository) SetCategory(workspaceID int32, id int32, category domain.TaxCategoryCode, businessUsePct int32, isCapital bool) (*domain.Transaction, error) {
	tx, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	tx.TaxCategory = category
	tx.BusinessUsePct = businessUsePct
	tx.IsCapital = isCapital
	tx.UpdatedAt = time.Now().UTC()
	return tx, nil
}

// SoftDelete marks a transaction deleted
func (m *MockTransactionRepository) SoftDelete(workspaceID int32, id int32) error {
	tx, err := m.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	tx.DeletedAt = &now
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == 0 {
		transaction.ID = m.nextID
		m.nextID++
	}
	m.Transactions[transaction.ID] = transaction
	if transaction.ID >= m.nextID {
		m.nextID = transaction.ID + 1
	}
}

// MockReceiptRepository is a mock implementation of domain.ReceiptRepository
type MockReceiptRepository struct {
	Receipts map[int32]*domain.Receipt
	nextID   int32
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{
		Receipts: make(map[int32]*domain.Receipt),
		nextID:   1,
	}
}

// Create creates a new receipt
func (m *MockReceiptRepository) Create(receipt *domain.Receipt) (*domain.Receipt, error) {
	receipt.ID = m.nextID
	m.nextID++
	receipt.CreatedAt = time.Now().UTC()
	receipt.UpdatedAt = receipt.CreatedAt
	m.Receipts[receipt.ID] = receipt
	return receipt, nil
}

// GetByID retrieves a receipt by ID
func (m *MockReceiptRepository) GetByID(workspaceID int32, id int32) (*domain.Receipt, error) {
	receipt, ok := m.Receipts[id]
	if !ok || receipt.WorkspaceID != workspaceID || receipt.DeletedAt != nil {
		return nil, domain.ErrReceiptNotFound
	}
	return receipt, nil
}

// GetByWorkspace retrieves receipts with filters and pagination
func (m *MockReceiptRepository) GetByWorkspace(workspaceID int32, filters *domain.ReceiptFilters) (*domain.PaginatedReceipts, error) {
	var matched []*domain.Receipt
	for _, receipt := range m.Receipts {
		if receipt.WorkspaceID != workspaceID || receipt.DeletedAt != nil {
			continue
		}
		if filters != nil && filters.Category != nil && receipt.TaxCategory != *filters.Category {
			continue
		}
		matched = append(matched, receipt)
	}
	return &domain.PaginatedReceipts{
		Data:       matched,
		Page:       1,
		PageSize:   domain.DefaultPageSize,
		TotalItems: int64(len(matched)),
		TotalPages: 1,
	}, nil
}

// UpdateImage sets the stored image URLs on a receipt
func (m *MockReceiptRepository) UpdateImage(workspaceID int32, id int32, imageURL, thumbnailURL string) (*domain.Receipt, error) {
	receipt, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	receipt.ImageURL = &imageURL
	receipt.ThumbnailURL = &thumbnailURL
	receipt.UpdatedAt = time.Now().UTC()
	return receipt, nil
}

// SoftDelete marks a receipt deleted
func (m *MockReceiptRepository) SoftDelete(workspaceID int32, id int32) error {
	receipt, err := m.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	receipt.DeletedAt = &now
	return nil
}

// MockCategoryRuleRepository is a mock implementation of domain.CategoryRuleRepository
type MockCategoryRuleRepository struct {
	Rules  map[int32]*domain.CategoryRule
	nextID int32
}

// NewMockCategoryRuleRepository creates a new MockCategoryRuleRepository
func NewMockCategoryRuleRepository() *MockCategoryRuleRepository {
	return &MockCategoryRuleRepository{
		Rules:  make(map[int32]*domain.CategoryRule),
		nextID: 1,
	}
}

// Create creates a new rule
func (m *MockCategoryRuleRepository) Create(rule *domain.CategoryRule) (*domain.CategoryRule, error) {
	rule.ID = m.nextID
	m.nextID++
	rule.CreatedAt = time.Now().UTC()
	rule.UpdatedAt = rule.CreatedAt
	m.Rules[rule.ID] = rule
	return rule, nil
}

// GetByID retrieves a rule by ID
func (m *MockCategoryRuleRepository) GetByID(workspaceID, id int32) (*domain.CategoryRule, error) {
	rule, ok := m.Rules[id]
	if !ok || rule.Workspace != workspaceID {
		return nil, domain.ErrRuleNotFound
	}
	return rule, nil
}

// GetByWorkspace retrieves all rules for a workspace in insertion order
func (m *MockCategoryRuleRepository) GetByWorkspace(workspaceID int32) ([]*domain.CategoryRule, error) {
	var matched []*domain.CategoryRule
	for id := int32(1); id < m.nextID; id++ {
		rule, ok := m.Rules[id]
		if ok && rule.Workspace == workspaceID {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

// Update replaces a rule's fields
func (m *MockCategoryRuleRepository) Update(workspaceID, id int32, rule *domain.CategoryRule) (*domain.CategoryRule, error) {
	existing, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	rule.ID = existing.ID
	rule.Workspace = workspaceID
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()
	m.Rules[id] = rule
	return rule, nil
}

// Delete removes a rule
func (m *MockCategoryRuleRepository) Delete(workspaceID, id int32) error {
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	delete(m.Rules, id)
	return nil
}

// AddRule adds a rule to the mock repository (helper for tests)
func (m *MockCategoryRuleRepository) AddRule(rule *domain.CategoryRule) {
	if rule.ID == 0 {
		rule.ID = m.nextID
	}
	m.Rules[rule.ID] = rule
	if rule.ID >= m.nextID {
		m.nextID = rule.ID + 1
	}
}

// MockEventPublisher records published WebSocket events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent pairs an event with the workspace it was published to
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// PublishedTypes returns the combined event types in publish order
func (m *MockEventPublisher) PublishedTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
