package di

import (
	"context"
	"errors"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// User represents a test model for integration tests
type User struct {
	ID       string `json:"id" bun:"id,pk"`
	Name     string `json:"name" bun:"name"`
	Email    string `json:"email" bun:"email"`
	CreateTs int64  `json:"create_ts" bun:"create_ts"`
}

// mockUserRepository provides a fake repository implementation for testing
type mockUserRepository struct {
	mu        sync.RWMutex
	users     map[string]User
	callCount map[string]int // Track method calls to verify caching behavior
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:     make(map[string]User),
		callCount: make(map[string]int),
	}
}

func (m *mockUserRepository) trackCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount[method]++
}

func (m *mockUserRepository) getCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount[method]
}

// GetByID implementation for mock repository
func (m *mockUserRepository) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (User, error) {
	m.trackCall("GetByID")
	m.mu.RLock()
	user, exists := m.users[id]
	m.mu.RUnlock()
	if !exists {
		return User{}, errors.New("user not found")
	}
	return user, nil
}

// Get implementation for mock repository
func (m *mockUserRepository) Get(ctx context.Context, criteria ...repository.SelectCriteria) (User, error) {
	m.trackCall("Get")
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Simple implementation - return first user if any exists
	for _, user := range m.users {
		return user, nil
	}
	return User{}, errors.New("no users found")
}

// List implementation for mock repository
func (m *mockUserRepository) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]User, int, error) {
	m.trackCall("List")
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, len(users), nil
}

// Count implementation for mock repository
func (m *mockUserRepository) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	m.trackCall("Count")
	m.mu.RLock()
	count := len(m.users)
	m.mu.RUnlock()
	return count, nil
}

// GetByIdentifier implementation for mock repository
func (m *mockUserRepository) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (User, error) {
	m.trackCall("GetByIdentifier")
	return m.GetByID(ctx, identifier, criteria...)
}

// Create implementation for mock repository
func (m *mockUserRepository) Create(ctx context.Context, user User, criteria ...repository.InsertCriteria) (User, error) {
	m.trackCall("Create")
	if user.CreateTs == 0 {
		user.CreateTs = time.Now().Unix()
	}
	m.mu.Lock()
	m.users[user.ID] = user
	m.mu.Unlock()
	return user, nil
}

// Update implementation for mock repository
func (m *mockUserRepository) Update(ctx context.Context, user User, criteria ...repository.UpdateCriteria) (User, error) {
	m.trackCall("Update")
	m.mu.Lock()
	m.users[user.ID] = user
	m.mu.Unlock()
	return user, nil
}

// Delete implementation for mock repository
func (m *mockUserRepository) Delete(ctx context.Context, user User) error {
	m.trackCall("Delete")
	m.mu.Lock()
	delete(m.users, user.ID)
	m.mu.Unlock()
	return nil
}

// Stub implementations for other required methods
func (m *mockUserRepository) CreateTx(ctx context.Context, tx bun.IDB, record User, criteria ...repository.InsertCriteria) (User, error) {
	return m.Create(ctx, record, criteria...)
}
func (m *mockUserRepository) CreateMany(ctx context.Context, records []User, criteria ...repository.InsertCriteria) ([]User, error) {
	for _, record := range records {
		m.Create(ctx, record, criteria...)
	}
	return records, nil
}
func (m *mockUserRepository) CreateManyTx(ctx context.Context, tx bun.IDB, records []User, criteria ...repository.InsertCriteria) ([]User, error) {
	return m.CreateMany(ctx, records, criteria...)
}
func (m *mockUserRepository) GetOrCreate(ctx context.Context, record User) (User, error) {
	m.mu.RLock()
	if existing, exists := m.users[record.ID]; exists {
		m.mu.RUnlock()
		return existing, nil
	}
	m.mu.RUnlock()
	return m.Create(ctx, record)
}
func (m *mockUserRepository) GetOrCreateTx(ctx context.Context, tx bun.IDB, record User) (User, error) {
	return m.GetOrCreate(ctx, record)
}
func (m *mockUserRepository) UpdateTx(ctx context.Context, tx bun.IDB, record User, criteria ...repository.UpdateCriteria) (User, error) {
	return m.Update(ctx, record, criteria...)
}
func (m *mockUserRepository) UpdateMany(ctx context.Context, records []User, criteria ...repository.UpdateCriteria) ([]User, error) {
	for _, record := range records {
		m.Update(ctx, record, criteria...)
	}
	return records, nil
}
func (m *mockUserRepository) UpdateManyTx(ctx context.Context, tx bun.IDB, records []User, criteria ...repository.UpdateCriteria) ([]User, error) {
	return m.UpdateMany(ctx, records, criteria...)
}
func (m *mockUserRepository) Upsert(ctx context.Context, record User, criteria ...repository.UpdateCriteria) (User, error) {
	return m.Update(ctx, record, criteria...)
}
func (m *mockUserRepository) UpsertTx(ctx context.Context, tx bun.IDB, record User, criteria ...repository.UpdateCriteria) (User, error) {
	return m.Upsert(ctx, record, criteria...)
}
func (m *mockUserRepository) UpsertMany(ctx context.Context, records []User, criteria ...repository.UpdateCriteria) ([]User, error) {
	return m.UpdateMany(ctx, records, criteria...)
}
func (m *mockUserRepository) UpsertManyTx(ctx context.Context, tx bun.IDB, records []User, criteria ...repository.UpdateCriteria) ([]User, error) {
	return m.UpsertMany(ctx, records, criteria...)
}
func (m *mockUserRepository) DeleteTx(ctx context.Context, tx bun.IDB, record User) error {
	return m.Delete(ctx, record)
}
func (m *mockUserRepository) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	m.trackCall("DeleteMany")
	// Simple implementation - clear all users
	m.mu.Lock()
	m.users = make(map[string]User)
	m.mu.Unlock()
	return nil
}
func (m *mockUserRepository) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return m.DeleteMany(ctx, criteria...)
}
func (m *mockUserRepository) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return m.DeleteMany(ctx, criteria...)
}
func (m *mockUserRepository) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return m.DeleteWhere(ctx, criteria...)
}
func (m *mockUserRepository) ForceDelete(ctx context.Context, record User) error {
	return m.Delete(ctx, record)
}
func (m *mockUserRepository) ForceDeleteTx(ctx context.Context, tx bun.IDB, record User) error {
	return m.ForceDelete(ctx, record)
}
func (m *mockUserRepository) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (User, error) {
	return m.Get(ctx, criteria...)
}
func (m *mockUserRepository) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (User, error) {
	return m.GetByID(ctx, id, criteria...)
}
func (m *mockUserRepository) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]User, int, error) {
	return m.List(ctx, criteria...)
}
func (m *mockUserRepository) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return m.Count(ctx, criteria...)
}
func (m *mockUserRepository) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (User, error) {
	return m.GetByIdentifier(ctx, identifier, criteria...)
}
func (m *mockUserRepository) Raw(ctx context.Context, sql string, args ...any) ([]User, error) {
	m.trackCall("Raw")
	return nil, errors.New("raw queries not supported in mock")
}
func (m *mockUserRepository) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]User, error) {
	return m.Raw(ctx, sql, args...)
}
func (m *mockUserRepository) Handlers() repository.ModelHandlers[User] {
	return repository.ModelHandlers[User]{}
}

// Interface assertion to ensure mockUserRepository implements Repository[User]
var _ repository.Repository[User] = (*mockUserRepository)(nil)
