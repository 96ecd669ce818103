package contract

import (
	"context"
	"iter"
	"time"

	"github.com/huangsam/revstamp/schema"
	"github.com/stretchr/testify/mock"
)

// MockVCSClient is a mock implementation of VCSClient for testing.
type MockVCSClient struct {
	mock.Mock
}

var _ VCSClient = &MockVCSClient{} // Compile-time check

// Kind implements the VCSClient interface.
func (m *MockVCSClient) Kind() schema.BackendKind {
	args := m.Called()
	return args.Get(0).(schema.BackendKind)
}

// IsVersionedDirectory implements the VCSClient interface.
func (m *MockVCSClient) IsVersionedDirectory(ctx context.Context, dir string) (bool, error) {
	args := m.Called(ctx, dir)
	return args.Bool(0), args.Error(1)
}

// ResolveRootAndPath implements the VCSClient interface.
func (m *MockVCSClient) ResolveRootAndPath(ctx context.Context, dir string) (string, string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.String(1), args.Error(2)
}

// StreamStatus implements the VCSClient interface.
// The mocked return value is a slice of records and an optional error yielded after them.
func (m *MockVCSClient) StreamStatus(ctx context.Context, dir string, opts StatusOptions) iter.Seq2[schema.StatusRecord, error] {
	args := m.Called(ctx, dir, opts)
	records, _ := args.Get(0).([]schema.StatusRecord)
	failure := args.Error(1)
	return func(yield func(schema.StatusRecord, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
		if failure != nil {
			yield(schema.StatusRecord{}, failure)
		}
	}
}

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ HistoryStore = &MockHistoryStore{} // Compile-time check

// Record implements the HistoryStore interface.
func (m *MockHistoryStore) Record(run schema.HistoryRecord) (int64, error) {
	args := m.Called(run)
	return args.Get(0).(int64), args.Error(1)
}

// List implements the HistoryStore interface.
func (m *MockHistoryStore) List(limit int) ([]schema.HistoryRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.HistoryRecord)
	return runs, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOutputWriter is a mock implementation of OutputWriter for testing.
type MockOutputWriter struct {
	mock.Mock
}

var _ OutputWriter = &MockOutputWriter{} // Compile-time check

// WriteRevisionInfo implements the OutputWriter interface.
func (m *MockOutputWriter) WriteRevisionInfo(info schema.RevisionInfo, cfg *Config, duration time.Duration) error {
	args := m.Called(info, cfg, duration)
	return args.Error(0)
}

// WriteHistory implements the OutputWriter interface.
func (m *MockOutputWriter) WriteHistory(runs []schema.HistoryRecord, cfg *Config, duration time.Duration) error {
	args := m.Called(runs, cfg, duration)
	return args.Error(0)
}
