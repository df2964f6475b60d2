// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// -- Run Store Mock --

// MockRunStore mocks the schemas.RunStore interface.
type MockRunStore struct {
	mock.Mock
}

// SaveRun provides a mock function for archiving a finished run.
func (m *MockRunStore) SaveRun(ctx context.Context, run *schemas.RunResult) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetRun provides a mock function for retrieving an archived run.
func (m *MockRunStore) GetRun(ctx context.Context, runID string) (*schemas.RunResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.RunResult), args.Error(1)
}

// LatestRunID provides a mock function for resolving the most recent run.
func (m *MockRunStore) LatestRunID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
