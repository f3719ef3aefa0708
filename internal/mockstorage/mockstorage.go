// Package mockstorage provides a testify-based mock implementation
// of the storage interfaces consumed by the service package.
// It is used to drive the failure paths of the service and the HTTP handlers.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

// StorageMock is a testify mock that implements every storage method
// the service depends on.
type StorageMock struct {
	mock.Mock
}

// Ping mocks the pinger interface to simulate a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetUsers mocks listing all users.
func (m *StorageMock) GetUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID uint32) (user.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *StorageMock) CreateUser(ctx context.Context, name string) (user.User, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *StorageMock) RenameUser(ctx context.Context, userID uint32, name string) (user.User, error) {
	args := m.Called(ctx, userID, name)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *StorageMock) AddHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error) {
	args := m.Called(ctx, userID, hoursToAdd)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *StorageMock) DeleteUser(ctx context.Context, userID uint32) (user.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.User), args.Error(1)
}

// DeleteAllUsers mocks wiping the storage.
func (m *StorageMock) DeleteAllUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
