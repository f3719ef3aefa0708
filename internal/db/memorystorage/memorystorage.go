// Package memorystorage keeps users in process memory. All reads and writes
// of the user list and the id counter go through a single RWMutex, so id
// allocation and insertion happen as one critical section.
package memorystorage

import (
	"context"
	"math"
	"sync"

	"github.com/patric-chuzhbe/hourstracker/internal/models"
	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

const firstUserID uint32 = 1

// MemoryStorage is an ordered list of users plus the next id to hand out.
// Users are returned by value, callers never hold references into the list.
type MemoryStorage struct {
	mu         sync.RWMutex
	users      []user.User
	nextUserID uint32
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:      []user.User{},
		nextUserID: firstUserID,
	}, nil
}

// GetUsers returns a snapshot of all users in insertion order.
func (theStorage *MemoryStorage) GetUsers(ctx context.Context) ([]user.User, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	result := make([]user.User, len(theStorage.users))
	copy(result, theStorage.users)

	return result, nil
}

func (theStorage *MemoryStorage) GetUserByID(ctx context.Context, userID uint32) (user.User, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	i := theStorage.indexOf(userID)
	if i < 0 {
		return user.User{}, models.ErrUserNotFound
	}

	return theStorage.users[i], nil
}

// CreateUser stores a new user with zero hours under the next free id. Ids
// never wrap: once the counter reaches math.MaxUint32 creation fails with
// models.ErrIDsExhausted until DeleteAllUsers resets it.
func (theStorage *MemoryStorage) CreateUser(ctx context.Context, name string) (user.User, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if theStorage.nextUserID == math.MaxUint32 {
		return user.User{}, models.ErrIDsExhausted
	}

	usr := user.User{
		ID:          theStorage.nextUserID,
		Name:        name,
		HoursWorked: 0,
	}
	theStorage.nextUserID++
	theStorage.users = append(theStorage.users, usr)

	return usr, nil
}

func (theStorage *MemoryStorage) RenameUser(ctx context.Context, userID uint32, name string) (user.User, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	i := theStorage.indexOf(userID)
	if i < 0 {
		return user.User{}, models.ErrUserNotFound
	}
	theStorage.users[i].Name = name

	return theStorage.users[i], nil
}

func (theStorage *MemoryStorage) AddHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	i := theStorage.indexOf(userID)
	if i < 0 {
		return user.User{}, models.ErrUserNotFound
	}
	total := theStorage.users[i].HoursWorked + hoursToAdd
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return user.User{}, models.ErrHoursOutOfRange
	}
	theStorage.users[i].HoursWorked = total

	return theStorage.users[i], nil
}

// DeleteUser removes the user and returns what was stored.
func (theStorage *MemoryStorage) DeleteUser(ctx context.Context, userID uint32) (user.User, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	i := theStorage.indexOf(userID)
	if i < 0 {
		return user.User{}, models.ErrUserNotFound
	}
	deleted := theStorage.users[i]
	theStorage.users = append(theStorage.users[:i], theStorage.users[i+1:]...)

	return deleted, nil
}

// DeleteAllUsers empties the storage and restarts ids from 1.
func (theStorage *MemoryStorage) DeleteAllUsers(ctx context.Context) ([]user.User, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	theStorage.users = []user.User{}
	theStorage.nextUserID = firstUserID

	return []user.User{}, nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

// indexOf must be called with mu held.
func (theStorage *MemoryStorage) indexOf(userID uint32) int {
	for i := range theStorage.users {
		if theStorage.users[i].ID == userID {
			return i
		}
	}

	return -1
}
