package memorystorage

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/patric-chuzhbe/hourstracker/internal/models"
	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err, "The memorystorage.New() should not return error")

		users, err := theStorage.GetUsers(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)

		alice, err := theStorage.CreateUser(context.Background(), "Alice")
		require.NoError(t, err)
		assert.Equal(t, user.User{ID: 1, Name: "Alice", HoursWorked: 0}, alice)

		found, err := theStorage.GetUserByID(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice, found)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	first, err := theStorage.CreateUser(ctx, "first")
	require.NoError(t, err)
	second, err := theStorage.CreateUser(ctx, "second")
	require.NoError(t, err)

	deleted, err := theStorage.DeleteUser(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, deleted)

	third, err := theStorage.CreateUser(ctx, "third")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), third.ID)

	users, err := theStorage.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.User{first, third}, users)
}

func TestDeleteAllUsersResetsCounter(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		_, err := theStorage.CreateUser(ctx, name)
		require.NoError(t, err)
	}

	remaining, err := theStorage.DeleteAllUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
	assert.Empty(t, remaining)

	usr, err := theStorage.CreateUser(ctx, "Carl")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), usr.ID)
}

func TestAddHoursAndRename(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	usr, err := theStorage.CreateUser(ctx, "Bob")
	require.NoError(t, err)

	_, err = theStorage.AddHours(ctx, usr.ID, 5)
	require.NoError(t, err)
	usr, err = theStorage.AddHours(ctx, usr.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 1, Name: "Bob", HoursWorked: 8}, usr)

	usr, err = theStorage.AddHours(ctx, usr.ID, -2.5)
	require.NoError(t, err)
	assert.Equal(t, 5.5, usr.HoursWorked)

	usr, err = theStorage.RenameUser(ctx, usr.ID, " Robert ")
	require.NoError(t, err)
	assert.Equal(t, " Robert ", usr.Name)
	assert.Equal(t, 5.5, usr.HoursWorked)
}

func TestAddHoursRejectsOverflow(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	usr, err := theStorage.CreateUser(ctx, "Bob")
	require.NoError(t, err)

	_, err = theStorage.AddHours(ctx, usr.ID, 1e308)
	require.NoError(t, err)

	_, err = theStorage.AddHours(ctx, usr.ID, 1e308)
	assert.ErrorIs(t, err, models.ErrHoursOutOfRange)

	_, err = theStorage.AddHours(ctx, usr.ID, math.Inf(-1))
	assert.ErrorIs(t, err, models.ErrHoursOutOfRange)

	_, err = theStorage.AddHours(ctx, usr.ID, math.NaN())
	assert.ErrorIs(t, err, models.ErrHoursOutOfRange)

	stored, err := theStorage.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1e308, stored.HoursWorked, "rejected deltas must leave the total unchanged")
}

func TestCreateUserDoesNotWrapIDs(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	theStorage.nextUserID = math.MaxUint32 - 1

	usr, err := theStorage.CreateUser(ctx, "Last")
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32-1), usr.ID)

	_, err = theStorage.CreateUser(ctx, "Overflow")
	assert.ErrorIs(t, err, models.ErrIDsExhausted)

	users, err := theStorage.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = theStorage.DeleteAllUsers(ctx)
	require.NoError(t, err)
	usr, err = theStorage.CreateUser(ctx, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), usr.ID)
}

func TestSnapshotsAreDetached(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	_, err = theStorage.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	users, err := theStorage.GetUsers(ctx)
	require.NoError(t, err)
	users[0].Name = "Mallory"

	stored, err := theStorage.GetUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	_, err = theStorage.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	_, err = theStorage.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = theStorage.RenameUser(ctx, 42, "x")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = theStorage.AddHours(ctx, 42, 1)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = theStorage.DeleteUser(ctx, 42)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	users, err := theStorage.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.User{{ID: 1, Name: "Alice"}}, users)
}

func TestConcurrentCreateYieldsDistinctIDs(t *testing.T) {
	const amountOfWorkers = 64
	const usersPerWorker = 50

	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		ids = map[uint32]struct{}{}
	)

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < amountOfWorkers; w++ {
		g.Go(func() error {
			for i := 0; i < usersPerWorker; i++ {
				usr, err := theStorage.CreateUser(gCtx, "worker")
				if err != nil {
					return err
				}
				if _, err := theStorage.AddHours(gCtx, usr.ID, 1); err != nil {
					return err
				}
				mu.Lock()
				ids[usr.ID] = struct{}{}
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ids, amountOfWorkers*usersPerWorker)

	users, err := theStorage.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, amountOfWorkers*usersPerWorker)
	for i, usr := range users {
		assert.Equal(t, uint32(i+1), usr.ID, "ids must grow in insertion order")
		assert.Equal(t, 1.0, usr.HoursWorked)
	}
}
