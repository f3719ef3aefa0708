// Package user defines the user record kept by the hours tracker.
package user

// User is a tracked person and the hours they have worked so far.
type User struct {
	// ID is assigned by the storage, starting at 1, and is never reused
	// until the storage is wiped.
	ID uint32 `json:"id"`

	// Name is never blank once stored.
	Name string `json:"name"`

	// HoursWorked only grows through AddHours calls.
	HoursWorked float64 `json:"hours_worked"`
}
