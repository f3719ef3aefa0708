package models

import "errors"

type CreateUserRequest struct {
	Name string `json:"name" validate:"notblank"`
}

type UpdateUserRequest struct {
	Name string `json:"name"`
}

// AddHoursRequest keeps the camelCase `hoursToAdd` name used by existing clients.
type AddHoursRequest struct {
	HoursToAdd *float64 `json:"hoursToAdd"`
}

type InternalStatsResponse struct {
	Users      int     `json:"users"`
	TotalHours float64 `json:"total_hours"`
}

const (
	MessageUserNotFound      = "User not found"
	MessageNameRequired      = "Name is required and must be a non-empty string"
	MessageInvalidBody       = "Invalid request body"
	MessageHoursToAddMissing = "hoursToAdd is required and must be a number"
	MessageHoursOutOfRange   = "hoursToAdd would make hours_worked out of range"
	MessageOriginNotAllowed  = "Origin is not allowed to make this request"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNameRequired    = errors.New("name is required and must be a non-empty string")
	ErrHoursOutOfRange = errors.New("hours worked out of range")
	ErrIDsExhausted    = errors.New("no user ids left")
)
