// Package service holds the hours tracker business rules shared by the HTTP
// and gRPC transports: name validation, the partial update policy and stats.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/hourstracker/internal/models"
	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

var (
	ErrUserNotFound = models.ErrUserNotFound
	ErrNameRequired = models.ErrNameRequired
)

type usersReader interface {
	GetUsers(ctx context.Context) ([]user.User, error)
	GetUserByID(ctx context.Context, userID uint32) (user.User, error)
}

type usersWriter interface {
	CreateUser(ctx context.Context, name string) (user.User, error)
	RenameUser(ctx context.Context, userID uint32, name string) (user.User, error)
	AddHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error)
	DeleteUser(ctx context.Context, userID uint32) (user.User, error)
	DeleteAllUsers(ctx context.Context) ([]user.User, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersReader
	usersWriter
	pinger
}

type Service struct {
	db       storage
	validate *validator.Validate
}

func New(db storage) (*Service, error) {
	validate := validator.New()

	err := validate.RegisterValidation("notblank", validateNotBlank)
	if err != nil {
		return nil,
			fmt.Errorf(
				"in internal/service/service.go/New(): error while `validate.RegisterValidation()` calling: %w",
				err,
			)
	}

	return &Service{
		db:       db,
		validate: validate,
	}, nil
}

func validateNotBlank(fieldLevel validator.FieldLevel) bool {
	return !isBlank(fieldLevel.Field().String())
}

func isBlank(name string) bool {
	return strings.TrimSpace(name) == ""
}

func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.db.GetUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, userID uint32) (user.User, error) {
	return s.db.GetUserByID(ctx, userID)
}

// CreateUser rejects blank names with ErrNameRequired. The name is stored as
// sent, only the check is done on the trimmed value.
func (s *Service) CreateUser(ctx context.Context, request models.CreateUserRequest) (user.User, error) {
	err := s.validate.Struct(request)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return user.User{}, ErrNameRequired
		}
		return user.User{}, err
	}

	return s.db.CreateUser(ctx, request.Name)
}

// UpdateUserName replaces the name only when the new one is not blank. A blank
// name is not an error: the user is returned unchanged.
func (s *Service) UpdateUserName(
	ctx context.Context,
	userID uint32,
	request models.UpdateUserRequest,
) (user.User, error) {
	if isBlank(request.Name) {
		return s.db.GetUserByID(ctx, userID)
	}

	return s.db.RenameUser(ctx, userID, request.Name)
}

// AddUserHours adds any delta, negative values included.
func (s *Service) AddUserHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error) {
	return s.db.AddHours(ctx, userID, hoursToAdd)
}

func (s *Service) DeleteUser(ctx context.Context, userID uint32) (user.User, error) {
	return s.db.DeleteUser(ctx, userID)
}

func (s *Service) DeleteAllUsers(ctx context.Context) ([]user.User, error) {
	return s.db.DeleteAllUsers(ctx)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns the number of users and the sum of their hours.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	users, err := s.db.GetUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	hours := funk.Map(users, func(usr user.User) float64 {
		return usr.HoursWorked
	}).([]float64)

	return models.InternalStatsResponse{
		Users:      len(users),
		TotalHours: funk.SumFloat64(hours),
	}, nil
}
