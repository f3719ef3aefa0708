package grpcserver

import (
	"context"
	"errors"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/hourstracker/internal/models"
	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

type usersService interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, userID uint32) (user.User, error)
	CreateUser(ctx context.Context, request models.CreateUserRequest) (user.User, error)
	UpdateUserName(ctx context.Context, userID uint32, request models.UpdateUserRequest) (user.User, error)
	AddUserHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error)
	DeleteUser(ctx context.Context, userID uint32) (user.User, error)
	DeleteAllUsers(ctx context.Context) ([]user.User, error)
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

// UsersHandler serves hourstracker.UsersService on top of the service layer.
type UsersHandler struct {
	svc usersService
}

func NewUsersHandler(svc usersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return status.Error(codes.NotFound, models.MessageUserNotFound)
	case errors.Is(err, models.ErrNameRequired):
		return status.Error(codes.InvalidArgument, models.MessageNameRequired)
	case errors.Is(err, models.ErrHoursOutOfRange):
		return status.Error(codes.InvalidArgument, models.MessageHoursOutOfRange)
	case errors.Is(err, models.ErrIDsExhausted):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func userToMap(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"id":           usr.ID,
		"name":         usr.Name,
		"hours_worked": usr.HoursWorked,
	}
}

func userToStruct(usr user.User) (*structpb.Struct, error) {
	result, err := structpb.NewStruct(userToMap(usr))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}

func usersToList(users []user.User) (*structpb.ListValue, error) {
	items := make([]interface{}, 0, len(users))
	for _, usr := range users {
		items = append(items, userToMap(usr))
	}

	result, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}

// userIDFromStruct reads the numeric "id" field. A number that is not a
// valid uint32 can not belong to any user.
func userIDFromStruct(in *structpb.Struct) (uint32, error) {
	value, ok := in.GetFields()["id"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "id is required and must be a number")
	}
	if _, isNumber := value.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, status.Error(codes.InvalidArgument, "id is required and must be a number")
	}

	id := value.GetNumberValue()
	if id < 0 || id > math.MaxUint32 || id != math.Trunc(id) {
		return 0, status.Error(codes.NotFound, models.MessageUserNotFound)
	}

	return uint32(id), nil
}

// nameFromStruct returns "" when the field is absent; a non-string name is rejected.
func nameFromStruct(in *structpb.Struct) (string, error) {
	value, ok := in.GetFields()["name"]
	if !ok {
		return "", nil
	}
	if _, isString := value.GetKind().(*structpb.Value_StringValue); !isString {
		return "", status.Error(codes.InvalidArgument, models.MessageInvalidBody)
	}

	return value.GetStringValue(), nil
}

func (h *UsersHandler) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return usersToList(users)
}

func (h *UsersHandler) GetUser(ctx context.Context, in *wrapperspb.UInt32Value) (*structpb.Struct, error) {
	usr, err := h.svc.GetUser(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return userToStruct(usr)
}

func (h *UsersHandler) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, err := nameFromStruct(in)
	if err != nil {
		return nil, err
	}

	usr, err := h.svc.CreateUser(ctx, models.CreateUserRequest{Name: name})
	if err != nil {
		return nil, toStatus(err)
	}

	return userToStruct(usr)
}

// UpdateUser keeps the old name when the new one is blank or absent.
func (h *UsersHandler) UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromStruct(in)
	if err != nil {
		return nil, err
	}

	name, err := nameFromStruct(in)
	if err != nil {
		return nil, err
	}

	usr, err := h.svc.UpdateUserName(ctx, userID, models.UpdateUserRequest{Name: name})
	if err != nil {
		return nil, toStatus(err)
	}

	return userToStruct(usr)
}

func (h *UsersHandler) AddHours(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromStruct(in)
	if err != nil {
		return nil, err
	}

	value, ok := in.GetFields()["hoursToAdd"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, models.MessageHoursToAddMissing)
	}
	if _, isNumber := value.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return nil, status.Error(codes.InvalidArgument, models.MessageHoursToAddMissing)
	}

	usr, err := h.svc.AddUserHours(ctx, userID, value.GetNumberValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return userToStruct(usr)
}

func (h *UsersHandler) DeleteUser(ctx context.Context, in *wrapperspb.UInt32Value) (*structpb.Struct, error) {
	usr, err := h.svc.DeleteUser(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return userToStruct(usr)
}

func (h *UsersHandler) DeleteAllUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := h.svc.DeleteAllUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return usersToList(users)
}

func (h *UsersHandler) GetInternalStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := h.svc.GetInternalStats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := structpb.NewStruct(map[string]interface{}{
		"users":       stats.Users,
		"total_hours": stats.TotalHours,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}
