package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The users service is described by hand over the protobuf well-known types,
// so no generated code is needed. Users travel as Struct values with the
// same fields as the HTTP JSON bodies.
const ServiceName = "hourstracker.UsersService"

const (
	MethodListUsers        = "/" + ServiceName + "/ListUsers"
	MethodGetUser          = "/" + ServiceName + "/GetUser"
	MethodCreateUser       = "/" + ServiceName + "/CreateUser"
	MethodUpdateUser       = "/" + ServiceName + "/UpdateUser"
	MethodAddHours         = "/" + ServiceName + "/AddHours"
	MethodDeleteUser       = "/" + ServiceName + "/DeleteUser"
	MethodDeleteAllUsers   = "/" + ServiceName + "/DeleteAllUsers"
	MethodGetInternalStats = "/" + ServiceName + "/GetInternalStats"
)

// UsersServiceServer is the server API of hourstracker.UsersService.
type UsersServiceServer interface {
	ListUsers(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	GetUser(ctx context.Context, in *wrapperspb.UInt32Value) (*structpb.Struct, error)
	CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	AddHours(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, in *wrapperspb.UInt32Value) (*structpb.Struct, error)
	DeleteAllUsers(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	GetInternalStats(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

type unaryMethodHandler = func(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error)

func unary[Req any, PReq interface {
	*Req
	proto.Message
}](
	fullMethod string,
	call func(server UsersServiceServer, ctx context.Context, in PReq) (proto.Message, error),
) unaryMethodHandler {
	return func(
		srv interface{},
		ctx context.Context,
		dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(UsersServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var usersServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsersServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListUsers",
			Handler: unary[emptypb.Empty, *emptypb.Empty](MethodListUsers,
				func(s UsersServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.ListUsers(ctx, in)
				}),
		},
		{
			MethodName: "GetUser",
			Handler: unary[wrapperspb.UInt32Value, *wrapperspb.UInt32Value](MethodGetUser,
				func(s UsersServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (proto.Message, error) {
					return s.GetUser(ctx, in)
				}),
		},
		{
			MethodName: "CreateUser",
			Handler: unary[structpb.Struct, *structpb.Struct](MethodCreateUser,
				func(s UsersServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
					return s.CreateUser(ctx, in)
				}),
		},
		{
			MethodName: "UpdateUser",
			Handler: unary[structpb.Struct, *structpb.Struct](MethodUpdateUser,
				func(s UsersServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
					return s.UpdateUser(ctx, in)
				}),
		},
		{
			MethodName: "AddHours",
			Handler: unary[structpb.Struct, *structpb.Struct](MethodAddHours,
				func(s UsersServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
					return s.AddHours(ctx, in)
				}),
		},
		{
			MethodName: "DeleteUser",
			Handler: unary[wrapperspb.UInt32Value, *wrapperspb.UInt32Value](MethodDeleteUser,
				func(s UsersServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (proto.Message, error) {
					return s.DeleteUser(ctx, in)
				}),
		},
		{
			MethodName: "DeleteAllUsers",
			Handler: unary[emptypb.Empty, *emptypb.Empty](MethodDeleteAllUsers,
				func(s UsersServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.DeleteAllUsers(ctx, in)
				}),
		},
		{
			MethodName: "GetInternalStats",
			Handler: unary[emptypb.Empty, *emptypb.Empty](MethodGetInternalStats,
				func(s UsersServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.GetInternalStats(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hourstracker/users.proto",
}

// RegisterUsersServiceServer registers srv on s.
func RegisterUsersServiceServer(s grpc.ServiceRegistrar, srv UsersServiceServer) {
	s.RegisterService(&usersServiceDesc, srv)
}
