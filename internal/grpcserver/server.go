package grpcserver

import (
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/hourstracker/internal/grpcserver/interceptor"
)

func newServer(handler *UsersHandler) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor([]string{
				MethodListUsers,
				MethodGetUser,
				MethodCreateUser,
				MethodUpdateUser,
				MethodAddHours,
				MethodDeleteUser,
				MethodDeleteAllUsers,
				MethodGetInternalStats,
			}),
		),
	)
	RegisterUsersServiceServer(server, handler)

	return server
}

// NewGRPCServer binds addr and returns a server ready to Serve on the listener.
func NewGRPCServer(addr string, handler *UsersHandler) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	return newServer(handler), lis, nil
}
