// Package interceptor holds the gRPC server interceptors.
package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/hourstracker/internal/logger"
)

// UnaryLoggingInterceptor logs method, duration and resulting status of
// every unary call to one of loggedMethods.
func UnaryLoggingInterceptor(loggedMethods []string) grpc.UnaryServerInterceptor {
	logged := make(map[string]struct{}, len(loggedMethods))
	for _, m := range loggedMethods {
		logged[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		if _, ok := logged[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		start := time.Now()

		resp, err = handler(ctx, req)

		st, _ := status.FromError(err)

		logger.Log.Infoln(
			"gRPC request",
			"method", info.FullMethod,
			"duration", time.Since(start),
			"code", st.Code().String(),
			"message", st.Message(),
		)

		return resp, err
	}
}
