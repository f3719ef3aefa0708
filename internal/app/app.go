// Package app initializes and runs the hours tracker service.
// It configures logging, storage and routing, starts the HTTP server and
// the optional gRPC server, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/hourstracker/internal/config"
	"github.com/patric-chuzhbe/hourstracker/internal/db/memorystorage"
	"github.com/patric-chuzhbe/hourstracker/internal/grpcserver"
	"github.com/patric-chuzhbe/hourstracker/internal/ipchecker"
	"github.com/patric-chuzhbe/hourstracker/internal/logger"
	"github.com/patric-chuzhbe/hourstracker/internal/router"
	"github.com/patric-chuzhbe/hourstracker/internal/service"
)

// App owns the configuration, the in-memory storage and the transports.
type App struct {
	cfg         *config.Config
	db          *memorystorage.MemoryStorage
	svc         *service.Service
	httpHandler http.Handler
}

// New loads the configuration, initializes the logger and builds the
// storage, the service and the HTTP router.
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = memorystorage.New()
	if err != nil {
		return nil, err
	}

	app.svc, err = service.New(app.db)
	if err != nil {
		return nil, err
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		app.svc,
		app.cfg.AllowedOrigin,
		app.cfg.CORSMaxAge,
		checker,
	)

	return app, nil
}

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.RunContext(ctx)
}

// RunContext binds the listeners and serves until ctx is done or a server
// fails. A bind failure is returned before anything is served.
func (a *App) RunContext(ctx context.Context) error {
	httpListener, err := net.Listen("tcp", a.cfg.RunAddr)
	if err != nil {
		return fmt.Errorf("in internal/app/app.go/RunContext(): error while `net.Listen()` calling: %w", err)
	}

	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
	)
	if a.cfg.GRPCAddr != "" {
		grpcServer, grpcListener, err = grpcserver.NewGRPCServer(a.cfg.GRPCAddr, grpcserver.NewUsersHandler(a.svc))
		if err != nil {
			_ = httpListener.Close()
			return fmt.Errorf("in internal/app/app.go/RunContext(): error while `grpcserver.NewGRPCServer()` calling: %w", err)
		}
	}

	server := &http.Server{
		Handler: a.httpHandler,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Infoln("server running", "RunAddr", httpListener.Addr().String())
		if err := server.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Log.Infoln("gRPC server running", "GRPCAddr", grpcListener.Addr().String())
			if err := grpcServer.Serve(grpcListener); err != nil {
				return fmt.Errorf("gRPC server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Log.Infoln("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.GracefulStop()
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil
	})

	runErr := g.Wait()

	if err := a.db.Close(); err != nil {
		logger.Log.Debugln("Error calling the `a.db.Close()`: ", zap.Error(err))
	}

	return runErr
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
