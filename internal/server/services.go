package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// HTTPService serves handler on addr.
func HTTPService(addr string, handler http.Handler, logger *zap.Logger) Service {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			logger.Info("http server listening", zap.String("addr", lis.Addr().String()))
			if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func(ctx context.Context) {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
				_ = srv.Close()
			}
		},
	}
}

// GRPCService serves s on addr. Stop drains in-flight calls until ctx ends,
// then forces the server closed.
func GRPCService(addr string, s *grpc.Server, logger *zap.Logger) Service {
	return &FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return s.Serve(lis)
		},
		StopFn: func(ctx context.Context) {
			done := make(chan struct{})
			go func() {
				s.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
				s.Stop()
			}
		},
	}
}

// HealthLoop probes a backend every interval and logs failures. Stop runs
// closeFn, if any, after the loop exits.
func HealthLoop(name string, interval time.Duration, check func(ctx context.Context) error, closeFn func(), logger *zap.Logger) Service {
	quit := make(chan struct{})
	exited := make(chan struct{})
	return &FuncService{
		StartFn: func() error {
			defer close(exited)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-quit:
					return nil
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), interval/2)
					if err := check(ctx); err != nil {
						logger.Warn("health check failed", zap.String("backend", name), zap.Error(err))
					}
					cancel()
				}
			}
		},
		StopFn: func(ctx context.Context) {
			close(quit)
			select {
			case <-exited:
			case <-ctx.Done():
			}
			if closeFn != nil {
				closeFn()
			}
		},
	}
}
