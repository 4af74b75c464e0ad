package chimer

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/oshokin/hourly-chime/internal/api/grpc/control"
	"github.com/oshokin/hourly-chime/internal/instance"
	"github.com/oshokin/hourly-chime/internal/logger"
)

// serveControl starts the control channel for svc on address.
// It returns the address actually bound and a function stopping the server.
func serveControl(ctx context.Context, svc control.Service, address string) (string, func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	control.RegisterChimeControlServer(grpcServer, control.NewServer(svc))

	// Closed after Serve returns so that stop blocks until the server is down.
	done := make(chan struct{})

	go func() {
		defer close(done)

		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			logger.ErrorKV(ctx, "Control channel failed", "error", serveErr)
		}
	}()

	stop := func() {
		grpcServer.GracefulStop()
		<-done
	}

	return lis.Addr().String(), stop, nil
}

// startControl serves the control channel and publishes its address next to
// the instance lock. Failures are logged: the scheduler keeps running and only
// loses remote control.
func startControl(ctx context.Context, svc control.Service, guard *instance.Guard, address string) func() {
	bound, stop, err := serveControl(ctx, svc, address)
	if err != nil {
		logger.WarnKV(ctx, "Control channel unavailable", "error", err)

		return func() {}
	}

	if err = guard.Publish(bound); err != nil {
		logger.WarnKV(ctx, "Control channel address not published", "error", err)
	}

	logger.DebugKV(ctx, "Control channel listening", "address", bound)

	return func() {
		if unpublishErr := guard.Unpublish(); unpublishErr != nil {
			logger.WarnKV(ctx, "Control channel address not removed", "error", unpublishErr)
		}

		stop()
	}
}
