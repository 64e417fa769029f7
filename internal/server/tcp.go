package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"

	"go.uber.org/zap"
)

// Start runs the TCP listener until ctx is cancelled, invoking handler in
// its own goroutine for every accepted connection.
//
// If the requested port is already in use, the next port is tried until a
// listener binds; the bound address is logged.
func Start(ctx context.Context, logger *zap.Logger, host string, port int, handler func(conn net.Conn)) error {
	var ln net.Listener
	var err error

	for {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err = net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				port++
				continue
			}
			return err
		}
		break
	}

	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	// When ctx is cancelled, close the listener to unblock Accept.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil // graceful shutdown
			default:
				logger.Warn("accept failed", zap.Error(err))
				continue
			}
		}

		go handler(conn)
	}
}
