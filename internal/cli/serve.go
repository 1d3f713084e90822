package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/runnerr0/quipu/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	s, err := openSession(c.globals, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	host := s.cfg.Server.Host
	if c.Host != "" {
		host = c.Host
	}
	port := s.cfg.Server.Port
	if c.Port != 0 {
		port = c.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, err := s.controller(ctx, "", 0)
	if err != nil {
		return err
	}

	return server.New(ctrl, s.logger).ListenAndServe(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
}
