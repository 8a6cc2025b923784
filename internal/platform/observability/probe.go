package observability

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
)

// TCPProbe accepts TCP connections and closes them immediately.
// Container platforms use it as a liveness check.
type TCPProbe struct {
	addr   string
	logger *zerolog.Logger
	ready  chan net.Addr
}

func NewTCPProbe(port int, logger *zerolog.Logger) *TCPProbe {
	return &TCPProbe{
		addr:   fmt.Sprintf(":%d", port),
		logger: logger,
		ready:  make(chan net.Addr, 1),
	}
}

// Ready yields the bound address once the listener is up.
func (p *TCPProbe) Ready() <-chan net.Addr {
	return p.ready
}

// Start listens until ctx is canceled.
func (p *TCPProbe) Start(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("listen health probe on %s: %w", p.addr, err)
	}

	go func() {
		<-ctx.Done()

		_ = ln.Close()
	}()

	p.ready <- ln.Addr()

	p.logger.Info().Str("addr", ln.Addr().String()).Msg("Health probe listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			p.logger.Warn().Err(err).Msg("health probe accept failed")

			continue
		}

		_ = conn.Close()
	}
}
