package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
	"github.com/pixil98/go-log"
	"github.com/sirupsen/logrus"
)

// TelnetListener accepts operator console connections over telnet and hands
// each to the console manager's session loop.

type TelnetListener struct {
	port uint16
	cm   *ConsoleManager
}

func NewTelnetListener(port uint16, cm *ConsoleManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// All console sessions share one context so shutdown ends them together
	connCtx, cancelConns := context.WithCancel(context.Background())

	handler := &telnetHandler{
		cFunc:       l.cm.AcceptConnection,
		logger:      log.GetLogger(ctx),
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)

	slog.InfoContext(ctx, "listening for telnet console", "port", l.port)

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			// Shutdown requested: stop accepting, then end the sessions
			svr.Stop()
			handler.Stop()
		case <-done:
			// Start returned on its own, nothing left to stop
		}
	}()

	err := svr.ListenAndServe()
	if err != nil {
		// Unlike the command port, a console port is not retried: consoles
		// are optional and a conflict means a misconfiguration.
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("console port %d is already in use", l.port)
		}
		return fmt.Errorf("serving telnet console on port %d: %w", l.port, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cFunc       func(context.Context, io.ReadWriter)
	logger      logrus.FieldLogger
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		err := conn.Close()
		if err != nil {
			h.logger.Errorf("closing telnet console connection: %s", err)
		}
	}()

	ctx := log.SetLogger(h.connCtx, h.logger)

	h.cFunc(ctx, conn)
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
