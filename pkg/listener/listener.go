// Package listener provides the raw TCP listener that receives callbacks
// from simulated payloads during a clickfix exercise and prints what arrives.
package listener

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/praetorian-inc/violet/internal/message"
)

// Listener accepts TCP connections and reports each received line.
type Listener struct {
	Addr string

	// OnLine is invoked for every non-empty line received. Defaults to
	// printing via the message package.
	OnLine func(remote, line string)

	mu   sync.Mutex
	ln   net.Listener
	addr net.Addr
}

// BoundAddr returns the actual listen address once Serve has bound it,
// useful when Addr requested port 0.
func (l *Listener) BoundAddr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// Serve listens until ctx is cancelled. Each connection is handled on its
// own goroutine.
func (l *Listener) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.ln = ln
	l.addr = ln.Addr()
	l.mu.Unlock()

	message.Info("TCP listener started on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				message.Info("TCP listener stopped")
				return nil
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handle(ctx, conn)
		}()
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	message.Info("Connection from %s", remote)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if l.OnLine != nil {
			l.OnLine(remote, line)
		} else {
			message.Success("Data from %s: %s", remote, line)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		slog.Warn("connection read error", "remote", remote, "error", err)
	}
	message.Info("Disconnected from %s", remote)
}
