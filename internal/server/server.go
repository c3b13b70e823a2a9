// Package server is the connection acceptor and per-connection worker of
// spec.md §2 component 7 — a transport collaborator, line-oriented over
// TCP, that the reactive engine is otherwise agnostic to.
package server

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/sheetcore/reactive-sheets/internal/protocol"
	"github.com/sheetcore/reactive-sheets/internal/service"
)

// Server accepts TCP connections and dispatches each request line to the
// Sheet's set/get pipelines. One goroutine per connection reads requests
// in FIFO order (spec.md §5's scheduling model); many connections run in
// parallel sharing the same Sheet.
type Server struct {
	addr  string
	sheet service.Sheet
	log   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New constructs a Server that will listen on addr once Start is called.
func New(addr string, sheet service.Sheet, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{addr: addr, sheet: sheet, log: log}
}

// Start begins listening and accepting connections in the background.
// It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("listening", "addr", s.addr)

	go s.acceptLoop(ctx)
	return nil
}

// Stop closes the listener; in-flight connections and any already
// scheduled propagation are not cancelled (spec.md §5: dropping a
// connection never cancels scheduled propagation).
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.log.Info("accept loop stopped", "err", err)
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	connID := uuid.New()
	defer conn.Close()

	log := s.log.With("conn", connID.String(), "remote", conn.RemoteAddr().String())
	log.Info("connection accepted")
	defer log.Info("connection closed")

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)
	defer writer.Flush()

	for scanner.Scan() {
		line := scanner.Text()
		reply, shouldReply := s.dispatch(line)
		if shouldReply {
			writer.WriteString(reply.Encode())
			writer.WriteByte('\n')
			writer.Flush()
		}
	}
}

// dispatch runs one request line through the command parser and the
// appropriate engine pipeline, shaping the reply per spec.md §4.6/§6.
// Set requests reply only on a parse error; successful sets are silent
// (spec §8's end-to-end scenarios: "replies to set are empty unless an
// error").
func (s *Server) dispatch(line string) (protocol.Reply, bool) {
	cmd, err := protocol.Parse(line)
	if err != nil {
		return protocol.ErrorReply(err.Error()), true
	}

	switch cmd.Kind {
	case protocol.Set:
		s.sheet.SetCell(cmd.Cell.String(), cmd.Formula)
		return protocol.Reply{}, false
	case protocol.Get:
		v := s.sheet.GetCell(cmd.Cell.String())
		return protocol.ShapeGet(cmd.Cell.String(), v), true
	default:
		return protocol.ErrorReply(protocol.ErrInvalidCommand.Error()), true
	}
}
