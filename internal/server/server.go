package server

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanshuy/vhost-server/internal/headers"
	"github.com/yanshuy/vhost-server/internal/request"
	"github.com/yanshuy/vhost-server/internal/response"
)

// Handler answers one request. It must be safe for concurrent use and must
// always return a response.
type Handler func(r *request.Request) *response.Response

// Options tunes a Server. Zero timeouts disable the corresponding deadline.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next request on a kept-alive
	// connection. ReadTimeout is used when it is zero.
	IdleTimeout time.Duration
	// TLS, when set, terminates TLS on every accepted connection.
	TLS    *tls.Config
	Logger *slog.Logger
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type Server struct {
	listener net.Listener
	handler  Handler
	opts     Options
	log      *slog.Logger
	closed   atomic.Bool
	done     chan struct{}
	conns    sync.WaitGroup
}

// Serve binds addr and starts accepting connections in the background.
func Serve(addr string, handler Handler, opts Options) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if opts.TLS != nil {
		ln = tls.NewListener(ln, opts.TLS)
	}

	return serveListener(ln, handler, opts), nil
}

func serveListener(ln net.Listener, handler Handler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := &Server{
		listener: ln,
		handler:  handler,
		opts:     opts,
		log:      logger,
		done:     make(chan struct{}),
	}

	go server.listen()

	return server
}

// Addr is the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) listen() {
	defer close(s.done)
	var delay time.Duration
	for {
		conn, err := s.listener.Accept()
		if s.closed.Load() || errors.Is(err, net.ErrClosed) {
			if conn != nil {
				conn.Close()
			}
			return
		}
		if err != nil {
			// Persistent failures such as EMFILE back off instead of spinning.
			delay = min(max(2*delay, minAcceptDelay), maxAcceptDelay)
			s.log.Warn("could not accept connection",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", delay),
			)
			time.Sleep(delay)
			continue
		}
		delay = 0
		s.log.Debug("connection accepted", slog.String("remote", conn.RemoteAddr().String()))
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// Close stops accepting connections and waits for the accept loop to exit.
// Connections already being served run until their client goes away or a
// deadline fires.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.listener.Close()
	<-s.done
	return err
}

// Wait blocks until every connection accepted so far has finished.
func (s *Server) Wait() {
	s.conns.Wait()
}

func (s *Server) handleConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	defer func() {
		if v := recover(); v != nil {
			s.log.Error("connection handler panic", slog.String("remote", remote), slog.String("panic", fmt.Sprint(v)))
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Debug("could not close connection", slog.String("remote", remote), slog.String("error", err.Error()))
		}
	}()

	reader := request.NewReader(conn)
	out := bufio.NewWriter(conn)

	for served := 0; ; served++ {
		s.setReadDeadline(conn, served)

		req, err := reader.Next()
		if err != nil {
			s.readFailed(out, conn, remote, err)
			return
		}

		resp := s.handler(req)
		keepAlive := req.KeepAlive() && !s.closed.Load()
		switch {
		case !keepAlive:
			resp.Headers = closing(resp.Headers)
		case req.HttpVersion == "1.0":
			// 1.0 clients assume a close unless told otherwise.
			resp.Headers = withConnection(resp.Headers, "keep-alive")
		}

		if err := s.write(conn, out, resp); err != nil {
			s.log.Warn("could not write response", slog.String("remote", remote), slog.String("error", err.Error()))
			return
		}

		s.log.Info("handled request",
			slog.String("remote", remote),
			slog.String("method", req.Method),
			slog.String("target", req.Target),
			slog.String("host", req.Headers.Value("host")),
			slog.Int("status", resp.StatusCode),
			slog.Int("bytes", len(resp.Body)),
		)

		if !keepAlive {
			return
		}
	}
}

func (s *Server) readFailed(out *bufio.Writer, conn net.Conn, remote string, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		s.log.Debug("connection closed by client", slog.String("remote", remote))
	case errors.As(err, &netErr) && netErr.Timeout():
		s.log.Debug("connection timed out", slog.String("remote", remote))
	case isMalformed(err):
		s.log.Info("malformed request", slog.String("remote", remote), slog.String("error", err.Error()))
		resp := response.BadRequest()
		resp.Headers = closing(resp.Headers)
		if werr := s.write(conn, out, resp); werr != nil {
			s.log.Debug("could not write response", slog.String("remote", remote), slog.String("error", werr.Error()))
		}
	default:
		s.log.Warn("could not read request", slog.String("remote", remote), slog.String("error", err.Error()))
	}
}

func (s *Server) write(conn net.Conn, out *bufio.Writer, resp *response.Response) error {
	if s.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	if err := response.Write(out, resp); err != nil {
		return err
	}
	return out.Flush()
}

func (s *Server) setReadDeadline(conn net.Conn, served int) {
	timeout := s.opts.ReadTimeout
	if served > 0 && s.opts.IdleTimeout > 0 {
		timeout = s.opts.IdleTimeout
	}
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}
}

func closing(h headers.List) headers.List {
	return withConnection(h, "close")
}

func withConnection(h headers.List, value string) headers.List {
	h = h.Clone()
	h.Add(response.Connection, value)
	return h
}

func isMalformed(err error) bool {
	for _, target := range []error{
		request.ErrMalformedRequestLine,
		request.ErrUnsupportedVersion,
		request.ErrInvalidContentLength,
		request.ErrUnsupportedTransferEncoding,
		request.ErrRequestTooLarge,
		headers.ErrMalformedHeader,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
