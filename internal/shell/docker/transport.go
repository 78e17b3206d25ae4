package docker

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"time"
)

// =============================================================================
// Socket Transport
// =============================================================================

// Default transport timings.
const (
	DefaultConnectTimeout  = 3 * time.Second
	DefaultExchangeTimeout = 10 * time.Second

	defaultPollInterval = 10 * time.Millisecond
	readChunkSize       = 4096
)

// CompleteFunc decides whether an accumulated response buffer already holds a
// full, parseable response. It is injected into the read loop so it can be
// unit-tested against synthetic partial buffers without a live socket.
type CompleteFunc func(buf []byte) bool

// Transport performs one raw request/response exchange over a unix stream
// socket.
//
// The daemon does not reliably signal end-of-message by closing the
// connection or by a length header the client can trust before the body is
// fully flushed. The read loop therefore keeps accumulating until the
// completeness predicate reports that the buffer holds a full response; a
// drained socket buffer alone does not end the read.
type Transport struct {
	SocketPath      string
	ConnectTimeout  time.Duration
	ExchangeTimeout time.Duration
	PollInterval    time.Duration
	Complete        CompleteFunc
}

// NewTransport creates a transport for the given socket path. timeout bounds
// the whole exchange; zero selects the default.
func NewTransport(socketPath string, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}
	return &Transport{
		SocketPath:      socketPath,
		ConnectTimeout:  DefaultConnectTimeout,
		ExchangeTimeout: timeout,
		PollInterval:    defaultPollInterval,
		Complete:        ResponseComplete,
	}
}

// Exchange writes request to the socket and reads until the completeness
// predicate confirms the response is whole. The connection is owned by this
// call alone, used for exactly one exchange, and closed on every exit path.
func (t *Transport) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	dialer := net.Dialer{Timeout: t.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.SocketPath)
	if err != nil {
		return nil, t.wrapErr("connect to socket", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(t.ExchangeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, t.wrapErr("configure socket", err)
	}
	if _, err := conn.Write(request); err != nil {
		return nil, t.wrapErr("write request to socket", err)
	}

	poll := t.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	complete := t.Complete
	if complete == nil {
		complete = ResponseComplete
	}

	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	for {
		// Read in short slices so a zero-byte read can be told apart from
		// end-of-stream: the daemon sometimes pauses mid-flush, and reading
		// faster than it writes must not truncate the response.
		_ = conn.SetReadDeadline(time.Now().Add(poll))
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			// A peer that keeps dribbling bytes must not outlive the
			// exchange deadline either.
			if time.Now().After(deadline) {
				return nil, &TransportError{Op: "read from socket", SocketPath: t.SocketPath, Err: ErrSocketTimeout}
			}
			continue
		}
		if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) && !errors.Is(err, io.EOF) {
			return nil, t.wrapErr("read from socket", err)
		}

		if len(buf) == 0 {
			// Peer has not started responding yet; keep waiting within the
			// exchange deadline.
			if time.Now().After(deadline) {
				return nil, &TransportError{Op: "read from socket", SocketPath: t.SocketPath, Err: ErrSocketTimeout}
			}
			continue
		}

		// Peer may have paused mid-stream. Only the predicate decides
		// whether the response is actually over.
		if complete(buf) {
			break
		}
		if time.Now().After(deadline) {
			return nil, &TransportError{Op: "read from socket", SocketPath: t.SocketPath, Err: ErrSocketTimeout}
		}
		if errors.Is(err, io.EOF) {
			time.Sleep(poll)
		}
	}

	// Response is complete; shut down the send half before closing.
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return buf, nil
}

func (t *Transport) wrapErr(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = ErrSocketNotFound
	case errors.Is(err, fs.ErrPermission):
		err = ErrSocketPermission
	case errors.Is(err, os.ErrDeadlineExceeded) || isTimeout(err):
		err = ErrSocketTimeout
	}
	return &TransportError{Op: op, SocketPath: t.SocketPath, Err: err}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
