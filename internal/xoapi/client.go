// Package xoapi is a minimal Xen Orchestra API client: JSON-RPC 2.0 over a
// single WebSocket connection.
//
// Calls may be issued concurrently. Writes are serialised and one reader
// goroutine routes each response to its caller by request ID; server
// notifications (messages without an ID) are dropped.
package xoapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultCallTimeout      = 60 * time.Second
)

// ErrClosed is returned by calls made on, or pending when, the connection
// closes.
var ErrClosed = errors.New("xoapi: connection closed")

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	ID     *uint64         `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

type options struct {
	logger      *slog.Logger
	tlsConfig   *tls.Config
	header      http.Header
	callTimeout time.Duration
}

// Option configures Dial.
type Option func(*options)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTLSConfig sets the TLS configuration, e.g. to trust a self-signed
// XO certificate.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithHeader adds HTTP headers to the WebSocket handshake.
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithCallTimeout bounds every call that has no earlier context deadline.
// Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// Client is a connected XO API session.
type Client struct {
	conn        *websocket.Conn
	logger      *slog.Logger
	callTimeout time.Duration

	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   uint64
	pending  map[uint64]chan response
	closeErr error

	done chan struct{}
}

// Dial opens a WebSocket connection to the XO API endpoint at url
// (ws:// or wss://).
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	o := options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: defaultHandshakeTimeout,
		TLSClientConfig:  o.tlsConfig,
	}

	conn, resp, err := dialer.DialContext(ctx, url, o.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("xoapi: dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("xoapi: dial %s: %w", url, err)
	}

	c := &Client{
		conn:        conn,
		logger:      o.logger,
		callTimeout: o.callTimeout,
		pending:     make(map[uint64]chan response),
		done:        make(chan struct{}),
	}
	go c.readLoop()

	o.logger.Debug("connected to xo", "url", url)
	return c, nil
}

// Connect dials url and signs in with token. The connection is closed if
// sign-in fails.
func Connect(ctx context.Context, url, token string, opts ...Option) (*Client, error) {
	c, err := Dial(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.SignIn(ctx, token); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close shuts the connection down and fails every pending call.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// Call invokes method with params and decodes the result into result,
// which may be nil.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	if c.callTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
			defer cancel()
		}
	}

	id, ch, err := c.register()
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer c.unregister(id)

	if err := c.write(ctx, request{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("%s: write request: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case resp, ok := <-ch:
		if !ok {
			return fmt.Errorf("%s: %w", method, c.err())
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) write(ctx context.Context, req request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(req)
}

func (c *Client) register() (uint64, chan response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return 0, nil, c.closeErr
	}

	c.nextID++
	ch := make(chan response, 1)
	c.pending[c.nextID] = ch
	return c.nextID, ch, nil
}

func (c *Client) unregister(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Client) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}

		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Debug("dropping undecodable message", "error", err)
			continue
		}
		if resp.ID == nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[*resp.ID]
		delete(c.pending, *resp.ID)
		c.mu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

func (c *Client) fail(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if websocket.IsCloseError(cause, websocket.CloseNormalClosure) || errors.Is(cause, net.ErrClosed) {
		c.closeErr = ErrClosed
	} else {
		c.closeErr = fmt.Errorf("%w: %w", ErrClosed, cause)
		c.logger.Debug("xo connection lost", "error", cause)
	}

	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
