package netsync

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/voxelvolution/message"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 256
)

var ErrSendBufferFull = eris.New("send buffer full")

// Client is a websocket connection to a relay. Every binary frame carries one message.
type Client struct {
	conn     *websocket.Conn
	outgoing chan []byte
	logger   zerolog.Logger
}

type ClientOption func(*Client)

func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Dial connects to the relay at url.
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "dialing %s", url)
	}
	c := &Client{
		conn:     conn,
		outgoing: make(chan []byte, sendBuffer),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send queues m for the write loop. It does not block: when the buffer is full the message is
// rejected with ErrSendBufferFull.
func (c *Client) Send(m message.Message) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	select {
	case c.outgoing <- data:
		return nil
	default:
		return eris.Wrapf(ErrSendBufferFull, "dropping %s message", m.Type)
	}
}

// Run reads messages into handler and writes queued messages until ctx is done or the
// connection fails. Messages that fail to decode or handle are logged and skipped.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.readLoop(handler)
	})
	g.Go(func() error {
		return c.writeLoop(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.closeConn()
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close closes the connection, making Run return.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) closeConn() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.conn.Close()
}

func (c *Client) readLoop(handler Handler) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return eris.Wrap(err, "reading from relay")
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		m, err := message.Unmarshal(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("discarding malformed message")
			continue
		}
		if err := handler.Handle(m); err != nil {
			c.logger.Warn().Err(err).Str("type", m.Type.String()).Msg("failed to handle message")
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-c.outgoing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return eris.Wrap(err, "writing to relay")
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return eris.Wrap(err, "pinging relay")
			}
		}
	}
}
