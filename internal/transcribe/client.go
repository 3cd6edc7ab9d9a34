package transcribe

import (
	"crypto/tls"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sheetscribe/internal/config"
	"sheetscribe/internal/eventbus"
)

// Client manages the single websocket connection to the transcription server
// and owns the transcript buffer and auto-search threshold. There is no
// automatic reconnection; a dropped connection requires a new connect request.
type Client struct {
	bus      eventbus.EventBus
	logger   *logrus.Entry
	endpoint string
	dialer   *websocket.Dialer

	mu         sync.Mutex
	conn       *websocket.Conn
	transcript string
	threshold  int
}

// NewClient creates a transcription client and subscribes it to connection
// and threshold events.
func NewClient(bus eventbus.EventBus, cfg *config.Config, logger *logrus.Logger) *Client {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if cfg.InsecureSkipVerify {
		// The local STT server runs on self-signed dev certificates
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		bus:       bus,
		logger:    logger.WithField("component", "transcribe"),
		endpoint:  cfg.Endpoint,
		dialer:    dialer,
		threshold: cfg.AutoSearchThreshold,
	}

	bus.Subscribe(eventbus.EventConnectRequested, func(e eventbus.DomainEvent) {
		c.Connect()
	})
	bus.Subscribe(eventbus.EventDisconnectRequested, func(e eventbus.DomainEvent) {
		c.Disconnect()
	})
	bus.Subscribe(eventbus.EventThresholdChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ThresholdChangedEvent); ok {
			c.SetThreshold(event.Threshold)
		}
	})

	return c
}

// Connect opens the connection unless one is already open
func (c *Client) Connect() {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(c.endpoint, nil)
	if err != nil {
		c.logger.WithError(err).Errorf("failed to connect to %s", c.endpoint)
		c.bus.Publish(eventbus.ConnectionFailedEvent{Err: err})
		return
	}

	c.mu.Lock()
	if c.conn != nil {
		// Lost the race to a concurrent connect; keep the existing connection
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Infof("connected to %s", c.endpoint)
	c.bus.Publish(eventbus.ConnectionOpenedEvent{Endpoint: c.endpoint})

	go c.readLoop(conn)
}

// Disconnect closes the active connection if one exists. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	conn.Close()
	c.logger.Info("disconnected")
	c.bus.Publish(eventbus.ConnectionClosedEvent{Local: true})
}

// SetThreshold updates the auto-search threshold
func (c *Client) SetThreshold(n int) {
	c.mu.Lock()
	c.threshold = n
	c.mu.Unlock()
}

// Transcript returns the current transcript buffer
func (c *Client) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Connected reports whether a connection is open
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			remote := c.conn == conn
			if remote {
				c.conn = nil
			}
			c.mu.Unlock()

			// A local Disconnect already published its own close event
			if remote {
				c.logger.WithError(err).Info("connection closed by remote end")
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.bus.Publish(eventbus.ErrorEvent{Message: "Connection error", Err: err})
				}
				c.bus.Publish(eventbus.ConnectionClosedEvent{Local: false})
			}
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame dispatches one wire frame. Malformed or unrecognized frames
// are dropped without surfacing anything.
func (c *Client) handleFrame(data []byte) {
	switch m := DecodeMessage(data).(type) {
	case PartialMessage:
		c.mu.Lock()
		c.transcript = m.Text
		threshold := c.threshold
		c.mu.Unlock()

		c.bus.Publish(eventbus.TranscriptUpdatedEvent{Text: m.Text})
		if utf8.RuneCountInString(m.Text) >= threshold {
			c.bus.Publish(eventbus.HighlightRequestedEvent{Term: m.Text})
		}
	case StatusMessage:
		c.logger.Debugf("server status: %s", m.Message)
	default:
		c.logger.Debug("dropping unrecognized frame")
	}
}
