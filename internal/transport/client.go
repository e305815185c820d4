package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 单次重试最长等待
	maxRetryInterval = 10 * time.Second
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("connection closed")

// DialOptions 拨号参数
type DialOptions struct {
	PlayerName string        // 自报昵称，为空时由大厅分配
	Retries    int           // 失败后的重试次数
	Timeout    time.Duration // 单次握手超时
}

// Client 大厅 WebSocket 连接
type Client struct {
	URL  string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	PlayerID   string
	PlayerName string

	// 网络延迟（毫秒）
	latency atomic.Int64

	// 回调，在读协程上触发
	OnMessage func(*protocol.Message)
	OnClose   func()

	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
}

// Dial 按指数退避连接大厅，并等待 connected 消息
func Dial(ctx context.Context, lobbyURL string, opts DialOptions) (*Client, error) {
	u, err := url.Parse(lobbyURL)
	if err != nil {
		return nil, fmt.Errorf("parse lobby url: %w", err)
	}
	if opts.PlayerName != "" {
		q := u.Query()
		q.Set("name", opts.PlayerName)
		u.RawQuery = q.Encode()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.Timeout}
	c := &Client{
		URL:  u.String(),
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = maxRetryInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(opts.Retries, 0))), ctx)

	attempt := 0
	err = backoff.RetryNotify(func() error {
		attempt++
		conn, resp, err := dialer.DialContext(ctx, c.URL, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// 来源被拒等客户端错误，重试无意义
				return backoff.Permanent(fmt.Errorf("lobby rejected handshake (%d): %w", resp.StatusCode, err))
			}
			return err
		}
		if err := c.awaitConnected(conn, opts.Timeout); err != nil {
			_ = conn.Close()
			return err
		}
		c.conn = conn
		return nil
	}, retry, func(err error, wait time.Duration) {
		log.Printf("🔄 连接大厅失败 (第 %d 次): %v，%s 后重试", attempt, err, wait.Round(time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("dial lobby %s: %w", lobbyURL, err)
	}

	log.Printf("✅ 已连接大厅 %s，玩家 %s (%s)", lobbyURL, c.PlayerName, c.PlayerID)
	return c, nil
}

// awaitConnected 读取握手后的第一条消息
func (c *Client) awaitConnected(conn *websocket.Conn, timeout time.Duration) error {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read connected: %w", err)
	}
	msg, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("decode connected: %w", err)
	}
	if msg.Type != protocol.MsgConnected {
		if msg.Type == protocol.MsgError {
			if p, perr := protocol.ParsePayload[protocol.ErrorPayload](msg); perr == nil {
				return backoff.Permanent(fmt.Errorf("lobby error %d: %s", p.Code, p.Message))
			}
		}
		return fmt.Errorf("unexpected first message %q", msg.Type)
	}
	payload, err := protocol.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		return fmt.Errorf("parse connected: %w", err)
	}
	c.PlayerID = payload.PlayerID
	c.PlayerName = payload.PlayerName
	return nil
}

// Start 启动读写协程；回调须在此之前设置
func (c *Client) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.readPump()
	go c.writePump()
	go c.heartbeat()
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Send 编码并发送一条消息
func (c *Client) Send(msgType protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.Send(protocol.MsgPing, protocol.PingPayload{Timestamp: time.Now().UnixMilli()})
}

// Latency 最近一次心跳测得的延迟（毫秒），未知时为 -1
func (c *Client) Latency() int64 {
	if v := c.latency.Load(); v > 0 {
		return v
	}
	return -1
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// Done 连接关闭时关闭的通道
func (c *Client) Done() <-chan struct{} {
	return c.done
}
