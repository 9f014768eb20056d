package ws

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Identity 是凭证解析出来的用户身份，在连接的生命周期内缓存。
type Identity struct {
	ID   uint
	Name string
}

// Verifier 在握手阶段校验凭证。失败的连接不会进入升级流程。
type Verifier interface {
	Verify(token string) (Identity, error)
}

// StoredMessage 是交给持久层追加的一条聊天消息。
type StoredMessage struct {
	Room        string
	SenderID    uint
	Text        string
	Attachments []string
	CreatedAt   time.Time
}

// MessageStore 是外部的消息持久化服务。写失败时消息不会被广播。
type MessageStore interface {
	Append(msg StoredMessage) error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Manager 把认证、在线表和房间路由编排到一起：
// 认证新连接、登记/注销在线状态、处理 join/send/typing 事件并广播结果。
type Manager struct {
	presence *Presence
	router   *Router
	verifier Verifier
	store    MessageStore

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewManager(verifier Verifier, store MessageStore) *Manager {
	return &Manager{
		presence: NewPresence(),
		router:   NewRouter(),
		verifier: verifier,
		store:    store,
		clients:  make(map[string]*Client),
	}
}

// Presence 暴露在线表给 REST 层做只读查询。
func (m *Manager) Presence() *Presence { return m.presence }

// Serve 处理 WebSocket 握手。凭证校验在升级之前完成：
// 校验失败直接回 401，握手永远不会成功。
func (m *Manager) Serve() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Token via Authorization header or token query param for WS
		token := c.Query("token")
		if token == "" {
			authz := c.GetHeader("Authorization")
			if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
				token = strings.TrimSpace(authz[7:])
			}
		}
		ident, err := m.verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newClient(uuid.NewString(), m, conn, ident)
		m.admit(client)

		go client.writePump()
		client.readPump()
	}
}

// admit 把已认证连接登记进在线表并全局广播最新的在线列表。
func (m *Manager) admit(c *Client) {
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()
	m.presence.Register(c.userID, c.ID)
	metrics.WsConnections.Inc()
	m.broadcastOnline()
	log.Info().Uint("user_id", c.userID).Str("conn_id", c.ID).Msg("ws connect")
}

// disconnect 进入终态：注销在线表、清空房间成员关系、全局广播在线列表。
// 重复调用和未登记连接都是空操作。
func (m *Manager) disconnect(c *Client) {
	m.mu.Lock()
	_, known := m.clients[c.ID]
	delete(m.clients, c.ID)
	m.mu.Unlock()
	if !known {
		return
	}
	m.presence.Deregister(c.ID)
	m.router.Drop(c)
	metrics.WsConnections.Dec()
	m.broadcastOnline()
	log.Info().Uint("user_id", c.userID).Str("conn_id", c.ID).Msg("ws disconnect")
}

// dispatch 解析并处理一个客户端事件。单条连接的事件由它的 readPump
// 串行送入，天然保持接收顺序；任何失败只回给发起方，不影响其他连接。
func (m *Manager) dispatch(c *Client, raw []byte) {
	in, err := decodeInbound(raw)
	if err != nil {
		m.sendError(c, "invalid payload")
		return
	}
	switch in.Event {
	case EventJoinRoom:
		if in.Room == "" {
			m.sendError(c, "room required")
			return
		}
		m.router.Join(c, in.Room)
	case EventLeaveRoom:
		if in.Room == "" {
			m.sendError(c, "room required")
			return
		}
		m.router.Leave(c, in.Room)
	case EventPrivateMessage:
		m.handleMessage(c, in)
	case EventTyping:
		if in.Room == "" {
			m.sendError(c, "room required")
			return
		}
		// 展示名取连接自己的身份，不信任客户端传来的字段；
		// 指示器的过期完全由接收端计时，服务端只转发。
		m.router.Broadcast(in.Room, encode(EventUserTyping, in.Room, c.name), c.ID)
	default:
		m.sendError(c, "unknown event")
	}
}

// handleMessage 先落库再广播。时间戳以服务端收到时刻为准，
// 持久化失败只通知发送方，不广播。
func (m *Manager) handleMessage(c *Client, in Inbound) {
	if in.Room == "" || in.Message == nil || in.Message.Text == "" {
		m.sendError(c, "invalid payload")
		return
	}
	now := time.Now()
	stored := StoredMessage{
		Room:        in.Room,
		SenderID:    c.userID,
		Text:        in.Message.Text,
		Attachments: in.Message.Attachments,
		CreatedAt:   now,
	}
	if err := m.store.Append(stored); err != nil {
		log.Error().Err(err).Str("room", in.Room).Uint("user_id", c.userID).Msg("persist message")
		m.sendError(c, "Failed to send message")
		return
	}
	payload := MessagePayload{
		Text:        in.Message.Text,
		Attachments: in.Message.Attachments,
		Sender:      Sender{ID: c.userID, Name: c.name},
		Timestamp:   now,
	}
	metrics.WsMessagesTotal.Inc()
	// 发送方也收到，多标签页保持一致。
	m.router.Broadcast(in.Room, encode(EventReceiveMessage, in.Room, payload), "")
}

// broadcastOnline 把在线用户列表发给所有连接，不限房间。
func (m *Manager) broadcastOnline() {
	ids := m.presence.Snapshot()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	payload := encode(EventOnlineUsers, "", ids)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		c.deliver(payload)
	}
}

func (m *Manager) sendError(c *Client, msg string) {
	c.deliver(encode(EventError, "", ErrorPayload{Message: msg}))
}
