package ws

import (
	"encoding/json"
	"time"
)

// 客户端→服务端事件名。
const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventPrivateMessage = "private_message"
	EventTyping         = "typing"
)

// 服务端→客户端事件名。
const (
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventOnlineUsers    = "online_users"
	EventError          = "error"
)

// Inbound 是客户端事件的统一信封。
type Inbound struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Message *InboundMessage `json:"message,omitempty"`
	// 客户端附带的展示名，服务端不信任，仅为兼容旧前端保留字段。
	User string `json:"user,omitempty"`
}

type InboundMessage struct {
	Text        string   `json:"text"`
	Attachments []string `json:"attachments,omitempty"`
	// 客户端时间戳一律丢弃，消息时间以服务端收到时刻为准。
	Timestamp string `json:"timestamp,omitempty"`
}

// Outbound 是服务端事件的统一信封。
type Outbound struct {
	Event string      `json:"event"`
	Room  string      `json:"room,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

type Sender struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type MessagePayload struct {
	Text        string    `json:"text"`
	Attachments []string  `json:"attachments,omitempty"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(event, room string, data interface{}) []byte {
	b, err := json.Marshal(Outbound{Event: event, Room: room, Data: data})
	if err != nil {
		return nil
	}
	return b
}

func decodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, err
	}
	return in, nil
}
