package ws

import "sync"

// Router 按房间 key 管理连接的广播分组。房间是隐式的：
// 只要还有成员就存在，最后一个成员离开后整个条目被回收。
type Router struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client
	conns map[string]map[string]struct{}
}

func NewRouter() *Router {
	return &Router{
		rooms: make(map[string]map[string]*Client),
		conns: make(map[string]map[string]struct{}),
	}
}

// Join 加入房间，重复加入是空操作。
func (r *Router) Join(c *Client, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[roomKey]
	if members == nil {
		members = make(map[string]*Client)
		r.rooms[roomKey] = members
	}
	members[c.ID] = c
	keys := r.conns[c.ID]
	if keys == nil {
		keys = make(map[string]struct{})
		r.conns[c.ID] = keys
	}
	keys[roomKey] = struct{}{}
}

// Leave 离开房间，不是成员时是空操作。
func (r *Router) Leave(c *Client, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c.ID, roomKey)
}

// Drop 清除连接的全部房间成员关系，断开时调用，无需显式 leave。
func (r *Router) Drop(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomKey := range r.conns[c.ID] {
		r.removeLocked(c.ID, roomKey)
	}
	delete(r.conns, c.ID)
}

func (r *Router) removeLocked(connID, roomKey string) {
	if members, ok := r.rooms[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomKey)
		}
	}
	if keys, ok := r.conns[connID]; ok {
		delete(keys, roomKey)
	}
}

// Broadcast 把 payload 发给房间内除 excludeConnID 外的所有成员。
// 发送是尽力而为：send 缓冲已满的慢客户端直接丢帧，不阻塞临界区。
func (r *Router) Broadcast(roomKey string, payload []byte, excludeConnID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, c := range r.rooms[roomKey] {
		if id == excludeConnID {
			continue
		}
		c.deliver(payload)
	}
}

// Members 返回房间当前成员数。
func (r *Router) Members(roomKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomKey])
}

// IsMember 查询某连接是否在房间内。
func (r *Router) IsMember(connID, roomKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomKey][connID]
	return ok
}
