package ws

import "sync"

// Presence 维护在线用户的双向映射：userID→connID 与 connID→userID。
// 两个方向永远作为一个整体更新，是"谁在线"的唯一事实来源。
type Presence struct {
	mu     sync.RWMutex
	byUser map[uint]string
	byConn map[string]uint
}

func NewPresence() *Presence {
	return &Presence{byUser: make(map[uint]string), byConn: make(map[string]uint)}
}

// Register 登记一条已认证连接。同一用户重连时新连接胜出，
// 旧连接的映射在两个方向上一并清除。
func (p *Presence) Register(userID uint, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.byUser[userID]; ok {
		delete(p.byConn, old)
	}
	p.byUser[userID] = connID
	p.byConn[connID] = userID
}

// Deregister 按连接清除映射。未知连接（重复断开、或已被重连顶掉）是安全的空操作。
func (p *Presence) Deregister(connID string) (uint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	userID, ok := p.byConn[connID]
	if !ok {
		return 0, false
	}
	delete(p.byConn, connID)
	delete(p.byUser, userID)
	return userID, true
}

// Snapshot 返回当前在线的用户 ID 列表，用于 online_users 广播。
func (p *Presence) Snapshot() []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]uint, 0, len(p.byUser))
	for id := range p.byUser {
		ids = append(ids, id)
	}
	return ids
}

// ConnFor 查询某个用户当前的连接 ID。
func (p *Presence) ConnFor(userID uint) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.byUser[userID]
	return connID, ok
}

// Online 返回在线用户数，供 REST 接口和指标复用。
func (p *Presence) Online() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUser)
}
