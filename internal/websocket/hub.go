package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/puzzle-planet/internal/service"
	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 用户ID到客户端的映射
	userClients map[uint][]*Client
	userMu      sync.RWMutex

	// 房间ID到客户端的映射
	roomClients map[uint]map[string]*Client
	roomMu      sync.RWMutex

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 依赖的服务
	auth  service.AuthService
	games service.GameService

	// 日志
	logger *zap.Logger
}

// Client WebSocket客户端
type Client struct {
	ID     string          // 客户端ID
	Hub    *Hub            // Hub引用
	Conn   *websocket.Conn // WebSocket连接
	Send   chan []byte     // 发送通道
	UserID uint            // 认证后的用户ID
	RoomID uint            // 已加入的房间，0表示未加入

	// 令牌过期时间，过期的连接会被清理
	expiresAt time.Time
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`      // 消息类型
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"` // 时间戳
}

// 客户端发来的消息类型
const (
	MessageTypeAuthenticate = "authenticate"
	MessageTypeJoinRoom     = "join_room"
	MessageTypeLeaveRoom    = "leave_room"
	MessageTypePing         = "ping"
)

// 服务端下发的消息类型
const (
	MessageTypeConnected        = "connected"
	MessageTypeAuthenticated    = "authenticated"
	MessageTypeRoomJoined       = "room_joined"
	MessageTypeRoomLeft         = "room_left"
	MessageTypeUserLeft         = "user_left"
	MessageTypeUserDisconnected = "user_disconnected"
	MessageTypePong             = "pong"
	MessageTypeError            = "error"
	MessageTypeExpired          = "session_expired"
)

// NewHub 创建Hub
func NewHub(auth service.AuthService, games service.GameService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		userClients: make(map[uint][]*Client),
		roomClients: make(map[uint]map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		auth:        auth,
		games:       games,
		logger:      logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	// 启动过期会话清理
	go h.runExpirySweep()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.detachUser(client)

	// 订阅了房间的连接断开时通知房间其他人
	if client.RoomID != 0 {
		roomID := client.RoomID
		h.detachRoom(client)
		h.notifyRoomMembership(roomID, MessageTypeUserDisconnected, client.UserID)
	}

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID))
}

// attachUser 认证成功后记录用户映射
func (h *Hub) attachUser(client *Client) {
	h.userMu.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	h.userMu.Unlock()
}

// detachUser 从用户映射中移除
func (h *Hub) detachUser(client *Client) {
	if client.UserID == 0 {
		return
	}
	h.userMu.Lock()
	clients := h.userClients[client.UserID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
	h.userMu.Unlock()
}

// attachRoom 将客户端加入房间映射
func (h *Hub) attachRoom(client *Client, roomID uint) {
	h.detachRoom(client)

	h.roomMu.Lock()
	if h.roomClients[roomID] == nil {
		h.roomClients[roomID] = make(map[string]*Client)
	}
	h.roomClients[roomID][client.ID] = client
	h.roomMu.Unlock()

	client.RoomID = roomID
}

// detachRoom 从房间映射中移除
func (h *Hub) detachRoom(client *Client) {
	if client.RoomID == 0 {
		return
	}
	h.roomMu.Lock()
	if clients, ok := h.roomClients[client.RoomID]; ok {
		delete(clients, client.ID)
		if len(clients) == 0 {
			delete(h.roomClients, client.RoomID)
		}
	}
	h.roomMu.Unlock()

	client.RoomID = 0
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToUser 发送消息给指定用户的所有客户端
func (h *Hub) SendToUser(userID uint, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.userMu.RLock()
	clients := h.userClients[userID]
	h.userMu.RUnlock()

	if len(clients) == 0 {
		return ErrUserNotConnected
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("用户客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.Uint("user_id", userID))
		}
	}
	return nil
}

// SendToRoom 发送消息给房间内的所有客户端
func (h *Hub) SendToRoom(roomID uint, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化房间消息失败", zap.Error(err))
		return
	}

	h.roomMu.RLock()
	defer h.roomMu.RUnlock()

	for _, client := range h.roomClients[roomID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("房间客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.Uint("room_id", roomID))
		}
	}
}

// notifyRoomMembership 广播房间成员变动
func (h *Hub) notifyRoomMembership(roomID uint, event string, userID uint) {
	data, _ := json.Marshal(map[string]interface{}{"user_id": userID})
	h.SendToRoom(roomID, &Message{
		Type:      event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// GetOnlineUsers 获取在线用户列表
func (h *Hub) GetOnlineUsers() []uint {
	h.userMu.RLock()
	defer h.userMu.RUnlock()

	users := make([]uint, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// GetOnlineCount 获取在线人数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// GetRoomCount 获取房间在线人数
func (h *Hub) GetRoomCount(roomID uint) int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.roomClients[roomID])
}

// runExpirySweep 定期清理令牌已过期的连接
func (h *Hub) runExpirySweep() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		now := time.Now()

		h.clientsMu.RLock()
		var expired []*Client
		for _, client := range h.clients {
			if client.UserID > 0 && !client.expiresAt.IsZero() && now.After(client.expiresAt) {
				expired = append(expired, client)
			}
		}
		h.clientsMu.RUnlock()

		for _, client := range expired {
			h.logger.Info("清理过期会话",
				zap.String("client_id", client.ID),
				zap.Uint("user_id", client.UserID))
			h.SendToClient(client.ID, &Message{
				Type:      MessageTypeExpired,
				Timestamp: now.Unix(),
			})
			client.Close()
		}
	}
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
