package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound   = errors.New("客户端未找到")
	ErrUserNotConnected = errors.New("用户未连接")
	ErrSendBufferFull   = errors.New("发送缓冲区已满")
	ErrInvalidMessage   = errors.New("无效的消息格式")
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 32 * 1024 // 32KB

	// 服务调用超时
	handleTimeout = 5 * time.Second
)

// AuthenticatePayload 认证消息载荷
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// JoinRoomPayload 加入房间消息载荷
type JoinRoomPayload struct {
	GameCode string `json:"game_code"`
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 批量发送队列中的消息
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Error("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError("消息格式错误")
		c.Close()
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.SendMessage(MessageTypePong, nil)

	case MessageTypeAuthenticate:
		c.handleAuthenticate(msg.Data)

	case MessageTypeJoinRoom:
		c.handleJoinRoom(msg.Data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	default:
		c.Hub.logger.Warn("收到不支持的消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

// handleAuthenticate 处理认证消息
func (c *Client) handleAuthenticate(data json.RawMessage) {
	var payload AuthenticatePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		c.sendError("缺少令牌")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	claims, err := c.Hub.auth.ValidateToken(ctx, payload.Token)
	if err != nil {
		c.sendError(apperrors.Message(err))
		c.Close()
		return
	}

	c.UserID = claims.UserID
	if claims.ExpiresAt != nil {
		c.expiresAt = claims.ExpiresAt.Time
	}
	c.Hub.attachUser(c)

	c.Hub.logger.Info("WebSocket客户端认证成功",
		zap.String("client_id", c.ID),
		zap.Uint("user_id", c.UserID))

	c.SendMessage(MessageTypeAuthenticated, map[string]interface{}{
		"user_id":  claims.UserID,
		"username": claims.Username,
	})
}

// handleJoinRoom 处理加入房间消息，只有房间成员可以订阅
func (c *Client) handleJoinRoom(data json.RawMessage) {
	if c.UserID == 0 {
		c.sendError("请先认证")
		return
	}

	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.GameCode == "" {
		c.sendError("缺少房间码")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	room, err := c.Hub.games.FindRoomByCode(ctx, payload.GameCode)
	if err != nil {
		c.sendError(apperrors.Message(err))
		return
	}

	ok, err := c.Hub.games.IsParticipant(ctx, room.ID, c.UserID)
	if err != nil || !ok {
		c.sendError("不是房间成员")
		return
	}

	c.Hub.attachRoom(c, room.ID)

	c.Hub.logger.Info("WebSocket客户端订阅房间",
		zap.String("client_id", c.ID),
		zap.Uint("user_id", c.UserID),
		zap.Uint("room_id", room.ID))

	c.SendMessage(MessageTypeRoomJoined, map[string]interface{}{
		"room_id":   room.ID,
		"game_code": room.Code,
	})
}

// handleLeaveRoom 处理离开房间消息
func (c *Client) handleLeaveRoom() {
	if c.RoomID == 0 {
		c.sendError("未加入任何房间")
		return
	}

	roomID := c.RoomID
	c.Hub.detachRoom(c)
	c.Hub.notifyRoomMembership(roomID, MessageTypeUserLeft, c.UserID)

	c.SendMessage(MessageTypeRoomLeft, map[string]interface{}{
		"room_id": roomID,
	})
}

// sendError 发送错误消息
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	errorMsg := &Message{
		Type:      MessageTypeError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	c.Hub.SendToClient(c.ID, errorMsg)
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msgType string, data interface{}) error {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
	}
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = jsonData
	}
	return c.Hub.SendToClient(c.ID, msg)
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.Hub.unregister <- c
}
