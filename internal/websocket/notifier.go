package websocket

import (
	"encoding/json"
	"time"

	"github.com/wfunc/puzzle-planet/internal/service"
	"go.uber.org/zap"
)

var _ service.RoomNotifier = (*Hub)(nil)

// NotifyRoom 把游戏服务的房间事件广播给已订阅的客户端
func (h *Hub) NotifyRoom(roomID uint, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("序列化房间事件失败",
			zap.String("event", event),
			zap.Error(err))
		return
	}

	h.SendToRoom(roomID, &Message{
		Type:      event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}
