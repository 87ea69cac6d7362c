package models

import "time"

// 房间状态
const (
	RoomStatusWaiting   = "waiting"   // 等待玩家加入
	RoomStatusPlaying   = "playing"   // 对局进行中
	RoomStatusCompleted = "completed" // 多人对局已产生胜者
	RoomStatusFinished  = "finished"  // 单人对局已结束
)

// 游戏模式
const (
	GameModeSingle = "single"
	GameModeMulti  = "multi"
)

// MaxRoomParticipants 房间人数上限
const MaxRoomParticipants = 2

// GameTagCount 每局游戏的标签数量
const GameTagCount = 4

// Room 游戏房间表
type Room struct {
	BaseModel
	HostID uint   `gorm:"index;not null" json:"host_id"`
	Code   string `gorm:"index;size:6;not null" json:"code"`
	Status string `gorm:"size:20;default:'waiting'" json:"status"`

	// 关联
	Host         User              `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Participants []RoomParticipant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
}

// RoomParticipant 房间成员表，房间与用户的组合唯一
type RoomParticipant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"user_id"`
	IsHost    bool      `gorm:"default:false" json:"is_host"`
	IsReady   bool      `gorm:"default:false" json:"is_ready"`
	CreatedAt time.Time `json:"created_at"`

	// 关联
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Game 游戏对局表
type Game struct {
	BaseModel
	RoomID     uint       `gorm:"uniqueIndex;not null" json:"room_id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"` // 创建者
	Mode       string     `gorm:"size:20;not null" json:"mode"`  // single, multi
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// 关联
	Room   Room        `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Tags   []GameTag   `gorm:"foreignKey:GameID" json:"tags,omitempty"`
	Images []GameImage `gorm:"foreignKey:GameID" json:"images,omitempty"`
}

// Tag 标签字典表
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GameTag 对局标签表，记录标签的录入者和顺序
type GameTag struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	GameID          uint      `gorm:"index;not null" json:"game_id"`
	TagID           uint      `gorm:"not null" json:"tag_id"`
	EnteredByUserID uint      `gorm:"not null" json:"entered_by_user_id"`
	OrderIndex      int       `gorm:"not null" json:"order_index"`
	CreatedAt       time.Time `json:"created_at"`

	// 关联
	Tag Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

// GameImage 对局图片表，最新一张为当前谜面
type GameImage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"index;not null" json:"game_id"`
	ImageURL    string    `gorm:"size:500;not null" json:"image_url"`
	Metadata    JSONMap   `gorm:"type:json" json:"metadata,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameCompletion 通关记录表
// GameID 唯一索引保证一局只产生一条记录，并发完成时后到者插入失败
type GameCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"uniqueIndex;not null" json:"game_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	ImageID     uint      `json:"image_id"`
	ClearTimeMs int64     `gorm:"not null" json:"clear_time_ms"`
	Winner      bool      `gorm:"default:true" json:"winner"`
	CreatedAt   time.Time `json:"created_at"`

	// 关联
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定Room表名
func (Room) TableName() string {
	return "rooms"
}

// TableName 指定RoomParticipant表名
func (RoomParticipant) TableName() string {
	return "room_participants"
}

// TableName 指定Game表名
func (Game) TableName() string {
	return "games"
}

// TableName 指定Tag表名
func (Tag) TableName() string {
	return "tags"
}

// TableName 指定GameTag表名
func (GameTag) TableName() string {
	return "game_tags"
}

// TableName 指定GameImage表名
func (GameImage) TableName() string {
	return "game_images"
}

// TableName 指定GameCompletion表名
func (GameCompletion) TableName() string {
	return "game_completions"
}

// IsWaiting 检查房间是否在等待中
func (r *Room) IsWaiting() bool {
	return r.Status == RoomStatusWaiting
}

// IsPlaying 检查对局是否进行中
func (r *Room) IsPlaying() bool {
	return r.Status == RoomStatusPlaying
}

// IsFull 检查房间是否已满
func (r *Room) IsFull() bool {
	return len(r.Participants) >= MaxRoomParticipants
}

// FindParticipant 在已加载的成员中查找指定用户
func (r *Room) FindParticipant(userID uint) *RoomParticipant {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// AllGuestsReady 检查所有非房主成员是否已准备
func (r *Room) AllGuestsReady() bool {
	for i := range r.Participants {
		if !r.Participants[i].IsHost && !r.Participants[i].IsReady {
			return false
		}
	}
	return true
}

// LatestImage 返回最新生成的图片
func (g *Game) LatestImage() *GameImage {
	if len(g.Images) == 0 {
		return nil
	}
	latest := &g.Images[0]
	for i := range g.Images {
		if g.Images[i].GeneratedAt.After(latest.GeneratedAt) {
			latest = &g.Images[i]
		}
	}
	return latest
}
