package models

import "time"

// 好友请求状态
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest 好友请求表
type FriendRequest struct {
	BaseModel
	RequesterID uint       `gorm:"index;not null" json:"requester_id"`
	TargetID    uint       `gorm:"index;not null" json:"target_id"`
	Status      string     `gorm:"size:20;default:'pending'" json:"status"` // pending, accepted, rejected
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	// 关联
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

// Friendship 好友关系表，一行代表一对无方向的好友
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserAID   uint      `gorm:"uniqueIndex:idx_friend_pair;not null" json:"user_a_id"`
	UserBID   uint      `gorm:"uniqueIndex:idx_friend_pair;not null" json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`

	// 关联
	UserA User `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserB User `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`
}

// TableName 指定FriendRequest表名
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// TableName 指定Friendship表名
func (Friendship) TableName() string {
	return "friendships"
}

// IsPending 检查请求是否待处理
func (r *FriendRequest) IsPending() bool {
	return r.Status == FriendRequestPending
}

// OtherUserID 返回好友关系中与给定用户相对的另一方
func (f *Friendship) OtherUserID(userID uint) uint {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}
