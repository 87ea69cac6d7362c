package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 事务管理器
	txManager TransactionManager

	// 仓储实例（使用懒加载）
	// 用户相关
	userOnce sync.Once
	user     UserRepository

	userAuthOnce sync.Once
	userAuth     UserAuthRepository

	// 星球相关
	planetOnce sync.Once
	planet     PlanetRepository

	planetVisitOnce sync.Once
	planetVisit     PlanetVisitRepository

	galleryOnce sync.Once
	gallery     GalleryRepository

	guestbookOnce sync.Once
	guestbook     GuestbookRepository

	planetFavoriteOnce sync.Once
	planetFavorite     PlanetFavoriteRepository

	// 好友相关
	friendRequestOnce sync.Once
	friendRequest     FriendRequestRepository

	friendshipOnce sync.Once
	friendship     FriendshipRepository

	// 游戏相关
	roomOnce sync.Once
	room     RoomRepository

	roomParticipantOnce sync.Once
	roomParticipant     RoomParticipantRepository

	gameOnce sync.Once
	game     GameRepository

	tagOnce sync.Once
	tag     TagRepository

	gameImageOnce sync.Once
	gameImage     GameImageRepository

	gameCompletionOnce sync.Once
	gameCompletion     GameCompletionRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Transaction 获取事务管理器
func (m *Manager) Transaction() TransactionManager {
	return m.txManager
}

// User 获取用户仓储
func (m *Manager) User() UserRepository {
	m.userOnce.Do(func() {
		m.user = NewUserRepository(m.db)
	})
	return m.user
}

// UserAuth 获取用户认证仓储
func (m *Manager) UserAuth() UserAuthRepository {
	m.userAuthOnce.Do(func() {
		m.userAuth = NewUserAuthRepository(m.db)
	})
	return m.userAuth
}

// Planet 获取星球仓储
func (m *Manager) Planet() PlanetRepository {
	m.planetOnce.Do(func() {
		m.planet = NewPlanetRepository(m.db)
	})
	return m.planet
}

// PlanetVisit 获取星球访问记录仓储
func (m *Manager) PlanetVisit() PlanetVisitRepository {
	m.planetVisitOnce.Do(func() {
		m.planetVisit = NewPlanetVisitRepository(m.db)
	})
	return m.planetVisit
}

// Gallery 获取画廊仓储
func (m *Manager) Gallery() GalleryRepository {
	m.galleryOnce.Do(func() {
		m.gallery = NewGalleryRepository(m.db)
	})
	return m.gallery
}

// Guestbook 获取留言板仓储
func (m *Manager) Guestbook() GuestbookRepository {
	m.guestbookOnce.Do(func() {
		m.guestbook = NewGuestbookRepository(m.db)
	})
	return m.guestbook
}

// PlanetFavorite 获取星球收藏仓储
func (m *Manager) PlanetFavorite() PlanetFavoriteRepository {
	m.planetFavoriteOnce.Do(func() {
		m.planetFavorite = NewPlanetFavoriteRepository(m.db)
	})
	return m.planetFavorite
}

// FriendRequest 获取好友请求仓储
func (m *Manager) FriendRequest() FriendRequestRepository {
	m.friendRequestOnce.Do(func() {
		m.friendRequest = NewFriendRequestRepository(m.db)
	})
	return m.friendRequest
}

// Friendship 获取好友关系仓储
func (m *Manager) Friendship() FriendshipRepository {
	m.friendshipOnce.Do(func() {
		m.friendship = NewFriendshipRepository(m.db)
	})
	return m.friendship
}

// Room 获取房间仓储
func (m *Manager) Room() RoomRepository {
	m.roomOnce.Do(func() {
		m.room = NewRoomRepository(m.db)
	})
	return m.room
}

// RoomParticipant 获取房间成员仓储
func (m *Manager) RoomParticipant() RoomParticipantRepository {
	m.roomParticipantOnce.Do(func() {
		m.roomParticipant = NewRoomParticipantRepository(m.db)
	})
	return m.roomParticipant
}

// Game 获取游戏对局仓储
func (m *Manager) Game() GameRepository {
	m.gameOnce.Do(func() {
		m.game = NewGameRepository(m.db)
	})
	return m.game
}

// Tag 获取标签仓储
func (m *Manager) Tag() TagRepository {
	m.tagOnce.Do(func() {
		m.tag = NewTagRepository(m.db)
	})
	return m.tag
}

// GameImage 获取对局图片仓储
func (m *Manager) GameImage() GameImageRepository {
	m.gameImageOnce.Do(func() {
		m.gameImage = NewGameImageRepository(m.db)
	})
	return m.gameImage
}

// GameCompletion 获取通关记录仓储
func (m *Manager) GameCompletion() GameCompletionRepository {
	m.gameCompletionOnce.Do(func() {
		m.gameCompletion = NewGameCompletionRepository(m.db)
	})
	return m.gameCompletion
}

// WithTransaction 在事务中执行操作
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.txManager.WithTransaction(ctx, fn)
}

// WithReadOnlyTransaction 在只读事务中执行操作
func (m *Manager) WithReadOnlyTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return NewTransactionHelper(m.txManager).RunInReadOnlyTransaction(ctx, fn)
}

// WithRetryTransaction 带重试的事务执行，用于容易锁冲突的写入路径
func (m *Manager) WithRetryTransaction(ctx context.Context, maxRetries int, fn func(tx *Transaction) error) error {
	return NewTransactionHelper(m.txManager).RunWithRetry(ctx, maxRetries, fn)
}
