package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// TransactionManager 事务管理器接口
type TransactionManager interface {
	// Begin 开始事务
	Begin(ctx context.Context) (*Transaction, error)
	// BeginWithOptions 使用选项开始事务
	BeginWithOptions(ctx context.Context, opts *TxOptions) (*Transaction, error)
	// WithTransaction 在事务中执行函数
	WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error
	// WithTransactionOptions 使用选项在事务中执行函数
	WithTransactionOptions(ctx context.Context, opts *TxOptions, fn func(tx *Transaction) error) error
}

// TxOptions 事务选项
type TxOptions struct {
	// IsolationLevel 事务隔离级别
	IsolationLevel string
	// ReadOnly 是否只读事务
	ReadOnly bool
	// Timeout 事务超时时间（秒）
	Timeout int
}

// Transaction 事务包装器
type Transaction struct {
	tx         *gorm.DB
	ctx        context.Context
	committed  bool
	rolledback bool

	// 事务中的仓储实例
	user     UserRepository
	userAuth UserAuthRepository

	// 星球相关
	planet         PlanetRepository
	planetVisit    PlanetVisitRepository
	gallery        GalleryRepository
	guestbook      GuestbookRepository
	planetFavorite PlanetFavoriteRepository

	// 好友相关
	friendRequest FriendRequestRepository
	friendship    FriendshipRepository

	// 游戏相关
	room            RoomRepository
	roomParticipant RoomParticipantRepository
	game            GameRepository
	tag             TagRepository
	gameImage       GameImageRepository
	gameCompletion  GameCompletionRepository
}

// txManager 事务管理器实现
type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

// Begin 开始事务
func (m *txManager) Begin(ctx context.Context) (*Transaction, error) {
	return m.BeginWithOptions(ctx, nil)
}

// BeginWithOptions 使用选项开始事务
func (m *txManager) BeginWithOptions(ctx context.Context, opts *TxOptions) (*Transaction, error) {
	tx := m.db.WithContext(ctx)

	// 开始事务
	tx = tx.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// SQLite不支持SET TRANSACTION，选项仅在MySQL/PostgreSQL下生效

	return &Transaction{
		tx:  tx,
		ctx: ctx,
	}, nil
}

// WithTransaction 在事务中执行函数
func (m *txManager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.WithTransactionOptions(ctx, nil, fn)
}

// WithTransactionOptions 使用选项在事务中执行函数
func (m *txManager) WithTransactionOptions(ctx context.Context, opts *TxOptions, fn func(tx *Transaction) error) error {
	tx, err := m.BeginWithOptions(ctx, opts)
	if err != nil {
		return err
	}

	// 确保事务被处理
	defer func() {
		if !tx.committed && !tx.rolledback {
			tx.Rollback()
		}
	}()

	// 执行业务逻辑
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	// 提交事务
	return tx.Commit()
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("事务已提交")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Commit().Error; err != nil {
		return err
	}

	t.committed = true
	return nil
}

// Rollback 回滚事务
func (t *Transaction) Rollback() error {
	if t.committed {
		return fmt.Errorf("事务已提交，无法回滚")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Rollback().Error; err != nil {
		return err
	}

	t.rolledback = true
	return nil
}

// GetDB 获取事务中的数据库实例
func (t *Transaction) GetDB() *gorm.DB {
	return t.tx
}

// User 获取事务中的用户仓储
func (t *Transaction) User() UserRepository {
	if t.user == nil {
		t.user = &userRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.user
}

// UserAuth 获取事务中的用户认证仓储
func (t *Transaction) UserAuth() UserAuthRepository {
	if t.userAuth == nil {
		t.userAuth = &userAuthRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.userAuth
}

// Planet 获取事务中的星球仓储
func (t *Transaction) Planet() PlanetRepository {
	if t.planet == nil {
		t.planet = &planetRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.planet
}

// PlanetVisit 获取事务中的星球访问记录仓储
func (t *Transaction) PlanetVisit() PlanetVisitRepository {
	if t.planetVisit == nil {
		t.planetVisit = &planetVisitRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.planetVisit
}

// Gallery 获取事务中的画廊仓储
func (t *Transaction) Gallery() GalleryRepository {
	if t.gallery == nil {
		t.gallery = &galleryRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gallery
}

// Guestbook 获取事务中的留言板仓储
func (t *Transaction) Guestbook() GuestbookRepository {
	if t.guestbook == nil {
		t.guestbook = &guestbookRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.guestbook
}

// PlanetFavorite 获取事务中的星球收藏仓储
func (t *Transaction) PlanetFavorite() PlanetFavoriteRepository {
	if t.planetFavorite == nil {
		t.planetFavorite = &planetFavoriteRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.planetFavorite
}

// FriendRequest 获取事务中的好友请求仓储
func (t *Transaction) FriendRequest() FriendRequestRepository {
	if t.friendRequest == nil {
		t.friendRequest = &friendRequestRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.friendRequest
}

// Friendship 获取事务中的好友关系仓储
func (t *Transaction) Friendship() FriendshipRepository {
	if t.friendship == nil {
		t.friendship = &friendshipRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.friendship
}

// Room 获取事务中的房间仓储
func (t *Transaction) Room() RoomRepository {
	if t.room == nil {
		t.room = &roomRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.room
}

// RoomParticipant 获取事务中的房间成员仓储
func (t *Transaction) RoomParticipant() RoomParticipantRepository {
	if t.roomParticipant == nil {
		t.roomParticipant = &roomParticipantRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.roomParticipant
}

// Game 获取事务中的游戏对局仓储
func (t *Transaction) Game() GameRepository {
	if t.game == nil {
		t.game = &gameRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.game
}

// Tag 获取事务中的标签仓储
func (t *Transaction) Tag() TagRepository {
	if t.tag == nil {
		t.tag = &tagRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.tag
}

// GameImage 获取事务中的对局图片仓储
func (t *Transaction) GameImage() GameImageRepository {
	if t.gameImage == nil {
		t.gameImage = &gameImageRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gameImage
}

// GameCompletion 获取事务中的通关记录仓储
func (t *Transaction) GameCompletion() GameCompletionRepository {
	if t.gameCompletion == nil {
		t.gameCompletion = &gameCompletionRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gameCompletion
}

// TransactionHelper 事务辅助器，提供只读与可重试的事务执行
type TransactionHelper struct {
	manager TransactionManager
}

// NewTransactionHelper 创建事务辅助器
func NewTransactionHelper(manager TransactionManager) *TransactionHelper {
	return &TransactionHelper{manager: manager}
}

// RunInReadOnlyTransaction 在只读事务中执行
func (h *TransactionHelper) RunInReadOnlyTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	opts := &TxOptions{
		ReadOnly: true,
	}
	return h.manager.WithTransactionOptions(ctx, opts, fn)
}

// RunWithRetry 带重试的事务执行，仅在死锁或锁忙时重试
func (h *TransactionHelper) RunWithRetry(ctx context.Context, maxRetries int, fn func(tx *Transaction) error) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := h.manager.WithTransaction(ctx, fn)
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("事务执行失败，已重试%d次: %w", maxRetries, lastErr)
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	errStr := err.Error()

	// MySQL死锁
	if strings.Contains(errStr, "Deadlock") {
		return true
	}

	// PostgreSQL死锁
	if strings.Contains(errStr, "deadlock detected") {
		return true
	}

	// SQLite锁忙
	if strings.Contains(errStr, "database is locked") {
		return true
	}

	return false
}
