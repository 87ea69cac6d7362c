package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// GameRepository 游戏对局仓储接口
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.Game) error
	Update(ctx context.Context, game *models.Game) error
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	FindByRoomID(ctx context.Context, roomID uint) (*models.Game, error)
	UpdateStartedAt(ctx context.Context, gameID uint, startedAt time.Time) error
	UpdateFinishedAt(ctx context.Context, gameID uint, finishedAt time.Time) error
}

// gameRepo 游戏对局仓储实现
type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建游戏对局仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建对局
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// Update 更新对局
func (r *gameRepo) Update(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

// FindByID 根据ID查找对局（带标签和图片）
func (r *gameRepo) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Tags.Tag").
		Preload("Images").
		First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("游戏不存在")
		}
		return nil, err
	}
	return &game, nil
}

// FindByRoomID 根据房间查找对局
func (r *gameRepo) FindByRoomID(ctx context.Context, roomID uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Tags.Tag").
		Preload("Images").
		Where("room_id = ?", roomID).
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("游戏不存在")
		}
		return nil, err
	}
	return &game, nil
}

// UpdateStartedAt 记录对局开始时间
func (r *gameRepo) UpdateStartedAt(ctx context.Context, gameID uint, startedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", gameID).
		Update("started_at", startedAt).Error
}

// UpdateFinishedAt 记录对局结束时间
func (r *gameRepo) UpdateFinishedAt(ctx context.Context, gameID uint, finishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", gameID).
		Update("finished_at", finishedAt).Error
}

// WithTx 使用事务
func (r *gameRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// TagRepository 标签仓储接口
type TagRepository interface {
	BaseRepository
	FindOrCreate(ctx context.Context, name string) (*models.Tag, error)
	CreateGameTag(ctx context.Context, gameTag *models.GameTag) error
	FindByGameID(ctx context.Context, gameID uint) ([]*models.GameTag, error)
}

// tagRepo 标签仓储实现
type tagRepo struct {
	*BaseRepo
}

// NewTagRepository 创建标签仓储
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindOrCreate 查找或创建标签
func (r *tagRepo) FindOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		// 并发创建时可能已被其他请求插入
		if IsDuplicateKeyError(err) {
			if ferr := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; ferr == nil {
				return &tag, nil
			}
		}
		return nil, err
	}
	return &tag, nil
}

// CreateGameTag 创建对局标签
func (r *tagRepo) CreateGameTag(ctx context.Context, gameTag *models.GameTag) error {
	return r.db.WithContext(ctx).Create(gameTag).Error
}

// FindByGameID 查找对局的全部标签（按录入顺序）
func (r *tagRepo) FindByGameID(ctx context.Context, gameID uint) ([]*models.GameTag, error) {
	var gameTags []*models.GameTag
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("game_id = ?", gameID).
		Order("order_index ASC").
		Find(&gameTags).Error
	return gameTags, err
}

// WithTx 使用事务
func (r *tagRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &tagRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// GameImageRepository 对局图片仓储接口
type GameImageRepository interface {
	BaseRepository
	Create(ctx context.Context, image *models.GameImage) error
	FindByID(ctx context.Context, id uint) (*models.GameImage, error)
	FindLatestByGameID(ctx context.Context, gameID uint) (*models.GameImage, error)
}

// gameImageRepo 对局图片仓储实现
type gameImageRepo struct {
	*BaseRepo
}

// NewGameImageRepository 创建对局图片仓储
func NewGameImageRepository(db *gorm.DB) GameImageRepository {
	return &gameImageRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建图片记录
func (r *gameImageRepo) Create(ctx context.Context, image *models.GameImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// FindByID 根据ID查找图片
func (r *gameImageRepo) FindByID(ctx context.Context, id uint) (*models.GameImage, error) {
	var image models.GameImage
	err := r.db.WithContext(ctx).First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("图片不存在")
		}
		return nil, err
	}
	return &image, nil
}

// FindLatestByGameID 查找对局最新生成的图片
func (r *gameImageRepo) FindLatestByGameID(ctx context.Context, gameID uint) (*models.GameImage, error) {
	var image models.GameImage
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("generated_at DESC").
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("游戏没有可用的图片")
		}
		return nil, err
	}
	return &image, nil
}

// WithTx 使用事务
func (r *gameImageRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameImageRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// GameCompletionRepository 通关记录仓储接口
type GameCompletionRepository interface {
	BaseRepository
	Create(ctx context.Context, completion *models.GameCompletion) error
	FindByGameID(ctx context.Context, gameID uint) (*models.GameCompletion, error)
}

// gameCompletionRepo 通关记录仓储实现
type gameCompletionRepo struct {
	*BaseRepo
}

// NewGameCompletionRepository 创建通关记录仓储
func NewGameCompletionRepository(db *gorm.DB) GameCompletionRepository {
	return &gameCompletionRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建通关记录
// game_id 上的唯一索引保证一局只有一条记录，重复插入返回唯一约束错误
func (r *gameCompletionRepo) Create(ctx context.Context, completion *models.GameCompletion) error {
	return r.db.WithContext(ctx).Create(completion).Error
}

// FindByGameID 查找对局的通关记录
func (r *gameCompletionRepo) FindByGameID(ctx context.Context, gameID uint) (*models.GameCompletion, error) {
	var completion models.GameCompletion
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("game_id = ?", gameID).
		First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("通关记录不存在")
		}
		return nil, err
	}
	return &completion, nil
}

// WithTx 使用事务
func (r *gameCompletionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameCompletionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
