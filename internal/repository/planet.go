package repository

import (
	"context"
	"errors"

	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// PlanetRepository 星球仓储接口
type PlanetRepository interface {
	BaseRepository
	Create(ctx context.Context, planet *models.Planet) error
	Update(ctx context.Context, planet *models.Planet) error
	FindByID(ctx context.Context, id uint) (*models.Planet, error)
	FindByOwnerID(ctx context.Context, ownerID uint) (*models.Planet, error)
	FindByOwnerUsername(ctx context.Context, username string) (*models.Planet, error)
	GetAll(ctx context.Context, pagination *Pagination) ([]*models.Planet, error)
	IncrementVisitCount(ctx context.Context, planetID uint) error
}

// planetRepo 星球仓储实现
type planetRepo struct {
	*BaseRepo
}

// NewPlanetRepository 创建星球仓储
func NewPlanetRepository(db *gorm.DB) PlanetRepository {
	return &planetRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建星球
func (r *planetRepo) Create(ctx context.Context, planet *models.Planet) error {
	return r.db.WithContext(ctx).Create(planet).Error
}

// Update 更新星球
func (r *planetRepo) Update(ctx context.Context, planet *models.Planet) error {
	return r.db.WithContext(ctx).Save(planet).Error
}

// FindByID 根据ID查找星球
func (r *planetRepo) FindByID(ctx context.Context, id uint) (*models.Planet, error) {
	var planet models.Planet
	err := r.db.WithContext(ctx).Preload("Owner").First(&planet, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("星球不存在")
		}
		return nil, err
	}
	return &planet, nil
}

// FindByOwnerID 根据拥有者查找星球
func (r *planetRepo) FindByOwnerID(ctx context.Context, ownerID uint) (*models.Planet, error) {
	var planet models.Planet
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		First(&planet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("星球不存在")
		}
		return nil, err
	}
	return &planet, nil
}

// FindByOwnerUsername 根据拥有者用户名查找星球
func (r *planetRepo) FindByOwnerUsername(ctx context.Context, username string) (*models.Planet, error) {
	var planet models.Planet
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN users ON users.id = planets.owner_id").
		Where("users.username = ?", username).
		First(&planet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("星球不存在")
		}
		return nil, err
	}
	return &planet, nil
}

// GetAll 获取所有星球（分页，按拥有者昵称排序）
func (r *planetRepo) GetAll(ctx context.Context, pagination *Pagination) ([]*models.Planet, error) {
	var planets []*models.Planet
	query := r.db.WithContext(ctx).Model(&models.Planet{})

	// 获取总数
	var total int64
	query.Count(&total)
	pagination.Total = total

	// 分页查询
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN users ON users.id = planets.owner_id").
		Order("users.nickname ASC").
		Limit(pagination.PageSize).
		Offset((pagination.Page - 1) * pagination.PageSize).
		Find(&planets).Error

	return planets, err
}

// IncrementVisitCount 访问计数加一
func (r *planetRepo) IncrementVisitCount(ctx context.Context, planetID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Planet{}).
		Where("id = ?", planetID).
		Update("visit_count", gorm.Expr("visit_count + 1")).Error
}

// WithTx 使用事务
func (r *planetRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &planetRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// PlanetVisitRepository 星球访问记录仓储接口
type PlanetVisitRepository interface {
	BaseRepository
	Create(ctx context.Context, visit *models.PlanetVisit) error
	Exists(ctx context.Context, planetID, visitorID uint) (bool, error)
}

// planetVisitRepo 星球访问记录仓储实现
type planetVisitRepo struct {
	*BaseRepo
}

// NewPlanetVisitRepository 创建星球访问记录仓储
func NewPlanetVisitRepository(db *gorm.DB) PlanetVisitRepository {
	return &planetVisitRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建访问记录
func (r *planetVisitRepo) Create(ctx context.Context, visit *models.PlanetVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

// Exists 检查是否已有访问记录
func (r *planetVisitRepo) Exists(ctx context.Context, planetID, visitorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PlanetVisit{}).
		Where("planet_id = ? AND visitor_id = ?", planetID, visitorID).
		Count(&count).Error
	return count > 0, err
}

// WithTx 使用事务
func (r *planetVisitRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &planetVisitRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// GalleryRepository 画廊仓储接口
type GalleryRepository interface {
	BaseRepository
	Create(ctx context.Context, item *models.Gallery) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Gallery, error)
	FindByPlanetID(ctx context.Context, planetID uint, pagination *Pagination) ([]*models.Gallery, error)
}

// galleryRepo 画廊仓储实现
type galleryRepo struct {
	*BaseRepo
}

// NewGalleryRepository 创建画廊仓储
func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建画廊条目
func (r *galleryRepo) Create(ctx context.Context, item *models.Gallery) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Delete 删除画廊条目
func (r *galleryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Gallery{}, id).Error
}

// FindByID 根据ID查找画廊条目
func (r *galleryRepo) FindByID(ctx context.Context, id uint) (*models.Gallery, error) {
	var item models.Gallery
	err := r.db.WithContext(ctx).Preload("Image").First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("画廊图片不存在")
		}
		return nil, err
	}
	return &item, nil
}

// FindByPlanetID 查找星球的画廊（分页）
func (r *galleryRepo) FindByPlanetID(ctx context.Context, planetID uint, pagination *Pagination) ([]*models.Gallery, error) {
	var items []*models.Gallery
	query := r.db.WithContext(ctx).
		Model(&models.Gallery{}).
		Where("planet_id = ?", planetID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := r.db.WithContext(ctx).
		Preload("Image").
		Where("planet_id = ?", planetID).
		Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset((pagination.Page - 1) * pagination.PageSize).
		Find(&items).Error

	return items, err
}

// WithTx 使用事务
func (r *galleryRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &galleryRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// GuestbookRepository 留言板仓储接口
type GuestbookRepository interface {
	BaseRepository
	Create(ctx context.Context, entry *models.Guestbook) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Guestbook, error)
	FindByPlanetID(ctx context.Context, planetID uint, pagination *Pagination) ([]*models.Guestbook, error)
}

// guestbookRepo 留言板仓储实现
type guestbookRepo struct {
	*BaseRepo
}

// NewGuestbookRepository 创建留言板仓储
func NewGuestbookRepository(db *gorm.DB) GuestbookRepository {
	return &guestbookRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建留言
func (r *guestbookRepo) Create(ctx context.Context, entry *models.Guestbook) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Delete 删除留言
func (r *guestbookRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Guestbook{}, id).Error
}

// FindByID 根据ID查找留言
func (r *guestbookRepo) FindByID(ctx context.Context, id uint) (*models.Guestbook, error) {
	var entry models.Guestbook
	err := r.db.WithContext(ctx).Preload("Author").First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("留言不存在")
		}
		return nil, err
	}
	return &entry, nil
}

// FindByPlanetID 查找星球的留言（分页，最新在前）
func (r *guestbookRepo) FindByPlanetID(ctx context.Context, planetID uint, pagination *Pagination) ([]*models.Guestbook, error) {
	var entries []*models.Guestbook
	query := r.db.WithContext(ctx).
		Model(&models.Guestbook{}).
		Where("planet_id = ?", planetID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("planet_id = ?", planetID).
		Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset((pagination.Page - 1) * pagination.PageSize).
		Find(&entries).Error

	return entries, err
}

// WithTx 使用事务
func (r *guestbookRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &guestbookRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// PlanetFavoriteRepository 星球收藏仓储接口
type PlanetFavoriteRepository interface {
	BaseRepository
	Create(ctx context.Context, favorite *models.PlanetFavorite) error
	Delete(ctx context.Context, userID, planetID uint) error
	Exists(ctx context.Context, userID, planetID uint) (bool, error)
	FindByUserID(ctx context.Context, userID uint) ([]*models.PlanetFavorite, error)
}

// planetFavoriteRepo 星球收藏仓储实现
type planetFavoriteRepo struct {
	*BaseRepo
}

// NewPlanetFavoriteRepository 创建星球收藏仓储
func NewPlanetFavoriteRepository(db *gorm.DB) PlanetFavoriteRepository {
	return &planetFavoriteRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建收藏记录
func (r *planetFavoriteRepo) Create(ctx context.Context, favorite *models.PlanetFavorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

// Delete 删除收藏记录
func (r *planetFavoriteRepo) Delete(ctx context.Context, userID, planetID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND planet_id = ?", userID, planetID).
		Delete(&models.PlanetFavorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("收藏记录不存在")
	}
	return nil
}

// Exists 检查收藏记录是否存在
func (r *planetFavoriteRepo) Exists(ctx context.Context, userID, planetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PlanetFavorite{}).
		Where("user_id = ? AND planet_id = ?", userID, planetID).
		Count(&count).Error
	return count > 0, err
}

// FindByUserID 查找用户收藏的星球
func (r *planetFavoriteRepo) FindByUserID(ctx context.Context, userID uint) ([]*models.PlanetFavorite, error) {
	var favorites []*models.PlanetFavorite
	err := r.db.WithContext(ctx).
		Preload("Planet").
		Preload("Planet.Owner").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

// WithTx 使用事务
func (r *planetFavoriteRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &planetFavoriteRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
