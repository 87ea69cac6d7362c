package models

import "time"

// Planet 星球主页表，与用户一一对应，注册时一并创建
type Planet struct {
	BaseModel
	OwnerID    uint   `gorm:"uniqueIndex;not null" json:"owner_id"`
	Title      string `gorm:"size:100" json:"title"`
	VisitCount int64  `gorm:"default:0" json:"visit_count"`

	// 关联
	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// PlanetVisit 星球访问记录表，访客与星球的组合唯一，重复访问不计数
type PlanetVisit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanetID  uint      `gorm:"uniqueIndex:idx_planet_visitor;not null" json:"planet_id"`
	VisitorID uint      `gorm:"uniqueIndex:idx_planet_visitor;not null" json:"visitor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Gallery 星球画廊表，保存通关后收藏到星球的图片
type Gallery struct {
	BaseModel
	PlanetID uint   `gorm:"index;not null" json:"planet_id"`
	ImageID  uint   `gorm:"not null" json:"image_id"`
	Title    string `gorm:"size:100" json:"title"`

	// 关联
	Image GameImage `gorm:"foreignKey:ImageID" json:"image,omitempty"`
}

// Guestbook 星球留言板表
type Guestbook struct {
	BaseModel
	PlanetID uint   `gorm:"index;not null" json:"planet_id"`
	AuthorID uint   `gorm:"index;not null" json:"author_id"`
	Content  string `gorm:"size:500;not null" json:"content"`

	// 关联
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// PlanetFavorite 星球收藏表，用户与星球的组合唯一
type PlanetFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_planet;not null" json:"user_id"`
	PlanetID  uint      `gorm:"uniqueIndex:idx_user_planet;not null" json:"planet_id"`
	CreatedAt time.Time `json:"created_at"`

	// 关联
	Planet Planet `gorm:"foreignKey:PlanetID" json:"planet,omitempty"`
}

// TableName 指定Planet表名
func (Planet) TableName() string {
	return "planets"
}

// TableName 指定PlanetVisit表名
func (PlanetVisit) TableName() string {
	return "planet_visits"
}

// TableName 指定Gallery表名
func (Gallery) TableName() string {
	return "galleries"
}

// TableName 指定Guestbook表名
func (Guestbook) TableName() string {
	return "guestbooks"
}

// TableName 指定PlanetFavorite表名
func (PlanetFavorite) TableName() string {
	return "planet_favorites"
}
