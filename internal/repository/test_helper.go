package repository

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// isCI 检查是否在CI环境中运行
func isCI() bool {
	// GitHub Actions 设置 CI=true
	// 其他CI系统也通常设置 CI 环境变量
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 清理所有表数据（保留表结构）
	// 注意：清理顺序很重要，先清理有外键依赖的表
	tables := []interface{}{
		&models.GameCompletion{},
		&models.GameImage{},
		&models.GameTag{},
		&models.Tag{},
		&models.Game{},
		&models.RoomParticipant{},
		&models.Room{},
		&models.Friendship{},
		&models.FriendRequest{},
		&models.PlanetFavorite{},
		&models.Guestbook{},
		&models.Gallery{},
		&models.PlanetVisit{},
		&models.Planet{},
		&models.UserAuth{},
		&models.User{},
	}

	for _, table := range tables {
		db.Unscoped().Where("1 = 1").Delete(table)
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},

		// 星球系统
		&models.Planet{},
		&models.PlanetVisit{},
		&models.Gallery{},
		&models.Guestbook{},
		&models.PlanetFavorite{},

		// 好友系统
		&models.FriendRequest{},
		&models.Friendship{},

		// 游戏系统
		&models.Room{},
		&models.RoomParticipant{},
		&models.Game{},
		&models.Tag{},
		&models.GameTag{},
		&models.GameImage{},
		&models.GameCompletion{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestData 创建测试数据
func SeedTestData(t *testing.T, db *gorm.DB) {
	// 创建测试用户
	users := []models.User{
		{
			Username: "testuser1",
			Nickname: "测试用户1",
			Status:   "active",
		},
		{
			Username: "testuser2",
			Nickname: "测试用户2",
			Status:   "active",
		},
	}
	err := db.Create(&users).Error
	require.NoError(t, err)

	// 创建测试星球（每个用户一个）
	planets := []models.Planet{
		{
			OwnerID: users[0].ID,
			Title:   "测试用户1的星球",
		},
		{
			OwnerID: users[1].ID,
			Title:   "测试用户2的星球",
		},
	}
	err = db.Create(&planets).Error
	require.NoError(t, err)
}

// AssertRoom 验证房间
func AssertRoom(t *testing.T, expected, actual *models.Room) {
	assert.Equal(t, expected.Code, actual.Code)
	assert.Equal(t, expected.HostID, actual.HostID)
	assert.Equal(t, expected.Status, actual.Status)
}

// AssertGame 验证游戏对局
func AssertGame(t *testing.T, expected, actual *models.Game) {
	assert.Equal(t, expected.RoomID, actual.RoomID)
	assert.Equal(t, expected.UserID, actual.UserID)
	assert.Equal(t, expected.Mode, actual.Mode)
}

// AssertPlanet 验证星球
func AssertPlanet(t *testing.T, expected, actual *models.Planet) {
	assert.Equal(t, expected.OwnerID, actual.OwnerID)
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.VisitCount, actual.VisitCount)
}

// CreateTestUser 创建测试用户
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username: username,
		Nickname: username,
		Status:   "active",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestPlanet 创建测试星球
func CreateTestPlanet(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Planet {
	planet := &models.Planet{
		OwnerID: ownerID,
		Title:   title,
	}
	require.NoError(t, db.Create(planet).Error)
	return planet
}

// CreateTestRoom 创建测试房间
func CreateTestRoom(t *testing.T, db *gorm.DB, hostID uint, code string) *models.Room {
	room := &models.Room{
		HostID: hostID,
		Code:   code,
		Status: models.RoomStatusWaiting,
	}
	require.NoError(t, db.Create(room).Error)

	participant := &models.RoomParticipant{
		RoomID: room.ID,
		UserID: hostID,
		IsHost: true,
	}
	require.NoError(t, db.Create(participant).Error)
	return room
}

// CreateTestGame 创建测试游戏对局
func CreateTestGame(t *testing.T, db *gorm.DB, roomID, userID uint, mode string) *models.Game {
	now := time.Now()
	game := &models.Game{
		RoomID:    roomID,
		UserID:    userID,
		Mode:      mode,
		StartedAt: &now,
	}
	require.NoError(t, db.Create(game).Error)
	return game
}
