package service

import (
	"time"

	"github.com/wfunc/puzzle-planet/internal/adapter"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "your-secret-key-change-in-production",
		AccessTokenExpiry:  24 * time.Hour,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Services 服务集合
type Services struct {
	Auth   AuthService
	User   UserService
	Planet PlanetService
	Friend FriendService
	Game   GameService

	JWTManager *utils.JWTManager
}

// NewServices 创建服务集合
func NewServices(
	db *gorm.DB,
	config *Config,
	generator adapter.ImageGenerator,
	storage adapter.ImageStorage,
	notifier RoomNotifier,
	log *zap.Logger,
) *Services {
	repos := repository.NewManager(db)

	jwtManager := utils.NewJWTManager(
		config.JWTSecret,
		config.AccessTokenExpiry,
		config.RefreshTokenExpiry,
	)

	return &Services{
		Auth:       NewAuthService(repos, jwtManager, log),
		User:       NewUserService(repos, log),
		Planet:     NewPlanetService(repos, log),
		Friend:     NewFriendService(repos, log),
		Game:       NewGameService(repos, generator, storage, notifier, log),
		JWTManager: jwtManager,
	}
}

// SetRoomNotifier 绑定房间通知器，用于打破服务与WebSocket层的装配循环
func (s *Services) SetRoomNotifier(notifier RoomNotifier) {
	if game, ok := s.Game.(*gameService); ok {
		game.notifier = notifier
	}
}
