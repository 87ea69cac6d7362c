package service

import (
	"context"
	"time"

	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/utils"
)

// AuthService 认证服务接口
type AuthService interface {
	// 注册登录
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)

	// 用户名检查
	CheckUsername(ctx context.Context, username string) (bool, error)

	// 令牌验证
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// UserService 用户服务接口
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateNickname(ctx context.Context, userID uint, nickname string) error
	UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	UpdateProfileImage(ctx context.Context, userID uint, imageURL string) error
}

// PlanetService 星球服务接口
type PlanetService interface {
	// 星球列表和详情
	ListPlanets(ctx context.Context, page, pageSize int) ([]*PlanetSummary, error)
	GetPlanetByUsername(ctx context.Context, username string, viewerID uint) (*PlanetDetail, error)
	UpdatePlanet(ctx context.Context, userID uint, req *UpdatePlanetRequest) error

	// 访问
	VisitPlanet(ctx context.Context, username string, visitorID uint) (*VisitResult, error)

	// 画廊
	ListGallery(ctx context.Context, username string, page, pageSize int) ([]*models.Gallery, error)
	GetGalleryItem(ctx context.Context, itemID uint) (*models.Gallery, error)

	// 留言板
	ListGuestbook(ctx context.Context, username string, page, pageSize int) ([]*models.Guestbook, error)
	WriteGuestbook(ctx context.Context, username string, authorID uint, content string) (*models.Guestbook, error)

	// 收藏
	AddFavorite(ctx context.Context, userID uint, username string) error
	RemoveFavorite(ctx context.Context, userID uint, username string) error
	ListFavorites(ctx context.Context, userID uint) ([]*PlanetSummary, error)
}

// FriendService 好友服务接口
type FriendService interface {
	SendRequest(ctx context.Context, requesterID uint, targetUsername string) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, userID, requestID uint) error
	RejectRequest(ctx context.Context, userID, requestID uint) error
	ListReceived(ctx context.Context, userID uint) ([]*models.FriendRequest, error)
	ListSent(ctx context.Context, userID uint) ([]*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID uint) ([]*models.User, error)
	RemoveFriend(ctx context.Context, userID uint, username string) error
}

// GameService 游戏服务接口
type GameService interface {
	// 单人模式
	StartSingle(ctx context.Context, userID uint, tags []string) (*GameView, error)
	CompleteSingle(ctx context.Context, userID uint, req *CompleteSingleRequest) (*CompletionView, error)
	SaveToPlanet(ctx context.Context, userID uint, gameCode, title string) (*models.Gallery, error)

	// 多人模式
	CreateRoom(ctx context.Context, hostID uint, tags []string) (*GameView, error)
	JoinRoom(ctx context.Context, userID uint, gameCode string) (*GameView, error)
	SetReady(ctx context.Context, userID uint, gameCode string, ready bool) (*GameView, error)
	StartMulti(ctx context.Context, hostID uint, gameCode string) (*GameView, error)
	CompleteMulti(ctx context.Context, userID uint, gameCode string) (*CompletionView, error)

	// 成员资格检查（WebSocket加入房间时使用）
	IsParticipant(ctx context.Context, roomID, userID uint) (bool, error)
	FindRoomByCode(ctx context.Context, gameCode string) (*models.Room, error)
}

// RoomNotifier 房间事件通知接口，由WebSocket层实现
type RoomNotifier interface {
	NotifyRoom(roomID uint, event string, payload interface{})
}

// SignupRequest 注册请求
type SignupRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// PlanetSummary 星球列表项
type PlanetSummary struct {
	PlanetID      uint   `json:"planet_id"`
	Title         string `json:"title"`
	OwnerUsername string `json:"owner_username"`
	OwnerNickname string `json:"owner_nickname"`
	ProfileImage  string `json:"profile_image,omitempty"`
	VisitCount    int64  `json:"visit_count"`
}

// PlanetDetail 星球详情
type PlanetDetail struct {
	PlanetSummary
	IsOwner     bool `json:"is_owner"`
	CanEdit     bool `json:"can_edit"`
	IsFavorited bool `json:"is_favorited"`
}

// UpdatePlanetRequest 更新星球请求，至少一个字段非空
type UpdatePlanetRequest struct {
	Title        string `json:"title"`
	ProfileImage string `json:"profile_image"`
}

// VisitResult 访问结果
type VisitResult struct {
	VisitCount   int64 `json:"visit_count"`
	FirstVisit   bool  `json:"first_visit"`
	AlreadyKnown bool  `json:"already_known"`
}

// ParticipantView 房间成员视图
type ParticipantView struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	IsHost   bool   `json:"is_host"`
	IsReady  bool   `json:"is_ready"`
}

// GameView 对局视图
type GameView struct {
	RoomID       uint              `json:"room_id"`
	GameID       uint              `json:"game_id"`
	GameCode     string            `json:"game_code"`
	Mode         string            `json:"mode"`
	Status       string            `json:"status"`
	HostID       uint              `json:"host_id"`
	Tags         []string          `json:"tags"`
	ImageURL     string            `json:"image_url,omitempty"`
	Participants []ParticipantView `json:"participants"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
}

// CompleteSingleRequest 单人完成请求，时间戳为客户端毫秒
type CompleteSingleRequest struct {
	GameCode  string `json:"game_code" binding:"required"`
	StartTime int64  `json:"start_time" binding:"required"`
	EndTime   int64  `json:"end_time" binding:"required"`
}

// CompletionView 通关结果视图
type CompletionView struct {
	GameID           uint   `json:"game_id"`
	GameCode         string `json:"game_code"`
	WinnerID         uint   `json:"winner_id"`
	WinnerUsername   string `json:"winner_username"`
	WinnerNickname   string `json:"winner_nickname"`
	ClearTimeMs      int64  `json:"clear_time_ms"`
	AlreadyCompleted bool   `json:"already_completed"`
}
