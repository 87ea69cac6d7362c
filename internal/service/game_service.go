package service

import (
	"context"
	"strings"
	"time"

	"github.com/wfunc/puzzle-planet/internal/adapter"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/logger"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/utils"
	"go.uber.org/zap"
)

// WebSocket事件名
const (
	EventUserJoined    = "user_joined"
	EventUserLeft      = "user_left"
	EventRoomUpdated   = "room_updated"
	EventGameStarted   = "game_started"
	EventGameCompleted = "game_completed"
)

// roomCodeMaxAttempts 生成唯一房间码的最大尝试次数
const roomCodeMaxAttempts = 10

// gameService 游戏服务实现
type gameService struct {
	repos     *repository.Manager
	generator adapter.ImageGenerator
	storage   adapter.ImageStorage
	notifier  RoomNotifier
	log       *zap.Logger
}

// NewGameService 创建游戏服务
func NewGameService(
	repos *repository.Manager,
	generator adapter.ImageGenerator,
	storage adapter.ImageStorage,
	notifier RoomNotifier,
	log *zap.Logger,
) GameService {
	return &gameService{
		repos:     repos,
		generator: generator,
		storage:   storage,
		notifier:  notifier,
		log:       log,
	}
}

// StartSingle 开始单人游戏
// 先生成并上传图片，成功后在一个事务中落库，房间直接进入playing
func (s *gameService) StartSingle(ctx context.Context, userID uint, tags []string) (*GameView, error) {
	tags, err := s.normalizeTags(tags)
	if err != nil {
		return nil, err
	}

	imageURL, prompt, err := s.generateAndUpload(ctx, tags)
	if err != nil {
		return nil, err
	}

	code, err := s.allocateRoomCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &models.Room{
		HostID: userID,
		Code:   code,
		Status: models.RoomStatusPlaying,
	}
	game := &models.Game{
		UserID:    userID,
		Mode:      models.GameModeSingle,
		StartedAt: &now,
	}

	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.Room().Create(ctx, room); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建房间失败")
		}

		if err := tx.RoomParticipant().Create(ctx, &models.RoomParticipant{
			RoomID:  room.ID,
			UserID:  userID,
			IsHost:  true,
			IsReady: true,
		}); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建房间成员失败")
		}

		game.RoomID = room.ID
		if err := tx.Game().Create(ctx, game); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局失败")
		}

		if err := s.createGameTags(ctx, tx, game.ID, userID, tags); err != nil {
			return err
		}

		return tx.GameImage().Create(ctx, &models.GameImage{
			GameID:      game.ID,
			ImageURL:    imageURL,
			Metadata:    models.JSONMap{"prompt": prompt, "tags": strings.Join(tags, ",")},
			GeneratedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.LogGameEvent("single_started", room.Code, map[string]interface{}{
		"game_id": game.ID,
		"user_id": userID,
		"tags":    tags,
	})

	return s.buildGameView(ctx, room.ID)
}

// CompleteSingle 完成单人游戏
// 耗时采用客户端提交的起止时间戳
func (s *gameService) CompleteSingle(ctx context.Context, userID uint, req *CompleteSingleRequest) (*CompletionView, error) {
	if req.EndTime <= req.StartTime {
		return nil, apperrors.New(apperrors.ErrInvalidTimeRange)
	}

	room, game, err := s.findRoomAndGame(ctx, req.GameCode)
	if err != nil {
		return nil, err
	}
	if game.Mode != models.GameModeSingle {
		return nil, apperrors.New(apperrors.ErrGameNotFound, "不是单人对局")
	}
	if room.HostID != userID {
		return nil, apperrors.New(apperrors.ErrNotInRoom)
	}
	if room.Status == models.RoomStatusFinished {
		return s.existingCompletionView(ctx, room, game)
	}
	if !room.IsPlaying() {
		return nil, apperrors.New(apperrors.ErrRoomNotPlaying)
	}

	clearTimeMs := req.EndTime - req.StartTime
	completion, already, err := s.recordCompletion(ctx, room, game, userID, clearTimeMs, models.RoomStatusFinished)
	if err != nil {
		return nil, err
	}

	return s.buildCompletionView(ctx, room, game, completion, already)
}

// SaveToPlanet 将对局的谜面图片保存到自己的星球画廊
func (s *gameService) SaveToPlanet(ctx context.Context, userID uint, gameCode, title string) (*models.Gallery, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "作品标题不能为空")
	}

	// 对局结束后房间已不是活跃状态，按码查最近一间
	room, err := s.repos.Room().FindLatestByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}
	game, err := s.repos.Game().FindByRoomID(ctx, room.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrGameNotFound)
	}

	image, err := s.repos.GameImage().FindLatestByGameID(ctx, game.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrNoImage)
	}

	planet, err := s.repos.Planet().FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	item := &models.Gallery{
		PlanetID: planet.ID,
		ImageID:  image.ID,
		Title:    title,
	}
	if err := s.repos.Gallery().Create(ctx, item); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "保存到画廊失败")
	}

	s.log.Info("game image saved to planet",
		zap.Uint("planet_id", planet.ID),
		zap.Uint("game_id", game.ID))
	return item, nil
}

// CreateRoom 创建多人房间，房间等待其他玩家加入
func (s *gameService) CreateRoom(ctx context.Context, hostID uint, tags []string) (*GameView, error) {
	tags, err := s.normalizeTags(tags)
	if err != nil {
		return nil, err
	}

	imageURL, prompt, err := s.generateAndUpload(ctx, tags)
	if err != nil {
		return nil, err
	}

	code, err := s.allocateRoomCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &models.Room{
		HostID: hostID,
		Code:   code,
		Status: models.RoomStatusWaiting,
	}
	game := &models.Game{
		UserID: hostID,
		Mode:   models.GameModeMulti,
	}

	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.Room().Create(ctx, room); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建房间失败")
		}

		if err := tx.RoomParticipant().Create(ctx, &models.RoomParticipant{
			RoomID: room.ID,
			UserID: hostID,
			IsHost: true,
		}); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建房间成员失败")
		}

		game.RoomID = room.ID
		if err := tx.Game().Create(ctx, game); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局失败")
		}

		if err := s.createGameTags(ctx, tx, game.ID, hostID, tags); err != nil {
			return err
		}

		return tx.GameImage().Create(ctx, &models.GameImage{
			GameID:      game.ID,
			ImageURL:    imageURL,
			Metadata:    models.JSONMap{"prompt": prompt, "tags": strings.Join(tags, ",")},
			GeneratedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.LogGameEvent("room_created", room.Code, map[string]interface{}{
		"game_id": game.ID,
		"host_id": hostID,
	})

	return s.buildGameView(ctx, room.ID)
}

// JoinRoom 根据房间码加入等待中的房间
func (s *gameService) JoinRoom(ctx context.Context, userID uint, gameCode string) (*GameView, error) {
	room, err := s.repos.Room().FindActiveByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}

	if !room.IsWaiting() {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}
	if room.FindParticipant(userID) != nil {
		return nil, apperrors.New(apperrors.ErrAlreadyInRoom)
	}
	if room.IsFull() {
		return nil, apperrors.New(apperrors.ErrRoomFull)
	}

	err = s.repos.RoomParticipant().Create(ctx, &models.RoomParticipant{
		RoomID: room.ID,
		UserID: userID,
	})
	if err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, apperrors.New(apperrors.ErrAlreadyInRoom)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "加入房间失败")
	}

	view, err := s.buildGameView(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.notify(room.ID, EventUserJoined, view)
	return view, nil
}

// SetReady 设置准备状态
func (s *gameService) SetReady(ctx context.Context, userID uint, gameCode string, ready bool) (*GameView, error) {
	room, err := s.repos.Room().FindActiveByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}

	if !room.IsWaiting() {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}
	if room.FindParticipant(userID) == nil {
		return nil, apperrors.New(apperrors.ErrNotInRoom)
	}

	if err := s.repos.RoomParticipant().UpdateReady(ctx, room.ID, userID, ready); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新准备状态失败")
	}

	view, err := s.buildGameView(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.notify(room.ID, EventRoomUpdated, view)
	return view, nil
}

// StartMulti 房主开始多人对局
func (s *gameService) StartMulti(ctx context.Context, hostID uint, gameCode string) (*GameView, error) {
	room, err := s.repos.Room().FindActiveByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}

	if room.HostID != hostID {
		return nil, apperrors.New(apperrors.ErrNotHost)
	}
	if !room.IsWaiting() {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}
	if len(room.Participants) < models.MaxRoomParticipants {
		return nil, apperrors.New(apperrors.ErrNotEnoughPlayers)
	}
	if !room.AllGuestsReady() {
		return nil, apperrors.New(apperrors.ErrGuestsNotReady)
	}

	game, err := s.repos.Game().FindByRoomID(ctx, room.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrGameNotFound)
	}

	now := time.Now()
	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.Room().UpdateStatus(ctx, room.ID, models.RoomStatusPlaying); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新房间状态失败")
		}
		return tx.Game().UpdateStartedAt(ctx, game.ID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.LogGameEvent("multi_started", room.Code, map[string]interface{}{
		"game_id": game.ID,
		"host_id": hostID,
	})

	view, err := s.buildGameView(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.notify(room.ID, EventGameStarted, view)
	return view, nil
}

// CompleteMulti 完成多人对局
// 耗时由服务端从StartedAt推算，先到者胜，唯一索引保证只有一条记录
func (s *gameService) CompleteMulti(ctx context.Context, userID uint, gameCode string) (*CompletionView, error) {
	room, game, err := s.findRoomAndGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if game.Mode != models.GameModeMulti {
		return nil, apperrors.New(apperrors.ErrGameNotFound, "不是多人对局")
	}
	if room.FindParticipant(userID) == nil {
		return nil, apperrors.New(apperrors.ErrNotInRoom)
	}
	if room.Status == models.RoomStatusCompleted {
		return s.existingCompletionView(ctx, room, game)
	}
	if !room.IsPlaying() {
		return nil, apperrors.New(apperrors.ErrRoomNotPlaying)
	}
	if game.StartedAt == nil {
		return nil, apperrors.New(apperrors.ErrGameNotFound, "对局尚未开始")
	}

	clearTimeMs := time.Since(*game.StartedAt).Milliseconds()
	completion, already, err := s.recordCompletion(ctx, room, game, userID, clearTimeMs, models.RoomStatusCompleted)
	if err != nil {
		return nil, err
	}

	view, err := s.buildCompletionView(ctx, room, game, completion, already)
	if err != nil {
		return nil, err
	}

	if !already {
		s.notify(room.ID, EventGameCompleted, view)
	}
	return view, nil
}

// IsParticipant 检查用户是否为房间成员
func (s *gameService) IsParticipant(ctx context.Context, roomID, userID uint) (bool, error) {
	participant, err := s.repos.RoomParticipant().Find(ctx, roomID, userID)
	if err != nil {
		return false, nil
	}
	return participant != nil, nil
}

// FindRoomByCode 根据房间码查找活跃房间
func (s *gameService) FindRoomByCode(ctx context.Context, gameCode string) (*models.Room, error) {
	room, err := s.repos.Room().FindActiveByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}
	return room, nil
}

// generateAndUpload 生成图片并上传，全部成功后才允许落库
func (s *gameService) generateAndUpload(ctx context.Context, tags []string) (string, string, error) {
	data, prompt, err := s.generator.Generate(ctx, tags)
	if err != nil {
		return "", "", err
	}

	imageURL, err := s.storage.Upload(ctx, data, "image/png")
	if err != nil {
		return "", "", err
	}
	return imageURL, prompt, nil
}

// allocateRoomCode 生成未被活跃房间占用的房间码
func (s *gameService) allocateRoomCode(ctx context.Context) (string, error) {
	for i := 0; i < roomCodeMaxAttempts; i++ {
		code, err := utils.GenerateRoomCode()
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrUnknown, "生成房间码失败")
		}

		inUse, err := s.repos.Room().CodeInUse(ctx, code)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "检查房间码失败")
		}
		if !inUse {
			return code, nil
		}
	}
	return "", apperrors.New(apperrors.ErrUnknown, "无法分配房间码")
}

// createGameTags 去重后按顺序写入对局标签
func (s *gameService) createGameTags(ctx context.Context, tx *repository.Transaction, gameID, userID uint, tags []string) error {
	for i, name := range tags {
		tag, err := tx.Tag().FindOrCreate(ctx, name)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建标签失败")
		}
		if err := tx.Tag().CreateGameTag(ctx, &models.GameTag{
			GameID:          gameID,
			TagID:           tag.ID,
			EnteredByUserID: userID,
			OrderIndex:      i,
		}); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局标签失败")
		}
	}
	return nil
}

// recordCompletion 写入通关记录并收尾房间
// 唯一索引冲突表示他人已先完成，返回已有记录
func (s *gameService) recordCompletion(
	ctx context.Context,
	room *models.Room,
	game *models.Game,
	userID uint,
	clearTimeMs int64,
	finalStatus string,
) (*models.GameCompletion, bool, error) {
	image, _ := s.repos.GameImage().FindLatestByGameID(ctx, game.ID)

	completion := &models.GameCompletion{
		GameID:      game.ID,
		UserID:      userID,
		ClearTimeMs: clearTimeMs,
		Winner:      true,
	}
	if image != nil {
		completion.ImageID = image.ID
	}

	now := time.Now()
	// 并发完成时锁忙重试，唯一索引冲突不在重试范围内
	err := s.repos.WithRetryTransaction(ctx, 3, func(tx *repository.Transaction) error {
		if err := tx.GameCompletion().Create(ctx, completion); err != nil {
			return err
		}
		if err := tx.Game().UpdateFinishedAt(ctx, game.ID, now); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新对局失败")
		}
		return tx.Room().UpdateStatus(ctx, room.ID, finalStatus)
	})
	if err == nil {
		logger.LogGameEvent("completed", room.Code, map[string]interface{}{
			"game_id":       game.ID,
			"user_id":       userID,
			"clear_time_ms": clearTimeMs,
		})
		return completion, false, nil
	}

	if repository.IsDuplicateKeyError(err) {
		existing, findErr := s.repos.GameCompletion().FindByGameID(ctx, game.ID)
		if findErr != nil {
			return nil, false, apperrors.Wrap(findErr, apperrors.ErrDatabaseQuery, "查询通关记录失败")
		}
		return existing, true, nil
	}

	return nil, false, err
}

// existingCompletionView 返回已经产生的通关记录
func (s *gameService) existingCompletionView(ctx context.Context, room *models.Room, game *models.Game) (*CompletionView, error) {
	completion, err := s.repos.GameCompletion().FindByGameID(ctx, game.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrGameNotFound, "通关记录不存在")
	}
	return s.buildCompletionView(ctx, room, game, completion, true)
}

// findRoomAndGame 根据房间码查找房间和对局，结束的房间也能查到
func (s *gameService) findRoomAndGame(ctx context.Context, gameCode string) (*models.Room, *models.Game, error) {
	room, err := s.repos.Room().FindLatestByCode(ctx, normalizeCode(gameCode))
	if err != nil {
		return nil, nil, apperrors.New(apperrors.ErrRoomNotFound)
	}

	game, err := s.repos.Game().FindByRoomID(ctx, room.ID)
	if err != nil {
		return nil, nil, apperrors.New(apperrors.ErrGameNotFound)
	}
	return room, game, nil
}

// buildGameView 组装对局视图
func (s *gameService) buildGameView(ctx context.Context, roomID uint) (*GameView, error) {
	room, err := s.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRoomNotFound)
	}

	game, err := s.repos.Game().FindByRoomID(ctx, room.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrGameNotFound)
	}

	view := &GameView{
		RoomID:    room.ID,
		GameID:    game.ID,
		GameCode:  room.Code,
		Mode:      game.Mode,
		Status:    room.Status,
		HostID:    room.HostID,
		StartedAt: game.StartedAt,
	}

	for _, gameTag := range game.Tags {
		view.Tags = append(view.Tags, gameTag.Tag.Name)
	}
	if image := game.LatestImage(); image != nil {
		view.ImageURL = image.ImageURL
	}
	for _, participant := range room.Participants {
		view.Participants = append(view.Participants, ParticipantView{
			UserID:   participant.UserID,
			Username: participant.User.Username,
			Nickname: participant.User.Nickname,
			IsHost:   participant.IsHost,
			IsReady:  participant.IsReady,
		})
	}

	return view, nil
}

// buildCompletionView 组装通关视图
func (s *gameService) buildCompletionView(
	ctx context.Context,
	room *models.Room,
	game *models.Game,
	completion *models.GameCompletion,
	already bool,
) (*CompletionView, error) {
	winner, err := s.repos.User().FindByID(ctx, completion.UserID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}

	return &CompletionView{
		GameID:           game.ID,
		GameCode:         room.Code,
		WinnerID:         winner.ID,
		WinnerUsername:   winner.Username,
		WinnerNickname:   winner.Nickname,
		ClearTimeMs:      completion.ClearTimeMs,
		AlreadyCompleted: already,
	}, nil
}

// notify 广播房间事件，通知器未注入时跳过
func (s *gameService) notify(roomID uint, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyRoom(roomID, event, payload)
	logger.LogRoomEvent(event, roomID, nil)
}

// normalizeCode 规范化房间码
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeTags 清洗并校验标签
func (s *gameService) normalizeTags(tags []string) ([]string, error) {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		lower := strings.ToLower(tag)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		cleaned = append(cleaned, tag)
	}

	if len(cleaned) != models.GameTagCount {
		return nil, apperrors.New(apperrors.ErrInvalidTagCount)
	}
	return cleaned, nil
}
