package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"gorm.io/gorm"
)

// GameServiceTestSuite 游戏服务测试套件
type GameServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	services  *Services
	generator *fakeGenerator
	storage   *fakeStorage
	notifier  *fakeNotifier
	host      *models.User
	guest     *models.User
}

func (suite *GameServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.services, suite.generator, suite.storage, suite.notifier = newTestServices(suite.db)
	suite.host = repository.CreateTestUser(suite.T(), suite.db, "hostuser")
	suite.guest = repository.CreateTestUser(suite.T(), suite.db, "guestuser")
	repository.CreateTestPlanet(suite.T(), suite.db, suite.host.ID, "主机的星球")
	repository.CreateTestPlanet(suite.T(), suite.db, suite.guest.ID, "客人的星球")
}

func (suite *GameServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *GameServiceTestSuite) defaultTags() []string {
	return []string{"cat", "moon", "castle", "rainbow"}
}

// TestStartSingle 测试单人开局
func (suite *GameServiceTestSuite) TestStartSingle() {
	ctx := context.Background()

	view, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.GameModeSingle, view.Mode)
	assert.Equal(suite.T(), models.RoomStatusPlaying, view.Status)
	assert.Len(suite.T(), view.GameCode, 6)
	assert.Equal(suite.T(), suite.defaultTags(), view.Tags)
	assert.NotEmpty(suite.T(), view.ImageURL)
	assert.NotNil(suite.T(), view.StartedAt)
	assert.Len(suite.T(), view.Participants, 1)
	assert.True(suite.T(), view.Participants[0].IsHost)

	// 图片生成和上传发生在入库之前
	assert.Equal(suite.T(), 1, suite.generator.calls)
	assert.Equal(suite.T(), 1, suite.storage.uploads)
}

// TestStartSingle_InvalidTags 测试标签数量校验
func (suite *GameServiceTestSuite) TestStartSingle_InvalidTags() {
	ctx := context.Background()

	cases := [][]string{
		{"cat", "moon"},
		{"cat", "moon", "castle", "rainbow", "star"},
		{"cat", "CAT", "moon", "castle"}, // 去重后不足4个
		{"cat", "  ", "moon", "castle"},
	}
	for _, tags := range cases {
		_, err := suite.services.Game.StartSingle(ctx, suite.host.ID, tags)
		assert.Error(suite.T(), err)
		assert.True(suite.T(), apperrors.Is(err, apperrors.ErrInvalidTagCount))
	}

	// 校验失败时不应调用生成器
	assert.Equal(suite.T(), 0, suite.generator.calls)
}

// TestStartSingle_GeneratorFailure 测试生成失败时不落库
func (suite *GameServiceTestSuite) TestStartSingle_GeneratorFailure() {
	ctx := context.Background()

	suite.generator.failWith = assert.AnError
	_, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.Error(suite.T(), err)

	var count int64
	suite.db.Model(&models.Room{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestCompleteSingle 测试单人通关，耗时来自客户端时间戳
func (suite *GameServiceTestSuite) TestCompleteSingle() {
	ctx := context.Background()

	view, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	start := time.Now().Add(-90 * time.Second).UnixMilli()
	end := start + 75000
	result, err := suite.services.Game.CompleteSingle(ctx, suite.host.ID, &CompleteSingleRequest{
		GameCode:  view.GameCode,
		StartTime: start,
		EndTime:   end,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(75000), result.ClearTimeMs)
	assert.Equal(suite.T(), suite.host.ID, result.WinnerID)
	assert.False(suite.T(), result.AlreadyCompleted)

	// 房间应进入已结束状态
	room, err := repository.NewManager(suite.db).Room().FindLatestByCode(ctx, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoomStatusFinished, room.Status)
}

// TestCompleteSingle_InvalidTimeRange 测试非法时间区间
func (suite *GameServiceTestSuite) TestCompleteSingle_InvalidTimeRange() {
	ctx := context.Background()

	view, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	now := time.Now().UnixMilli()
	_, err = suite.services.Game.CompleteSingle(ctx, suite.host.ID, &CompleteSingleRequest{
		GameCode:  view.GameCode,
		StartTime: now,
		EndTime:   now - 1000,
	})
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrInvalidTimeRange))
}

// TestSaveToPlanet 测试通关后保存到画廊
func (suite *GameServiceTestSuite) TestSaveToPlanet() {
	ctx := context.Background()

	view, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	start := time.Now().Add(-time.Minute).UnixMilli()
	_, err = suite.services.Game.CompleteSingle(ctx, suite.host.ID, &CompleteSingleRequest{
		GameCode:  view.GameCode,
		StartTime: start,
		EndTime:   start + 30000,
	})
	assert.NoError(suite.T(), err)

	item, err := suite.services.Game.SaveToPlanet(ctx, suite.host.ID, view.GameCode, "我的第一幅作品")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "我的第一幅作品", item.Title)
	assert.NotZero(suite.T(), item.ImageID)

	gallery, err := suite.services.Planet.ListGallery(ctx, "hostuser", 1, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), gallery, 1)
}

// TestMultiFlow 测试多人完整流程：创建、加入、准备、开始、通关
func (suite *GameServiceTestSuite) TestMultiFlow() {
	ctx := context.Background()

	view, err := suite.services.Game.CreateRoom(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.GameModeMulti, view.Mode)
	assert.Equal(suite.T(), models.RoomStatusWaiting, view.Status)
	assert.Nil(suite.T(), view.StartedAt)

	// 人数不足不能开始
	_, err = suite.services.Game.StartMulti(ctx, suite.host.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrNotEnoughPlayers))

	joined, err := suite.services.Game.JoinRoom(ctx, suite.guest.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), joined.Participants, 2)

	// 客人未准备不能开始
	_, err = suite.services.Game.StartMulti(ctx, suite.host.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrGuestsNotReady))

	_, err = suite.services.Game.SetReady(ctx, suite.guest.ID, view.GameCode, true)
	assert.NoError(suite.T(), err)

	// 非房主不能开始
	_, err = suite.services.Game.StartMulti(ctx, suite.guest.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrNotHost))

	started, err := suite.services.Game.StartMulti(ctx, suite.host.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoomStatusPlaying, started.Status)
	assert.NotNil(suite.T(), started.StartedAt)

	result, err := suite.services.Game.CompleteMulti(ctx, suite.guest.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.guest.ID, result.WinnerID)
	assert.False(suite.T(), result.AlreadyCompleted)
	assert.GreaterOrEqual(suite.T(), result.ClearTimeMs, int64(0))

	events := suite.notifier.eventsFor(view.RoomID)
	assert.Contains(suite.T(), events, EventUserJoined)
	assert.Contains(suite.T(), events, EventRoomUpdated)
	assert.Contains(suite.T(), events, EventGameStarted)
	assert.Contains(suite.T(), events, EventGameCompleted)
}

// TestCompleteMulti_FirstWins 测试多人重复通关只保留首个胜者
func (suite *GameServiceTestSuite) TestCompleteMulti_FirstWins() {
	ctx := context.Background()

	view, err := suite.services.Game.CreateRoom(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)
	_, err = suite.services.Game.JoinRoom(ctx, suite.guest.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	_, err = suite.services.Game.SetReady(ctx, suite.guest.ID, view.GameCode, true)
	assert.NoError(suite.T(), err)
	_, err = suite.services.Game.StartMulti(ctx, suite.host.ID, view.GameCode)
	assert.NoError(suite.T(), err)

	first, err := suite.services.Game.CompleteMulti(ctx, suite.guest.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), first.AlreadyCompleted)

	// 房间已结束后第二个玩家收到的是原始胜者
	second, err := suite.services.Game.CompleteMulti(ctx, suite.host.ID, view.GameCode)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), second.AlreadyCompleted)
	assert.Equal(suite.T(), suite.guest.ID, second.WinnerID)

	// 完成广播只发一次
	completed := 0
	for _, name := range suite.notifier.eventsFor(view.RoomID) {
		if name == EventGameCompleted {
			completed++
		}
	}
	assert.Equal(suite.T(), 1, completed)
}

// TestJoinRoom_Limits 测试加入房间的各种限制
func (suite *GameServiceTestSuite) TestJoinRoom_Limits() {
	ctx := context.Background()

	view, err := suite.services.Game.CreateRoom(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	// 房主重复加入
	_, err = suite.services.Game.JoinRoom(ctx, suite.host.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrAlreadyInRoom))

	_, err = suite.services.Game.JoinRoom(ctx, suite.guest.ID, view.GameCode)
	assert.NoError(suite.T(), err)

	// 满员
	third := repository.CreateTestUser(suite.T(), suite.db, "thirduser")
	_, err = suite.services.Game.JoinRoom(ctx, third.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrRoomFull))

	// 不存在的房间
	_, err = suite.services.Game.JoinRoom(ctx, suite.guest.ID, "ZZZZZZ")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrRoomNotFound))
}

// TestJoinRoom_NotWaiting 测试对局开始后不能加入
func (suite *GameServiceTestSuite) TestJoinRoom_NotWaiting() {
	ctx := context.Background()

	view, err := suite.services.Game.StartSingle(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	_, err = suite.services.Game.JoinRoom(ctx, suite.guest.ID, view.GameCode)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrRoomNotWaiting))
}

// TestIsParticipant 测试成员资格检查
func (suite *GameServiceTestSuite) TestIsParticipant() {
	ctx := context.Background()

	view, err := suite.services.Game.CreateRoom(ctx, suite.host.ID, suite.defaultTags())
	assert.NoError(suite.T(), err)

	ok, err := suite.services.Game.IsParticipant(ctx, view.RoomID, suite.host.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)

	ok, err = suite.services.Game.IsParticipant(ctx, view.RoomID, suite.guest.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

// TestGameServiceTestSuite 运行测试套件
func TestGameServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}
