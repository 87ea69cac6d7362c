package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"gorm.io/gorm"
)

// PlanetServiceTestSuite 星球服务测试套件
type PlanetServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	services *Services
	owner    *models.User
	visitor  *models.User
}

func (suite *PlanetServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.services, _, _, _ = newTestServices(suite.db)
	suite.owner = repository.CreateTestUser(suite.T(), suite.db, "planetowner")
	suite.visitor = repository.CreateTestUser(suite.T(), suite.db, "planetvisitor")
	repository.CreateTestPlanet(suite.T(), suite.db, suite.owner.ID, "主人的星球")
	repository.CreateTestPlanet(suite.T(), suite.db, suite.visitor.ID, "访客的星球")
}

func (suite *PlanetServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// TestGetPlanetByUsername 测试星球详情的视角字段
func (suite *PlanetServiceTestSuite) TestGetPlanetByUsername() {
	ctx := context.Background()

	// 主人视角
	detail, err := suite.services.Planet.GetPlanetByUsername(ctx, "planetowner", suite.owner.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), detail.IsOwner)
	assert.True(suite.T(), detail.CanEdit)

	// 访客视角
	detail, err = suite.services.Planet.GetPlanetByUsername(ctx, "planetowner", suite.visitor.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), detail.IsOwner)
	assert.False(suite.T(), detail.CanEdit)

	// 匿名视角
	detail, err = suite.services.Planet.GetPlanetByUsername(ctx, "planetowner", 0)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), detail.IsOwner)

	_, err = suite.services.Planet.GetPlanetByUsername(ctx, "nosuchuser", 0)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrPlanetNotFound))
}

// TestVisitPlanet 测试访问计数只在首次访问时增加
func (suite *PlanetServiceTestSuite) TestVisitPlanet() {
	ctx := context.Background()

	result, err := suite.services.Planet.VisitPlanet(ctx, "planetowner", suite.visitor.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.FirstVisit)
	assert.Equal(suite.T(), int64(1), result.VisitCount)

	// 重复访问不再增加
	result, err = suite.services.Planet.VisitPlanet(ctx, "planetowner", suite.visitor.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.AlreadyKnown)
	assert.Equal(suite.T(), int64(1), result.VisitCount)

	// 自己访问自己的星球
	_, err = suite.services.Planet.VisitPlanet(ctx, "planetowner", suite.owner.ID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrSelfVisit))
}

// TestUpdatePlanet 测试更新星球资料
func (suite *PlanetServiceTestSuite) TestUpdatePlanet() {
	ctx := context.Background()

	// 两个字段都为空
	err := suite.services.Planet.UpdatePlanet(ctx, suite.owner.ID, &UpdatePlanetRequest{})
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrNothingToApply))

	err = suite.services.Planet.UpdatePlanet(ctx, suite.owner.ID, &UpdatePlanetRequest{
		Title:        "新标题",
		ProfileImage: "https://cdn.example.com/avatar.png",
	})
	assert.NoError(suite.T(), err)

	detail, err := suite.services.Planet.GetPlanetByUsername(ctx, "planetowner", suite.owner.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "新标题", detail.Title)
	assert.Equal(suite.T(), "https://cdn.example.com/avatar.png", detail.ProfileImage)
}

// TestGuestbook 测试留言板
func (suite *PlanetServiceTestSuite) TestGuestbook() {
	ctx := context.Background()

	entry, err := suite.services.Planet.WriteGuestbook(ctx, "planetowner", suite.visitor.ID, "到此一游")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "到此一游", entry.Content)

	entries, err := suite.services.Planet.ListGuestbook(ctx, "planetowner", 1, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 1)

	// 空内容
	_, err = suite.services.Planet.WriteGuestbook(ctx, "planetowner", suite.visitor.ID, "   ")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrInvalidParam))
}

// TestFavorites 测试收藏规则
func (suite *PlanetServiceTestSuite) TestFavorites() {
	ctx := context.Background()

	// 不能收藏自己
	err := suite.services.Planet.AddFavorite(ctx, suite.owner.ID, "planetowner")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrSelfFavorite))

	err = suite.services.Planet.AddFavorite(ctx, suite.visitor.ID, "planetowner")
	assert.NoError(suite.T(), err)

	// 重复收藏当作成功
	err = suite.services.Planet.AddFavorite(ctx, suite.visitor.ID, "planetowner")
	assert.NoError(suite.T(), err)

	favorites, err := suite.services.Planet.ListFavorites(ctx, suite.visitor.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), favorites, 1)
	assert.Equal(suite.T(), "planetowner", favorites[0].OwnerUsername)

	// 收藏详情里的标记
	detail, err := suite.services.Planet.GetPlanetByUsername(ctx, "planetowner", suite.visitor.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), detail.IsFavorited)

	err = suite.services.Planet.RemoveFavorite(ctx, suite.visitor.ID, "planetowner")
	assert.NoError(suite.T(), err)

	// 取消不存在的收藏
	err = suite.services.Planet.RemoveFavorite(ctx, suite.visitor.ID, "planetowner")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrFavoriteNotFound))
}

// TestListPlanets 测试星球列表
func (suite *PlanetServiceTestSuite) TestListPlanets() {
	ctx := context.Background()

	planets, err := suite.services.Planet.ListPlanets(ctx, 1, 20)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), planets, 2)
}

// TestPlanetServiceTestSuite 运行测试套件
func TestPlanetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlanetServiceTestSuite))
}
