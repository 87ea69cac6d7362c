package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// FriendRepositoryTestSuite 好友仓储测试套件
type FriendRepositoryTestSuite struct {
	suite.Suite
	db             *gorm.DB
	requestRepo    FriendRequestRepository
	friendshipRepo FriendshipRepository
}

func (suite *FriendRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.requestRepo = NewFriendRequestRepository(suite.db)
	suite.friendshipRepo = NewFriendshipRepository(suite.db)
}

func (suite *FriendRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestFriendRequestRepository_CreateAndFindPending 测试创建和查找待处理请求
func (suite *FriendRepositoryTestSuite) TestFriendRequestRepository_CreateAndFindPending() {
	ctx := context.Background()

	alice := CreateTestUser(suite.T(), suite.db, "alice")
	bob := CreateTestUser(suite.T(), suite.db, "bob")

	request := &models.FriendRequest{
		RequesterID: alice.ID,
		TargetID:    bob.ID,
		Status:      models.FriendRequestPending,
	}
	err := suite.requestRepo.Create(ctx, request)
	assert.NoError(suite.T(), err)

	found, err := suite.requestRepo.FindPending(ctx, alice.ID, bob.ID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), found)
	assert.True(suite.T(), found.IsPending())

	// 反方向不存在待处理请求
	reverse, err := suite.requestRepo.FindPending(ctx, bob.ID, alice.ID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), reverse)
}

// TestFriendRequestRepository_ReceivedAndSent 测试收到和发出的请求列表
func (suite *FriendRepositoryTestSuite) TestFriendRequestRepository_ReceivedAndSent() {
	ctx := context.Background()

	alice := CreateTestUser(suite.T(), suite.db, "alice")
	bob := CreateTestUser(suite.T(), suite.db, "bob")
	carol := CreateTestUser(suite.T(), suite.db, "carol")

	// alice和carol都向bob发送请求
	err := suite.requestRepo.Create(ctx, &models.FriendRequest{
		RequesterID: alice.ID, TargetID: bob.ID, Status: models.FriendRequestPending,
	})
	assert.NoError(suite.T(), err)
	err = suite.requestRepo.Create(ctx, &models.FriendRequest{
		RequesterID: carol.ID, TargetID: bob.ID, Status: models.FriendRequestPending,
	})
	assert.NoError(suite.T(), err)

	received, err := suite.requestRepo.FindReceivedPending(ctx, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), received, 2)

	sent, err := suite.requestRepo.FindSentPending(ctx, alice.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sent, 1)
	assert.Equal(suite.T(), bob.ID, sent[0].TargetID)
}

// TestFriendRequestRepository_UpdateStatus 测试请求状态流转
func (suite *FriendRepositoryTestSuite) TestFriendRequestRepository_UpdateStatus() {
	ctx := context.Background()

	alice := CreateTestUser(suite.T(), suite.db, "alice")
	bob := CreateTestUser(suite.T(), suite.db, "bob")

	request := &models.FriendRequest{
		RequesterID: alice.ID,
		TargetID:    bob.ID,
		Status:      models.FriendRequestPending,
	}
	err := suite.requestRepo.Create(ctx, request)
	assert.NoError(suite.T(), err)

	err = suite.requestRepo.UpdateStatus(ctx, request.ID, models.FriendRequestAccepted)
	assert.NoError(suite.T(), err)

	found, err := suite.requestRepo.FindByID(ctx, request.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendRequestAccepted, found.Status)
	assert.NotNil(suite.T(), found.RespondedAt)

	// 接受后不再出现在待处理列表中
	pending, err := suite.requestRepo.FindPending(ctx, alice.ID, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), pending)
}

// TestFriendshipRepository_Bidirectional 测试好友关系的双向查询
func (suite *FriendRepositoryTestSuite) TestFriendshipRepository_Bidirectional() {
	ctx := context.Background()

	alice := CreateTestUser(suite.T(), suite.db, "alice")
	bob := CreateTestUser(suite.T(), suite.db, "bob")

	err := suite.friendshipRepo.Create(ctx, &models.Friendship{
		UserAID: alice.ID,
		UserBID: bob.ID,
	})
	assert.NoError(suite.T(), err)

	// 两个方向都应查到
	exists, err := suite.friendshipRepo.Exists(ctx, alice.ID, bob.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)

	exists, err = suite.friendshipRepo.Exists(ctx, bob.ID, alice.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)

	friendships, err := suite.friendshipRepo.FindByUserID(ctx, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), friendships, 1)
	assert.Equal(suite.T(), alice.ID, friendships[0].OtherUserID(bob.ID))
}

// TestFriendshipRepository_Delete 测试删除好友关系
func (suite *FriendRepositoryTestSuite) TestFriendshipRepository_Delete() {
	ctx := context.Background()

	alice := CreateTestUser(suite.T(), suite.db, "alice")
	bob := CreateTestUser(suite.T(), suite.db, "bob")

	err := suite.friendshipRepo.Create(ctx, &models.Friendship{
		UserAID: alice.ID,
		UserBID: bob.ID,
	})
	assert.NoError(suite.T(), err)

	// 反方向删除也应生效
	err = suite.friendshipRepo.Delete(ctx, bob.ID, alice.ID)
	assert.NoError(suite.T(), err)

	exists, err := suite.friendshipRepo.Exists(ctx, alice.ID, bob.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), exists)

	// 删除不存在的关系返回错误
	err = suite.friendshipRepo.Delete(ctx, alice.ID, bob.ID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "好友关系不存在")
}

// TestFriendRepositoryTestSuite 运行测试套件
func TestFriendRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(FriendRepositoryTestSuite))
}
