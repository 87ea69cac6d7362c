package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// TransactionTestSuite 事务管理测试套件
type TransactionTestSuite struct {
	suite.Suite
	db      *gorm.DB
	manager *Manager
}

func (suite *TransactionTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.manager = NewManager(suite.db)
}

func (suite *TransactionTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestWithTransaction_Rollback 测试出错时回滚
func (suite *TransactionTestSuite) TestWithTransaction_Rollback() {
	ctx := context.Background()

	err := suite.manager.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.User().Create(ctx, &models.User{Username: "rollbackuser"}); err != nil {
			return err
		}
		return errors.New("注册失败")
	})
	assert.Error(suite.T(), err)

	_, err = suite.manager.User().FindByUsername(ctx, "rollbackuser")
	assert.Error(suite.T(), err)
}

// TestWithRetryTransaction_NonRetryable 测试业务错误不重试
func (suite *TransactionTestSuite) TestWithRetryTransaction_NonRetryable() {
	ctx := context.Background()

	attempts := 0
	err := suite.manager.WithRetryTransaction(ctx, 3, func(tx *Transaction) error {
		attempts++
		return errors.New("标签数量不合法")
	})
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 1, attempts)
}

// TestWithRetryTransaction_LockBusy 测试锁忙时重试后成功
func (suite *TransactionTestSuite) TestWithRetryTransaction_LockBusy() {
	ctx := context.Background()

	attempts := 0
	err := suite.manager.WithRetryTransaction(ctx, 3, func(tx *Transaction) error {
		attempts++
		if attempts == 1 {
			return errors.New("database is locked")
		}
		return tx.User().Create(ctx, &models.User{Username: "retryuser"})
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, attempts)

	found, err := suite.manager.User().FindByUsername(ctx, "retryuser")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "retryuser", found.Username)
}

// TestWithRetryTransaction_Exhausted 测试重试次数用尽
func (suite *TransactionTestSuite) TestWithRetryTransaction_Exhausted() {
	ctx := context.Background()

	attempts := 0
	err := suite.manager.WithRetryTransaction(ctx, 3, func(tx *Transaction) error {
		attempts++
		return errors.New("database is locked")
	})
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 3, attempts)
	assert.Contains(suite.T(), err.Error(), "已重试3次")
}

// TestWithReadOnlyTransaction 测试只读事务中的查询
func (suite *TransactionTestSuite) TestWithReadOnlyTransaction() {
	ctx := context.Background()

	user := CreateTestUser(suite.T(), suite.db, "readonlyuser")
	CreateTestPlanet(suite.T(), suite.db, user.ID, "readonly的星球")

	var planets []*models.Planet
	err := suite.manager.WithReadOnlyTransaction(ctx, func(tx *Transaction) error {
		var listErr error
		planets, listErr = tx.Planet().GetAll(ctx, NewPagination(1, 20))
		return listErr
	})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), planets, 1)
	assert.Equal(suite.T(), "readonly的星球", planets[0].Title)
}

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}
