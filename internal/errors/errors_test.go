package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrUserNotFound, "username: alice")
	suite.NotNil(err)
	suite.Equal(ErrUserNotFound, err.Code)
	suite.Equal("用户不存在", err.Message)
	suite.Equal("username: alice", err.Details)

	// 测试多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost", "端口: 5432")
	suite.Equal("连接失败; 主机: localhost; 端口: 5432", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidTagCount, "收到 %d 个标签", 3)
	suite.NotNil(err)
	suite.Equal(ErrInvalidTagCount, err.Code)
	suite.Equal("收到 3 个标签", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError
	appErr := New(ErrRoomNotFound, "code: ABC123")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrRoomNotFound, wrappedAppErr.Code) // 保留原始错误码
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试格式化错误包装
func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("连接超时")
	wrappedErr := Wrapf(originalErr, ErrImageGenerate, "第 %d 次尝试失败", 3)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrImageGenerate, wrappedErr.Code)
	suite.Equal("第 3 次尝试失败", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrRoomFull)
	suite.True(Is(err, ErrRoomFull))
	suite.False(Is(err, ErrRoomNotFound))
	suite.False(Is(nil, ErrRoomFull))

	// 测试标准错误
	standardErr := errors.New("标准错误")
	suite.False(Is(standardErr, ErrUnknown))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	// AppError
	appErr := New(ErrTokenExpired)
	suite.Equal(ErrTokenExpired, GetCode(appErr))

	// 标准错误
	standardErr := errors.New("标准错误")
	suite.Equal(ErrUnknown, GetCode(standardErr))

	// nil错误
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试错误消息
func (suite *ErrorsTestSuite) TestError() {
	// 只有消息
	err := &AppError{
		Code:    ErrNotFound,
		Message: "资源未找到",
	}
	suite.Equal("[1002] 资源未找到", err.Error())

	// 有详情
	err.Details = "用户ID: 123"
	suite.Equal("[1002] 资源未找到: 用户ID: 123", err.Error())
}

// 测试Unwrap
func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrUnknown)
	suite.Equal(originalErr, wrappedErr.Unwrap())

	// 没有原因的错误
	err := New(ErrUnknown)
	suite.Nil(err.Unwrap())
}

// 测试WithDetails
func (suite *ErrorsTestSuite) TestWithDetails() {
	err := New(ErrInvalidParam)
	err.WithDetails("参数不能为空")
	suite.Equal("参数不能为空", err.Details)
}

// 测试WithCause
func (suite *ErrorsTestSuite) TestWithCause() {
	err := New(ErrDatabaseQuery)
	cause := errors.New("SQL语法错误")
	err.WithCause(cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("SQL语法错误", err.Details)

	// 已有Details的情况
	err2 := New(ErrDatabaseQuery, "查询失败")
	err2.WithCause(cause)
	suite.Equal(cause, err2.Cause)
	suite.Equal("查询失败", err2.Details) // 保留原有Details
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, 400},
		{ErrPermissionDenied, 403},
		{ErrTimeout, 408},
		{ErrAuthentication, 401},
		{ErrTokenExpired, 401},
		{ErrUserNotFound, 404},
		{ErrRoomNotFound, 404},
		{ErrGameNotFound, 404},
		{ErrNotHost, 400},
		{ErrNotInRoom, 400},
		{ErrRoomFull, 400},
		{ErrAlreadyFriends, 400},
		{ErrAlreadyCompleted, 400},
		{ErrDatabaseConnect, 503},
		{ErrDatabaseQuery, 500},
		{ErrTransaction, 500},
		{ErrUnknown, 500},
		{ErrImageGenerate, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.HTTPStatus(), "错误码 %d 应该返回HTTP状态码 %d", tc.code, tc.expected)
	}
}

// 测试业务响应码
func (suite *ErrorsTestSuite) TestBizCode() {
	testCases := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrTokenInvalid, "AUTH401"},
		{ErrUserNotFound, "USER404"},
		{ErrUsernameTaken, "USER400"},
		{ErrSelfVisit, "PLANET400"},
		{ErrAlreadyFriends, "FRIEND400"},
		{ErrRequestNotFound, "FRIEND404"},
		{ErrRoomFull, "ROOM400"},
		{ErrNotHost, "ROOM400"},
		{ErrGameNotFound, "GAME404"},
		{ErrAlreadyCompleted, "GAME400"},
		{ErrImageGenerate, "GAME500"},
		{ErrInvalidParam, "COMMON400"},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.BizCode(), "错误码 %d 的业务码应该是 %s", tc.code, tc.expected)
	}
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	retryableErrors := []ErrorCode{
		ErrTimeout,
		ErrImageGenerate,
		ErrDatabaseConnect,
	}

	for _, code := range retryableErrors {
		err := New(code)
		suite.True(IsRetryable(err), "错误码 %d 应该是可重试的", code)
	}

	// 不可重试的错误
	nonRetryableErrors := []ErrorCode{
		ErrInvalidParam,
		ErrNotFound,
		ErrPermissionDenied,
		ErrAlreadyCompleted,
	}

	for _, code := range nonRetryableErrors {
		err := New(code)
		suite.False(IsRetryable(err), "错误码 %d 不应该是可重试的", code)
	}

	// nil错误
	suite.False(IsRetryable(nil))
}

// 测试严重错误判断
func (suite *ErrorsTestSuite) TestIsCritical() {
	criticalErrors := []ErrorCode{
		ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigMissing,
		ErrDataIntegrity,
	}

	for _, code := range criticalErrors {
		err := New(code)
		suite.True(IsCritical(err), "错误码 %d 应该是严重错误", code)
	}

	// 非严重错误
	nonCriticalErrors := []ErrorCode{
		ErrInvalidParam,
		ErrNotFound,
		ErrTimeout,
	}

	for _, code := range nonCriticalErrors {
		err := New(code)
		suite.False(IsCritical(err), "错误码 %d 不应该是严重错误", code)
	}

	// nil错误
	suite.False(IsCritical(nil))
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotNil(err.Stack)
	suite.Greater(len(err.Stack), 0)

	// 获取格式化的调用栈
	stackStr := err.GetStack()
	suite.NotEmpty(stackStr)
	// 栈信息可能不包含测试方法名，只验证不为空即可
}

// 测试错误响应
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrUserNotFound, "username: bob")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	// 使用未定义的错误码
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("未知错误", err.Message) // 应该使用默认消息
}

// 测试好友相关错误
func (suite *ErrorsTestSuite) TestFriendErrors() {
	friendErrors := map[ErrorCode]string{
		ErrCannotRequestSelf:    "不能向自己发送好友请求",
		ErrAlreadyFriends:       "已经是好友",
		ErrRequestAlreadySent:   "好友请求已发送",
		ErrReverseRequestExists: "对方已向你发送好友请求",
		ErrRequestNotFound:      "好友请求不存在",
		ErrFriendshipNotFound:   "好友关系不存在",
	}

	for code, expectedMsg := range friendErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试房间相关错误
func (suite *ErrorsTestSuite) TestRoomErrors() {
	roomErrors := map[ErrorCode]string{
		ErrRoomNotFound:     "房间不存在",
		ErrRoomFull:         "房间已满",
		ErrRoomNotWaiting:   "房间不在等待状态",
		ErrRoomNotPlaying:   "对局未开始",
		ErrAlreadyInRoom:    "已在房间中",
		ErrNotInRoom:        "不是房间成员",
		ErrNotHost:          "只有房主可以执行该操作",
		ErrNotEnoughPlayers: "房间人数不足",
		ErrGuestsNotReady:   "还有玩家未准备",
	}

	for code, expectedMsg := range roomErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试游戏相关错误
func (suite *ErrorsTestSuite) TestGameErrors() {
	gameErrors := map[ErrorCode]string{
		ErrGameNotFound:     "游戏不存在",
		ErrAlreadyCompleted: "游戏已被通关",
		ErrInvalidTagCount:  "标签数量必须为4个",
		ErrInvalidTimeRange: "结束时间必须晚于开始时间",
		ErrNoImage:          "游戏没有可用的图片",
	}

	for code, expectedMsg := range gameErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试数据库相关错误
func (suite *ErrorsTestSuite) TestDatabaseErrors() {
	dbErrors := map[ErrorCode]string{
		ErrDatabaseConnect: "数据库连接失败",
		ErrDatabaseQuery:   "数据库查询失败",
		ErrDatabaseInsert:  "数据库插入失败",
		ErrDatabaseUpdate:  "数据库更新失败",
		ErrDatabaseDelete:  "数据库删除失败",
		ErrTransaction:     "事务处理失败",
		ErrDataIntegrity:   "数据完整性错误",
	}

	for code, expectedMsg := range dbErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试配置相关错误
func (suite *ErrorsTestSuite) TestConfigErrors() {
	configErrors := map[ErrorCode]string{
		ErrConfigLoad:     "配置加载失败",
		ErrConfigParse:    "配置解析失败",
		ErrConfigValidate: "配置验证失败",
		ErrConfigMissing:  "配置项缺失",
	}

	for code, expectedMsg := range configErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
