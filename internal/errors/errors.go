package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005
	ErrCanceled         ErrorCode = 1006
	ErrNotImplemented   ErrorCode = 1007

	// 认证错误 (2000-2999)
	ErrAuthentication   ErrorCode = 2000
	ErrTokenExpired     ErrorCode = 2001
	ErrTokenInvalid     ErrorCode = 2002
	ErrPasswordMismatch ErrorCode = 2003

	// 用户错误 (3000-3999)
	ErrUserNotFound   ErrorCode = 3000
	ErrUsernameTaken  ErrorCode = 3001
	ErrUserFrozen     ErrorCode = 3002
	ErrNothingToApply ErrorCode = 3003

	// 星球错误 (4000-4999)
	ErrPlanetNotFound    ErrorCode = 4000
	ErrSelfVisit         ErrorCode = 4001
	ErrSelfFavorite      ErrorCode = 4002
	ErrGalleryNotFound   ErrorCode = 4003
	ErrGuestbookNotFound ErrorCode = 4004
	ErrFavoriteNotFound  ErrorCode = 4005

	// 好友错误 (5000-5999)
	ErrCannotRequestSelf    ErrorCode = 5000
	ErrAlreadyFriends       ErrorCode = 5001
	ErrRequestAlreadySent   ErrorCode = 5002
	ErrReverseRequestExists ErrorCode = 5003
	ErrRequestNotFound      ErrorCode = 5004
	ErrFriendshipNotFound   ErrorCode = 5005

	// 房间错误 (6000-6999)
	ErrRoomNotFound     ErrorCode = 6000
	ErrRoomFull         ErrorCode = 6001
	ErrRoomNotWaiting   ErrorCode = 6002
	ErrRoomNotPlaying   ErrorCode = 6003
	ErrAlreadyInRoom    ErrorCode = 6004
	ErrNotInRoom        ErrorCode = 6005
	ErrNotHost          ErrorCode = 6006
	ErrNotEnoughPlayers ErrorCode = 6007
	ErrGuestsNotReady   ErrorCode = 6008

	// 游戏错误 (7000-7999)
	ErrGameNotFound     ErrorCode = 7000
	ErrAlreadyCompleted ErrorCode = 7001
	ErrInvalidTagCount  ErrorCode = 7002
	ErrInvalidTimeRange ErrorCode = 7003
	ErrNoImage          ErrorCode = 7004

	// 上游服务错误 (8000-8999)
	ErrImageGenerate ErrorCode = 8000
	ErrImageUpload   ErrorCode = 8001

	// 数据库错误 (9000-9999)
	ErrDatabaseConnect ErrorCode = 9000
	ErrDatabaseQuery   ErrorCode = 9001
	ErrDatabaseInsert  ErrorCode = 9002
	ErrDatabaseUpdate  ErrorCode = 9003
	ErrDatabaseDelete  ErrorCode = 9004
	ErrTransaction     ErrorCode = 9005
	ErrDataIntegrity   ErrorCode = 9006

	// 配置错误 (10000-10999)
	ErrConfigLoad     ErrorCode = 10000
	ErrConfigParse    ErrorCode = 10001
	ErrConfigValidate ErrorCode = 10002
	ErrConfigMissing  ErrorCode = 10003
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:          "未知错误",
	ErrInvalidParam:     "无效的参数",
	ErrNotFound:         "资源未找到",
	ErrAlreadyExists:    "资源已存在",
	ErrPermissionDenied: "权限不足",
	ErrTimeout:          "操作超时",
	ErrCanceled:         "操作已取消",
	ErrNotImplemented:   "功能未实现",

	// 认证错误
	ErrAuthentication:   "认证失败",
	ErrTokenExpired:     "令牌已过期",
	ErrTokenInvalid:     "无效的令牌",
	ErrPasswordMismatch: "密码错误",

	// 用户错误
	ErrUserNotFound:   "用户不存在",
	ErrUsernameTaken:  "用户名已被使用",
	ErrUserFrozen:     "用户已被冻结",
	ErrNothingToApply: "没有需要更新的字段",

	// 星球错误
	ErrPlanetNotFound:    "星球不存在",
	ErrSelfVisit:         "不能访问自己的星球",
	ErrSelfFavorite:      "不能收藏自己的星球",
	ErrGalleryNotFound:   "画廊图片不存在",
	ErrGuestbookNotFound: "留言不存在",
	ErrFavoriteNotFound:  "收藏记录不存在",

	// 好友错误
	ErrCannotRequestSelf:    "不能向自己发送好友请求",
	ErrAlreadyFriends:       "已经是好友",
	ErrRequestAlreadySent:   "好友请求已发送",
	ErrReverseRequestExists: "对方已向你发送好友请求",
	ErrRequestNotFound:      "好友请求不存在",
	ErrFriendshipNotFound:   "好友关系不存在",

	// 房间错误
	ErrRoomNotFound:     "房间不存在",
	ErrRoomFull:         "房间已满",
	ErrRoomNotWaiting:   "房间不在等待状态",
	ErrRoomNotPlaying:   "对局未开始",
	ErrAlreadyInRoom:    "已在房间中",
	ErrNotInRoom:        "不是房间成员",
	ErrNotHost:          "只有房主可以执行该操作",
	ErrNotEnoughPlayers: "房间人数不足",
	ErrGuestsNotReady:   "还有玩家未准备",

	// 游戏错误
	ErrGameNotFound:     "游戏不存在",
	ErrAlreadyCompleted: "游戏已被通关",
	ErrInvalidTagCount:  "标签数量必须为4个",
	ErrInvalidTimeRange: "结束时间必须晚于开始时间",
	ErrNoImage:          "游戏没有可用的图片",

	// 上游服务错误
	ErrImageGenerate: "图片生成失败",
	ErrImageUpload:   "图片上传失败",

	// 数据库错误
	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",
	ErrDatabaseUpdate:  "数据库更新失败",
	ErrDatabaseDelete:  "数据库删除失败",
	ErrTransaction:     "事务处理失败",
	ErrDataIntegrity:   "数据完整性错误",

	// 配置错误
	ErrConfigLoad:     "配置加载失败",
	ErrConfigParse:    "配置解析失败",
	ErrConfigValidate: "配置验证失败",
	ErrConfigMissing:  "配置项缺失",
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return Wrap(err, code, details)
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// Message 返回面向用户的错误消息
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.Contains(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/puzzle-planet/internal/errors") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			if !more {
				break
			}

			// 只保留前10个栈帧
			if len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrNotFound:
		return 404 // Not Found
	case e.Code == ErrInvalidParam, e.Code == ErrAlreadyExists:
		return 400 // Bad Request
	case e.Code == ErrPermissionDenied:
		return 403 // Forbidden
	case e.Code == ErrTimeout:
		return 408 // Request Timeout
	case e.Code >= 2000 && e.Code <= 2999:
		return 401 // Unauthorized
	case e.Code == ErrUserNotFound, e.Code == ErrPlanetNotFound,
		e.Code == ErrGalleryNotFound, e.Code == ErrGuestbookNotFound,
		e.Code == ErrFavoriteNotFound, e.Code == ErrRequestNotFound,
		e.Code == ErrFriendshipNotFound, e.Code == ErrRoomNotFound,
		e.Code == ErrGameNotFound:
		return 404 // Not Found
	case e.Code >= 3000 && e.Code <= 7999:
		return 400 // 业务冲突、权限不足与校验失败统一按400返回
	case e.Code == ErrDatabaseConnect:
		return 503 // 连接不可用才返回503，普通数据库错误按500处理
	default:
		return 500 // Internal Server Error
	}
}

// BizPrefix 返回错误码所属模块的业务前缀
func (e *AppError) BizPrefix() string {
	switch {
	case e.Code >= 2000 && e.Code <= 2999:
		return "AUTH"
	case e.Code >= 3000 && e.Code <= 3999:
		return "USER"
	case e.Code >= 4000 && e.Code <= 4999:
		return "PLANET"
	case e.Code >= 5000 && e.Code <= 5999:
		return "FRIEND"
	case e.Code >= 6000 && e.Code <= 6999:
		return "ROOM"
	case e.Code >= 7000 && e.Code <= 8999:
		return "GAME"
	default:
		return "COMMON"
	}
}

// BizCode 返回业务响应码，如 ROOM400、AUTH401
func (e *AppError) BizCode() string {
	return fmt.Sprintf("%s%d", e.BizPrefix(), e.HTTPStatus())
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	code := GetCode(err)
	switch code {
	case ErrTimeout,
		ErrImageGenerate,
		ErrDatabaseConnect:
		return true
	default:
		return false
	}
}

// IsCritical 判断是否为严重错误
func IsCritical(err error) bool {
	if err == nil {
		return false
	}

	code := GetCode(err)
	switch code {
	case ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigMissing,
		ErrDataIntegrity:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
