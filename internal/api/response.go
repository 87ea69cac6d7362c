package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
)

// Response 统一响应信封
type Response struct {
	IsSuccess bool        `json:"isSuccess"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// OK 返回成功响应
func OK(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, Response{
		IsSuccess: true,
		Code:      "OK200",
		Result:    result,
	})
}

// Created 返回创建成功响应
func Created(c *gin.Context, result interface{}) {
	c.JSON(http.StatusCreated, Response{
		IsSuccess: true,
		Code:      "OK201",
		Result:    result,
	})
}

// Fail 根据应用错误返回失败响应
func Fail(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		IsSuccess: false,
		Code:      appErr.BizCode(),
		Message:   appErr.Message,
		Error:     appErr.Details,
	})
}

// BadRequest 返回参数错误响应
func BadRequest(c *gin.Context, details string) {
	Fail(c, apperrors.New(apperrors.ErrInvalidParam, details))
}
