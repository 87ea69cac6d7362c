package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/puzzle-planet/internal/middleware"
	"github.com/wfunc/puzzle-planet/internal/service"
)

// FriendHandler 好友处理器
type FriendHandler struct {
	friendService service.FriendService
}

// NewFriendHandler 创建好友处理器
func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// SendRequest 发送好友请求
// @Summary 发送好友请求
// @Tags Friend
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Router /api/v1/friends/requests [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	request, err := h.friendService.SendRequest(c.Request.Context(), userID, req.Username)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, request)
}

// AcceptRequest 接受好友请求
// @Summary 接受好友请求
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Param id path int true "请求ID"
// @Success 200 {object} Response
// @Router /api/v1/friends/requests/{id}/accept [post]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "请求ID格式错误")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.friendService.AcceptRequest(c.Request.Context(), userID, uint(requestID)); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// RejectRequest 拒绝好友请求
// @Summary 拒绝好友请求
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Param id path int true "请求ID"
// @Success 200 {object} Response
// @Router /api/v1/friends/requests/{id}/reject [post]
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "请求ID格式错误")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.friendService.RejectRequest(c.Request.Context(), userID, uint(requestID)); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// ListReceived 收到的好友请求
// @Summary 收到的好友请求列表
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/friends/requests/received [get]
func (h *FriendHandler) ListReceived(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	requests, err := h.friendService.ListReceived(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, requests)
}

// ListSent 发出的好友请求
// @Summary 发出的好友请求列表
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/friends/requests/sent [get]
func (h *FriendHandler) ListSent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	requests, err := h.friendService.ListSent(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, requests)
}

// ListFriends 好友列表
// @Summary 好友列表
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	friends, err := h.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, friends)
}

// RemoveFriend 删除好友
// @Summary 删除好友
// @Tags Friend
// @Produce json
// @Security BearerAuth
// @Param username path string true "好友用户名"
// @Success 200 {object} Response
// @Router /api/v1/friends/{username} [delete]
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := h.friendService.RemoveFriend(c.Request.Context(), userID, c.Param("username")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}
