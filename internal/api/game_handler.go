package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/puzzle-planet/internal/middleware"
	"github.com/wfunc/puzzle-planet/internal/service"
)

// GameHandler 游戏处理器
type GameHandler struct {
	gameService service.GameService
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// tagsRequest 开局请求
type tagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// codeRequest 房间码请求
type codeRequest struct {
	GameCode string `json:"game_code" binding:"required"`
}

// StartSingle 单人开局
// @Summary 单人开局，生成谜面图片
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tagsRequest true "4个标签"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/v1/games/single [post]
func (h *GameHandler) StartSingle(c *gin.Context) {
	var req tagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.gameService.StartSingle(c.Request.Context(), userID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, view)
}

// CompleteSingle 单人通关
// @Summary 单人通关，上报客户端起止时间
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CompleteSingleRequest true "通关信息"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/v1/games/single/complete [post]
func (h *GameHandler) CompleteSingle(c *gin.Context) {
	var req service.CompleteSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.gameService.CompleteSingle(c.Request.Context(), userID, &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}

// SaveToPlanet 保存谜面图片到星球画廊
// @Summary 保存对局图片到自己的星球
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Router /api/v1/games/save [post]
func (h *GameHandler) SaveToPlanet(c *gin.Context) {
	var req struct {
		GameCode string `json:"game_code" binding:"required"`
		Title    string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	item, err := h.gameService.SaveToPlanet(c.Request.Context(), userID, req.GameCode, req.Title)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, item)
}

// CreateRoom 创建多人房间
// @Summary 创建多人房间
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tagsRequest true "4个标签"
// @Success 201 {object} Response
// @Router /api/v1/rooms [post]
func (h *GameHandler) CreateRoom(c *gin.Context) {
	var req tagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.gameService.CreateRoom(c.Request.Context(), userID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, view)
}

// JoinRoom 加入房间
// @Summary 根据房间码加入等待中的房间
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body codeRequest true "房间码"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/v1/rooms/join [post]
func (h *GameHandler) JoinRoom(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.gameService.JoinRoom(c.Request.Context(), userID, req.GameCode)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, view)
}

// SetReady 设置准备状态
// @Summary 设置准备状态
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/rooms/ready [post]
func (h *GameHandler) SetReady(c *gin.Context) {
	var req struct {
		GameCode string `json:"game_code" binding:"required"`
		Ready    *bool  `json:"ready" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.gameService.SetReady(c.Request.Context(), userID, req.GameCode, *req.Ready)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, view)
}

// StartMulti 开始多人对局
// @Summary 房主开始多人对局
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body codeRequest true "房间码"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/v1/rooms/start [post]
func (h *GameHandler) StartMulti(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.gameService.StartMulti(c.Request.Context(), userID, req.GameCode)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, view)
}

// CompleteMulti 多人通关
// @Summary 多人抢答通关，先完成者获胜
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body codeRequest true "房间码"
// @Success 200 {object} Response
// @Router /api/v1/rooms/complete [post]
func (h *GameHandler) CompleteMulti(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.gameService.CompleteMulti(c.Request.Context(), userID, req.GameCode)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}
