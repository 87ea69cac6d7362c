package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/puzzle-planet/internal/middleware"
	"github.com/wfunc/puzzle-planet/internal/service"
)

// PlanetHandler 星球处理器
type PlanetHandler struct {
	planetService service.PlanetService
}

// NewPlanetHandler 创建星球处理器
func NewPlanetHandler(planetService service.PlanetService) *PlanetHandler {
	return &PlanetHandler{
		planetService: planetService,
	}
}

// ListPlanets 星球列表
// @Summary 星球列表
// @Tags Planet
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} Response
// @Router /api/v1/planets [get]
func (h *PlanetHandler) ListPlanets(c *gin.Context) {
	page, pageSize := pagination(c)
	planets, err := h.planetService.ListPlanets(c.Request.Context(), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, planets)
}

// GetPlanet 星球详情
// @Summary 根据用户名获取星球详情
// @Tags Planet
// @Produce json
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/planets/{username} [get]
func (h *PlanetHandler) GetPlanet(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)
	detail, err := h.planetService.GetPlanetByUsername(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, detail)
}

// UpdatePlanet 更新自己的星球
// @Summary 更新星球资料
// @Tags Planet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/planets/me [put]
func (h *PlanetHandler) UpdatePlanet(c *gin.Context) {
	var req service.UpdatePlanetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.planetService.UpdatePlanet(c.Request.Context(), userID, &req); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// VisitPlanet 访问星球
// @Summary 访问星球，首次访问增加计数
// @Tags Planet
// @Produce json
// @Security BearerAuth
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Router /api/v1/planets/{username}/visit [post]
func (h *PlanetHandler) VisitPlanet(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.planetService.VisitPlanet(c.Request.Context(), c.Param("username"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}

// ListGallery 画廊列表
// @Summary 星球画廊
// @Tags Planet
// @Produce json
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Router /api/v1/planets/{username}/gallery [get]
func (h *PlanetHandler) ListGallery(c *gin.Context) {
	page, pageSize := pagination(c)
	items, err := h.planetService.ListGallery(c.Request.Context(), c.Param("username"), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, items)
}

// GetGalleryItem 画廊作品详情
// @Summary 画廊作品详情
// @Tags Planet
// @Produce json
// @Param id path int true "作品ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/gallery/{id} [get]
func (h *PlanetHandler) GetGalleryItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "作品ID格式错误")
		return
	}

	item, err := h.planetService.GetGalleryItem(c.Request.Context(), uint(itemID))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, item)
}

// ListGuestbook 留言板列表
// @Summary 星球留言板
// @Tags Planet
// @Produce json
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Router /api/v1/planets/{username}/guestbook [get]
func (h *PlanetHandler) ListGuestbook(c *gin.Context) {
	page, pageSize := pagination(c)
	entries, err := h.planetService.ListGuestbook(c.Request.Context(), c.Param("username"), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, entries)
}

// WriteGuestbook 写留言
// @Summary 给星球写留言
// @Tags Planet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "星球主人用户名"
// @Success 201 {object} Response
// @Router /api/v1/planets/{username}/guestbook [post]
func (h *PlanetHandler) WriteGuestbook(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	entry, err := h.planetService.WriteGuestbook(c.Request.Context(), c.Param("username"), userID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, entry)
}

// AddFavorite 收藏星球
// @Summary 收藏星球
// @Tags Planet
// @Produce json
// @Security BearerAuth
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Router /api/v1/planets/{username}/favorite [post]
func (h *PlanetHandler) AddFavorite(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := h.planetService.AddFavorite(c.Request.Context(), userID, c.Param("username")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// RemoveFavorite 取消收藏
// @Summary 取消收藏星球
// @Tags Planet
// @Produce json
// @Security BearerAuth
// @Param username path string true "星球主人用户名"
// @Success 200 {object} Response
// @Router /api/v1/planets/{username}/favorite [delete]
func (h *PlanetHandler) RemoveFavorite(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := h.planetService.RemoveFavorite(c.Request.Context(), userID, c.Param("username")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// ListFavorites 我的收藏
// @Summary 收藏的星球列表
// @Tags Planet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/favorites [get]
func (h *PlanetHandler) ListFavorites(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	favorites, err := h.planetService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, favorites)
}

// pagination 解析分页参数
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
