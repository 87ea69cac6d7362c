package service

import (
	"context"
	"strings"

	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"go.uber.org/zap"
)

// planetService 星球服务实现
type planetService struct {
	repos *repository.Manager
	log   *zap.Logger
}

// NewPlanetService 创建星球服务
func NewPlanetService(repos *repository.Manager, log *zap.Logger) PlanetService {
	return &planetService{
		repos: repos,
		log:   log,
	}
}

// ListPlanets 获取星球列表，按主人昵称排序
func (s *planetService) ListPlanets(ctx context.Context, page, pageSize int) ([]*PlanetSummary, error) {
	var planets []*models.Planet
	err := s.repos.WithReadOnlyTransaction(ctx, func(tx *repository.Transaction) error {
		var listErr error
		planets, listErr = tx.Planet().GetAll(ctx, repository.NewPagination(page, pageSize))
		return listErr
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询星球列表失败")
	}

	summaries := make([]*PlanetSummary, 0, len(planets))
	for _, planet := range planets {
		summaries = append(summaries, buildPlanetSummary(planet))
	}
	return summaries, nil
}

// GetPlanetByUsername 根据主人用户名获取星球详情
// viewerID为0表示未登录访客
func (s *planetService) GetPlanetByUsername(ctx context.Context, username string, viewerID uint) (*PlanetDetail, error) {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	detail := &PlanetDetail{
		PlanetSummary: *buildPlanetSummary(planet),
	}

	if viewerID != 0 {
		detail.IsOwner = planet.OwnerID == viewerID
		detail.CanEdit = detail.IsOwner

		favorited, err := s.repos.PlanetFavorite().Exists(ctx, viewerID, planet.ID)
		if err == nil {
			detail.IsFavorited = favorited
		}
	}

	return detail, nil
}

// UpdatePlanet 更新自己的星球，至少需要一个字段
func (s *planetService) UpdatePlanet(ctx context.Context, userID uint, req *UpdatePlanetRequest) error {
	title := strings.TrimSpace(req.Title)
	profileImage := strings.TrimSpace(req.ProfileImage)
	if title == "" && profileImage == "" {
		return apperrors.New(apperrors.ErrNothingToApply)
	}

	planet, err := s.repos.Planet().FindByOwnerID(ctx, userID)
	if err != nil {
		return apperrors.New(apperrors.ErrPlanetNotFound)
	}

	return s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if title != "" {
			planet.Title = title
			if err := tx.Planet().Update(ctx, planet); err != nil {
				return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新星球失败")
			}
		}
		if profileImage != "" {
			if err := tx.User().UpdateProfileImage(ctx, userID, profileImage); err != nil {
				return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新头像失败")
			}
		}
		return nil
	})
}

// VisitPlanet 访问星球，同一访客只计数一次
func (s *planetService) VisitPlanet(ctx context.Context, username string, visitorID uint) (*VisitResult, error) {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	if planet.OwnerID == visitorID {
		return nil, apperrors.New(apperrors.ErrSelfVisit)
	}

	visited, err := s.repos.PlanetVisit().Exists(ctx, planet.ID, visitorID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询访问记录失败")
	}

	if visited {
		return &VisitResult{
			VisitCount:   planet.VisitCount,
			FirstVisit:   false,
			AlreadyKnown: true,
		}, nil
	}

	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.PlanetVisit().Create(ctx, &models.PlanetVisit{
			PlanetID:  planet.ID,
			VisitorID: visitorID,
		}); err != nil {
			// 并发首访时唯一索引兜底，不重复计数
			if repository.IsDuplicateKeyError(err) {
				return nil
			}
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "记录访问失败")
		}
		return tx.Planet().IncrementVisitCount(ctx, planet.ID)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Planet().FindByID(ctx, planet.ID)
	if err != nil {
		updated = planet
	}

	return &VisitResult{
		VisitCount: updated.VisitCount,
		FirstVisit: true,
	}, nil
}

// ListGallery 获取星球画廊
func (s *planetService) ListGallery(ctx context.Context, username string, page, pageSize int) ([]*models.Gallery, error) {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	items, err := s.repos.Gallery().FindByPlanetID(ctx, planet.ID, repository.NewPagination(page, pageSize))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询画廊失败")
	}
	return items, nil
}

// GetGalleryItem 获取画廊作品详情
func (s *planetService) GetGalleryItem(ctx context.Context, itemID uint) (*models.Gallery, error) {
	item, err := s.repos.Gallery().FindByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrGalleryNotFound)
	}
	return item, nil
}

// ListGuestbook 获取星球留言
func (s *planetService) ListGuestbook(ctx context.Context, username string, page, pageSize int) ([]*models.Guestbook, error) {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	entries, err := s.repos.Guestbook().FindByPlanetID(ctx, planet.ID, repository.NewPagination(page, pageSize))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询留言失败")
	}
	return entries, nil
}

// WriteGuestbook 在星球留言板写留言
func (s *planetService) WriteGuestbook(ctx context.Context, username string, authorID uint, content string) (*models.Guestbook, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > 500 {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "留言内容长度必须在1-500个字符之间")
	}

	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPlanetNotFound)
	}

	entry := &models.Guestbook{
		PlanetID: planet.ID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repos.Guestbook().Create(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "写入留言失败")
	}

	s.log.Info("guestbook entry written",
		zap.Uint("planet_id", planet.ID),
		zap.Uint("author_id", authorID))

	created, err := s.repos.Guestbook().FindByID(ctx, entry.ID)
	if err != nil {
		return entry, nil
	}
	return created, nil
}

// AddFavorite 收藏星球，不能收藏自己的
func (s *planetService) AddFavorite(ctx context.Context, userID uint, username string) error {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return apperrors.New(apperrors.ErrPlanetNotFound)
	}

	if planet.OwnerID == userID {
		return apperrors.New(apperrors.ErrSelfFavorite)
	}

	err = s.repos.PlanetFavorite().Create(ctx, &models.PlanetFavorite{
		UserID:   userID,
		PlanetID: planet.ID,
	})
	if err != nil {
		// 重复收藏按成功处理
		if repository.IsDuplicateKeyError(err) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "收藏失败")
	}
	return nil
}

// RemoveFavorite 取消收藏
func (s *planetService) RemoveFavorite(ctx context.Context, userID uint, username string) error {
	planet, err := s.repos.Planet().FindByOwnerUsername(ctx, username)
	if err != nil {
		return apperrors.New(apperrors.ErrPlanetNotFound)
	}

	if err := s.repos.PlanetFavorite().Delete(ctx, userID, planet.ID); err != nil {
		return apperrors.New(apperrors.ErrFavoriteNotFound)
	}
	return nil
}

// ListFavorites 获取收藏的星球列表
func (s *planetService) ListFavorites(ctx context.Context, userID uint) ([]*PlanetSummary, error) {
	favorites, err := s.repos.PlanetFavorite().FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询收藏失败")
	}

	summaries := make([]*PlanetSummary, 0, len(favorites))
	for _, favorite := range favorites {
		summaries = append(summaries, buildPlanetSummary(&favorite.Planet))
	}
	return summaries, nil
}

// buildPlanetSummary 组装星球列表项
func buildPlanetSummary(planet *models.Planet) *PlanetSummary {
	return &PlanetSummary{
		PlanetID:      planet.ID,
		Title:         planet.Title,
		OwnerUsername: planet.Owner.Username,
		OwnerNickname: planet.Owner.Nickname,
		ProfileImage:  planet.Owner.ProfileImageURL,
		VisitCount:    planet.VisitCount,
	}
}
