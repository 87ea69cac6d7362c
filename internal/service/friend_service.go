package service

import (
	"context"

	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"go.uber.org/zap"
)

// friendService 好友服务实现
type friendService struct {
	repos *repository.Manager
	log   *zap.Logger
}

// NewFriendService 创建好友服务
func NewFriendService(repos *repository.Manager, log *zap.Logger) FriendService {
	return &friendService{
		repos: repos,
		log:   log,
	}
}

// SendRequest 根据用户名发送好友请求
func (s *friendService) SendRequest(ctx context.Context, requesterID uint, targetUsername string) (*models.FriendRequest, error) {
	target, err := s.repos.User().FindByUsername(ctx, targetUsername)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}

	if target.ID == requesterID {
		return nil, apperrors.New(apperrors.ErrCannotRequestSelf)
	}

	alreadyFriends, err := s.repos.Friendship().Exists(ctx, requesterID, target.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友关系失败")
	}
	if alreadyFriends {
		return nil, apperrors.New(apperrors.ErrAlreadyFriends)
	}

	// 同方向的待处理请求不允许重复
	pending, err := s.repos.FriendRequest().FindPending(ctx, requesterID, target.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友请求失败")
	}
	if pending != nil {
		return nil, apperrors.New(apperrors.ErrRequestAlreadySent)
	}

	// 对方已向自己发出请求时提示去处理，而不是创建反向请求
	reverse, err := s.repos.FriendRequest().FindPending(ctx, target.ID, requesterID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友请求失败")
	}
	if reverse != nil {
		return nil, apperrors.New(apperrors.ErrReverseRequestExists)
	}

	request := &models.FriendRequest{
		RequesterID: requesterID,
		TargetID:    target.ID,
		Status:      models.FriendRequestPending,
	}
	if err := s.repos.FriendRequest().Create(ctx, request); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建好友请求失败")
	}

	s.log.Info("friend request sent",
		zap.Uint("requester_id", requesterID),
		zap.Uint("target_id", target.ID))

	return request, nil
}

// AcceptRequest 接受好友请求并建立好友关系
func (s *friendService) AcceptRequest(ctx context.Context, userID, requestID uint) error {
	request, err := s.repos.FriendRequest().FindByID(ctx, requestID)
	if err != nil {
		return apperrors.New(apperrors.ErrRequestNotFound)
	}

	// 只有被请求方可以处理
	if request.TargetID != userID {
		return apperrors.New(apperrors.ErrRequestNotFound)
	}
	if !request.IsPending() {
		return apperrors.New(apperrors.ErrRequestNotFound, "请求已被处理")
	}

	return s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.FriendRequest().UpdateStatus(ctx, request.ID, models.FriendRequestAccepted); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新请求状态失败")
		}

		if err := tx.Friendship().Create(ctx, &models.Friendship{
			UserAID: request.RequesterID,
			UserBID: request.TargetID,
		}); err != nil {
			if repository.IsDuplicateKeyError(err) {
				return apperrors.New(apperrors.ErrAlreadyFriends)
			}
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建好友关系失败")
		}
		return nil
	})
}

// RejectRequest 拒绝好友请求
func (s *friendService) RejectRequest(ctx context.Context, userID, requestID uint) error {
	request, err := s.repos.FriendRequest().FindByID(ctx, requestID)
	if err != nil {
		return apperrors.New(apperrors.ErrRequestNotFound)
	}

	if request.TargetID != userID {
		return apperrors.New(apperrors.ErrRequestNotFound)
	}
	if !request.IsPending() {
		return apperrors.New(apperrors.ErrRequestNotFound, "请求已被处理")
	}

	if err := s.repos.FriendRequest().UpdateStatus(ctx, request.ID, models.FriendRequestRejected); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新请求状态失败")
	}
	return nil
}

// ListReceived 获取收到的待处理请求
func (s *friendService) ListReceived(ctx context.Context, userID uint) ([]*models.FriendRequest, error) {
	requests, err := s.repos.FriendRequest().FindReceivedPending(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友请求失败")
	}
	return requests, nil
}

// ListSent 获取发出的待处理请求
func (s *friendService) ListSent(ctx context.Context, userID uint) ([]*models.FriendRequest, error) {
	requests, err := s.repos.FriendRequest().FindSentPending(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友请求失败")
	}
	return requests, nil
}

// ListFriends 获取好友列表，返回关系中的对方用户
func (s *friendService) ListFriends(ctx context.Context, userID uint) ([]*models.User, error) {
	friendships, err := s.repos.Friendship().FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询好友列表失败")
	}

	friends := make([]*models.User, 0, len(friendships))
	for _, friendship := range friendships {
		if friendship.UserAID == userID {
			friends = append(friends, &friendship.UserB)
		} else {
			friends = append(friends, &friendship.UserA)
		}
	}
	return friends, nil
}

// RemoveFriend 根据用户名删除好友
func (s *friendService) RemoveFriend(ctx context.Context, userID uint, username string) error {
	friend, err := s.repos.User().FindByUsername(ctx, username)
	if err != nil {
		return apperrors.New(apperrors.ErrUserNotFound)
	}

	if err := s.repos.Friendship().Delete(ctx, userID, friend.ID); err != nil {
		return apperrors.New(apperrors.ErrFriendshipNotFound)
	}

	s.log.Info("friendship removed",
		zap.Uint("user_id", userID),
		zap.Uint("friend_id", friend.ID))
	return nil
}
