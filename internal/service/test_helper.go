package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeGenerator 测试用图片生成器
type fakeGenerator struct {
	failWith error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, tags []string) ([]byte, string, error) {
	g.calls++
	if g.failWith != nil {
		return nil, "", g.failWith
	}
	return []byte("fake-image"), "prompt: " + fmt.Sprint(tags), nil
}

// fakeStorage 测试用图片存储
type fakeStorage struct {
	failWith error
	uploads  int
}

func (s *fakeStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	s.uploads++
	if s.failWith != nil {
		return "", s.failWith
	}
	return fmt.Sprintf("https://cdn.example.com/game/test-%d.png", s.uploads), nil
}

// fakeNotifier 测试用房间通知器，记录广播的事件
type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	RoomID  uint
	Event   string
	Payload interface{}
}

func (n *fakeNotifier) NotifyRoom(roomID uint, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{RoomID: roomID, Event: event, Payload: payload})
}

func (n *fakeNotifier) eventsFor(roomID uint) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var names []string
	for _, e := range n.events {
		if e.RoomID == roomID {
			names = append(names, e.Event)
		}
	}
	return names
}

// newTestServices 组装测试服务集合
func newTestServices(db *gorm.DB) (*Services, *fakeGenerator, *fakeStorage, *fakeNotifier) {
	repos := repository.NewManager(db)
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	log := zap.NewNop()

	generator := &fakeGenerator{}
	storage := &fakeStorage{}
	notifier := &fakeNotifier{}

	services := &Services{
		Auth:       NewAuthService(repos, jwtManager, log),
		User:       NewUserService(repos, log),
		Planet:     NewPlanetService(repos, log),
		Friend:     NewFriendService(repos, log),
		Game:       NewGameService(repos, generator, storage, notifier, log),
		JWTManager: jwtManager,
	}
	return services, generator, storage, notifier
}
