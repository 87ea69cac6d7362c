package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/service"
	ws "github.com/wfunc/puzzle-planet/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubGenerator 测试用图片生成器
type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, tags []string) ([]byte, string, error) {
	return []byte("stub-image"), "stub prompt", nil
}

// stubStorage 测试用图片存储
type stubStorage struct{ n int }

func (s *stubStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	s.n++
	return fmt.Sprintf("https://cdn.example.com/game/%d.png", s.n), nil
}

// APITestSuite API集成测试套件
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	engine *gin.Engine
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = repository.SetupTestDB()
	log := zap.NewNop()

	services := service.NewServices(suite.db, service.DefaultConfig(), stubGenerator{}, &stubStorage{}, nil, log)
	hub := ws.NewHub(services.Auth, services.Game, log)
	router := NewRouter(suite.db, services, hub, log)
	suite.engine = router.GetEngine()
}

func (suite *APITestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// do 发送JSON请求
func (suite *APITestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)
	return w
}

// parse 解析响应信封
func (suite *APITestSuite) parse(w *httptest.ResponseRecorder) *Response {
	var resp Response
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

// signup 注册并返回访问令牌
func (suite *APITestSuite) signup(username string) string {
	w := suite.do("POST", "/api/v1/auth/signup", "", map[string]string{
		"username":         username,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	resp := suite.parse(w)
	result := resp.Result.(map[string]interface{})
	return result["access_token"].(string)
}

// TestHealthCheck 测试健康检查
func (suite *APITestSuite) TestHealthCheck() {
	w := suite.do("GET", "/health", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestSignupAndLogin 测试注册登录流程
func (suite *APITestSuite) TestSignupAndLogin() {
	suite.signup("apiuser")

	w := suite.do("POST", "/api/v1/auth/login", "", map[string]string{
		"username": "apiuser",
		"password": "secret123",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.parse(w)
	require.True(suite.T(), resp.IsSuccess)

	// 错误密码
	w = suite.do("POST", "/api/v1/auth/login", "", map[string]string{
		"username": "apiuser",
		"password": "wrongpass",
	})
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	resp = suite.parse(w)
	require.False(suite.T(), resp.IsSuccess)
	require.Equal(suite.T(), "AUTH401", resp.Code)
}

// TestAuthRequired 测试认证保护
func (suite *APITestSuite) TestAuthRequired() {
	w := suite.do("GET", "/api/v1/users/me", "", nil)
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.do("POST", "/api/v1/games/single", "garbage-token", map[string]interface{}{
		"tags": []string{"a", "b", "c", "d"},
	})
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestPlanetFlow 测试星球访问与留言
func (suite *APITestSuite) TestPlanetFlow() {
	suite.signup("owner")
	visitorToken := suite.signup("visitor")

	// 匿名可以看详情
	w := suite.do("GET", "/api/v1/planets/owner", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// 访问计数
	w = suite.do("POST", "/api/v1/planets/owner/visit", visitorToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.parse(w)
	result := resp.Result.(map[string]interface{})
	require.Equal(suite.T(), float64(1), result["visit_count"])

	// 留言
	w = suite.do("POST", "/api/v1/planets/owner/guestbook", visitorToken, map[string]string{
		"content": "很棒的星球",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.do("GET", "/api/v1/planets/owner/guestbook", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// 自己访问自己返回星球业务错误码
	ownerToken := suite.signup("owner2")
	w = suite.do("POST", "/api/v1/planets/owner2/visit", ownerToken, nil)
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	resp = suite.parse(w)
	require.Equal(suite.T(), "PLANET400", resp.Code)
}

// TestSingleGameFlow 测试单人对局REST流程
func (suite *APITestSuite) TestSingleGameFlow() {
	token := suite.signup("player")

	w := suite.do("POST", "/api/v1/games/single", token, map[string]interface{}{
		"tags": []string{"cat", "moon", "castle", "rainbow"},
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	resp := suite.parse(w)
	result := resp.Result.(map[string]interface{})
	gameCode := result["game_code"].(string)
	require.Len(suite.T(), gameCode, 6)
	require.NotEmpty(suite.T(), result["image_url"])

	// 标签数量错误
	w = suite.do("POST", "/api/v1/games/single", token, map[string]interface{}{
		"tags": []string{"cat", "moon"},
	})
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	resp = suite.parse(w)
	require.Equal(suite.T(), "GAME400", resp.Code)

	// 通关
	w = suite.do("POST", "/api/v1/games/single/complete", token, map[string]interface{}{
		"game_code":  gameCode,
		"start_time": 1700000000000,
		"end_time":   1700000045000,
	})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	resp = suite.parse(w)
	completion := resp.Result.(map[string]interface{})
	require.Equal(suite.T(), float64(45000), completion["clear_time_ms"])

	// 保存到星球
	w = suite.do("POST", "/api/v1/games/save", token, map[string]string{
		"game_code": gameCode,
		"title":     "月夜城堡",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
}

// TestMultiRoomFlow 测试多人房间REST流程
func (suite *APITestSuite) TestMultiRoomFlow() {
	hostToken := suite.signup("roomhost")
	guestToken := suite.signup("roomguest")

	w := suite.do("POST", "/api/v1/rooms", hostToken, map[string]interface{}{
		"tags": []string{"dog", "sun", "forest", "river"},
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	resp := suite.parse(w)
	gameCode := resp.Result.(map[string]interface{})["game_code"].(string)

	w = suite.do("POST", "/api/v1/rooms/join", guestToken, map[string]string{"game_code": gameCode})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	// 满员后第三人被拒
	thirdToken := suite.signup("roomthird")
	w = suite.do("POST", "/api/v1/rooms/join", thirdToken, map[string]string{"game_code": gameCode})
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	resp = suite.parse(w)
	require.Equal(suite.T(), "ROOM400", resp.Code)

	w = suite.do("POST", "/api/v1/rooms/ready", guestToken, map[string]interface{}{
		"game_code": gameCode,
		"ready":     true,
	})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	// 非房主开始被拒
	w = suite.do("POST", "/api/v1/rooms/start", guestToken, map[string]string{"game_code": gameCode})
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	resp = suite.parse(w)
	require.Equal(suite.T(), "ROOM400", resp.Code)

	w = suite.do("POST", "/api/v1/rooms/start", hostToken, map[string]string{"game_code": gameCode})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	w = suite.do("POST", "/api/v1/rooms/complete", guestToken, map[string]string{"game_code": gameCode})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	resp = suite.parse(w)
	completion := resp.Result.(map[string]interface{})
	require.Equal(suite.T(), false, completion["already_completed"])
}

// TestAPITestSuite 运行测试套件
func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
