package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// RoomCodeTestSuite 邀请码测试套件
type RoomCodeTestSuite struct {
	suite.Suite
}

// 测试邀请码长度和字符集
func (suite *RoomCodeTestSuite) TestGenerateRoomCode() {
	code, err := GenerateRoomCode()
	suite.NoError(err)
	suite.Len(code, RoomCodeLength)

	for _, r := range code {
		suite.True(strings.ContainsRune(roomCodeCharset, r), "邀请码包含非法字符: %c", r)
	}
}

// 测试多次生成的随机性
func (suite *RoomCodeTestSuite) TestRoomCodeRandomness() {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		suite.NoError(err)
		seen[code] = true
	}
	// 100次生成至少应该有明显的多样性
	suite.Greater(len(seen), 90)
}

func TestRoomCodeSuite(t *testing.T) {
	suite.Run(t, new(RoomCodeTestSuite))
}
