package utils

import (
	"crypto/rand"
	"fmt"
)

// 邀请码字符集（大写字母与数字）
const roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeLength 邀请码长度
const RoomCodeLength = 6

// GenerateRoomCode 生成6位随机邀请码
func GenerateRoomCode() (string, error) {
	buf := make([]byte, RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成邀请码失败: %w", err)
	}

	for i, b := range buf {
		buf[i] = roomCodeCharset[int(b)%len(roomCodeCharset)]
	}

	return string(buf), nil
}
