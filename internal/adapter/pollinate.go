package adapter

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wfunc/puzzle-planet/internal/config"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/logger"
)

// ImageGenerator 图片生成接口
type ImageGenerator interface {
	// Generate 根据标签生成谜面图片，返回图片数据和使用的提示词
	Generate(ctx context.Context, tags []string) ([]byte, string, error)
}

// pollinateClient pollinations.ai 图片生成客户端
type pollinateClient struct {
	config *config.PollinateConfig
	client *http.Client
}

// NewPollinateClient 创建图片生成客户端
func NewPollinateClient(cfg *config.PollinateConfig) ImageGenerator {
	return &pollinateClient{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BuildPrompt 根据标签拼接提示词
func BuildPrompt(tags []string) string {
	return fmt.Sprintf(
		"A creative and artistic image featuring: %s. High quality, detailed, vibrant colors, artistic style",
		strings.Join(tags, ", "),
	)
}

// Generate 根据标签生成图片
// 5xx和超时按线性退避重试，4xx直接失败
func (c *pollinateClient) Generate(ctx context.Context, tags []string) ([]byte, string, error) {
	prompt := BuildPrompt(tags)
	requestURL := c.buildURL(prompt)

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		start := time.Now()
		data, retryable, err := c.fetch(ctx, requestURL)
		logger.LogImageGeneration(prompt, attempt, time.Since(start), err)

		if err == nil {
			return data, prompt, nil
		}
		lastErr = err

		if !retryable {
			return nil, "", apperrors.Wrap(err, apperrors.ErrImageGenerate, "图片生成失败")
		}

		if attempt < c.config.MaxRetries {
			// 线性退避
			select {
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, "", apperrors.Wrap(ctx.Err(), apperrors.ErrImageGenerate, "图片生成已取消")
			}
		}
	}

	return nil, "", apperrors.Wrapf(lastErr, apperrors.ErrImageGenerate,
		"图片生成失败，已重试%d次", c.config.MaxRetries)
}

// buildURL 拼接请求地址
func (c *pollinateClient) buildURL(prompt string) string {
	query := url.Values{}
	query.Set("width", fmt.Sprintf("%d", c.config.Width))
	query.Set("height", fmt.Sprintf("%d", c.config.Height))
	query.Set("model", c.config.Model)
	query.Set("nologo", "true")
	query.Set("seed", fmt.Sprintf("%d", rand.Intn(1000000)))

	return fmt.Sprintf("%s/%s?%s",
		strings.TrimRight(c.config.BaseURL, "/"),
		url.PathEscape(prompt),
		query.Encode(),
	)
}

// fetch 执行单次请求，第二个返回值表示错误是否可重试
func (c *pollinateClient) fetch(ctx context.Context, requestURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// 网络错误和超时可重试
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		if len(data) == 0 {
			return nil, true, fmt.Errorf("上游返回空图片")
		}
		return data, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("上游服务错误: %d", resp.StatusCode)
	default:
		// 4xx等客户端错误不重试
		return nil, false, fmt.Errorf("上游拒绝请求: %d", resp.StatusCode)
	}
}
