package tinify

import (
	"bytes"
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/pkg/retry"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxResponseBytes ограничивает чтение ответа сервиса сжатия
const maxResponseBytes = 32 << 20

type shrinkResponse struct {
	Input struct {
		Size int64  `json:"size"`
		Type string `json:"type"`
	} `json:"input"`
	Output struct {
		Size  int64   `json:"size"`
		Type  string  `json:"type"`
		Ratio float64 `json:"ratio"`
		URL   string  `json:"url"`
	} `json:"output"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client сжимает картинки через TinyPNG-совместимый API
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
	policy   retry.Policy
}

func NewClient(apiKey, endpoint string, policy retry.Policy) repo.Compressor {
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		// таймауты задаются контекстом на каждую попытку
		http:   &http.Client{},
		policy: policy,
	}
}

func (c *Client) Compress(ctx context.Context, data []byte) (*entity.CompressedPicture, error) {
	var shrink shrinkResponse
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.SetBasicAuth("api", c.apiKey)

		body, err := c.do(req)
		if err != nil {
			return err
		}
		shrink = shrinkResponse{}
		if err := json.Unmarshal(body, &shrink); err != nil {
			return fmt.Errorf("decode shrink response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, upstreamError("shrink", err)
	}
	if shrink.Output.URL == "" {
		return nil, fmt.Errorf("%w: response has no output url", repo.ErrCompressionFailed)
	}

	var compressed []byte
	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, shrink.Output.URL, nil)
		if err != nil {
			return err
		}
		compressed, err = c.do(req)
		return err
	})
	if err != nil {
		return nil, upstreamError("download output", err)
	}
	return &entity.CompressedPicture{
		Data:        compressed,
		ContentType: shrink.Output.Type,
	}, nil
}

// do выполняет запрос и возвращает тело успешного ответа
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return nil, retry.Retryable(err)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, retry.Retryable(err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("%s %s: unexpected status %d: %s", req.Method, req.URL.Redacted(), resp.StatusCode, truncate(body, 256))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, retry.Retryable(err)
		}
		return nil, err
	}
	return body, nil
}

func truncate(body []byte, limit int) string {
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

func upstreamError(operation string, err error) error {
	if errors.Is(err, retry.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", repo.ErrUpstreamTimeout, operation, err)
	}
	return fmt.Errorf("%w: %s: %w", repo.ErrUpstream, operation, err)
}
