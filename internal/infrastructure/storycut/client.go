// Package storycut 实现对 StoryCut 后端 API 的 HTTP 访问，
// 承载预签名直传、资产登记、图片暂存与处理提交四类调用。
package storycut

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	"github.com/storycut/services-edit/internal/models/media"
	"github.com/storycut/services-edit/internal/services"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	headerAuthorization = "Authorization"
	headerDeviceToken   = "device-token"
	headerBlobType      = "x-ms-blob-type"
	blobTypeBlock       = "BlockBlob"
)

// Client 是 StoryCut 后端的 HTTP 客户端。
// api 客户端带统一超时走后端 API；blob 客户端不叠加额外头部、
// 超时放宽，直传预签名地址。
type Client struct {
	base *url.URL
	api  *http.Client
	blob *http.Client
	log  *log.Helper
}

var (
	_ services.VideoGateway      = (*Client)(nil)
	_ services.ImageGateway      = (*Client)(nil)
	_ services.ProcessingGateway = (*Client)(nil)
)

// NewClient 构造 Client。
func NewClient(cfg loader.GatewayConfig, logger log.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storycut: base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("storycut: parse base url: %w", err)
	}

	return &Client{
		base: base,
		api:  &http.Client{Timeout: cfg.RequestTimeout.AsDuration(15 * time.Second)},
		blob: &http.Client{Timeout: cfg.BlobTimeout.AsDuration(5 * time.Minute)},
		log:  log.NewHelper(log.With(logger, "module", "infrastructure/storycut")),
	}, nil
}

// baseResponse 是后端 API 的统一响应外壳。
type baseResponse struct {
	IsSuccess bool            `json:"isSuccess"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Result    json.RawMessage `json:"result"`
}

type presignedResponse struct {
	UploadURL string `json:"uploadUrl"`
	VideoURL  string `json:"videoUrl"`
}

type videoUploadRequest struct {
	VideoTitle   string  `json:"videoTitle"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

type videoResult struct {
	VideoID  int64  `json:"videoId"`
	VideoURL string `json:"videoUrl"`
}

type imageUploadResult struct {
	ImageURLs []string `json:"imageUrls"`
}

// IssuePresignedURL 向后端换取一次性直传地址与最终资产地址。
func (c *Client) IssuePresignedURL(ctx context.Context, filename string) (*services.PresignedTarget, error) {
	endpoint := c.endpoint("/presigned/presigned-url")
	endpoint.RawQuery = url.Values{"original_filename": []string{filename}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("storycut: build presigned request: %w", err)
	}

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storycut: issue presigned url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storycut: issue presigned url: unexpected status %d", resp.StatusCode)
	}

	var payload presignedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("storycut: decode presigned response: %w", err)
	}
	if payload.UploadURL == "" || payload.VideoURL == "" {
		return nil, fmt.Errorf("storycut: presigned response missing urls")
	}

	return &services.PresignedTarget{UploadURL: payload.UploadURL, AssetURL: payload.VideoURL}, nil
}

// PutBlob 把暂存文件的字节流直传到预签名地址。
func (c *Client) PutBlob(ctx context.Context, uploadURL string, file media.File) error {
	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("storycut: open spooled file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, f)
	if err != nil {
		return fmt.Errorf("storycut: build blob request: %w", err)
	}
	req.Header.Set(headerBlobType, blobTypeBlock)
	if file.ContentType != "" {
		req.Header.Set("Content-Type", file.ContentType)
	}
	req.ContentLength = file.SizeBytes

	resp, err := c.blob.Do(req)
	if err != nil {
		return fmt.Errorf("storycut: put blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storycut: put blob: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.log.WithContext(ctx).Debugf("blob uploaded: filename=%s size=%d", file.Filename, file.SizeBytes)
	return nil
}

// RegisterVideo 登记已上传（或既有）视频的元数据。
func (c *Client) RegisterVideo(ctx context.Context, token string, input services.RegisterVideoInput) (*services.RegisteredVideo, error) {
	body, err := json.Marshal(videoUploadRequest{
		VideoTitle:   input.Title,
		VideoURL:     input.URL,
		ThumbnailURL: input.ThumbnailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("storycut: marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload/videos").String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storycut: build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAuthorization, bearer(token))

	var result videoResult
	if err := c.doEnvelope(req, "register video", &result); err != nil {
		return nil, err
	}
	if result.VideoID == 0 {
		return nil, fmt.Errorf("storycut: register video: missing video id")
	}

	return &services.RegisteredVideo{ID: result.VideoID, URL: result.VideoURL}, nil
}

// UploadImages 以单次 multipart 请求批量暂存图片，返回可寻址地址列表。
func (c *Client) UploadImages(ctx context.Context, files []media.File) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Filename)
		if err != nil {
			return nil, fmt.Errorf("storycut: create form part: %w", err)
		}
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("storycut: open spooled image: %w", err)
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("storycut: copy image bytes: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("storycut: finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload/images").String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("storycut: build image upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result imageUploadResult
	if err := c.doEnvelope(req, "upload images", &result); err != nil {
		return nil, err
	}
	return result.ImageURLs, nil
}

// SubmitProcessing 提交处理作业。设备令牌随请求传递，
// 完成事件由服务端据此路由回客户端。
func (c *Client) SubmitProcessing(ctx context.Context, token, deviceToken string, request services.ProcessingRequest) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("storycut: marshal processing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/videos").String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storycut: build processing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAuthorization, bearer(token))
	req.Header.Set(headerDeviceToken, deviceToken)

	return c.doEnvelope(req, "submit processing", nil)
}

// doEnvelope 执行请求并解包统一响应外壳，result 可为 nil。
func (c *Client) doEnvelope(req *http.Request, op string, result any) error {
	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("storycut: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("storycut: %s: unexpected status %d", op, resp.StatusCode)
	}

	var envelope baseResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("storycut: %s: decode response: %w", op, err)
	}
	if !envelope.IsSuccess {
		return fmt.Errorf("storycut: %s: backend rejected: code=%d message=%s", op, envelope.Code, envelope.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("storycut: %s: decode result: %w", op, err)
		}
	}
	return nil
}

func (c *Client) endpoint(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return &u
}

func bearer(token string) string {
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
