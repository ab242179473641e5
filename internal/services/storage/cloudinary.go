package storage

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/partnerly/backend/internal/config"
)

// Uploader stores partner files and returns a public URL for them
type Uploader interface {
	UploadFile(ctx context.Context, data []byte, publicID string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// CloudinaryService uploads partner documents and portfolio images to
// Cloudinary using signed requests.
type CloudinaryService struct {
	cfg    config.StorageConfig
	client *http.Client
}

// NewCloudinaryService creates a new Cloudinary storage service
func NewCloudinaryService(cfg config.StorageConfig) *CloudinaryService {
	return &CloudinaryService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadFile uploads raw file bytes under the configured folder and returns
// the secure URL
func (s *CloudinaryService) UploadFile(ctx context.Context, data []byte, publicID string) (string, error) {
	if s.cfg.CloudName == "" || s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		return "", fmt.Errorf("cloudinary is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	finalPublicID := publicID
	if s.cfg.UploadFolder != "" {
		finalPublicID = s.cfg.UploadFolder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	// Cloudinary signs the sorted params followed by the API secret, SHA1 hex
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, s.cfg.APISecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))

	form := url.Values{}
	form.Add("file", "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(data))
	form.Add("api_key", s.cfg.APIKey)
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", signature)

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", s.cfg.CloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		return "", err
	}

	var uploadRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &uploadRes); err != nil {
		return "", fmt.Errorf("failed to parse cloudinary response: %w", err)
	}
	if uploadRes.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", uploadRes.Error.Message)
	}

	fileURL := uploadRes.SecureURL
	if fileURL == "" {
		fileURL = uploadRes.URL
	}
	if fileURL == "" {
		return "", fmt.Errorf("cloudinary returned no file URL")
	}

	return fileURL, nil
}

// DeleteFile removes a previously uploaded file by its URL
func (s *CloudinaryService) DeleteFile(ctx context.Context, fileURL string) error {
	if !strings.Contains(fileURL, "res.cloudinary.com") {
		return fmt.Errorf("not a cloudinary URL: %s", fileURL)
	}

	parts := strings.Split(fileURL, "/")
	lastPart := parts[len(parts)-1]
	publicID := strings.Split(lastPart, ".")[0]

	finalPublicID := publicID
	if s.cfg.UploadFolder != "" {
		finalPublicID = s.cfg.UploadFolder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, s.cfg.APISecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))

	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("api_key", s.cfg.APIKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", signature)

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", s.cfg.CloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		return err
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return fmt.Errorf("failed to parse cloudinary response: %w", err)
	}
	if deleteRes.Error.Message != "" {
		return fmt.Errorf("cloudinary deletion failed: %s", deleteRes.Error.Message)
	}
	if deleteRes.Result != "ok" && deleteRes.Result != "not found" {
		return fmt.Errorf("cloudinary deletion result: %s", deleteRes.Result)
	}

	return nil
}

func (s *CloudinaryService) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cloudinary response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary request failed with status %d: %s", res.StatusCode, string(body))
	}

	return body, nil
}
