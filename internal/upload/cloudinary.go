// Package upload stores product images on the asset host.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"storefront-be/internal/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

var ErrUploadDisabled = errors.New("image uploads are not configured")

type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary uploads images into one folder and returns their HTTPS URL.
type Cloudinary struct {
	api    assetAPI
	folder string
}

func NewCloudinary(cfg Config) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{api: &cld.Upload, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	// The host names the asset; filenames repeat across products.
	res, err := c.api.Upload(ctx, content, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if res == nil || res.Error.Message != "" {
		msg := "empty response"
		if res != nil {
			msg = res.Error.Message
		}
		return "", fmt.Errorf("upload %s: %s", filename, msg)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload %s: no url returned", filename)
	}

	logger.FromCtx(ctx).Debug("image uploaded",
		zap.String("layer", "upload"),
		zap.String("filename", filename),
		zap.String("url", res.SecureURL),
	)
	return res.SecureURL, nil
}

// Disabled rejects every upload. It stands in when no asset host is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrUploadDisabled
}
