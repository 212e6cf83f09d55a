package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary uploads. Images are re-encoded server-side to one
// canonical compressed format (webp) regardless of input; videos are stored
// as uploaded with an optimized delivery transform.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url string, size int64, err error)
	UploadVideo(ctx context.Context, file io.Reader, folder, publicID string) (url string, size int64, err error)
}

const (
	// canonical stored format for all images
	ImageFormat = "webp"
	ImageWidth  = 1200
)

const (
	imageEager = "q_auto,w_1200,c_limit"
	videoEager = "q_auto:low,f_auto,w_1280"
)

var eagerAsyncFalse = false

// BuildDeliveryURL returns an optimized delivery URL for an existing public ID.
func BuildDeliveryURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,w_%d,c_limit/%s",
		cloudName, width, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, int64, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Format:     ImageFormat,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", 0, err
	}
	return result.SecureURL, int64(result.Bytes), nil
}

func (c *clientImpl) UploadVideo(ctx context.Context, file io.Reader, folder, publicID string) (string, int64, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "video",
		Eager:        videoEager,
		EagerAsync:   &eagerAsyncFalse,
	})
	if err != nil {
		return "", 0, err
	}
	return result.SecureURL, int64(result.Bytes), nil
}

// NewClientFromParams builds a Client from Cloudinary credentials.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}
