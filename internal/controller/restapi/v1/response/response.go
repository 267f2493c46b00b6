package response

import "github.com/andreyxaxa/Image-Tagger/internal/entity"

type UploadURL struct {
	PresignedURL string `json:"presignedUrl"`
	ImageID      string `json:"imageId"`
	ExpiresIn    int    `json:"expiresIn"` // seconds
}

type Search struct {
	Images []*entity.Image `json:"images"`
}

type Health struct {
	Status string `json:"status"`
}

type Error struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
