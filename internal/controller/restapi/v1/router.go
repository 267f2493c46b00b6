package v1

import (
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(apiGroup fiber.Router, img usecase.ImageUseCase, l logger.Interface) {
	r := &V1{img: img, logger: l}

	{
		apiGroup.Post("/generate-upload-url", r.generateUploadURL)
		apiGroup.Get("/search", r.searchImages)
		apiGroup.Get("/status/:imageId", r.getImageStatus)
	}
}

// NewUIRoutes serves the browser client. Register it after the API so it never shadows a route.
func NewUIRoutes(app fiber.Router, l logger.Interface) {
	ui, err := uiHandler()
	if err != nil {
		l.Error(err, "restapi - v1 - NewUIRoutes")

		return
	}

	app.Use("/", ui)
}
