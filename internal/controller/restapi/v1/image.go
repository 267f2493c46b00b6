package v1

import (
	"net/http"
	"strings"

	"github.com/andreyxaxa/Image-Tagger/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/Image-Tagger/internal/controller/restapi/v1/response"
	"github.com/gofiber/fiber/v2"
)

// @Summary     Generate upload URL
// @Description Validates the file, issues a presigned PUT URL and creates a PENDING record
// @Tags        images
// @Accept      json
// @Produce     json
// @Param       request body request.UploadURL true "File name and MIME type"
// @Success     200 {object} response.UploadURL
// @Failure     400 {object} response.Error "Invalid file name or type"
// @Failure     500 {object} response.Error "Internal"
// @Router      /api/generate-upload-url [post]
func (r *V1) generateUploadURL(ctx *fiber.Ctx) error {
	var req request.UploadURL
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	ticket, err := r.img.RequestUpload(ctx.UserContext(), req.FileName, req.FileType)
	if err != nil {
		return r.handleError(ctx, err, "generateUploadURL", "Failed to generate upload URL")
	}

	return ctx.Status(http.StatusOK).JSON(response.UploadURL{
		PresignedURL: ticket.PresignedURL,
		ImageID:      ticket.ImageID,
		ExpiresIn:    int(ticket.ExpiresIn.Seconds()),
	})
}

// @Summary     Search images
// @Description Returns labeled images whose tags contain every keyword
// @Tags        images
// @Produce     json
// @Param       q query string true "Space separated keywords, at most 5"
// @Success     200 {object} response.Search
// @Failure     400 {object} response.Error "Missing query"
// @Failure     500 {object} response.Error "Internal"
// @Router      /api/search [get]
func (r *V1) searchImages(ctx *fiber.Ctx) error {
	keywords := parseQuery(ctx)

	images, err := r.img.Search(ctx.UserContext(), keywords)
	if err != nil {
		return r.handleError(ctx, err, "searchImages", "Failed to search images")
	}

	return ctx.Status(http.StatusOK).JSON(response.Search{Images: images})
}

// @Summary     Image status
// @Description Returns the image record, tags are always a list
// @Tags        images
// @Produce     json
// @Param       imageId path string true "Image ID"
// @Success     200 {object} entity.Image
// @Failure     404 {object} response.Error "Image not found"
// @Failure     500 {object} response.Error "Internal"
// @Router      /api/status/{imageId} [get]
func (r *V1) getImageStatus(ctx *fiber.Ctx) error {
	image, err := r.img.GetStatus(ctx.UserContext(), ctx.Params("imageId"))
	if err != nil {
		return r.handleError(ctx, err, "getImageStatus", "Failed to get image status")
	}

	return ctx.Status(http.StatusOK).JSON(image)
}

// parseQuery accepts both ?q=beach+sunset and ?q=beach&q=sunset.
func parseQuery(ctx *fiber.Ctx) []string {
	var parts []string
	for _, v := range ctx.Context().QueryArgs().PeekMulti("q") {
		parts = append(parts, string(v))
	}

	return strings.Fields(strings.Join(parts, " "))
}
