package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andreyxaxa/Image-Tagger/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Error: msg, Status: code})
}

// handleError maps use case errors to responses. Backend errors are logged and hidden behind msg.
func (r *V1) handleError(ctx *fiber.Ctx, err error, op, msg string) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return errorResponse(ctx, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, errs.ErrRecordNotFound):
		return errorResponse(ctx, http.StatusNotFound, "Image record not found")
	default:
		r.logger.Error(err, "restapi - v1 - %s", op)

		return errorResponse(ctx, http.StatusInternalServerError, msg)
	}
}

// validationMessage strips the call chain and keeps the client facing part.
func validationMessage(err error) string {
	_, msg, found := strings.Cut(err.Error(), errs.ErrValidation.Error()+": ")
	if !found || msg == "" {
		return "invalid request"
	}

	return msg
}
