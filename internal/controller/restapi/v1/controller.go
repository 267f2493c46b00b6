package v1

import (
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
)

type V1 struct {
	img    usecase.ImageUseCase
	logger logger.Interface
}
