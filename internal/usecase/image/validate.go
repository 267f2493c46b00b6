package image

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/go-playground/validator/v10"
)

const (
	MaxFileNameLength = 255
	MaxKeywords       = 5
)

// AllowedFileTypes is the MIME allow-list shared by the API and the client.
var AllowedFileTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var fileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._\-\s]+$`)

type uploadRequest struct {
	FileName string `validate:"required,max=255,filename"`
	FileType string `validate:"required,oneof=image/jpeg image/png image/gif image/webp"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// registration fails only for an empty tag or a nil func
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return fileNamePattern.MatchString(fl.Field().String())
	})

	return v
}

func (uc *ImageUseCase) validateUpload(fileName, fileType string) error {
	err := uc.validate.Struct(uploadRequest{FileName: fileName, FileType: fileType})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}

	// report the first problem only, like the form does
	fe := verrs[0]
	switch fe.Field() {
	case "FileName":
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: fileName is required", errs.ErrValidation)
		case "max":
			return fmt.Errorf("%w: fileName exceeds maximum length of %d characters", errs.ErrValidation, MaxFileNameLength)
		default:
			return fmt.Errorf("%w: fileName contains invalid characters", errs.ErrValidation)
		}
	default:
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: fileType is required", errs.ErrValidation)
		}
		return fmt.Errorf("%w: fileType must be one of %s", errs.ErrValidation, strings.Join(AllowedFileTypes, ", "))
	}
}

// normalizeKeywords lower-cases, trims and dedupes keywords, keeping their order.
func normalizeKeywords(keywords []string) ([]string, error) {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: search query 'q' is required", errs.ErrValidation)
	}

	if len(out) > MaxKeywords {
		return nil, fmt.Errorf("%w: at most %d keywords are allowed", errs.ErrValidation, MaxKeywords)
	}

	return out, nil
}
