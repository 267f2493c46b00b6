package labeler

import (
	"strings"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
)

// ProcessLabels turns raw labels into tags: confidence >= minConfidence, lower-cased,
// first occurrence wins, at most maxTags entries. The result is never nil.
func ProcessLabels(labels []entity.Label, minConfidence float32, maxTags int) []string {
	tags := make([]string, 0, min(len(labels), maxTags))
	seen := make(map[string]struct{}, len(labels))

	for _, label := range labels {
		if len(tags) >= maxTags {
			break
		}
		if label.Confidence < minConfidence {
			continue
		}

		tag := strings.ToLower(strings.TrimSpace(label.Name))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags
}
