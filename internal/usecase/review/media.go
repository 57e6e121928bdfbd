package review

import (
	"mime"
	"path"
	"strings"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// toImages converts submitted media, guessing the type from the key's extension when absent
func toImages(in []ImageInput) []domain.ReviewImage {
	images := make([]domain.ReviewImage, 0, len(in))
	for _, m := range in {
		images = append(images, domain.ReviewImage{
			URL:  m.URL,
			Type: mediaType(m.URL, m.Type),
		})
	}
	return images
}

func mediaType(key, declared string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}

	key, _, _ = strings.Cut(key, "?")
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(key))); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	return ""
}

// PrefixMediaURLs turns stored media keys into absolute URLs for admin reads.
// Keys that already carry a scheme are left as they are.
func (s *Service) PrefixMediaURLs(reviews ...*domain.Review) {
	if s.mediaPrefix == "" {
		return
	}

	for _, review := range reviews {
		for i := range review.Images {
			if strings.Contains(review.Images[i].URL, "://") {
				continue
			}
			review.Images[i].URL = s.mediaPrefix + review.Images[i].URL
		}
	}
}
