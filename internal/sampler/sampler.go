// Package sampler picks a randomized, image-balanced subset of reviews for
// storefront display.
package sampler

import (
	"math/rand/v2"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Default draws from the process-wide math/rand/v2 generator, which is safe
// for concurrent use.
var Default Source = globalSource{}

// Result is a sample together with the partition sizes it was drawn from
type Result struct {
	Reviews                []*domain.Review
	WithImagesAvailable    int
	WithoutImagesAvailable int
	SelectedWithImages     int
	SelectedWithoutImages  int
}

// Sample selects up to imageQuota reviews carrying image media and backfills
// with reviews without image media up to totalQuota. Image reviews come first;
// the order inside each group is random.
//
// Image reviews are never dropped to honour totalQuota, so the result can be
// longer than totalQuota when imageQuota > totalQuota.
//
// The pool and its elements are not modified. A nil src uses Default.
func Sample(pool []*domain.Review, imageQuota, totalQuota int, src Source) Result {
	if src == nil {
		src = Default
	}
	imageQuota = max(imageQuota, 0)
	totalQuota = max(totalQuota, 0)

	withImages, withoutImages := partition(pool)
	shuffle(withImages, src)
	shuffle(withoutImages, src)

	imageTake := min(imageQuota, len(withImages))
	remaining := max(totalQuota-imageTake, 0)
	plainTake := min(remaining, len(withoutImages))

	reviews := make([]*domain.Review, 0, imageTake+plainTake)
	reviews = append(reviews, withImages[:imageTake]...)
	reviews = append(reviews, withoutImages[:plainTake]...)

	return Result{
		Reviews:                reviews,
		WithImagesAvailable:    len(withImages),
		WithoutImagesAvailable: len(withoutImages),
		SelectedWithImages:     imageTake,
		SelectedWithoutImages:  plainTake,
	}
}

// partition splits the pool into fresh slices so shuffling never touches the caller's slice
func partition(pool []*domain.Review) (withImages, withoutImages []*domain.Review) {
	withImages = make([]*domain.Review, 0, len(pool))
	withoutImages = make([]*domain.Review, 0, len(pool))
	for _, r := range pool {
		if r == nil {
			continue
		}
		if r.HasImageMedia() {
			withImages = append(withImages, r)
		} else {
			withoutImages = append(withoutImages, r)
		}
	}
	return withImages, withoutImages
}

// shuffle is an in-place Fisher-Yates permutation
func shuffle(reviews []*domain.Review, src Source) {
	for i := len(reviews) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		reviews[i], reviews[j] = reviews[j], reviews[i]
	}
}
