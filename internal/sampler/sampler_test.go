package sampler

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

func newReview(withImage bool) *domain.Review {
	r := &domain.Review{ID: uuid.New(), ProductID: "prod_1", Rating: 5, Status: domain.StatusApproved}
	if withImage {
		r.Images = []domain.ReviewImage{{URL: "photo.jpg", Type: "image/jpeg"}}
	} else {
		r.Images = []domain.ReviewImage{{URL: "clip.mp4", Type: "video/mp4"}}
	}
	return r
}

func newPool(withImages, withoutImages int) []*domain.Review {
	pool := make([]*domain.Review, 0, withImages+withoutImages)
	for i := 0; i < withImages; i++ {
		pool = append(pool, newReview(true))
	}
	for i := 0; i < withoutImages; i++ {
		pool = append(pool, newReview(false))
	}
	return pool
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func assertNoDuplicates(t *testing.T, reviews []*domain.Review) {
	t.Helper()
	seen := make(map[uuid.UUID]bool, len(reviews))
	for _, r := range reviews {
		assert.False(t, seen[r.ID], "duplicate review %s", r.ID)
		seen[r.ID] = true
	}
}

func assertImagesFirst(t *testing.T, res Result) {
	t.Helper()
	for i, r := range res.Reviews {
		if i < res.SelectedWithImages {
			assert.True(t, r.HasImageMedia(), "position %d should carry image media", i)
		} else {
			assert.False(t, r.HasImageMedia(), "position %d should not carry image media", i)
		}
	}
}

func TestSample_MixedPool(t *testing.T) {
	pool := newPool(4, 6)

	res := Sample(pool, 3, 6, seeded(1))

	require.Len(t, res.Reviews, 6)
	assert.Equal(t, 3, res.SelectedWithImages)
	assert.Equal(t, 3, res.SelectedWithoutImages)
	assert.Equal(t, 4, res.WithImagesAvailable)
	assert.Equal(t, 6, res.WithoutImagesAvailable)
	assertNoDuplicates(t, res.Reviews)
	assertImagesFirst(t, res)
}

func TestSample_ImageSupplyShort(t *testing.T) {
	pool := newPool(2, 0)

	res := Sample(pool, 3, 6, seeded(2))

	require.Len(t, res.Reviews, 2)
	assert.Equal(t, 2, res.SelectedWithImages)
	assert.Equal(t, 0, res.SelectedWithoutImages)
	for _, r := range res.Reviews {
		assert.True(t, r.HasImageMedia())
	}
}

func TestSample_BackfillsWhenImagesShort(t *testing.T) {
	pool := newPool(1, 10)

	res := Sample(pool, 3, 6, seeded(3))

	require.Len(t, res.Reviews, 6)
	assert.Equal(t, 1, res.SelectedWithImages)
	assert.Equal(t, 5, res.SelectedWithoutImages)
	assertImagesFirst(t, res)
}

func TestSample_EmptyPool(t *testing.T) {
	res := Sample(nil, 3, 6, seeded(4))

	assert.Empty(t, res.Reviews)
	assert.NotNil(t, res.Reviews)
	assert.Zero(t, res.WithImagesAvailable)
	assert.Zero(t, res.WithoutImagesAvailable)
}

func TestSample_ZeroQuotas(t *testing.T) {
	pool := newPool(3, 3)

	res := Sample(pool, 0, 4, seeded(5))
	assert.Len(t, res.Reviews, 4)
	assert.Equal(t, 0, res.SelectedWithImages)

	res = Sample(pool, 2, 0, seeded(5))
	assert.Len(t, res.Reviews, 2)
	assert.Equal(t, 0, res.SelectedWithoutImages)

	res = Sample(pool, 0, 0, seeded(5))
	assert.Empty(t, res.Reviews)
}

func TestSample_NegativeQuotasClampToZero(t *testing.T) {
	pool := newPool(3, 3)

	res := Sample(pool, -2, -5, seeded(6))

	assert.Empty(t, res.Reviews)
}

func TestSample_ImageQuotaAboveTotalKeepsImages(t *testing.T) {
	pool := newPool(8, 8)

	res := Sample(pool, 5, 3, seeded(7))

	// image reviews are never dropped to satisfy the total
	assert.Len(t, res.Reviews, 5)
	assert.Equal(t, 5, res.SelectedWithImages)
	assert.Equal(t, 0, res.SelectedWithoutImages)
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	pool := newPool(5, 5)
	original := make([]*domain.Review, len(pool))
	copy(original, pool)

	Sample(pool, 3, 6, seeded(8))

	assert.Equal(t, original, pool)
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	pool := newPool(6, 9)

	first := Sample(pool, 3, 7, seeded(42))
	second := Sample(pool, 3, 7, seeded(42))

	assert.Equal(t, first, second)
}

func TestSample_LengthProperties(t *testing.T) {
	src := seeded(9)
	for withImg := 0; withImg <= 6; withImg++ {
		for withoutImg := 0; withoutImg <= 6; withoutImg++ {
			pool := newPool(withImg, withoutImg)
			for qImg := 0; qImg <= 4; qImg++ {
				for qTotal := 0; qTotal <= 8; qTotal++ {
					name := fmt.Sprintf("pool=%d/%d q=%d/%d", withImg, withoutImg, qImg, qTotal)
					res := Sample(pool, qImg, qTotal, src)

					assert.LessOrEqual(t, len(res.Reviews), len(pool), name)
					assert.Equal(t, min(qImg, withImg), res.SelectedWithImages, name)
					assert.Equal(t, min(max(qTotal-res.SelectedWithImages, 0), withoutImg), res.SelectedWithoutImages, name)
					assert.Len(t, res.Reviews, res.SelectedWithImages+res.SelectedWithoutImages, name)
					if withImg >= qImg && withoutImg >= qTotal-qImg && qImg <= qTotal {
						assert.Len(t, res.Reviews, qTotal, name)
					}
					assertNoDuplicates(t, res.Reviews)
					assertImagesFirst(t, res)
				}
			}
		}
	}
}

func TestShuffle_Uniform(t *testing.T) {
	src := seeded(10)
	base := newPool(0, 3)
	index := map[uuid.UUID]int{base[0].ID: 0, base[1].ID: 1, base[2].ID: 2}

	const trials = 60000
	counts := make(map[[3]int]int)
	for i := 0; i < trials; i++ {
		reviews := []*domain.Review{base[0], base[1], base[2]}
		shuffle(reviews, src)
		counts[[3]int{index[reviews[0].ID], index[reviews[1].ID], index[reviews[2].ID]}]++
	}

	require.Len(t, counts, 6, "every permutation should appear")
	expected := trials / 6
	for perm, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)*0.05, "permutation %v", perm)
	}
}

func TestSample_NilSourceUsesDefault(t *testing.T) {
	pool := newPool(4, 6)

	res := Sample(pool, 3, 6, nil)

	assert.Len(t, res.Reviews, 6)
	assertNoDuplicates(t, res.Reviews)
}
