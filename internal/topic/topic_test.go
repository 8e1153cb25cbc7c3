package topic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector_SelectStaysInCatalog(t *testing.T) {
	for name, catalog := range map[string][]Topic{"color": ColorCatalog, "assets": AssetCatalog} {
		t.Run(name, func(t *testing.T) {
			s := NewSelector(catalog, rand.New(rand.NewSource(7)))
			seen := map[string]int{}
			for i := 0; i < 500; i++ {
				got := s.Select()
				assert.True(t, Contains(catalog, got), "unexpected topic %+v", got)
				seen[got.Category]++
			}
			assert.Len(t, seen, len(catalog), "every category should eventually appear")
		})
	}
}

func TestSelector_SameSeedSameSequence(t *testing.T) {
	a := NewSelector(ColorCatalog, rand.New(rand.NewSource(99)))
	b := NewSelector(ColorCatalog, rand.New(rand.NewSource(99)))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Select(), b.Select())
	}
}

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, ColorCatalog, 5)
	assert.Len(t, AssetCatalog, 3)
	for _, tp := range AssetCatalog {
		assert.True(t, Contains(ColorCatalog, tp))
	}
}

func TestNewSelector_EmptyCatalogPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSelector(nil, rand.New(rand.NewSource(1)))
	})
}
