package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]Entry{
		entry(10, CategoryHandmade),
		entry(3, CategoryFashion),
		entry(7, CategoryHandmade),
		entry(1, CategoryElectronics),
		entry(5, CategoryHandmade),
	})
	require.NoError(t, err)
	return c
}

func TestFilter_StartsWithAll(t *testing.T) {
	f := NewFilter(mixedCatalog(t), nil)
	assert.Equal(t, All, f.ActiveCategory())
}

func TestFilter_AllReturnsCatalogOrder(t *testing.T) {
	f := NewFilter(mixedCatalog(t), nil)
	f.SelectCategory(All)

	assert.Equal(t, []int{10, 3, 7, 1, 5}, ids(f.VisibleProjects()))
}

func TestFilter_CategoryIsStableSubsequence(t *testing.T) {
	f := NewFilter(mixedCatalog(t), nil)
	f.SelectCategory(CategoryHandmade)

	got := f.VisibleProjects()
	assert.Equal(t, []int{10, 7, 5}, ids(got))
	for _, e := range got {
		assert.Equal(t, CategoryHandmade, e.Category)
	}
}

func TestFilter_EmptyCategoryYieldsEmptySequence(t *testing.T) {
	f := NewFilter(mixedCatalog(t), nil)
	f.SelectCategory(CategorySportsFitness)

	got := f.VisibleProjects()
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_PreviewCapTruncatesInOrder(t *testing.T) {
	entries := make([]Entry, 9)
	for i := range entries {
		entries[i] = entry(i+1, CategoryFashion)
	}
	c, err := New(entries)
	require.NoError(t, err)

	capped := NewFilter(c, intPtr(6))
	capped.SelectCategory(CategoryFashion)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(capped.VisibleProjects()))
	assert.True(t, capped.Truncated())

	unbounded := NewFilter(c, nil)
	unbounded.SelectCategory(CategoryFashion)
	assert.Len(t, unbounded.VisibleProjects(), 9)
	assert.False(t, unbounded.Truncated())
}

func TestFilter_PreviewCapAppliesAfterFiltering(t *testing.T) {
	f := NewFilter(mixedCatalog(t), intPtr(2))
	f.SelectCategory(CategoryHandmade)

	assert.Equal(t, []int{10, 7}, ids(f.VisibleProjects()))
}

func TestFilter_ZeroCap(t *testing.T) {
	f := NewFilter(mixedCatalog(t), intPtr(0))

	got := f.VisibleProjects()
	require.NotNil(t, got)
	assert.Empty(t, got)
	n, ok := f.PreviewCap()
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestFilter_Deterministic(t *testing.T) {
	c := mixedCatalog(t)
	a := NewFilter(c, intPtr(2))
	b := NewFilter(c, intPtr(2))
	a.SelectCategory(CategoryHandmade)
	b.SelectCategory(CategoryHandmade)

	assert.Equal(t, a.VisibleProjects(), b.VisibleProjects())
	assert.Equal(t, a.VisibleProjects(), a.VisibleProjects())
}

func TestFilter_InstancesAreIndependent(t *testing.T) {
	c := mixedCatalog(t)
	a := NewFilter(c, nil)
	b := NewFilter(c, nil)

	a.SelectCategory(CategoryFashion)

	assert.Equal(t, All, b.ActiveCategory())
	assert.Len(t, b.VisibleProjects(), 5)
}

func TestFilter_SelectUndeclaredCategoryPanics(t *testing.T) {
	f := NewFilter(mixedCatalog(t), nil)

	assert.Panics(t, func() { f.SelectCategory("Retail") })
	assert.Equal(t, All, f.ActiveCategory())
}

func TestNewFilter_NegativeCapPanics(t *testing.T) {
	assert.Panics(t, func() { NewFilter(mixedCatalog(t), intPtr(-1)) })
}

func TestFilter_DefaultCatalogHomePreview(t *testing.T) {
	f := NewFilter(Default(), intPtr(PreviewCap))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(f.VisibleProjects()))
}

func TestFilter_DefaultCatalogFoodGrocery(t *testing.T) {
	f := NewFilter(Default(), nil)
	f.SelectCategory(CategoryFoodGrocery)

	assert.Equal(t, []int{3, 9}, ids(f.VisibleProjects()))
}
