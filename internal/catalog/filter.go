package catalog

import "fmt"

// PreviewCap is the number of projects shown in the home page preview.
const PreviewCap = 6

// Filter derives the visible projects from a shared catalog, the active
// category and an optional preview cap. A Filter is owned by one view and
// is not safe for concurrent mutation.
type Filter struct {
	catalog    *Catalog
	active     Category
	previewCap int // -1 means unbounded
}

// NewFilter returns a filter over c with All selected. A nil previewCap
// means no cap; a negative cap panics.
func NewFilter(c *Catalog, previewCap *int) *Filter {
	limit := -1
	if previewCap != nil {
		if *previewCap < 0 {
			panic(fmt.Sprintf("catalog: negative preview cap %d", *previewCap))
		}
		limit = *previewCap
	}
	return &Filter{catalog: c, active: All, previewCap: limit}
}

// SelectCategory sets the active category. Selecting a value that is
// neither All nor a declared category is a programming error and panics;
// use ParseCategory on untrusted input first.
func (f *Filter) SelectCategory(c Category) {
	if !c.Selectable() {
		panic(fmt.Sprintf("catalog: select of undeclared category %q", c))
	}
	f.active = c
}

// ActiveCategory returns the current selection.
func (f *Filter) ActiveCategory() Category {
	return f.active
}

// PreviewCap returns the cap and whether one is set.
func (f *Filter) PreviewCap() (int, bool) {
	return f.previewCap, f.previewCap >= 0
}

// VisibleProjects returns the entries matching the active category in
// catalog order, truncated to the preview cap when one is set. The result
// is never nil.
func (f *Filter) VisibleProjects() []Entry {
	return f.catalog.matching(f.active, f.previewCap)
}

// Truncated reports whether the cap hides matching entries.
func (f *Filter) Truncated() bool {
	if f.previewCap < 0 {
		return false
	}
	return len(f.catalog.matching(f.active, -1)) > f.previewCap
}
