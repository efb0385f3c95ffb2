package pages

import (
	"sort"
)

// Plan orders the verified candidates and computes the gaps in their page numbers.
//
// The natural key of the file name is the authoritative order; pages are never
// re-sorted by their page number. Names with equal keys ("p01.png", "p1.png") fall
// back to a byte comparison of the name and then the path, so the order is total.
//
// Gaps are computed only from names that carry a page number and cover the closed
// range between the smallest and largest one. Duplicate page numbers are allowed.
// Plan returns ErrNoImages when candidates is empty.
func Plan(candidates []Candidate) (Sequence, error) {
	if len(candidates) == 0 {
		return Sequence{}, ErrNoImages
	}

	type keyed struct {
		page Page
		key  Key
	}

	items := make([]keyed, len(candidates))
	var indices []int
	for i, c := range candidates {
		index, ok := PageIndex(c.Name)
		items[i] = keyed{
			page: Page{Candidate: c, Index: index, HasIndex: ok},
			key:  NaturalKey(c.Name),
		}
		if ok {
			indices = append(indices, index)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := Compare(items[i].key, items[j].key); c != 0 {
			return c < 0
		}
		if items[i].page.Name != items[j].page.Name {
			return items[i].page.Name < items[j].page.Name
		}
		return items[i].page.Path < items[j].page.Path
	})

	seq := Sequence{Pages: make([]Page, len(items))}
	for i, it := range items {
		seq.Pages[i] = it.page
	}
	seq.Gaps = findGaps(indices)

	return seq, nil
}

// findGaps returns the ranges between min and max that none of indices covers.
// It walks consecutive distinct values, so huge spans cost nothing until expanded.
func findGaps(indices []int) []Gap {
	if len(indices) == 0 {
		return nil
	}

	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	var gaps []Gap
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur-prev > 1 {
			gaps = append(gaps, Gap{From: prev + 1, To: cur - 1})
		}
	}
	return gaps
}
