// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"cmp"
	"slices"
)

// Assemble returns pages stably sorted by ascending index. The input is not modified.
func Assemble(pages []Page) []Page {
	ordered := slices.Clone(pages)
	slices.SortStableFunc(ordered, func(a, b Page) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return ordered
}
