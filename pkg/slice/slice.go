// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with generic set helpers.
*/
package slice

// Keys returns the keys of a set-like map in unspecified order. A nil map yields an empty slice.
func Keys[K comparable, V any](set map[K]V) []K {
	result := make([]K, 0, len(set))
	for key := range set {
		result = append(result, key)
	}
	return result
}
