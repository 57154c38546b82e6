// Package playlist holds queue ordering helpers shared by the session and the
// in-process engine.
package playlist

// Rearrange returns a new slice that starts at items[start] and wraps around:
// items[start:] followed by items[:start]. Relative order is preserved so
// next/previous keep walking the original list.
//
// An out of range start returns items unchanged.
func Rearrange[T any](items []T, start int) []T {
	if start < 0 || start >= len(items) {
		return items
	}
	result := make([]T, 0, len(items))
	result = append(result, items[start:]...)
	result = append(result, items[:start]...)
	return result
}
