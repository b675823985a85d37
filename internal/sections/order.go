package sections

import "fmt"

// InsertAt returns ids with id inserted at index; out-of-range indexes clamp
// to the ends.
func InsertAt(ids []string, id string, index int) []string {
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

// Move relocates the element at from to position to, shifting the rest.
func Move(ids []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return nil, fmt.Errorf("move %d -> %d out of range [0,%d)", from, to, len(ids))
	}
	out := append([]string{}, ids...)
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{item}, out[to:]...)...)
	return out, nil
}

// IsPermutation reports whether next holds exactly the elements of current.
func IsPermutation(current, next []string) bool {
	if len(current) != len(next) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range next {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}
