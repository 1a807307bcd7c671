package util

import (
	"testing"
)

type item struct {
	T  int
	ID string
}

func byT(i item) int { return i.T }

func TestSortByAlreadySortedReturnsInput(t *testing.T) {
	in := []item{{T: 1}, {T: 2}, {T: 2}, {T: 5}}

	out := SortBy(in, byT, Ascending[int])

	if &out[0] != &in[0] {
		t.Error("Expected the input slice to be returned when already sorted")
	}
}

func TestSortByUnsortedReturnsCopy(t *testing.T) {
	in := []item{{T: 2}, {T: 1}}

	out := SortBy(in, byT, Ascending[int])

	if out[0].T != 1 || out[1].T != 2 {
		t.Errorf("Expected [1 2], got [%d %d]", out[0].T, out[1].T)
	}
	if in[0].T != 2 || in[1].T != 1 {
		t.Errorf("Expected input to stay [2 1], got [%d %d]", in[0].T, in[1].T)
	}
	if &out[0] == &in[0] {
		t.Error("Expected a new slice when sorting was needed")
	}
}

func TestSortByEmptyAndSingle(t *testing.T) {
	var empty []item
	if out := SortBy(empty, byT, Ascending[int]); len(out) != 0 {
		t.Errorf("Expected empty result, got %d items", len(out))
	}

	single := []item{{T: 9}}
	out := SortBy(single, byT, Ascending[int])
	if len(out) != 1 || &out[0] != &single[0] {
		t.Error("Expected single element input to be returned as-is")
	}
}

func TestSortByIsStable(t *testing.T) {
	in := []item{{T: 3, ID: "a"}, {T: 1, ID: "b"}, {T: 3, ID: "c"}, {T: 1, ID: "d"}}

	out := SortBy(in, byT, Ascending[int])

	expected := []string{"b", "d", "a", "c"}
	for i, id := range expected {
		if out[i].ID != id {
			t.Errorf("Position %d: expected '%s', got '%s'", i, id, out[i].ID)
		}
	}
}

func TestSortByDescending(t *testing.T) {
	in := []item{{T: 1}, {T: 3}, {T: 2}}

	out := SortBy(in, byT, Descending[int])

	if out[0].T != 3 || out[1].T != 2 || out[2].T != 1 {
		t.Errorf("Expected [3 2 1], got [%d %d %d]", out[0].T, out[1].T, out[2].T)
	}

	again := SortBy(out, byT, Descending[int])
	if &again[0] != &out[0] {
		t.Error("Expected sorted descending input to be returned as-is")
	}
}

func TestIsSortedBy(t *testing.T) {
	tests := []struct {
		name     string
		in       []item
		expected bool
	}{
		{"nil", nil, true},
		{"equal keys", []item{{T: 1}, {T: 1}}, true},
		{"ascending", []item{{T: 1}, {T: 2}}, true},
		{"inversion at end", []item{{T: 1}, {T: 3}, {T: 2}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSortedBy(tt.in, byT, Ascending[int]); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
