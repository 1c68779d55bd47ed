package utils

import "testing"

func TestCalculateTotalPages(t *testing.T) {
	cases := []struct {
		name    string
		total   int64
		perPage int
		want    int
	}{
		{"exact fit", 30, 10, 3},
		{"partial last page", 31, 10, 4},
		{"single row", 1, 10, 1},
		{"empty", 0, 10, 0},
		{"invalid per page", 30, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateTotalPages(tc.total, tc.perPage); got != tc.want {
				t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
			}
		})
	}
}
