// Package grading holds the letter-grade ordering and the qualification
// evaluation applied to course subject requirements. Everything in here is
// pure: no I/O, no store access, deterministic for a given input.
package grading

import "strings"

// Letter grades, worst to best: F < E < D < C < B < A < A+.
var (
	gradeRanks = map[string]int{
		"f":  1,
		"e":  2,
		"d":  3,
		"c":  4,
		"b":  5,
		"a":  6,
		"a+": 7,
	}

	// grade points used for the derived GPA
	gradePoints = map[string]float64{
		"f":  0,
		"e":  0.5,
		"d":  1,
		"c":  2,
		"b":  3,
		"a":  4,
		"a+": 4.5,
	}
)

// IsValid reports whether grade is a known letter grade. Case-insensitive.
func IsValid(grade string) bool {
	_, ok := gradeRanks[normalize(grade)]
	return ok
}

// AtLeast reports whether grade is at least as good as minimum.
// An unknown or missing token on either side fails the comparison; a bad
// grade is a qualification failure, never an error.
func AtLeast(grade, minimum string) bool {
	gr, ok := gradeRanks[normalize(grade)]
	if !ok {
		return false
	}
	mr, ok := gradeRanks[normalize(minimum)]
	if !ok {
		return false
	}
	return gr >= mr
}

// Points returns the GPA points for grade; 0 for unknown tokens.
func Points(grade string) float64 {
	return gradePoints[normalize(grade)]
}

func normalize(grade string) string {
	return strings.ToLower(strings.TrimSpace(grade))
}
