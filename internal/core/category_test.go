package core

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"OPS_Hiring", CategoryHiring},
		{"OPS Hiring", CategoryHiring},
		{"ops_hiring", CategoryHiring},
		{"OPS-Hiring", CategoryHiring},
		{" ops  jobs ", CategoryJobs},
		{"OPS_REVIEWS", CategoryReviews},
		{"ops guiding", CategoryGuiding},
		{"unpaired", CategoryUnpaired},
		{"Other", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseCategory("OPS_Sales"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategory(OPS_Sales) error = %v, want ErrUnknownCategory", err)
	}
}

func TestCategoryPredicates(t *testing.T) {
	for _, c := range AllCategories {
		wantKeyword := c != CategoryUnpaired && c != CategoryOther
		if got := c.IsKeywordCategory(); got != wantKeyword {
			t.Errorf("%s.IsKeywordCategory() = %v, want %v", c, got, wantKeyword)
		}
		if got := c.IsPaired(); got != (c != CategoryUnpaired) {
			t.Errorf("%s.IsPaired() = %v", c, got)
		}
	}
}
