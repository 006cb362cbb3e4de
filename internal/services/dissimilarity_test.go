package services

import (
	"math"
	"testing"

	"github.com/farsightlab/arv-backend/internal/types"
)

func TestColorDistance(t *testing.T) {
	cases := []struct {
		name   string
		a, b   string
		want   float64
		wantOK bool
	}{
		{
			name:   "identical",
			a:      "#112233",
			b:      "#112233",
			want:   0,
			wantOK: true,
		},
		{
			name:   "black_to_white_is_max",
			a:      "#000000",
			b:      "#ffffff",
			want:   1,
			wantOK: true,
		},
		{
			name:   "red_to_blue",
			a:      "#ff0000",
			b:      "#0000ff",
			want:   math.Sqrt(2*255*255) / math.Sqrt(3*255*255),
			wantOK: true,
		},
		{
			name:   "missing_first",
			a:      "",
			b:      "#ffffff",
			wantOK: false,
		},
		{
			name:   "unparseable",
			a:      "#zzzzzz",
			b:      "#ffffff",
			wantOK: false,
		},
		{
			name:   "no_hash_prefix",
			a:      "000000",
			b:      "ffffff",
			want:   1,
			wantOK: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ColorDistance(tc.a, tc.b)
			if ok != tc.wantOK {
				t.Fatalf("ColorDistance(%q, %q) ok=%v, want %v", tc.a, tc.b, ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ColorDistance(%q, %q)=%v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestLexicalSimilarity(t *testing.T) {
	cases := []struct {
		name   string
		a, b   string
		want   float64
		wantOK bool
	}{
		{
			name:   "identical",
			a:      "red barn in field",
			b:      "red barn in field",
			want:   1,
			wantOK: true,
		},
		{
			name:   "disjoint",
			a:      "red barn",
			b:      "blue ocean",
			want:   0,
			wantOK: true,
		},
		{
			name:   "half_overlap",
			a:      "red barn",
			b:      "red ocean barn wave",
			want:   0.5,
			wantOK: true,
		},
		{
			name:   "case_insensitive",
			a:      "Red BARN",
			b:      "red barn",
			want:   1,
			wantOK: true,
		},
		{
			name:   "missing_description",
			a:      "",
			b:      "red barn",
			wantOK: false,
		},
		{
			name:   "whitespace_only",
			a:      "   ",
			b:      "red barn",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := LexicalSimilarity(tc.a, tc.b)
			if ok != tc.wantOK {
				t.Fatalf("LexicalSimilarity(%q, %q) ok=%v, want %v", tc.a, tc.b, ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("LexicalSimilarity(%q, %q)=%v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSelectorPolicyAccepts(t *testing.T) {
	policy := DefaultSelectorPolicy()

	cases := []struct {
		name string
		a    types.Picture
		b    types.Picture
		want bool
	}{
		{
			name: "dissimilar_colors_and_words",
			a:    types.Picture{ID: "1", AvgColor: "#000000", Description: "dark forest path"},
			b:    types.Picture{ID: "2", AvgColor: "#ffffff", Description: "bright sandy beach"},
			want: true,
		},
		{
			name: "near_identical_colors",
			a:    types.Picture{ID: "1", AvgColor: "#101010", Description: "dark forest path"},
			b:    types.Picture{ID: "2", AvgColor: "#181818", Description: "bright sandy beach"},
			want: false,
		},
		{
			name: "too_similar_descriptions",
			a:    types.Picture{ID: "1", AvgColor: "#000000", Description: "a red barn in a field"},
			b:    types.Picture{ID: "2", AvgColor: "#ffffff", Description: "a red barn in a meadow"},
			want: false,
		},
		{
			name: "missing_colors_pass_through",
			a:    types.Picture{ID: "1", Description: "dark forest path"},
			b:    types.Picture{ID: "2", Description: "bright sandy beach"},
			want: true,
		},
		{
			name: "missing_descriptions_pass_through",
			a:    types.Picture{ID: "1", AvgColor: "#000000"},
			b:    types.Picture{ID: "2", AvgColor: "#ffffff"},
			want: true,
		},
		{
			name: "no_metadata_at_all_passes",
			a:    types.Picture{ID: "1"},
			b:    types.Picture{ID: "2"},
			want: true,
		},
		{
			name: "similar_color_missing_descriptions_still_rejected",
			a:    types.Picture{ID: "1", AvgColor: "#101010"},
			b:    types.Picture{ID: "2", AvgColor: "#181818"},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Accepts(&tc.a, &tc.b)
			if got != tc.want {
				t.Fatalf("Accepts=%v, want %v", got, tc.want)
			}
		})
	}
}
