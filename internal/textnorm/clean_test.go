package textnorm_test

import (
	"strings"
	"testing"

	"github.com/auriga-voice/auriga/internal/textnorm"
)

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "begin marker stripped",
			in:   "[_BEG_]bonjour tout le monde",
			want: "bonjour tout le monde",
		},
		{
			name: "timing markers stripped",
			in:   "bonjour[_TT_150] tout[_TT_9] le monde",
			want: "bonjour tout le monde",
		},
		{
			name: "whitespace collapsed and trimmed",
			in:   "  bonjour \t tout \n le  monde  ",
			want: "bonjour tout le monde",
		},
		{
			name: "markers interleaved with repeated spaces",
			in:   "[_BEG_]  bonjour  [_TT_42]  tout   le[_TT_7]   monde ",
			want: "bonjour tout le monde",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got := textnorm.Clean(c.in)
			if got != c.want {
				t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
			}
			if strings.Contains(got, "[_BEG_]") || strings.Contains(got, "[_TT_") {
				t.Errorf("Clean(%q) left a sentinel marker in %q", c.in, got)
			}
			if strings.Contains(got, "  ") {
				t.Errorf("Clean(%q) left a double space in %q", c.in, got)
			}
		})
	}
}
