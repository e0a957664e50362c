package markup

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"empty", "", 0},
		{"plain", "one two three", 3},
		{"markup", "# Title\n\nSome **bold** and *italic* text.\n```\ncode here\n```\n- item `x` one", 8},
		{"links and images", "[a link](http://x) ![pic](p.png)", 3},
		{"rule", "a\n---\nb", 2},
		{"numbered", "1. first\n2. second", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.src); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.src, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))

	st := Analyze("# One\n\nFirst sentence. Second one.\n\n# Two\n\nThird.\n\n```\nignored code.\n```", language.English, log)
	want := Stats{Words: 7, Sentences: 5, Characters: 39, Headings: 2, Chapters: 2}
	if st != want {
		t.Errorf("Analyze() = %+v, want %+v", st, want)
	}

	if empty := Analyze("", language.English, log); empty != (Stats{}) {
		t.Errorf("Analyze(empty) = %+v", empty)
	}

	// without model every block is a single sentence
	ru := Analyze("Раз. Два.\n\nТри.", language.Russian, log)
	if ru.Sentences != 2 || ru.Words != 3 {
		t.Errorf("Analyze(ru) = %+v", ru)
	}
}
