package screenplay

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	src := `# int. kitchen - night

INT. HALLWAY - DAY
Rain hammers the **window**.

JOHN
(quietly)
I *know* what you did.
And I know why.

MARY (V.O.)
Prove it.

CUT TO:
ext. street - continuous
THE END`

	want := []Element{
		{SceneHeading, "INT. KITCHEN - NIGHT"},
		{SceneHeading, "INT. HALLWAY - DAY"},
		{Action, "Rain hammers the window."},
		{Character, "JOHN"},
		{Parenthetical, "(quietly)"},
		{Dialogue, "I know what you did."},
		{Action, "And I know why."},
		{Character, "MARY (V.O.)"},
		{Dialogue, "Prove it."},
		{Transition, "CUT TO:"},
		{SceneHeading, "ext. street - continuous"},
		{Character, "THE END"},
	}

	got := Classify(src)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify() mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name  string
		lines string
		want  []Kind
	}{
		{"transition after action", "He leaves.\nSmash cut to:", []Kind{Action, Transition}},
		{"transition after cue becomes dialogue", "BOB\nfade to:", []Kind{Character, Dialogue}},
		{"lower case paren after action", "Door opens.\n(beat)", []Kind{Action, Parenthetical}},
		{"blank line resets lookback", "BOB\n\nHello there.", []Kind{Character, Action}},
		{"long upper line is not cue", "THIS LINE IS WRITTEN IN CAPITALS AND IS WAY TOO LONG", []Kind{Action}},
		{"digits break cue", "R2D2", []Kind{Action}},
		{"estab shot", "EST. CITY", []Kind{SceneHeading}},
		{"int/ext", "INT/EXT. CAR", []Kind{SceneHeading}},
		{"i/e", "i/e. porch", []Kind{SceneHeading}},
		{"hash beats lookback", "BOB\n# garden", []Kind{Character, SceneHeading}},
		{"dialogue chain stops", "BOB\nLine one.\nLine two.", []Kind{Character, Dialogue, Action}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Kind
			for _, e := range Classify(tt.lines) {
				got = append(got, e.Kind)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_DialogueFollowsCueOrParenthetical(t *testing.T) {
	src := "A\nB\n(c)\nd\ne\nF G\nh\n\ni\nJ\n(k)\n(l)\nm"
	for run := range 3 {
		elements := Classify(src)
		for i, e := range elements {
			if e.Kind != Dialogue {
				continue
			}
			if i == 0 || (elements[i-1].Kind != Character && elements[i-1].Kind != Parenthetical) {
				t.Fatalf("run %d: dialogue at %d follows %v", run, i, elements[i-1].Kind)
			}
		}
		if !reflect.DeepEqual(elements, Classify(src)) {
			t.Fatal("classification is not deterministic")
		}
	}
}

func TestClassify_Empty(t *testing.T) {
	if got := Classify("\n  \n"); len(got) != 0 {
		t.Errorf("Classify(blank) = %v", got)
	}
}

func TestKind_String(t *testing.T) {
	want := map[Kind]string{
		SceneHeading:  "Scene Heading",
		Character:     "Character",
		Parenthetical: "Parenthetical",
		Dialogue:      "Dialogue",
		Transition:    "Transition",
		Action:        "Action",
		None:          "None",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), s)
		}
	}
}

func TestIsUpper(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"JOHN", true},
		{"JOHN (V.O.)", true},
		{"John", false},
		{"123", false},
		{"...", false},
	}
	for _, tt := range tests {
		if got := IsUpper(tt.in); got != tt.want {
			t.Errorf("IsUpper(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
