package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Space":               "space",
		"What's Up":           "what-s-up",
		"  Hello,   World!  ": "hello-world",
		"C++ In Depth":        "c-in-depth",
		"2001: A Space Odyssey": "2001-a-space-odyssey",
		"---":                 "",
		"":                    "",
	}
	for name, want := range cases {
		if got := Make(name); got != want {
			t.Errorf("Make(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestMakeAlphabet(t *testing.T) {
	names := []string{
		"Space", "über cool", "foo_bar_baz", "…", "a  b\tc",
		"The Quick Brown Fox!!", "русский текст", "42",
	}
	for _, name := range names {
		got := Make(name)
		if strings.Trim(got, "abcdefghijklmnopqrstuvwxyz0123456789-") != "" {
			t.Errorf("Make(%q) = %q contains characters outside [a-z0-9-]", name, got)
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") || strings.Contains(got, "--") {
			t.Errorf("Make(%q) = %q has stray dashes", name, got)
		}
	}
}

// fakeChecker simulates the persistence layer: a set of taken slugs
// where each record remembers its id.
type fakeChecker map[string]int64

func (f fakeChecker) check(s string) (int64, bool, error) {
	id, ok := f[s]
	return id, ok, nil
}

func TestGenerateNoConflict(t *testing.T) {
	got, err := Generate("Space", fakeChecker{}.check)
	if err != nil {
		t.Fatal(err)
	}
	if got != "space" {
		t.Errorf("got %q, want %q", got, "space")
	}
}

func TestGenerateSuffixesConflicts(t *testing.T) {
	taken := fakeChecker{"space": 7}
	got, err := Generate("Space", taken.check)
	if err != nil {
		t.Fatal(err)
	}
	if got != "space-7" {
		t.Errorf("got %q, want %q", got, "space-7")
	}

	// A second level of conflict keeps appending.
	taken["space-7"] = 12
	got, err = Generate("Space", taken.check)
	if err != nil {
		t.Fatal(err)
	}
	if got != "space-7-12" {
		t.Errorf("got %q, want %q", got, "space-7-12")
	}
}

func TestGenerateSameNameDiffers(t *testing.T) {
	taken := fakeChecker{}
	var next int64
	first, err := Generate("Same Name", taken.check)
	if err != nil {
		t.Fatal(err)
	}
	next++
	taken[first] = next

	second, err := Generate("Same Name", taken.check)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("two entities with the same name got the same slug %q", first)
	}
}
