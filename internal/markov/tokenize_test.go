package markov

import (
	"os"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "words and terminal dot",
			text: "Кот сидит на окне.",
			want: []string{"кот", "сидит", "на", "окне", "."},
		},
		{
			name: "punctuation as tokens",
			text: "Ну, поехали!",
			want: []string{"ну", ",", "поехали", "!"},
		},
		{
			name: "strips disallowed characters",
			text: "цена — 100 рублей (примерно)",
			want: []string{"цена", "100", "рублей", "примерно"},
		},
		{
			name: "lowercases",
			text: "ПРИВЕТ Мир",
			want: []string{"привет", "мир"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestForbiddenEndings_ContainsIsCaseFolded(t *testing.T) {
	set := DefaultForbiddenEndings()
	if !set.Contains("и") {
		t.Fatal("expected conjunction in default set")
	}
	if !set.Contains("И") {
		t.Fatal("expected case-folded lookup")
	}
	if set.Contains("кот") {
		t.Fatal("did not expect a noun in the default set")
	}
}

func TestLoadForbiddenEndings(t *testing.T) {
	path := t.TempDir() + "/endings.txt"
	if err := os.WriteFile(path, []byte("и или\nно\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadForbiddenEndings(path)
	if err != nil {
		t.Fatalf("LoadForbiddenEndings failed: %v", err)
	}
	for _, w := range []string{"и", "или", "но"} {
		if !set.Contains(w) {
			t.Errorf("expected %q in loaded set", w)
		}
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 words, got %d", len(set))
	}
}

func TestLoadForbiddenEndings_EmptyFile(t *testing.T) {
	path := t.TempDir() + "/endings.txt"
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadForbiddenEndings(path); err == nil {
		t.Fatal("expected error for empty word list")
	}
}
