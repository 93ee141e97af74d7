package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/snezhkin/govorun/internal/store"
)

type memAppender struct {
	lines   []string
	origins []store.Origin
}

func (m *memAppender) AppendMessage(ctx context.Context, text string, origin store.Origin) error {
	m.lines = append(m.lines, text)
	m.origins = append(m.origins, origin)
	return nil
}

func TestProcessLines_FiltersAndCounts(t *testing.T) {
	input := strings.Join([]string{
		"нормальная строка текста",
		"",
		"   ",
		"смотри http://example.com тут",
		"ок", // too short
		"  строка с пробелами вокруг  ",
		"/start",
	}, "\n")

	dst := &memAppender{}
	origin := NewOrigin()
	res, err := ProcessLines(context.Background(), strings.NewReader(input), dst, origin)
	if err != nil {
		t.Fatalf("ProcessLines: %v", err)
	}

	// Blank lines are not counted at all; of the five non-empty ones the
	// URL, the two-rune word and the command are skipped.
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
	if res.Added != 2 {
		t.Errorf("Added = %d, want 2", res.Added)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", res.Skipped)
	}
	if len(dst.lines) != 2 {
		t.Fatalf("stored %d lines, want 2", len(dst.lines))
	}
	if dst.lines[0] != "нормальная строка текста" {
		t.Errorf("first stored line = %q", dst.lines[0])
	}
	if dst.lines[1] != "строка с пробелами вокруг" {
		t.Errorf("trimming failed: %q", dst.lines[1])
	}
	for _, o := range dst.origins {
		if o.ImportID != origin.ImportID {
			t.Errorf("line stored under batch %q, want %q", o.ImportID, origin.ImportID)
		}
	}
}

func TestProcessLines_EmptyInput(t *testing.T) {
	dst := &memAppender{}
	res, err := ProcessLines(context.Background(), strings.NewReader(""), dst, NewOrigin())
	if err != nil {
		t.Fatalf("ProcessLines: %v", err)
	}
	if res.Total != 0 || res.Added != 0 || res.Skipped != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNewOrigin_SyntheticIdentity(t *testing.T) {
	a, b := NewOrigin(), NewOrigin()
	if a.UserID != VirtualUserID || a.Username != VirtualUsername {
		t.Fatalf("unexpected identity %+v", a)
	}
	if a.ImportID == "" || a.ImportID == b.ImportID {
		t.Fatalf("each batch needs its own import id: %q vs %q", a.ImportID, b.ImportID)
	}
}
