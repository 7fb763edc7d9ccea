package excerpt

import (
	"strings"
	"testing"
)

func TestBuildDeduplicatesAndSkipsFurniture(t *testing.T) {
	content := strings.Join([]string{
		"Quarterly Report",
		"Revenue grew in every region.",
		"Page 1 of 3",
		"-----",
		"Quarterly   report",
		"Revenue grew in every region.",
		"Costs were flat.",
		"2",
	}, "\n\n")

	got := NewBuilder(0).Build(content)
	if len(got.Chunks) != 3 {
		t.Fatalf("expected 3 unique chunks, got %d: %+v", len(got.Chunks), got.Chunks)
	}
	if got.Dropped != 5 {
		t.Fatalf("expected 5 dropped paragraphs, got %d", got.Dropped)
	}
	if strings.Contains(got.Text, "Page 1") || strings.Contains(got.Text, "---") {
		t.Fatalf("furniture leaked into excerpt: %q", got.Text)
	}
	if got.Clipped {
		t.Fatalf("unbounded build should not clip")
	}
	if got.Chunks[1].Start != got.Chunks[0].End {
		t.Fatalf("chunk offsets should be contiguous, got %+v", got.Chunks)
	}
}

func TestBuildRespectsBudget(t *testing.T) {
	content := strings.Repeat("This paragraph is somewhat long and detailed number x.\n\n", 1)
	for i := 0; i < 5; i++ {
		content += "Paragraph " + string(rune('A'+i)) + " carries distinct text.\n\n"
	}
	for _, budget := range []int{10, 30, 60} {
		got := NewBuilder(budget).Build(content)
		if n := len([]rune(got.Text)); n > budget {
			t.Fatalf("budget %d exceeded: got %d", budget, n)
		}
		if !got.Clipped {
			t.Fatalf("budget %d should report clipping", budget)
		}
	}
}

func TestBuildHandlesCarriageReturns(t *testing.T) {
	got := NewBuilder(0).Build("first\r\n\r\nsecond\r\rthird")
	if len(got.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got.Chunks))
	}
}
