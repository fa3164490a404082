package pagination

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestPaginate - manual markers and section handling
// ---------------------------------------------------------------------------

func TestPaginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		budget int
		want   []string
	}{
		{
			name:   "empty input",
			text:   "",
			budget: 10,
			want:   []string{},
		},
		{
			name:   "only whitespace",
			text:   " \n\n \t ",
			budget: 10,
			want:   []string{},
		},
		{
			name:   "only marker",
			text:   PageBreakMarker,
			budget: 10,
			want:   []string{},
		},
		{
			name:   "marker separates short sections",
			text:   "第一段话。\n\n" + PageBreakMarker + "\n\n第二段话。",
			budget: 1000,
			want:   []string{"第一段话。", "第二段话。"},
		},
		{
			name:   "consecutive markers drop empty section",
			text:   "a" + PageBreakMarker + PageBreakMarker + "b",
			budget: 10,
			want:   []string{"a", "b"},
		},
		{
			name:   "leading and trailing markers",
			text:   PageBreakMarker + " a " + PageBreakMarker,
			budget: 10,
			want:   []string{"a"},
		},
		{
			name:   "crlf normalized",
			text:   "ab\r\ncd",
			budget: 10,
			want:   []string{"ab\n\ncd"},
		},
		{
			name:   "section longer than budget is split",
			text:   "abc" + PageBreakMarker + "defghij",
			budget: 4,
			want:   []string{"abc", "defg", "hij"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Paginate(tt.text, tt.budget)
			if got == nil {
				t.Fatal("Paginate() returned nil slice")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Paginate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPaginate_ManualBreakPrecedence(t *testing.T) {
	t.Parallel()

	a, b := "  短的一段。 ", "\n另一段。\n"
	got := Paginate(a+PageBreakMarker+b, DefaultCharsPerPage)

	want := []string{"短的一段。", "另一段。"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections merged across marker (-want +got):\n%s", diff)
	}
}

func TestPaginate_NonPositiveBudgetUsesDefault(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", DefaultCharsPerPage+500)

	for _, budget := range []int{0, -1} {
		got := Paginate(text, budget)
		if len(got) != 2 {
			t.Fatalf("budget %d: got %d pages, want 2", budget, len(got))
		}
		if n := utf8.RuneCountInString(got[0]); n != DefaultCharsPerPage {
			t.Errorf("budget %d: first page has %d runes, want %d", budget, n, DefaultCharsPerPage)
		}
	}
}

func TestPaginate_EndToEndScenario(t *testing.T) {
	t.Parallel()

	second := "第二段话，" + strings.Repeat("这段话非常长，需要分页。", 100)
	text := "第一段话。\n\n" + PageBreakMarker + "\n\n" + second

	pages := Paginate(text, DefaultCharsPerPage)

	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if pages[0] != "第一段话。" {
		t.Errorf("pages[0] = %q, want %q", pages[0], "第一段话。")
	}
	if !strings.HasSuffix(pages[1], "。") {
		t.Errorf("pages[1] does not end at a sentence boundary: ...%q", lastRunes(pages[1], 5))
	}
	if got := utf8.RuneCountInString(pages[1]); got != 989 {
		t.Errorf("pages[1] has %d runes, want 989", got)
	}
	if got := strings.Join(pages[1:], ""); got != second {
		t.Error("second section not fully covered by pages[1:]")
	}
}

func TestPaginate_Idempotent(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("段落一。段落二！\n", 120) + PageBreakMarker + strings.Repeat("x", 2100)

	first := Paginate(text, DefaultCharsPerPage)
	second := Paginate(text, DefaultCharsPerPage)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated pagination differs (-first +second):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestAutoSplit - paragraph packing and long paragraph cuts
// ---------------------------------------------------------------------------

func TestAutoSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		budget int
		want   []string
	}{
		{
			name:   "paragraphs packed up to budget",
			text:   "aaaa\nbbbb",
			budget: 10,
			want:   []string{"aaaa\n\nbbbb"},
		},
		{
			name:   "paragraph overflowing buffer starts new page",
			text:   "aaaa\nbbbbb",
			budget: 10,
			want:   []string{"aaaa", "bbbbb"},
		},
		{
			name:   "newline runs collapse",
			text:   "a\n\n\n\nb",
			budget: 10,
			want:   []string{"a\n\nb"},
		},
		{
			name:   "leading newline skipped",
			text:   "\nabc",
			budget: 10,
			want:   []string{"abc"},
		},
		{
			name:   "hard cut without punctuation",
			text:   "abcdefghijk",
			budget: 5,
			want:   []string{"abcde", "fghij", "k"},
		},
		{
			name:   "cut after chinese full stop",
			text:   "一二三。四五六七八九十一二",
			budget: 10,
			want:   []string{"一二三。", "四五六七八九十一二"},
		},
		{
			name:   "cut after ascii question mark",
			text:   "ab? cdefghij",
			budget: 8,
			want:   []string{"ab?", " cdefghi", "j"},
		},
		{
			name:   "long paragraph flushes buffer first",
			text:   "xy\nabcdefgh",
			budget: 5,
			want:   []string{"xy", "abcde", "fgh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AutoSplit(tt.text, tt.budget)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AutoSplit() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAutoSplit_SentenceLookback(t *testing.T) {
	t.Parallel()

	t.Run("punctuation inside window", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("a", 150) + "。" + strings.Repeat("b", 400)
		pages := AutoSplit(text, 300)

		if got := utf8.RuneCountInString(pages[0]); got != 151 {
			t.Errorf("first page has %d runes, want 151", got)
		}
	})

	t.Run("punctuation outside window", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("a", 50) + "。" + strings.Repeat("b", 400)
		pages := AutoSplit(text, 300)

		if got := utf8.RuneCountInString(pages[0]); got != 300 {
			t.Errorf("first page has %d runes, want 300", got)
		}
	})
}

func TestAutoSplit_GraphemeSafety(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "skin tone modifier stays with emoji",
			text: "ab\U0001F44D\U0001F3FDcd",
			want: []string{"ab", "\U0001F44D\U0001F3FDc", "d"},
		},
		{
			name: "combining accent stays with base",
			text: "abe\u0301fg",
			want: []string{"ab", "e\u0301f", "g"},
		},
		{
			name: "zwj sequence not split",
			text: "a\U0001F468\u200d\U0001F469xy",
			want: []string{"a", "\U0001F468\u200d\U0001F469", "xy"},
		},
		{
			name: "flag pair kept together",
			text: "ab\U0001F1E8\U0001F1F3cd",
			want: []string{"ab", "\U0001F1E8\U0001F1F3c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AutoSplit(tt.text, 3)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AutoSplit() mismatch (-want +got):\n%s", diff)
			}
			for i, p := range got {
				if !utf8.ValidString(p) {
					t.Errorf("page %d is not valid UTF-8", i)
				}
			}
		})
	}
}

func TestAutoSplit_PagesWithinBudget(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("这是一个句子。还有一个！", 50) + "\n" +
		strings.Repeat("word ", 300) + "\n\n" +
		strings.Repeat("短段。\n", 40)

	for _, budget := range []int{7, 50, 333, 1000} {
		for i, p := range AutoSplit(text, budget) {
			if n := utf8.RuneCountInString(p); n > budget || n == 0 {
				t.Errorf("budget %d: page %d has %d runes", budget, i, n)
			}
		}
	}
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
