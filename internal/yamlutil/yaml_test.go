package yamlutil_test

// Notes:
// - Marshal error branch: yaml.Marshal only fails on channels and funcs,
//   which no caller passes.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-notepages/internal/yamlutil"
)

type testNote struct {
	Title   string   `yaml:"title"`
	Content string   `yaml:"content"`
	Tags    []string `yaml:"tags"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML and JSON notes
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		want    testNote
	}{
		{
			name: "yaml note",
			data: []byte("title: 标题\ncontent: |\n  第一段话。\n  第二段话。\n"),
			dest: &testNote{},
			want: testNote{Title: "标题", Content: "第一段话。\n第二段话。\n"},
		},
		{
			name: "json note",
			data: []byte(`{"title": "t", "content": "a\n\nb", "tags": ["美食", "旅行"]}`),
			dest: &testNote{},
			want: testNote{Title: "t", Content: "a\n\nb", Tags: []string{"美食", "旅行"}},
		},
		{
			name: "unknown fields ignored",
			data: []byte("title: t\nabstract: extra"),
			dest: &testNote{},
			want: testNote{Title: "t"},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testNote{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testNote{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("title: t"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid syntax",
			data:    []byte("title: [unclosed"),
			dest:    &testNote{},
			wantErr: errors.New("yamlutil:"), // partial match
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				assertErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := tt.dest.(*testNote)
			if got.Title != tt.want.Title || got.Content != tt.want.Content || strings.Join(got.Tags, ",") != strings.Join(tt.want.Tags, ",") {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name: "known fields only",
			data: []byte("title: t\ncontent: c"),
		},
		{
			name:    "unknown field",
			data:    []byte("title: t\nbatchsize: 2"),
			wantErr: errors.New("yamlutil:"),
		},
		{
			name:    "empty data",
			data:    []byte{},
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var note testNote
			err := yamlutil.UnmarshalStrict(tt.data, &note)
			if tt.wantErr != nil {
				assertErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMarshal_KeepsUnicode(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(&testNote{Title: "小红书"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "title: 小红书") {
		t.Errorf("output = %q", data)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Note: This test modifies the global MaxInputSize variable, so it cannot
// run in parallel with other tests to avoid data races.

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 100)
		copy(data, []byte("title: x"))
		var note testNote
		if err := yamlutil.Unmarshal(data, &note); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input exceeding limit fails", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 101)
		var note testNote
		err := yamlutil.UnmarshalStrict(data, &note)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "101 bytes") {
			t.Errorf("error should contain actual size, got: %s", err)
		}
	})

	t.Run("ReadLimited at limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 10
		data, err := yamlutil.ReadLimited(strings.NewReader(strings.Repeat("a", 10)))
		if err != nil {
			t.Fatalf("ReadLimited() error = %v", err)
		}
		if len(data) != 10 {
			t.Errorf("read %d bytes, want 10", len(data))
		}
	})

	t.Run("ReadLimited over limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 10
		_, err := yamlutil.ReadLimited(strings.NewReader(strings.Repeat("a", 11)))
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("ReadLimited() error = %v, want ErrInputTooLarge", err)
		}
	})
}

func assertErr(t *testing.T, err, want error) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if errors.Is(err, want) {
		return
	}
	if !strings.Contains(err.Error(), want.Error()) {
		t.Fatalf("error = %q, want containing %q", err, want)
	}
}
