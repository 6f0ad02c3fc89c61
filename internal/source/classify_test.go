package source_test

import (
	"errors"
	"testing"

	"github.com/alekseyp/ytaudio/internal/source"
)

// ---------------------------------------------------------------------------
// Classify - accepted link shapes
// ---------------------------------------------------------------------------

func TestClassify_AcceptedShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "canonical watch link",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch link without www",
			input: "https://youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch link without scheme",
			input: "youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch link with extra query params",
			input: "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "mobile watch link",
			input: "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short link",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short link without scheme",
			input: "youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "shorts link",
			input: "https://www.youtube.com/shorts/kJQP7kiw5Fk",
			want:  "kJQP7kiw5Fk",
		},
		{
			name:  "shorts link without scheme or www",
			input: "youtube.com/shorts/kJQP7kiw5Fk",
			want:  "kJQP7kiw5Fk",
		},
		{
			name:  "uppercase host",
			input: "HTTPS://WWW.YOUTUBE.COM/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "surrounding whitespace",
			input: "  https://youtu.be/dQw4w9WgXcQ  ",
			want:  "dQw4w9WgXcQ",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref, err := source.Classify(tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error = %v, want nil", tt.input, err)
			}
			if ref.ID() != tt.want {
				t.Errorf("Classify(%q).ID() = %q, want %q", tt.input, ref.ID(), tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Classify - rejected input
// ---------------------------------------------------------------------------

func TestClassify_NotAReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "plain text", input: "hello there"},
		{name: "other site", input: "https://vimeo.com/123456789"},
		{name: "channel link", input: "https://www.youtube.com/@somechannel"},
		{name: "watch link without id", input: "https://www.youtube.com/watch?v="},
		{name: "short id too short", input: "https://youtu.be/abc"},
		{name: "bare domain", input: "youtube.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := source.Classify(tt.input)
			if !errors.Is(err, source.ErrNotAReference) {
				t.Errorf("Classify(%q) error = %v, want ErrNotAReference", tt.input, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Reference.URL - canonical form
// ---------------------------------------------------------------------------

func TestReference_URL(t *testing.T) {
	t.Parallel()

	ref, err := source.Classify("youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Classify error = %v", err)
	}

	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got := ref.URL(); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
