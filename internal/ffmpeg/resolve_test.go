package ffmpeg_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/alekseyp/ytaudio/internal/ffmpeg"
)

// fake lookup helpers for resolver precedence tests.

func statFound(string) (os.FileInfo, error)   { return nil, nil }
func statMissing(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

func lookPathHit(string) (string, error)  { return "/usr/bin/ffmpeg", nil }
func lookPathMiss(string) (string, error) { return "", errors.New("not found") }

func env(vals map[string]string) func(string) string {
	return func(key string) string { return vals[key] }
}

// ---------------------------------------------------------------------------
// Resolver.Resolve - precedence
// ---------------------------------------------------------------------------

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configured string
		opts       []ffmpeg.ResolverOption
		want       string
		wantErr    error
	}{
		{
			name:       "configured path wins",
			configured: "/opt/ffmpeg/bin/ffmpeg",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statFound),
				ffmpeg.WithGetenv(env(map[string]string{"FFMPEG_PATH": "/elsewhere"})),
				ffmpeg.WithLookPath(lookPathHit),
			},
			want: "/opt/ffmpeg/bin/ffmpeg",
		},
		{
			name:       "configured but missing is an error, not a fallthrough",
			configured: "/opt/ffmpeg/bin/ffmpeg",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statMissing),
				ffmpeg.WithLookPath(lookPathHit),
			},
			wantErr: ffmpeg.ErrConverterMissing,
		},
		{
			name: "environment variable second",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statFound),
				ffmpeg.WithGetenv(env(map[string]string{"FFMPEG_PATH": "/env/ffmpeg"})),
				ffmpeg.WithLookPath(lookPathHit),
			},
			want: "/env/ffmpeg",
		},
		{
			name: "environment variable set but missing is an error",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statMissing),
				ffmpeg.WithGetenv(env(map[string]string{"FFMPEG_PATH": "/env/ffmpeg"})),
				ffmpeg.WithLookPath(lookPathHit),
			},
			wantErr: ffmpeg.ErrConverterMissing,
		},
		{
			name: "system PATH last",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statMissing),
				ffmpeg.WithGetenv(env(nil)),
				ffmpeg.WithLookPath(lookPathHit),
			},
			want: "/usr/bin/ffmpeg",
		},
		{
			name: "nothing found",
			opts: []ffmpeg.ResolverOption{
				ffmpeg.WithStat(statMissing),
				ffmpeg.WithGetenv(env(nil)),
				ffmpeg.WithLookPath(lookPathMiss),
			},
			wantErr: ffmpeg.ErrConverterMissing,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := ffmpeg.NewResolver(tt.opts...)
			got, err := r.Resolve(tt.configured)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Verify - startup converter check
// ---------------------------------------------------------------------------

type fakeRunner struct {
	out string
	err error
}

func (f fakeRunner) Run(_ context.Context, _ string, _ []string) (string, error) {
	return f.out, f.err
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("returns first output line", func(t *testing.T) {
		t.Parallel()
		runner := fakeRunner{out: "ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc\n"}
		got, err := ffmpeg.Verify(context.Background(), runner, "/usr/bin/ffmpeg")
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if want := "ffmpeg version 6.1.1 Copyright (c) 2000-2023"; got != want {
			t.Errorf("Verify() = %q, want %q", got, want)
		}
	})

	t.Run("wraps run failure as converter missing", func(t *testing.T) {
		t.Parallel()
		runner := fakeRunner{err: errors.New("exec format error")}
		_, err := ffmpeg.Verify(context.Background(), runner, "/usr/bin/ffmpeg")
		if !errors.Is(err, ffmpeg.ErrConverterMissing) {
			t.Errorf("Verify() error = %v, want ErrConverterMissing", err)
		}
	})
}
