package source_test

import (
	"errors"
	"testing"

	"github.com/alekseyp/ytaudio/internal/source"
)

// ---------------------------------------------------------------------------
// SelectStream - ranking policy
// ---------------------------------------------------------------------------

func TestSelectStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		streams []source.Stream
		want    source.Stream
	}{
		{
			name: "preferred container wins over higher bitrate elsewhere",
			streams: []source.Stream{
				{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "a"},
				{AverageBitrate: 160, Container: source.ContainerWebM, Handle: "b"},
				{AverageBitrate: 96, Container: source.ContainerMP4, Handle: "c"},
			},
			want: source.Stream{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "a"},
		},
		{
			name: "highest bitrate within preferred container",
			streams: []source.Stream{
				{AverageBitrate: 96, Container: source.ContainerMP4, Handle: "a"},
				{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "b"},
			},
			want: source.Stream{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "b"},
		},
		{
			name: "fallback to best bitrate when no mp4 present",
			streams: []source.Stream{
				{AverageBitrate: 96, Container: source.ContainerWebM, Handle: "a"},
				{AverageBitrate: 160, Container: source.ContainerWebM, Handle: "b"},
			},
			want: source.Stream{AverageBitrate: 160, Container: source.ContainerWebM, Handle: "b"},
		},
		{
			name: "fallback considers all containers",
			streams: []source.Stream{
				{AverageBitrate: 64, Container: source.ContainerOther, Handle: "a"},
				{AverageBitrate: 48, Container: source.ContainerWebM, Handle: "b"},
			},
			want: source.Stream{AverageBitrate: 64, Container: source.ContainerOther, Handle: "a"},
		},
		{
			name: "tie keeps first-encountered order",
			streams: []source.Stream{
				{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "first"},
				{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "second"},
			},
			want: source.Stream{AverageBitrate: 128, Container: source.ContainerMP4, Handle: "first"},
		},
		{
			name: "single stream",
			streams: []source.Stream{
				{AverageBitrate: 50, Container: source.ContainerOther, Handle: "only"},
			},
			want: source.Stream{AverageBitrate: 50, Container: source.ContainerOther, Handle: "only"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := source.SelectStream(tt.streams)
			if err != nil {
				t.Fatalf("SelectStream() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("SelectStream() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectStream_Empty(t *testing.T) {
	t.Parallel()

	_, err := source.SelectStream(nil)
	if !errors.Is(err, source.ErrNoAudio) {
		t.Errorf("SelectStream(nil) error = %v, want ErrNoAudio", err)
	}
}
