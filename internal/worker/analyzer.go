package worker

import (
	"context"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// analyzeDuration decodes a stored mp3 and derives its play time from the
// decoded PCM length: 16-bit stereo, so 4 bytes per sample frame.
func analyzeDuration(ctx context.Context, blobs ports.BlobStore, key string) (float64, error) {
	rc, err := blobs.Open(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("open stored audio: %w", err)
	}
	defer rc.Close()

	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return 0, fmt.Errorf("decode audio: %w", err)
	}

	buf := make([]byte, 8192)
	var pcmBytes int64
	for {
		n, err := decoder.Read(buf)
		pcmBytes += int64(n)
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("read audio: %w", err)
		}
	}

	rate := decoder.SampleRate()
	if rate <= 0 || pcmBytes == 0 {
		return 0, fmt.Errorf("audio contains no samples")
	}
	return float64(pcmBytes) / float64(4*rate), nil
}

// AnalyzeDurationFunc allows tests to override the analyzer implementation.
var AnalyzeDurationFunc = analyzeDuration
