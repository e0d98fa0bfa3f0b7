// Package source produces the RGBA frames that drive the simulation.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/pthm-cable/psiscout/config"
)

// ErrNoFrames is returned when a source has nothing to play.
var ErrNoFrames = errors.New("source has no frames")

// Source yields frames of a fixed size. The returned image is only valid
// until the next call to Next; callers must not modify it.
type Source interface {
	Next(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// New builds the source selected by cfg.Kind for a size x size field.
func New(cfg *config.SourceConfig, size int, seed int64) (Source, error) {
	switch cfg.Kind {
	case "", "synthetic":
		return NewSynthetic(size, seed, SyntheticParams{
			NoiseScale: cfg.NoiseScale,
			TimeScale:  cfg.TimeScale,
			BlobRadius: cfg.BlobRadius,
			BlobSpeed:  cfg.BlobSpeed,
		}), nil
	case "dir":
		d, err := NewDir(cfg.Dir, size)
		if err != nil {
			return nil, err
		}
		d.Resize = cfg.Resize
		return d, nil
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", config.ErrInvalid, cfg.Kind)
	}
}

// Static repeats one frame forever.
type Static struct {
	frame *image.RGBA
}

// NewStatic returns a source that always yields frame.
func NewStatic(frame *image.RGBA) *Static {
	return &Static{frame: frame}
}

func (s *Static) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.frame == nil {
		return nil, ErrNoFrames
	}
	return s.frame, nil
}

func (s *Static) Close() error { return nil }
