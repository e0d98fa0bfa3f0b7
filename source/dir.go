package source

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/transform"

	"github.com/pthm-cable/psiscout/systems"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// DefaultCacheFrames is the largest directory whose decoded frames Dir keeps
// in memory.
const DefaultCacheFrames = 64

// Dir plays the images in a directory in lexical order and loops. Directories
// of at most CacheFrames images are decoded once and cached; larger ones are
// decoded on every Next and only the current frame is held. Images whose size
// differs from the field are an error unless Resize is set, in which case
// they are scaled to fit.
type Dir struct {
	Resize      bool
	CacheFrames int

	size   int
	paths  []string
	frames []*image.RGBA
	next   int
}

// NewDir lists the images in dir. It fails if there are none.
func NewDir(dir string, size int) (*Dir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	sort.Strings(paths)

	slog.Info("frame directory", "dir", dir, "frames", len(paths))
	return &Dir{
		CacheFrames: DefaultCacheFrames,
		size:        size,
		paths:       paths,
		frames:      make([]*image.RGBA, len(paths)),
	}, nil
}

// Len returns the number of frames in one loop.
func (d *Dir) Len() int {
	return len(d.paths)
}

func (d *Dir) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i := d.next
	d.next = (d.next + 1) % len(d.paths)

	if d.frames[i] != nil {
		return d.frames[i], nil
	}
	frame, err := d.load(d.paths[i])
	if err != nil {
		return nil, err
	}
	if len(d.paths) > d.CacheFrames {
		clear(d.frames)
	}
	d.frames[i] = frame
	return frame, nil
}

// cached returns how many decoded frames are held.
func (d *Dir) cached() int {
	n := 0
	for _, f := range d.frames {
		if f != nil {
			n++
		}
	}
	return n
}

func (d *Dir) load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	b := img.Bounds()
	if b.Dx() != d.size || b.Dy() != d.size {
		if d.Resize {
			return transform.Resize(img, d.size, d.size, transform.Linear), nil
		}
		return nil, fmt.Errorf("%s is %dx%d, field is %dx%d: %w",
			filepath.Base(path), b.Dx(), b.Dy(), d.size, d.size, systems.ErrFrameSize)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, d.size, d.size))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

func (d *Dir) Close() error {
	d.frames = nil
	return nil
}
