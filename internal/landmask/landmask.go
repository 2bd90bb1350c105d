// Package landmask answers land/sea membership for any coordinate on a fixed
// global raster: 86400 x 43200 pixels, one pixel per 15 arc-seconds, derived
// from the GSHHG shoreline product. The set of land pixels is held in a
// 64-bit roaring bitmap so the whole planet stays memory-resident.
package landmask

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/ulikunitz/xz"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/monitoring"
)

// Grid dimensions: 240 pixels per degree.
const (
	NX = 86400
	NY = 43200
)

// ErrArtifact is wrapped by all artifact load failures so callers can treat
// missing and corrupt masks the same way.
var ErrArtifact = errors.New("landmask: unreadable artifact")

// xzMagic is the 6-byte stream header of an xz container.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Mask is the global land bitmap. Build or load once, then share; IsLand is
// safe for concurrent readers as long as nobody mutates.
type Mask struct {
	bits *roaring64.Bitmap
}

// New returns an empty (all-sea) mask.
func New() *Mask {
	return &Mask{bits: roaring64.New()}
}

// Load reads a serialized mask from path. The artifact may be raw roaring64
// bytes or an xz-compressed stream; compression is sniffed from the magic
// bytes, so both "gshhg_mask.tbmap" and "gshhg_mask.tbmap.xz" work.
func Load(path string) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArtifact, path, err)
	}
	defer f.Close()

	m, err := LoadReader(f)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("landmask: loaded %s (%d land pixels)", path, m.bits.GetCardinality())
	return m, nil
}

// LoadReader reads a serialized mask from r, decompressing if the stream is
// xz-wrapped.
func LoadReader(r io.Reader) (*Mask, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrArtifact, err)
	}

	var stream io.Reader = br
	if bytes.Equal(head, xzMagic) {
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: xz header: %v", ErrArtifact, err)
		}
		stream = xr
	}

	bits := roaring64.New()
	// The roaring decoder can panic on malformed input (e.g. a bogus length
	// header); turn that into an ordinary load error.
	err = func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("corrupt bitmap: %v", p)
			}
		}()
		_, err = bits.ReadFrom(stream)
		return err
	}()
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize bitmap: %v", ErrArtifact, err)
	}
	return &Mask{bits: bits}, nil
}

// WriteTo serializes the mask (uncompressed) so tests and tooling can round
// trip small masks.
func (m *Mask) WriteTo(w io.Writer) (int64, error) {
	return m.bits.WriteTo(w)
}

// pixel maps a geographic coordinate onto the raster, clamped to the grid.
func pixel(lon, lat float64) (x, y uint64) {
	xi := int64(math.Floor(lon*240 + 43200))
	yi := int64(math.Floor(lat*240 + 21600))
	if xi < 0 {
		xi = 0
	}
	if xi >= NX {
		xi = NX - 1
	}
	if yi < 0 {
		yi = 0
	}
	if yi >= NY {
		yi = NY - 1
	}
	return uint64(xi), uint64(yi)
}

// IsLand reports whether the coordinate falls on a land pixel. It never
// fails; out-of-range coordinates clamp to the nearest edge pixel.
func (m *Mask) IsLand(c geo.Coordinate) bool {
	x, y := pixel(c.Lon, c.Lat)
	return m.bits.Contains(y*NX + x)
}

// AddBox marks every pixel fully or partially inside the rectangle as land.
// Intended for tests and synthetic scenarios.
func (m *Mask) AddBox(minLon, maxLon, minLat, maxLat float64) {
	minX, minY := pixel(minLon, minLat)
	maxX, maxY := pixel(maxLon, maxLat)

	for y := minY; y <= maxY; y++ {
		base := y * NX
		m.bits.AddRange(base+minX, base+maxX+1)
	}
}

// Cardinality returns the number of land pixels in the mask.
func (m *Mask) Cardinality() uint64 {
	return m.bits.GetCardinality()
}
