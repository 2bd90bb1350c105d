// Package polar loads sailboat performance polars and interpolates boat speed
// from true wind speed and true wind angle.
//
// The CSV layout is the common polar exchange shape: the first row is a label
// cell followed by ascending true wind speeds in knots, and each subsequent
// row is a true wind angle in degrees followed by the boat speed in knots for
// every wind speed column.
package polar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/banshee-data/passage.route/internal/monitoring"
)

// ErrMissingHeader is returned when the CSV has no header row to read the
// wind-speed axis from.
var ErrMissingHeader = errors.New("polar: missing header row")

// Table holds a boat's tabulated performance. All three slices are aligned:
// Speeds[i][j] is the boat speed in knots at TWA[i] degrees and TWS[j] knots.
// A zero-value Table is valid and reports zero speed everywhere.
type Table struct {
	// TWS is the true wind speed axis in knots, ascending.
	TWS []float64
	// TWA is the true wind angle axis in degrees in [0, 180], ascending.
	TWA []float64
	// Speeds is the boat speed grid in knots, indexed [twa][tws].
	Speeds [][]float64
}

// LoadCSV reads a polar table from a CSV file on disk.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("polar: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("polar: loaded %s (%d TWA x %d TWS points)", path, len(t.TWA), len(t.TWS))
	return t, nil
}

// ParseCSV reads a polar table from r. Empty rows are skipped and cells that
// fail to parse as numbers become 0, matching the hygiene of polars found in
// the field. A row whose speed count disagrees with the header is an error.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("polar: read header: %w", err)
	}
	if len(header) < 2 {
		return nil, ErrMissingHeader
	}

	t := &Table{}
	// First cell is a label ("twa/tws" or similar) and is ignored.
	for _, cell := range header[1:] {
		t.TWS = append(t.TWS, parseCell(cell))
	}

	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("polar: read row %d: %w", row, err)
		}
		if isEmptyRow(record) {
			continue
		}
		if len(record)-1 != len(t.TWS) {
			return nil, fmt.Errorf("polar: row %d has %d speeds, header has %d wind speeds",
				row, len(record)-1, len(t.TWS))
		}

		t.TWA = append(t.TWA, parseCell(record[0]))
		speeds := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			speeds = append(speeds, parseCell(cell))
		}
		t.Speeds = append(t.Speeds, speeds)
	}

	return t, nil
}

// GetSpeed returns the interpolated boat speed in knots for the target true
// wind speed (knots) and true wind angle (degrees). Targets outside the table
// clamp to the axis endpoints. An empty table returns 0.
func (t *Table) GetSpeed(targetTWS, targetTWA float64) float64 {
	if len(t.TWS) == 0 || len(t.TWA) == 0 {
		return 0
	}

	tws := clamp(targetTWS, t.TWS[0], t.TWS[len(t.TWS)-1])
	twa := clamp(targetTWA, t.TWA[0], t.TWA[len(t.TWA)-1])

	twsLo, twsHi := bracket(t.TWS, tws)
	twaLo, twaHi := bracket(t.TWA, twa)

	v00 := t.Speeds[twaLo][twsLo]
	v01 := t.Speeds[twaLo][twsHi]
	v10 := t.Speeds[twaHi][twsLo]
	v11 := t.Speeds[twaHi][twsHi]

	if twsLo == twsHi && twaLo == twaHi {
		return v00
	}

	twsFrac := 0.0
	if t.TWS[twsHi] != t.TWS[twsLo] {
		twsFrac = (tws - t.TWS[twsLo]) / (t.TWS[twsHi] - t.TWS[twsLo])
	}
	twaFrac := 0.0
	if t.TWA[twaHi] != t.TWA[twaLo] {
		twaFrac = (twa - t.TWA[twaLo]) / (t.TWA[twaHi] - t.TWA[twaLo])
	}

	lo := v00*(1-twsFrac) + v01*twsFrac
	hi := v10*(1-twsFrac) + v11*twsFrac
	return lo*(1-twaFrac) + hi*twaFrac
}

// MaxSpeed returns the largest boat speed in the table in knots. Used to
// bound how far a single time step can possibly carry the boat.
func (t *Table) MaxSpeed() float64 {
	max := 0.0
	for _, row := range t.Speeds {
		for _, s := range row {
			if s > max {
				max = s
			}
		}
	}
	return max
}

// bracket returns the pair of adjacent indices on a sorted ascending axis
// whose interval contains v. v must already be clamped to the axis range.
func bracket(axis []float64, v float64) (lo, hi int) {
	lo, hi = 0, len(axis)-1
	for i := 0; i < len(axis)-1; i++ {
		if v >= axis[i] && v <= axis[i+1] {
			return i, i + 1
		}
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseCell(cell string) float64 {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}
