// Package snapshot writes a report table to a timestamped CSV file.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/view-ratio/report"
)

const fileNameLayout = "20060102_150405"

// Header is the first CSV record.
var Header = []string{"Game", "Viewers", "Channels", "Ratio", "Timestamp"}

// FileName returns real_time_game_stats_<YYYYMMDD_HHMMSS>.csv for now.
func FileName(now time.Time) string {
	return "real_time_game_stats_" + now.Format(fileNameLayout) + ".csv"
}

// Write creates FileName(now) in dir and returns its path. Two writes in the same
// second overwrite each other. A failed write can leave a partial file behind.
func Write(dir string, table report.Table, now time.Time) (path string, err error) {
	path = filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close snapshot: %w", cerr))
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("write snapshot header: %w", err)
	}
	for _, row := range table {
		if err := w.Write(Record(row)); err != nil {
			return "", fmt.Errorf("write snapshot row %q: %w", row.Game, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	return path, nil
}

// Record renders one row in Header order.
func Record(row report.Row) []string {
	return []string{
		row.Game,
		strconv.Itoa(row.Viewers),
		strconv.Itoa(row.Channels),
		FormatRatio(row.Ratio, row.Channels),
		row.Timestamp.Format(report.TimestampLayout),
	}
}

// FormatRatio writes "0" for rows without channels and otherwise the shortest
// decimal form, keeping a ".0" on whole numbers (30 -> "30.0").
func FormatRatio(ratio float64, channels int) string {
	if channels <= 0 {
		return "0"
	}
	s := strconv.FormatFloat(ratio, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
