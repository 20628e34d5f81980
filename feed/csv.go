package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/fvgtrader/market"
)

// CSVFeed replays candles from a CSV file with columns
// time,open,high,low,close,volume. Time is RFC3339 or unix seconds; a
// header row is allowed.
type CSVFeed struct {
	path string
}

func NewCSV(path string) *CSVFeed {
	return &CSVFeed{path: path}
}

// Run streams every row to out in file order, then closes the channel.
func (f *CSVFeed) Run(ctx context.Context, out chan<- market.Candle) error {
	defer close(out)

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 6

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", f.path, err)
		}
		line++

		c, err := parseRow(row)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return fmt.Errorf("%s line %d: %w", f.path, line, err)
		}

		select {
		case out <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseRow(row []string) (market.Candle, error) {
	var c market.Candle

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		secs, serr := strconv.ParseInt(row[0], 10, 64)
		if serr != nil {
			return c, fmt.Errorf("bad time %q", row[0])
		}
		ts = time.Unix(secs, 0)
	}
	c.Time = ts.UTC()

	fields := []struct {
		dst *float64
		src string
	}{
		{&c.Open, row[1]}, {&c.High, row[2]}, {&c.Low, row[3]},
		{&c.Close, row[4]}, {&c.Volume, row[5]},
	}
	for _, fld := range fields {
		if *fld.dst, err = strconv.ParseFloat(fld.src, 64); err != nil {
			return c, fmt.Errorf("bad number %q", fld.src)
		}
	}
	return c, nil
}
