package main

import (
	"compress/flate"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amp-at-clover/theanets"
	"github.com/pkg/errors"
)

const seriesExt = ".series"

// loadSeries reads a time series from a CSV file, one
// frame per record, or from a file written by saveSeries.
func loadSeries(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load series")
	}
	defer f.Close()
	if strings.HasSuffix(path, seriesExt) {
		res, err := theanets.ReadSeries(f)
		return res, errors.Wrapf(err, "load series %s", path)
	}
	res, err := readCSV(f)
	return res, errors.Wrapf(err, "load series %s", path)
}

func saveSeries(path string, series [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save series")
	}
	if err := theanets.WriteSeries(f, series, flate.DefaultCompression); err != nil {
		f.Close()
		return errors.Wrap(err, "save series")
	}
	return errors.Wrap(f.Close(), "save series")
}

func readCSV(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var res [][]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		row := make([]float64, len(record))
		for i, field := range record {
			row[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "record %d", len(res)+1)
			}
		}
		res = append(res, row)
	}
	return res, nil
}
