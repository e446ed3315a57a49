package theanets

import (
	"bytes"
	"compress/flate"
	"io"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrCorruptSeries indicates a series file which could
// not be decoded.
var ErrCorruptSeries = errors.New("corrupt series")

const (
	seriesRowsField protowire.Number = 1
	seriesColsField protowire.Number = 2
	seriesRowField  protowire.Number = 3
)

// WriteSeries encodes a time series and writes it to w.
//
// Components are stored as float32 and the encoded record
// is compressed with the given flate level.
// Typically, flate.DefaultCompression should be fine.
func WriteSeries(w io.Writer, series [][]float64, level int) error {
	var cols int
	if len(series) > 0 {
		cols = len(series[0])
	}

	var record []byte
	record = protowire.AppendTag(record, seriesRowsField, protowire.VarintType)
	record = protowire.AppendVarint(record, uint64(len(series)))
	record = protowire.AppendTag(record, seriesColsField, protowire.VarintType)
	record = protowire.AppendVarint(record, uint64(cols))

	row := make([]byte, cols*4)
	for i, frame := range series {
		if len(frame) != cols {
			return errors.Wrapf(ErrShapeMismatch, "write series: row %d has %d components (expected %d)",
				i, len(frame), cols)
		}
		for j, x := range frame {
			bits := math.Float32bits(float32(x))
			idx := j << 2
			row[idx] = byte(bits)
			row[idx+1] = byte(bits >> 8)
			row[idx+2] = byte(bits >> 16)
			row[idx+3] = byte(bits >> 24)
		}
		record = protowire.AppendTag(record, seriesRowField, protowire.BytesType)
		record = protowire.AppendBytes(record, row)
	}

	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return errors.Wrap(err, "write series")
	}
	if _, err := fw.Write(record); err != nil {
		return errors.Wrap(err, "write series")
	}
	return errors.Wrap(fw.Close(), "write series")
}

// ReadSeries decodes a time series written by
// WriteSeries.
func ReadSeries(r io.Reader) ([][]float64, error) {
	var record bytes.Buffer
	if _, err := io.Copy(&record, flate.NewReader(r)); err != nil {
		return nil, errors.Wrap(ErrCorruptSeries, err.Error())
	}
	data := record.Bytes()

	var rows, cols uint64
	var haveRows, haveCols bool
	var res [][]float64
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.Wrap(ErrCorruptSeries, protowire.ParseError(n).Error())
		}
		data = data[n:]
		switch {
		case num == seriesRowsField && typ == protowire.VarintType:
			rows, n = protowire.ConsumeVarint(data)
			haveRows = true
		case num == seriesColsField && typ == protowire.VarintType:
			cols, n = protowire.ConsumeVarint(data)
			haveCols = true
		case num == seriesRowField && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(data)
			if n >= 0 {
				if !haveCols || uint64(len(raw)) != cols*4 {
					return nil, errors.Wrapf(ErrCorruptSeries, "row %d has %d bytes",
						len(res), len(raw))
				}
				res = append(res, decodeRow(raw))
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, errors.Wrap(ErrCorruptSeries, protowire.ParseError(n).Error())
		}
		data = data[n:]
	}

	if !haveRows || !haveCols {
		return nil, errors.Wrap(ErrCorruptSeries, "missing header")
	}
	if uint64(len(res)) != rows {
		return nil, errors.Wrapf(ErrCorruptSeries, "expected %d rows but got %d", rows, len(res))
	}
	return res, nil
}

func decodeRow(raw []byte) []float64 {
	res := make([]float64, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		res[i>>2] = float64(math.Float32frombits(uint32(raw[i]) |
			(uint32(raw[i+1]) << 8) |
			(uint32(raw[i+2]) << 16) |
			(uint32(raw[i+3]) << 24)))
	}
	return res
}
