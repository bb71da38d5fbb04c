package precog

import (
	"bytes"
	"context"
	"errors"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
)

// AppendArrowBatch encodes the given Arrow record batches as delimited rows
// and appends them to the given storage path. The first row carries the
// field names from the schema.
//
// All batches must share one schema.
func (c *Client) AppendArrowBatch(ctx context.Context, path string, batches []arrow.Record, opts *AppendOptions) (*AppendResult, error) {
	content, err := encodeArrowBatches(batches)
	if err != nil {
		return nil, err
	}
	return c.AppendRaw(ctx, path, CSVFormat, content, opts)
}

// encodeArrowBatches encodes the given record batches into delimited rows
// with a header row.
func encodeArrowBatches(batches []arrow.Record) ([]byte, error) {
	if len(batches) == 0 {
		return nil, &ArgumentError{Name: "batches", Reason: "must not be empty"}
	}

	schema := batches[0].Schema()
	for _, batch := range batches {
		if !batch.Schema().Equal(schema) {
			return nil, &ArgumentError{Name: "batches", Reason: "batches have mismatched schemas"}
		}
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf, schema, csv.WithComma(','), csv.WithHeader(true))
	for _, batch := range batches {
		if err := writer.Write(batch); err != nil {
			return nil, errors.Join(err, writer.Flush())
		}
	}
	if err := writer.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
