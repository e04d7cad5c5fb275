// Package dataset streams listing rows from a JSON export of the listings
// dataset. Both JSON Lines and a single top-level JSON array are accepted,
// optionally gzip-compressed.
package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// RecordError is returned by Next for a row that was read but could not be
// decoded. The stream stays usable; callers may skip the row and continue.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// row mirrors one exported listing. Only the fields the index uses are read.
type row struct {
	ID              json.RawMessage      `json:"_id"`
	Name            string               `json:"name"`
	Space           string               `json:"space"`
	Description     string               `json:"description"`
	Price           listing.RawPrice     `json:"price"`
	Accommodates    json.Number          `json:"accommodates"`
	Amenities       listing.RawAmenities `json:"amenities"`
	TextEmbeddings  []float32            `json:"text_embeddings"`
	ImageEmbeddings []float32            `json:"image_embeddings"`
}

// Reader yields listing records one at a time.
type Reader struct {
	dec    *json.Decoder
	array  bool
	done   bool
	index  int
	closer io.Closer
}

// Open opens a dataset file. Paths ending in .gz are decompressed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	var src io.Reader = f
	closer := io.Closer(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip dataset: %w", err)
		}
		src = gz
		closer = multiCloser{gz, f}
	}

	r, err := NewReader(src)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	r.closer = closer
	return r, nil
}

// NewReader detects the layout from the first non-space byte.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(src, 1<<20)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Reader{done: true}, nil
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	r := &Reader{dec: json.NewDecoder(br)}
	r.dec.UseNumber()
	if first == '[' {
		if _, err := r.dec.Token(); err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		r.array = true
	}
	return r, nil
}

// Next returns the next record, io.EOF after the last one, or a
// *RecordError for a row that could not be decoded.
func (r *Reader) Next() (listing.Record, error) {
	if r.done {
		return listing.Record{}, io.EOF
	}
	if r.array && !r.dec.More() {
		r.done = true
		return listing.Record{}, io.EOF
	}

	var raw row
	err := r.dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		r.done = true
		return listing.Record{}, io.EOF
	}
	index := r.index
	r.index++

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		r.done = true
		return listing.Record{}, fmt.Errorf("read dataset at record %d: %w", index, err)
	}

	id := parseID(raw.ID)
	if err != nil {
		return listing.Record{}, &RecordError{Index: index, ID: id, Err: err}
	}
	if id == "" {
		return listing.Record{}, &RecordError{Index: index, Err: errors.New("missing _id")}
	}

	accommodates, err := parseCount(raw.Accommodates)
	if err != nil {
		return listing.Record{}, &RecordError{Index: index, ID: id, Err: fmt.Errorf("accommodates: %w", err)}
	}

	return listing.Record{
		ID:             id,
		Name:           raw.Name,
		Space:          raw.Space,
		Description:    raw.Description,
		Price:          raw.Price,
		Accommodates:   accommodates,
		Amenities:      raw.Amenities,
		TextEmbedding:  raw.TextEmbeddings,
		ImageEmbedding: raw.ImageEmbeddings,
	}, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// parseID accepts a string, a number, or an extended-JSON {"$oid": "..."}.
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return oid.OID
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func parseCount(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := strconv.Atoi(n.String()); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", n, err)
	}
	return int(f), nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
