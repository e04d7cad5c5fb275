package listing

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// buildHashFields converts a Listing into the flat map written with HSET.
// The text embedding bytes go into both the FLAT and HNSW fields.
func buildHashFields(l *domlisting.Listing) map[string]string {
	text := string(domain.EncodeVector(l.TextEmbedding()))
	return map[string]string{
		domlisting.FieldName:              l.Name(),
		domlisting.FieldSpace:             l.Space(),
		domlisting.FieldDescription:       l.Description(),
		domlisting.FieldPrice:             strconv.FormatInt(l.Price(), 10),
		domlisting.FieldAccommodates:      strconv.Itoa(l.Accommodates()),
		domlisting.FieldAmenities:         l.Amenities(),
		domlisting.FieldTextEmbedding:     text,
		domlisting.FieldTextEmbeddingHNSW: text,
		domlisting.FieldImageEmbedding:    string(domain.EncodeVector(l.ImageEmbedding())),
	}
}

// parseHashFields converts a stored hash back into a Listing.
func parseHashFields(id string, m map[string]string) (domlisting.Listing, error) {
	price, err := parseInt(m[domlisting.FieldPrice])
	if err != nil {
		return domlisting.Listing{}, fmt.Errorf("field %s: %w", domlisting.FieldPrice, err)
	}
	accommodates, err := parseInt(m[domlisting.FieldAccommodates])
	if err != nil {
		return domlisting.Listing{}, fmt.Errorf("field %s: %w", domlisting.FieldAccommodates, err)
	}
	if m[domlisting.FieldTextEmbedding] != m[domlisting.FieldTextEmbeddingHNSW] {
		return domlisting.Listing{}, fmt.Errorf("listing %s: %w", id, ErrVectorMismatch)
	}
	text, err := domain.DecodeVector([]byte(m[domlisting.FieldTextEmbedding]))
	if err != nil {
		return domlisting.Listing{}, fmt.Errorf("field %s: %w", domlisting.FieldTextEmbedding, err)
	}
	image, err := domain.DecodeVector([]byte(m[domlisting.FieldImageEmbedding]))
	if err != nil {
		return domlisting.Listing{}, fmt.Errorf("field %s: %w", domlisting.FieldImageEmbedding, err)
	}

	return domlisting.Reconstruct(
		id,
		m[domlisting.FieldName],
		m[domlisting.FieldSpace],
		m[domlisting.FieldDescription],
		price, int(accommodates),
		m[domlisting.FieldAmenities],
		text, image,
	), nil
}

// parseInt reads an integer field. Numeric fields written by other tools may
// carry a fractional part, which is truncated.
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return int64(f), nil
}
