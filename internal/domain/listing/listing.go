// Package listing holds the rental listing aggregate and the normalization
// rules applied when source rows are loaded into the store.
package listing

import (
	"fmt"

	"github.com/kailas-cloud/staysearch/internal/domain"
)

// Embedding dimensions of the dataset.
const (
	TextEmbeddingDim  = 1536
	ImageEmbeddingDim = 512
)

// Stored hash field names.
const (
	FieldName              = "name"
	FieldSpace             = "space"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldAccommodates      = "accommodates"
	FieldAmenities         = "amenities"
	FieldTextEmbedding     = "text_embedding"
	FieldTextEmbeddingHNSW = "text_embedding_hnsw"
	FieldImageEmbedding    = "image_embedding"
)

// Record is one source row before normalization.
type Record struct {
	ID             string
	Name           string
	Space          string
	Description    string
	Price          RawPrice
	Accommodates   int
	Amenities      RawAmenities
	TextEmbedding  []float32
	ImageEmbedding []float32
}

// Listing is the normalized listing aggregate (immutable value object).
type Listing struct {
	id             string
	name           string
	space          string
	description    string
	price          int64
	accommodates   int
	amenities      string
	textEmbedding  []float32
	imageEmbedding []float32
}

// FromRecord normalizes a source row: price to whole units, amenities to their
// serialized list form, embedding dimensions checked.
func FromRecord(r *Record) (Listing, error) {
	if r.ID == "" {
		return Listing{}, fmt.Errorf("listing ID is required")
	}

	price, err := r.Price.Normalize()
	if err != nil {
		return Listing{}, err
	}

	amenities, err := r.Amenities.Serialize()
	if err != nil {
		return Listing{}, err
	}

	if len(r.TextEmbedding) != TextEmbeddingDim {
		return Listing{}, fmt.Errorf("text embedding has %d dimensions, want %d: %w",
			len(r.TextEmbedding), TextEmbeddingDim, domain.ErrVectorDimMismatch)
	}
	if len(r.ImageEmbedding) != ImageEmbeddingDim {
		return Listing{}, fmt.Errorf("image embedding has %d dimensions, want %d: %w",
			len(r.ImageEmbedding), ImageEmbeddingDim, domain.ErrVectorDimMismatch)
	}

	return Listing{
		id:             r.ID,
		name:           r.Name,
		space:          r.Space,
		description:    r.Description,
		price:          price,
		accommodates:   r.Accommodates,
		amenities:      amenities,
		textEmbedding:  r.TextEmbedding,
		imageEmbedding: r.ImageEmbedding,
	}, nil
}

// ID returns the listing identifier.
func (l *Listing) ID() string { return l.id }

// Name returns the listing title.
func (l *Listing) Name() string { return l.name }

// Space returns the space description.
func (l *Listing) Space() string { return l.space }

// Description returns the long description.
func (l *Listing) Description() string { return l.description }

// Price returns the nightly price in whole currency units.
func (l *Listing) Price() int64 { return l.price }

// Accommodates returns the guest capacity.
func (l *Listing) Accommodates() int { return l.accommodates }

// Amenities returns the serialized amenities list.
func (l *Listing) Amenities() string { return l.amenities }

// TextEmbedding returns the text embedding.
func (l *Listing) TextEmbedding() []float32 { return l.textEmbedding }

// ImageEmbedding returns the image embedding.
func (l *Listing) ImageEmbedding() []float32 { return l.imageEmbedding }

// Reconstruct hydrates a Listing from storage without re-normalizing it.
func Reconstruct(
	id, name, space, description string,
	price int64, accommodates int, amenities string,
	textEmbedding, imageEmbedding []float32,
) Listing {
	return Listing{
		id:             id,
		name:           name,
		space:          space,
		description:    description,
		price:          price,
		accommodates:   accommodates,
		amenities:      amenities,
		textEmbedding:  textEmbedding,
		imageEmbedding: imageEmbedding,
	}
}
