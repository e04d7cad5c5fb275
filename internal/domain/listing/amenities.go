package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Wifi is the amenity tag checked by the WiFi filter.
const Wifi = "Wifi"

// ErrInvalidAmenities is returned when a stored amenities value is not a
// serialized list of strings.
var ErrInvalidAmenities = errors.New("invalid amenities")

// RawAmenities is an amenities value as found in the dataset: a list of tags
// or text that is already serialized.
type RawAmenities struct {
	list   []string
	text   string
	isText bool
}

// AmenityList wraps a list of tags.
func AmenityList(tags ...string) RawAmenities { return RawAmenities{list: tags} }

// AmenityText wraps an already serialized value.
func AmenityText(s string) RawAmenities { return RawAmenities{text: s, isText: true} }

// UnmarshalJSON accepts either a JSON array of strings or a JSON string.
func (a *RawAmenities) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = AmenityList(list...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmenities, string(data))
	}
	*a = AmenityText(s)
	return nil
}

// Serialize returns the stored textual form. Text passes through untouched;
// lists are encoded as a JSON array.
func (a RawAmenities) Serialize() (string, error) {
	if a.isText {
		return a.text, nil
	}
	return EncodeAmenities(a.list)
}

// EncodeAmenities serializes tags as a JSON array. A nil list encodes as [].
func EncodeAmenities(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode amenities: %w", err)
	}
	return string(data), nil
}

// ParseAmenities deserializes a stored amenities value.
func ParseAmenities(s string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmenities, err)
	}
	return tags, nil
}

// HasWifi reports whether tags contains the exact Wifi tag.
func HasWifi(tags []string) bool {
	return slices.Contains(tags, Wifi)
}
