package models

import (
	"bytes"
	"encoding/json"
)

// Field is one key of the enhanced-field vocabulary.
// Persisted meta keys are the field name prefixed with "_".
type Field string

const (
	FieldPoster916           Field = "enhanced_poster_9_16"
	FieldTitleImage169       Field = "enhanced_poster_title_image_16_9"
	FieldStillsGallery       Field = "enhanced_stills_gallery"
	FieldDirectors           Field = "enhanced_directors"
	FieldSynopsis            Field = "enhanced_synopsis"
	FieldWriters             Field = "enhanced_writers"
	FieldProducers           Field = "enhanced_producers"
	FieldComposers           Field = "enhanced_composers"
	FieldDuration            Field = "enhanced_duration"
	FieldGenres              Field = "enhanced_genres"
	FieldCountry             Field = "enhanced_country"
	FieldCountriesProduction Field = "enhanced_countries_of_production"
	FieldLanguage            Field = "enhanced_language"
	FieldAspectRatio         Field = "enhanced_aspect_ratio"
	FieldDirectorBio         Field = "enhanced_director_bio"
	FieldDirectorPhoto       Field = "enhanced_director_photo"
	FieldFilmTitle           Field = "enhanced_film_title"
	FieldReleaseDate         Field = "enhanced_original_release_date"

	// preview only
	FieldPosterNewFilename     Field = "enhanced_poster_9_16_new_filename"
	FieldTitleImageNewFilename Field = "enhanced_poster_title_image_16_9_new_filename"
	FieldStillsNewFilenames    Field = "enhanced_stills_gallery_new_filenames"

	// saved-field views
	FieldPosterFilename     Field = "enhanced_poster_9_16_filename"
	FieldTitleImageFilename Field = "enhanced_poster_title_image_16_9_filename"
	FieldStillsFilenames    Field = "enhanced_stills_gallery_filenames"
)

// MetaKey returns the storage key for the field.
func (f Field) MetaKey() string { return "_" + string(f) }

// ImageFields are written through the asset relocation service rather than directly.
var ImageFields = []Field{FieldPoster916, FieldTitleImage169, FieldStillsGallery}

// IsImage reports whether the field holds image references.
func (f Field) IsImage() bool {
	for _, img := range ImageFields {
		if f == img {
			return true
		}
	}
	return false
}

// EnhancedMarkerFields are every field a migration can persist. A value in
// any of them marks the record as already migrated.
var EnhancedMarkerFields = []Field{
	FieldPoster916,
	FieldTitleImage169,
	FieldStillsGallery,
	FieldDirectors,
	FieldSynopsis,
	FieldWriters,
	FieldProducers,
	FieldComposers,
	FieldDuration,
	FieldGenres,
	FieldCountry,
	FieldCountriesProduction,
	FieldLanguage,
	FieldAspectRatio,
	FieldDirectorBio,
	FieldDirectorPhoto,
	FieldFilmTitle,
	FieldReleaseDate,
}

// SavedFields is the set returned by the migrated-fields view, in display order.
var SavedFields = []Field{
	FieldDirectors,
	FieldSynopsis,
	FieldWriters,
	FieldProducers,
	FieldComposers,
	FieldDuration,
	FieldGenres,
	FieldCountry,
	FieldCountriesProduction,
	FieldLanguage,
	FieldAspectRatio,
	FieldPoster916,
	FieldTitleImage169,
	FieldStillsGallery,
}

// Value is either a single string or an ordered list of strings.
type Value struct {
	scalar string
	list   []string
	isList bool
}

func Scalar(s string) Value { return Value{scalar: s} }

func List(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{list: out, isList: true}
}

func (v Value) IsList() bool { return v.isList }

// String returns the scalar value, or "" for lists.
func (v Value) String() string { return v.scalar }

// Items returns the list value, or nil for scalars.
func (v Value) Items() []string { return v.list }

// IsEmpty reports "" scalars and lists without a non-empty item.
func (v Value) IsEmpty() bool {
	if !v.isList {
		return v.scalar == ""
	}
	for _, item := range v.list {
		if item != "" {
			return false
		}
	}
	return true
}

// Compact drops empty list items; scalars are returned as is.
func (v Value) Compact() Value {
	if !v.isList {
		return v
	}
	out := make([]string, 0, len(v.list))
	for _, item := range v.list {
		if item != "" {
			out = append(out, item)
		}
	}
	return Value{list: out, isList: true}
}

// Interface returns string or []string, the shape stored in documents.
func (v Value) Interface() any {
	if v.isList {
		if v.list == nil {
			return []string{}
		}
		return v.list
	}
	return v.scalar
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = List(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*v = Scalar(s)
	return nil
}

// FieldMapping keeps fields in insertion order.
type FieldMapping struct {
	keys   []Field
	values map[Field]Value
}

func NewFieldMapping() *FieldMapping {
	return &FieldMapping{values: map[Field]Value{}}
}

// Set adds or replaces a field; a replaced field keeps its original position.
func (m *FieldMapping) Set(f Field, v Value) {
	if m.values == nil {
		m.values = map[Field]Value{}
	}
	if _, ok := m.values[f]; !ok {
		m.keys = append(m.keys, f)
	}
	m.values[f] = v
}

func (m *FieldMapping) Get(f Field) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[f]
	return v, ok
}

// Has reports a present and non-empty field.
func (m *FieldMapping) Has(f Field) bool {
	v, ok := m.Get(f)
	return ok && !v.IsEmpty()
}

// Str returns the scalar value of f or "".
func (m *FieldMapping) Str(f Field) string {
	v, _ := m.Get(f)
	return v.String()
}

func (m *FieldMapping) Keys() []Field {
	if m == nil {
		return nil
	}
	out := make([]Field, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *FieldMapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Merge copies every field of other into m, later values winning.
func (m *FieldMapping) Merge(other *FieldMapping) {
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		m.Set(k, v)
	}
}

// Clone returns an independent copy.
func (m *FieldMapping) Clone() *FieldMapping {
	out := NewFieldMapping()
	out.Merge(m)
	return out
}

// KeyNames returns the keys as plain strings, for logs.
func (m *FieldMapping) KeyNames() []string {
	out := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		out = append(out, string(k))
	}
	return out
}

func (m *FieldMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ValueOf converts a decoded meta value (string or list of strings) into a Value.
func ValueOf(raw any) (Value, bool) {
	switch x := raw.(type) {
	case string:
		return Scalar(x), true
	case []string:
		return List(x...), true
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return List(items...), true
	}
	return Value{}, false
}
