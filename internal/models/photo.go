package models

import (
	"encoding/json"
	"strings"
	"time"
)

// UploadURLPrefix is the public URL prefix for server-hosted image files.
const UploadURLPrefix = "/uploads/"

// Categories is the fixed set of photo categories.
var Categories = []string{
	"landscape", "portrait", "street", "nature", "architecture",
	"wildlife", "macro", "abstract", "other",
}

// DefaultCategory is applied when a photo is created without one.
const DefaultCategory = "other"

// Photo represents a photo record owned by a single user.
type Photo struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	Likes       int    `json:"likes"`

	// TagsJSON holds the serialized tags for DB storage.
	TagsJSON string `json:"-"`
	// Tags is the API-facing representation.
	Tags []string `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PrepareForSave marshals the tag slice into its JSON string for DB storage.
func (p *Photo) PrepareForSave() {
	tagsBytes, _ := json.Marshal(p.Tags)
	p.TagsJSON = string(tagsBytes)
}

// PrepareForAPI unmarshals the JSON tag string into the slice field for API responses.
func (p *Photo) PrepareForAPI() {
	if p.TagsJSON != "" {
		json.Unmarshal([]byte(p.TagsJSON), &p.Tags)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// ImageKind discriminates the two ways a photo's image can be referenced.
type ImageKind int

const (
	// ImageUploaded is a server-hosted file under the uploads directory.
	ImageUploaded ImageKind = iota
	// ImageExternal is a caller-supplied URL, stored verbatim and never fetched.
	ImageExternal
)

// ImageSource is the resolved image reference for a photo: exactly one of an
// uploaded file path or an external URL.
type ImageSource struct {
	Kind ImageKind
	Ref  string
}

// UploadedImage returns an ImageSource for a server-hosted file URL.
func UploadedImage(url string) ImageSource {
	return ImageSource{Kind: ImageUploaded, Ref: url}
}

// ExternalImage returns an ImageSource for an externally supplied URL.
func ExternalImage(url string) ImageSource {
	return ImageSource{Kind: ImageExternal, Ref: url}
}

// IsUploadedImage reports whether a stored image URL points at a server-hosted file.
func IsUploadedImage(imageURL string) bool {
	return strings.HasPrefix(imageURL, UploadURLPrefix)
}

// ValidCategory reports whether c is one of the fixed category values.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// NormalizeTags splits a comma-delimited tag string, trims each entry and
// drops empties. Applied identically on create and update.
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
