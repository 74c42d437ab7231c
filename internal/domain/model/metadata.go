package model

// Metadata holds the external metadata fields fetched for a movie title.
// The zero value means "no metadata": lookups that fail or return no results
// are represented (and cached) as an empty Metadata so callers degrade to
// placeholders instead of erroring.
type Metadata struct {
	PosterPath   string
	BackdropPath string
	Overview     string
	ReleaseDate  string
	VoteAverage  float64
	Popularity   float64
}

// IsEmpty reports whether the lookup produced no usable metadata.
func (m Metadata) IsEmpty() bool {
	return m == Metadata{}
}

// PosterURL derives the absolute poster image URL from the configured image
// base, or "" when no poster path is known.
func (m Metadata) PosterURL(imageBaseURL string) string {
	if m.PosterPath == "" {
		return ""
	}
	return imageBaseURL + m.PosterPath
}
