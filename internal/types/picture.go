package types

// Picture is a candidate image pulled from the picture source. It has no
// lifecycle of its own: once fetched it is embedded in the owning session
// row and never mutated.
type Picture struct {
	ID          string `json:"id"`
	ImageURL    string `json:"image_url"`
	ThumbURL    string `json:"thumb_url,omitempty"`
	Description string `json:"description,omitempty"`
	AvgColor    string `json:"avg_color,omitempty"` // #rrggbb
	Attribution string `json:"attribution,omitempty"`
}
