package entity

// Recipe field names, in the order extractors populate them.
const (
	FieldTitle       = "title"
	FieldImage       = "image"
	FieldIngredients = "ingredients"
	FieldContents    = "contents"
	FieldPortions    = "portions"
)

// Fields lists every recipe field in extraction order.
var Fields = []string{FieldTitle, FieldImage, FieldIngredients, FieldContents, FieldPortions}

// ExtractedRecipe is the normalized output of one extraction. Every text
// field is best-effort and may be empty.
type ExtractedRecipe struct {
	Title       string `json:"title"`
	Image       string `json:"image"` // external URL from the extractor, local tmp path after download
	Ingredients string `json:"ingredients"`
	Contents    string `json:"contents"`
	Portions    string `json:"portions"`
	Source      string `json:"source"`

	// FailedFields names the fields that could not be extracted.
	FailedFields []string `json:"failed_fields,omitempty"`
}

// Get returns the value of the named field.
func (r *ExtractedRecipe) Get(field string) string {
	switch field {
	case FieldTitle:
		return r.Title
	case FieldImage:
		return r.Image
	case FieldIngredients:
		return r.Ingredients
	case FieldContents:
		return r.Contents
	case FieldPortions:
		return r.Portions
	}
	return ""
}

// Set stores value in the named field. Unknown names are ignored.
func (r *ExtractedRecipe) Set(field, value string) {
	switch field {
	case FieldTitle:
		r.Title = value
	case FieldImage:
		r.Image = value
	case FieldIngredients:
		r.Ingredients = value
	case FieldContents:
		r.Contents = value
	case FieldPortions:
		r.Portions = value
	}
}
