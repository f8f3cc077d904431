package response

import (
	"time"

	"github.com/user/recipe-service/internal/entity"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every JSON response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RecipeResponse is the public shape of an extracted recipe.
type RecipeResponse struct {
	Title        string `json:"title"`
	Contents     string `json:"contents"`
	Ingredients  string `json:"ingredients"`
	Source       string `json:"source"`
	PortionsText string `json:"portions_text"`
	Image        string `json:"image"`
}

func NewRecipeResponse(r *entity.ExtractedRecipe) RecipeResponse {
	return RecipeResponse{
		Title:        r.Title,
		Contents:     r.Contents,
		Ingredients:  r.Ingredients,
		Source:       r.Source,
		PortionsText: r.Portions,
		Image:        r.Image,
	}
}

// ParseRecordResponse is a DTO for one parse history row, mirroring entity.ParseRecord
type ParseRecordResponse struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Domain       string    `json:"domain"`
	Title        string    `json:"title,omitempty"`
	FailedFields []string  `json:"failed_fields"`
	Image        string    `json:"image,omitempty"`
	Status       string    `json:"status"` // "success", "no_parser"
	ParsedAt     time.Time `json:"parsed_at"`
}

func NewParseRecordResponses(records []*entity.ParseRecord) []ParseRecordResponse {
	out := make([]ParseRecordResponse, 0, len(records))
	for _, rec := range records {
		failed := rec.FailedFields
		if failed == nil {
			failed = []string{}
		}
		out = append(out, ParseRecordResponse{
			ID:           rec.ID,
			URL:          rec.URL,
			Domain:       rec.Domain,
			Title:        rec.Title,
			FailedFields: failed,
			Image:        rec.Image,
			Status:       rec.Status,
			ParsedAt:     rec.ParsedAt,
		})
	}
	return out
}
