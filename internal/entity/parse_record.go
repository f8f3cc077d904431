package entity

import "time"

const (
	ParseStatusSuccess  = "success"
	ParseStatusNoParser = "no_parser"
)

// ParseRecord mirrors the `parse_history` PostgreSQL table schema.
type ParseRecord struct {
	ID           int64
	URL          string
	Domain       string
	Title        string
	FailedFields []string
	Image        string
	Status       string // "success", "no_parser"
	ParsedAt     time.Time
}
