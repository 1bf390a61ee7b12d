// Package model defines the data structures used throughout the application.
//
// The json tags are the on-disk format of the two documents (upload history and
// threads) as well as the wire format of the API, so renaming a tag is a data
// migration.
package model

import (
	"strings"
	"time"
)

// TimestampLayout is the format of every date/created_at field: "YYYY-MM-DD HH:MM:SS".
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// UploadRecord is one entry of the upload history: an image stored on the image
// host. Threads and replies embed the same shape as their optional image.
type UploadRecord struct {
	URL      string `json:"url"`
	Date     string `json:"date"`
	PublicID string `json:"public_id"`
}

// Valid reports whether all three fields are present and the public id is not blank.
func (r UploadRecord) Valid() bool {
	return r.URL != "" && r.Date != "" && strings.TrimSpace(r.PublicID) != ""
}

// Day returns the date portion of the record's timestamp (the first token before a space).
func (r UploadRecord) Day() string {
	day, _, _ := strings.Cut(r.Date, " ")
	return day
}

// DateGroup is one day of the gallery: every record uploaded that day, in store order.
type DateGroup struct {
	Date   string         `json:"date"`
	Images []UploadRecord `json:"images"`
}
