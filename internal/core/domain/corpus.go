package domain

import "time"

// Corpus is the extracted text of one uploaded PDF.
type Corpus struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	Text           string    `json:"text"`
	TotalPages     int       `json:"total_pages"`
	ExtractedPages int       `json:"extracted_pages"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

func (c Corpus) Empty() bool {
	return c.Text == ""
}

// ExtractedText is the result of extracting text from a PDF file.
type ExtractedText struct {
	Text           string
	TotalPages     int
	ExtractedPages int
}

func (e ExtractedText) SkippedPages() int {
	return e.TotalPages - e.ExtractedPages
}
