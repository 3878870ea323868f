package entity

import "strings"

// ImageCandidate is an image record proposed for a query. Similarity is
// 1 - cosine distance to the query vector.
type ImageCandidate struct {
	Id         int64
	URL        string
	Prompt     string
	Caption    string
	OcrText    *string
	ClipScore  float64
	Similarity float64
}

// SearchableText is the lowercase concatenation of OCR text, caption and prompt.
func (c *ImageCandidate) SearchableText() string {
	ocr := ""
	if c.OcrText != nil {
		ocr = *c.OcrText
	}
	return strings.ToLower(ocr + " " + c.Caption + " " + c.Prompt)
}

// SelectedImageContext holds the descriptive fields of the image the user picked
// in an earlier turn.
type SelectedImageContext struct {
	Prompt  string
	Caption string
	OcrText string
}

func (s *SelectedImageContext) IsEmpty() bool {
	if s == nil {
		return true
	}
	return strings.TrimSpace(s.Prompt) == "" &&
		strings.TrimSpace(s.Caption) == "" &&
		strings.TrimSpace(s.OcrText) == ""
}
