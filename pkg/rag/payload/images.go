package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"tigaraksa-chat-be/internal/entity"
)

// Sentinel markers around the image JSON so a line-oriented client can split
// images from narrative text without a full parser.
const (
	StartMarker = "###IMAGES###"
	EndMarker   = "###END_IMAGES###"
)

type ImageItem struct {
	Type      string  `json:"type"`
	URL       string  `json:"url"`
	Prompt    string  `json:"prompt"`
	ClipScore float64 `json:"clipScore"`
	Id        int64   `json:"id"`
	OcrText   *string `json:"ocr_text"`
	Caption   string  `json:"caption"`
}

func FromCandidates(candidates []*entity.ImageCandidate) []ImageItem {
	items := make([]ImageItem, len(candidates))
	for i, c := range candidates {
		items[i] = ImageItem{
			Type:      "image",
			URL:       c.URL,
			Prompt:    c.Prompt,
			ClipScore: c.ClipScore,
			Id:        c.Id,
			OcrText:   c.OcrText,
			Caption:   c.Caption,
		}
	}
	return items
}

// Encode renders candidates as a single delimited fragment.
func Encode(candidates []*entity.ImageCandidate) (string, error) {
	raw, err := json.Marshal(FromCandidates(candidates))
	if err != nil {
		return "", fmt.Errorf("marshal image payload: %w", err)
	}
	return StartMarker + string(raw) + EndMarker, nil
}

// Split extracts the image payload from a fragment. rest is the text around the
// markers. found is false when the fragment carries no payload.
func Split(fragment string) (items []ImageItem, rest string, found bool, err error) {
	start := strings.Index(fragment, StartMarker)
	if start < 0 {
		return nil, fragment, false, nil
	}
	bodyStart := start + len(StartMarker)
	end := strings.Index(fragment[bodyStart:], EndMarker)
	if end < 0 {
		return nil, fragment, false, fmt.Errorf("image payload is missing %s", EndMarker)
	}
	body := fragment[bodyStart : bodyStart+end]

	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fragment, false, fmt.Errorf("unmarshal image payload: %w", err)
	}
	rest = fragment[:start] + fragment[bodyStart+end+len(EndMarker):]
	return items, rest, true, nil
}
