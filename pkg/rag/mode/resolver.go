package mode

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultSearchDirective = "/gambar"

// Mode represents the conversation mode of a single turn
type Mode string

const (
	ModeImageFocus Mode = "IMAGE_FOCUS" // User picked an image in an earlier turn
	ModeSearch     Mode = "SEARCH"      // Message starts with the search directive
	ModeDiscussion Mode = "DISCUSSION"  // Default
)

// Resolution is the per-turn routing decision
type Resolution struct {
	Mode    Mode
	Topic   string // Search topic with the directive stripped, SearchMode only
	Message string // Original message
}

// NeedsTopic reports a search directive with nothing after it.
func (r Resolution) NeedsTopic() bool {
	return r.Mode == ModeSearch && r.Topic == ""
}

type Resolver struct {
	directive string
}

func NewResolver(directive string) *Resolver {
	directive = strings.TrimSpace(directive)
	if directive == "" {
		directive = DefaultSearchDirective
	}
	return &Resolver{directive: directive}
}

func (r *Resolver) Directive() string {
	return r.directive
}

// Resolve classifies a turn. Priority:
//   - any selected image → ModeImageFocus, whatever the message says
//   - "<directive> <topic>" → ModeSearch
//   - anything else → ModeDiscussion
func (r *Resolver) Resolve(message string, hasSelection bool) Resolution {
	if hasSelection {
		return Resolution{Mode: ModeImageFocus, Message: message}
	}

	if topic, ok := r.stripDirective(message); ok {
		return Resolution{Mode: ModeSearch, Topic: topic, Message: message}
	}

	return Resolution{Mode: ModeDiscussion, Message: message}
}

// stripDirective matches the directive case-insensitively as a whole token, so
// "/gambarkan" is not a search.
func (r *Resolver) stripDirective(message string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) < len(r.directive) || !strings.EqualFold(trimmed[:len(r.directive)], r.directive) {
		return "", false
	}

	rest := trimmed[len(r.directive):]
	if rest != "" {
		next, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(next) {
			return "", false
		}
	}
	return strings.TrimSpace(rest), true
}
