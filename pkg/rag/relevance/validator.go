// Package relevance prunes false positives from approximate vector matches by
// combining a similarity gate with a lexical check on the candidate's text.
package relevance

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"tigaraksa-chat-be/internal/entity"
)

const minMainTermRunes = 3

type Config struct {
	Threshold         float64 // τ: candidates at or below are dropped
	OverrideThreshold float64 // above this the lexical check is skipped
	DisplayLimit      int
	OverFetchFactor   int
}

func DefaultConfig() Config {
	return Config{
		Threshold:         0.40,
		OverrideThreshold: 0.60,
		DisplayLimit:      5,
		OverFetchFactor:   2,
	}
}

type Reason string

const (
	ReasonOverride     Reason = "high_confidence"
	ReasonLexicalMatch Reason = "similarity_and_term"
	ReasonShortTerm    Reason = "similarity_only"
	ReasonBelowGate    Reason = "below_threshold"
	ReasonTermMissing  Reason = "term_missing"
	ReasonDuplicate    Reason = "duplicate"
)

// Verdict explains one candidate decision. Used by the diagnostics CLI.
type Verdict struct {
	Candidate *entity.ImageCandidate
	Passed    bool
	Reason    Reason
}

type Validator struct {
	cfg Config
}

func NewValidator(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = def.DisplayLimit
	}
	if cfg.OverFetchFactor <= 0 {
		cfg.OverFetchFactor = def.OverFetchFactor
	}
	return &Validator{cfg: cfg}
}

// FetchSize is how many candidates to request from the store before validation.
func (v *Validator) FetchSize() int {
	return v.cfg.DisplayLimit * v.cfg.OverFetchFactor
}

// Inspect decides a single candidate against the query's main term.
func (v *Validator) Inspect(mainTerm string, c *entity.ImageCandidate) Verdict {
	if c.Similarity > v.cfg.OverrideThreshold {
		return Verdict{Candidate: c, Passed: true, Reason: ReasonOverride}
	}
	if c.Similarity <= v.cfg.Threshold {
		return Verdict{Candidate: c, Passed: false, Reason: ReasonBelowGate}
	}
	if utf8.RuneCountInString(mainTerm) < minMainTermRunes {
		return Verdict{Candidate: c, Passed: true, Reason: ReasonShortTerm}
	}
	if strings.Contains(c.SearchableText(), mainTerm) {
		return Verdict{Candidate: c, Passed: true, Reason: ReasonLexicalMatch}
	}
	return Verdict{Candidate: c, Passed: false, Reason: ReasonTermMissing}
}

// Explain returns a verdict for every candidate in input order.
func (v *Validator) Explain(query string, candidates []*entity.ImageCandidate) []Verdict {
	mainTerm := MainTerm(query)
	seen := make(map[int64]bool, len(candidates))
	verdicts := make([]Verdict, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}
		if seen[c.Id] {
			verdicts = append(verdicts, Verdict{Candidate: c, Passed: false, Reason: ReasonDuplicate})
			continue
		}
		verdict := v.Inspect(mainTerm, c)
		if verdict.Passed {
			seen[c.Id] = true
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts
}

// Validate keeps the candidates that pass, ordered by descending similarity and
// cut to the display limit. An empty result means "no relevant images".
func (v *Validator) Validate(query string, candidates []*entity.ImageCandidate) []*entity.ImageCandidate {
	kept := make([]*entity.ImageCandidate, 0, len(candidates))
	for _, verdict := range v.Explain(query, candidates) {
		if verdict.Passed {
			kept = append(kept, verdict.Candidate)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Similarity > kept[j].Similarity
	})

	if len(kept) > v.cfg.DisplayLimit {
		kept = kept[:v.cfg.DisplayLimit]
	}
	return kept
}

// MainTerm is the longest lowercase word of the query; the first one wins ties.
func MainTerm(query string) string {
	terms := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	main := ""
	mainLen := 0
	for _, term := range terms {
		if n := utf8.RuneCountInString(term); n > mainLen {
			main, mainLen = term, n
		}
	}
	return main
}
