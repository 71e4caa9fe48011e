package intelligence

import (
	"sort"
	"strings"
	"sync"
)

// Confidence bands for ranked candidates.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

const (
	keywordWeight = 1.0
	phraseWeight  = 2.0

	// normalisation constant: confidence = score / (score + normaliser)
	normaliser = 1.5

	// candidates whose confidence is closer than this are reported ambiguous
	ambiguityDelta = 0.1

	highThreshold   = 0.75
	mediumThreshold = 0.45
)

// Candidate is a single ranked detection result.
type Candidate struct {
	Service    string   `json:"service"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Band       string   `json:"band"`
	Matched    []string `json:"matched,omitempty"`
}

// Detection is the outcome of classifying one text.
type Detection struct {
	Candidates []*Candidate `json:"candidates"`
	Ambiguous  bool         `json:"ambiguous"`
}

// Top returns the best candidate or nil when nothing matched.
func (d *Detection) Top() *Candidate {
	if d == nil || len(d.Candidates) == 0 {
		return nil
	}
	return d.Candidates[0]
}

// Detector classifies free-form text against a set of vendor mappings.
// Reload swaps the mapping set atomically so in-flight detections keep a
// consistent view.
type Detector struct {
	mux      sync.RWMutex
	mappings []*Mapping
}

// NewDetector creates a detector; with no mappings supplied the stock
// vocabulary is used.
func NewDetector(mappings ...*Mapping) *Detector {
	if len(mappings) == 0 {
		mappings = DefaultMappings()
	}
	return &Detector{mappings: mappings}
}

// Reload replaces the mapping set.
func (d *Detector) Reload(mappings []*Mapping) {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.mappings = mappings
}

// Mappings returns the current mapping set.
func (d *Detector) Mappings() []*Mapping {
	d.mux.RLock()
	defer d.mux.RUnlock()
	return d.mappings
}

// Detect tokenises the text and ranks every known service by vocabulary
// overlap.  Keyword hits score 1.0, phrase hits 2.0, both scaled by the
// mapping priority.  Empty text yields an empty detection.
func (d *Detector) Detect(text string) *Detection {
	tokens := Tokenize(text)
	ret := &Detection{}
	if len(tokens) == 0 {
		return ret
	}

	tokenSet := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = true
	}
	joined := " " + strings.Join(tokens, " ") + " "

	d.mux.RLock()
	mappings := d.mappings
	d.mux.RUnlock()

	for _, mapping := range mappings {
		score := 0.0
		var matched []string
		for _, keyword := range mapping.Keywords {
			if tokenSet[strings.ToLower(keyword)] {
				score += keywordWeight
				matched = append(matched, keyword)
			}
		}
		for _, phrase := range mapping.Phrases {
			normalized := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
			if normalized == "" {
				continue
			}
			// a phrase matches either as a quoted token or as a consecutive
			// word sequence
			if tokenSet[normalized] || strings.Contains(joined, " "+normalized+" ") {
				score += phraseWeight
				matched = append(matched, phrase)
			}
		}
		if score == 0 {
			continue
		}
		score *= mapping.priority()
		confidence := score / (score + normaliser)
		ret.Candidates = append(ret.Candidates, &Candidate{
			Service:    mapping.Service,
			Score:      score,
			Confidence: confidence,
			Band:       bandOf(confidence),
			Matched:    matched,
		})
	}

	sort.SliceStable(ret.Candidates, func(i, j int) bool {
		return ret.Candidates[i].Confidence > ret.Candidates[j].Confidence
	})
	if len(ret.Candidates) > 1 {
		delta := ret.Candidates[0].Confidence - ret.Candidates[1].Confidence
		ret.Ambiguous = delta < ambiguityDelta
	}
	return ret
}

func bandOf(confidence float64) string {
	switch {
	case confidence >= highThreshold:
		return BandHigh
	case confidence >= mediumThreshold:
		return BandMedium
	}
	return BandLow
}
