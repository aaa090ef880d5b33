package notify

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"olxradar/internal/domain"
)

const (
	defaultChunkLimit = 4000
	descriptionLimit  = 150
)

// searchTermRe captures the search term OLX encodes between a "/q-" marker
// and the next "/" in saved-search URLs.
var searchTermRe = regexp.MustCompile(`/q-([^/\s]+)/`)

// Batcher serializes an ordered sequence of ad details into a subject line
// and one or more size-bounded body chunks. No single listing's block is
// ever split across two chunks, and listing order is preserved.
type Batcher struct {
	limit int
}

func NewBatcher(limit int) *Batcher {
	if limit <= 0 {
		limit = defaultChunkLimit
	}
	return &Batcher{limit: limit}
}

// Batch renders ads in order and greedily packs whole blocks into chunks of
// at most the configured limit. A block that alone exceeds the limit becomes
// its own oversized chunk: the bound is best effort for pathological inputs.
// At least one chunk is always emitted, even for an empty sequence.
func (b *Batcher) Batch(target string, ads []domain.AdDetail) domain.NotificationPayload {
	var chunks []string
	var current strings.Builder
	for i, ad := range ads {
		block := renderBlock(i+1, ad)
		if current.Len() > 0 && current.Len()+len(block) > b.limit {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(block)
	}
	chunks = append(chunks, strings.TrimSpace(current.String()))

	return domain.NotificationPayload{
		Subject: subject(target, len(ads)),
		Chunks:  chunks,
	}
}

// renderBlock formats one listing for notification delivery.
func renderBlock(index int, ad domain.AdDetail) string {
	title := strings.TrimSpace(normalizeText(ad.Title))
	price := strings.TrimSpace(normalizeText(ad.Price))
	description := strings.TrimSpace(normalizeText(ad.Description))
	if len(description) > descriptionLimit {
		description = description[:descriptionLimit]
	}
	return fmt.Sprintf("%d. %s (%s)\n%s...\n%s\n\n", index, title, price, description, ad.URL)
}

// subject is "<N> new listings", suffixed with the decoded search term when
// the target URL carries one.
func subject(target string, count int) string {
	s := fmt.Sprintf("%d new listings", count)
	if term := searchTerm(target); term != "" {
		s += fmt.Sprintf(" for '%s'", term)
	}
	return s
}

// searchTerm decodes the "/q-.../" segment of a saved-search URL: hyphens
// become spaces and the words are title-cased. Empty when absent.
func searchTerm(target string) string {
	m := searchTermRe.FindStringSubmatch(target)
	if m == nil {
		return ""
	}
	words := strings.ReplaceAll(m[1], "-", " ")
	return cases.Title(language.English).String(words)
}
