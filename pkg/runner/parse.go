package runner

import (
	"strconv"
	"strings"

	"github.com/aretw0/simflow/pkg/domain"
)

// ParseAnswer turns a typed line into a Value for the placeholder.
//
// Select answers may be a 1-based option number, an option id or an option
// label (case-insensitive). Multiple selects take a comma-separated list.
// Unmatched tokens are kept verbatim so validation can reject them.
// Input answers are taken as typed.
func ParseAnswer(p domain.Placeholder, line string) domain.Value {
	if p.Type != domain.PlaceholderSelect {
		return domain.Text(line)
	}
	if !p.Multiple {
		return domain.Text(matchOption(p, line))
	}

	var ids []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id := matchOption(p, tok)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return domain.Choices(ids...)
}

func matchOption(p domain.Placeholder, tok string) string {
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= len(p.Options) {
		return p.Options[n-1].ID
	}
	for _, o := range p.Options {
		if o.ID == tok {
			return o.ID
		}
	}
	for _, o := range p.Options {
		if o.Label != "" && strings.EqualFold(o.Label, tok) {
			return o.ID
		}
	}
	return tok
}
