package domain

import (
	"strconv"
	"strings"
)

// CopyNumberToken marks the parts of a blueprint that are scoped to an instance.
const CopyNumberToken = "{copyNumber}"

// BlockRef identifies one numbered instance of a blueprint block.
//
// Templated strings are always expanded from the blueprint's original
// values, never from an already expanded clone.
type BlockRef struct {
	BlueprintID string `json:"blueprint_id"`
	CopyNumber  int    `json:"copy_number"`
}

// BlockID derives the instance block id: the token inside the blueprint id is
// replaced by the copy number, or the number is appended when there is no token.
func (r BlockRef) BlockID() string {
	n := strconv.Itoa(r.CopyNumber)
	if strings.Contains(r.BlueprintID, CopyNumberToken) {
		return strings.ReplaceAll(r.BlueprintID, CopyNumberToken, n)
	}
	return r.BlueprintID + n
}

// Expand resolves the copy number token in a blueprint string.
// Strings without the token are references to other blocks and stay as-is.
func (r BlockRef) Expand(template string) string {
	if !strings.Contains(template, CopyNumberToken) {
		return template
	}
	return strings.ReplaceAll(template, CopyNumberToken, strconv.Itoa(r.CopyNumber))
}

// ExpandTarget resolves the token in a question target.
func (r BlockRef) ExpandTarget(t Target) Target {
	if t.Kind != TargetQuestion {
		return t
	}
	return GoTo(r.Expand(t.QuestionID))
}
