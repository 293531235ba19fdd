// Package dialogue aggregates raw utterances into speaker blocks, resolves
// interviewer identity, and detects gaps in the audio file numbering.
package dialogue

import (
	"sort"
	"strings"
)

// JoinSeparator joins constituent interviewer codes into the canonical code.
const JoinSeparator = "_"

// ResolveInterviewer decides which speaker codes denote the interviewer for
// one interview, using frequency as the sole signal: the interviewee is the
// single most talkative participant. With more than two distinct codes,
// every code except the most frequent is an interviewer and the codes are
// joined (descending frequency) into one canonical code. With two or fewer,
// the least frequent code is the interviewer.
//
// Ties in frequency break by ascending code so the result depends only on
// the multiset, never on row order.
//
// An interview with a single distinct code degenerates to that code being
// both the canonical code and its own sole constituent; callers that need
// two speaker roles must reject that case themselves.
func ResolveInterviewer(codes []string) (canonical string, constituents []string) {
	counts := make(map[string]int)
	for _, c := range codes {
		counts[c]++
	}

	distinct := make([]string, 0, len(counts))
	for c := range counts {
		distinct = append(distinct, c)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})

	if len(distinct) == 0 {
		return "", nil
	}
	if len(distinct) > 2 {
		constituents = distinct[1:]
		return strings.Join(constituents, JoinSeparator), constituents
	}
	least := distinct[len(distinct)-1]
	return least, []string{least}
}
