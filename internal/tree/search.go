package tree

import (
	"fmt"
	"regexp"

	"shadowtree/internal/logging"
)

var searchLogger = logging.GetLogger().WithPrefix("search")

// SearchState holds the results and pattern of the most recent successful
// search. It lives on the Manager instance, not in process-wide state, so
// independent trees do not interfere.
type SearchState struct {
	Pattern string
	Results []*Node
}

// Search traverses the whole tree matching pattern against each node's name
// with case-insensitive regular expression search. Results preserve
// depth-first pre-order. A malformed pattern is reported as an error and
// yields no results; the previous last-search state is left untouched.
func (m *Manager) Search(pattern string) ([]*Node, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		searchLogger.Warn("Invalid search pattern %q: %v", pattern, err)
		return nil, newError(OpSearch, pattern, fmt.Errorf("%w: %v", ErrBadPattern, err))
	}

	var results []*Node
	m.walk(func(n *Node) bool {
		if re.MatchString(n.name) {
			results = append(results, n)
		}
		return true
	})

	m.lastSearch = &SearchState{
		Pattern: pattern,
		Results: results,
	}
	searchLogger.Debug("Search %q matched %d nodes", pattern, len(results))
	return results, nil
}

// LastSearch returns the retained state of the most recent successful
// Search, or nil if none has completed since the last rebuild.
func (m *Manager) LastSearch() *SearchState {
	return m.lastSearch
}
