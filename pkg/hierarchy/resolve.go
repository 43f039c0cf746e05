package hierarchy

import "strings"

// SatisfiedBy returns the requested key plus all of its existing
// dot-prefix ancestors, root-first. The walk proceeds from the root-most
// prefix downward and stops at the first prefix missing from the flat
// map, so paths below a gap are unreachable even if they exist:
// with paths {a, a.b.c}, SatisfiedBy("a.b.c") is ["a"].
func (h *Hierarchy) SatisfiedBy(key string) []string {
	var chain []string
	prefix := ""
	for _, segment := range strings.Split(key, ".") {
		if prefix == "" {
			prefix = segment
		} else {
			prefix += "." + segment
		}
		if _, ok := h.flat[prefix]; !ok {
			break
		}
		chain = append(chain, prefix)
	}
	return chain
}
