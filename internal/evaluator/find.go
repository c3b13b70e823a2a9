package evaluator

import "regexp"

// refPattern matches the three reference forms of spec.md §4.4: a bare
// cell, or two cells joined by "_" (column vector, row vector, or a
// rectangular range — which of the three is decided by Bind).
var refPattern = regexp.MustCompile(`[A-Z]+[1-9][0-9]*(?:_[A-Z]+[1-9][0-9]*)?`)

// FindVariables returns every distinct reference token in formula, in
// first-seen order. It is a lexical scan, not a parse of the expression
// language, mirroring how the original evaluator locates its free
// variables before any evaluation happens.
func FindVariables(formula string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range refPattern.FindAllString(formula, -1) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
