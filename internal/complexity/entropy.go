package complexity

import (
	"math"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tokenize collects the leaf-node text of a subtree, the same granularity
// the entropy analyzer needs: identifiers, literals, and operators, but
// not the surrounding punctuation-only noise of brace/paren nodes (those
// have zero entropy contribution and only dilute the distribution).
func tokenize(node *tree_sitter.Node, content []byte) []string {
	var tokens []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.ChildCount() == 0 {
			text := string(n.Utf8Text(content))
			if isMeaningfulToken(text) {
				tokens = append(tokens, text)
			}
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return tokens
}

func isMeaningfulToken(text string) bool {
	switch text {
	case "", "(", ")", "{", "}", "[", "]", ",", ";", ":":
		return false
	default:
		return true
	}
}

// shannonEntropy computes the normalized Shannon entropy of a token
// stream's frequency distribution: 0 when every token is identical
// (maximally repetitive), approaching 1 as token variety approaches the
// stream length (maximally varied): pattern-based validation code reads
// as low entropy, genuinely complex business logic as high entropy.
func shannonEntropy(tokens []string) float64 {
	n := len(tokens)
	if n <= 1 {
		return 0
	}
	counts := make(map[string]int, n)
	for _, t := range tokens {
		counts[t]++
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	maxH := math.Log2(float64(len(counts)))
	if maxH == 0 {
		return 0
	}
	normalized := h / math.Log2(float64(n))
	if normalized > 1 {
		normalized = 1
	}
	return normalized
}

// adjustedComplexity dampens raw cyclomatic complexity for low-entropy,
// highly-repetitive branch structures (a validation function with ten
// near-identical `if value > X { return Err(...) }` checks) while leaving
// genuinely varied logic's complexity untouched: repetitive patterns
// score lower than their raw cyclomatic count, varied business logic is
// not dampened away.
func adjustedComplexity(cyclomatic, entropy float64, tokenCount int) float64 {
	if tokenCount < 8 {
		// Too few tokens for the entropy signal to be meaningful; trust
		// the raw count.
		return cyclomatic
	}
	// Scale linearly between 60% (maximally repetitive) and 100%
	// (maximally varied) of the raw complexity, with an absolute floor of
	// 1 so a function never gets discounted to nothing.
	dampening := 0.6 + 0.4*entropy
	adjusted := cyclomatic * dampening
	if adjusted < 1 {
		adjusted = 1
	}
	return adjusted
}
