package namefilter

import "bytes"

// acNode is a node of the Aho-Corasick trie used to test a real name
// against many literal patterns in one pass.
type acNode struct {
	children [256]*acNode
	fail     *acNode
	isOutput bool
}

// ahoCorasickFilter matches a real name against multiple literal patterns
// simultaneously.
type ahoCorasickFilter struct {
	root       *acNode
	ignoreCase bool
	invert     bool
}

func newAhoCorasickFilter(patterns []string, ignoreCase, invert bool) *ahoCorasickFilter {
	f := &ahoCorasickFilter{root: &acNode{}, ignoreCase: ignoreCase, invert: invert}
	for _, p := range patterns {
		pat := []byte(p)
		if ignoreCase {
			pat = bytes.ToLower(pat)
		}
		f.addPattern(pat)
	}
	f.buildFailureLinks()
	return f
}

func (f *ahoCorasickFilter) addPattern(pattern []byte) {
	node := f.root
	for _, b := range pattern {
		if node.children[b] == nil {
			node.children[b] = &acNode{}
		}
		node = node.children[b]
	}
	node.isOutput = true
}

func (f *ahoCorasickFilter) buildFailureLinks() {
	queue := make([]*acNode, 0, 256)
	for i := range 256 {
		if child := f.root.children[i]; child != nil {
			child.fail = f.root
			queue = append(queue, child)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for i := range 256 {
			child := current.children[i]
			if child == nil {
				continue
			}
			queue = append(queue, child)

			fail := current.fail
			for fail != nil && fail.children[i] == nil {
				fail = fail.fail
			}
			if fail == nil {
				child.fail = f.root
			} else {
				child.fail = fail.children[i]
			}
			if child.fail.isOutput {
				child.isOutput = true
			}
		}
	}
}

func (f *ahoCorasickFilter) Match(name []byte) bool {
	haystack := name
	if f.ignoreCase {
		haystack = bytes.ToLower(name)
	}

	node := f.root
	found := false
	for _, b := range haystack {
		for node != f.root && node.children[b] == nil {
			node = node.fail
		}
		if node.children[b] != nil {
			node = node.children[b]
		}
		if node.isOutput {
			found = true
			break
		}
	}

	if f.invert {
		return !found
	}
	return found
}
