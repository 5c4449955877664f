// Package util holds small text helpers shared by the client's packages.
package util

import "strings"

// MakeTextList gives a nice list of things for putting in a sentence, joining
// the last two with conj ("and", "or"). Lists of three or more get an oxford
// comma.
func MakeTextList(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}

	withConj := make([]string, len(items))
	copy(withConj, items)
	withConj[len(withConj)-1] = conj + " " + withConj[len(withConj)-1]
	return strings.Join(withConj, ", ")
}
