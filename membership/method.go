// Package membership builds the structures whose membership queries are
// benchmarked: a linear scan, a binary search over a sorted copy, a hash set,
// a Bloom filter and a Cuckoo filter.
package membership

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Method identifies a membership structure.
type Method string

const (
	// Linear scans the login sequence.
	Linear Method = "linear"
	// Sorted binary searches a sorted copy of the logins.
	Sorted Method = "sorted"
	// Hash looks the username up in a hash set.
	Hash Method = "hash"
	// Bloom queries a Bloom filter.
	Bloom Method = "bloom"
	// Cuckoo queries a Cuckoo filter.
	Cuckoo Method = "cuckoo"
)

// Methods lists every method in the order they are benchmarked.
var Methods = []Method{Linear, Sorted, Hash, Bloom, Cuckoo}

// ParseMethod returns the method named s.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Newf("unknown method %q, choose from %v", s, Methods)
}

// Exact reports whether the method answers every query correctly.
func (m Method) Exact() bool {
	switch m {
	case Linear, Sorted, Hash:
		return true
	}
	return false
}

// DisplayName is the name used in reports.
func (m Method) DisplayName() string {
	switch m {
	case Linear:
		return "Linear Scan"
	case Sorted:
		return "Binary Search"
	case Hash:
		return "Hash Set"
	case Bloom:
		return "Bloom Filter"
	case Cuckoo:
		return "Cuckoo Filter"
	}
	return fmt.Sprintf("Method(%s)", string(m))
}

func (m Method) String() string { return string(m) }
