// Package normalize folds CSV header names into portable SQL identifiers
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining and format marks
// 5 Width fold fullwidth to ASCII
// 6 Map anything outside [a-z0-9_] to underscores, collapse and trim them
// 7 Prefix identifiers starting with a digit, fall back to "col" when empty
package normalize

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxIdentLen is the postgres identifier limit (NAMEDATALEN - 1)
const MaxIdentLen = 63

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,
		)
	},
}

// Identifier returns the folded form of s following the pipeline described above
func Identifier(s string) string {
	s = strings.ToValidUTF8(strings.TrimSpace(s), "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(ns))
	underscore := true // swallow leading separators
	for _, r := range ns {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.TrimRight(b.String(), "_")
	switch {
	case out == "":
		out = "col"
	case out[0] >= '0' && out[0] <= '9':
		out = "c_" + out
	}
	if len(out) > MaxIdentLen {
		out = strings.TrimRight(out[:MaxIdentLen], "_")
	}
	return out
}

// Columns folds a CSV header into unique identifiers, suffixing repeats with _2, _3 ...
// a blank header cell becomes col_<position>
func Columns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		id := Identifier(h)
		if strings.TrimSpace(h) == "" {
			id = "col_" + strconv.Itoa(i+1)
		}
		if n := seen[id]; n > 0 {
			for {
				n++
				cand := id + "_" + strconv.Itoa(n)
				if seen[cand] == 0 {
					seen[id] = n
					id = cand
					break
				}
			}
		}
		seen[id]++
		out[i] = id
	}
	return out
}
