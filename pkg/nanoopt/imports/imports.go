// Package imports builds the @Import block of classes that should be
// registered eagerly.
package imports

import (
	"sort"
	"strings"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/conditions"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

const (
	header  = "@Import({"
	trailer = "})"
	suffix  = ".class"
)

// Build returns the public classes that fully matched, deduplicated and
// sorted. Keys naming a member (#) or a nested class ($) are skipped.
// Names the classifier cannot resolve are logged and left out.
func Build(src conditions.Source, classifier classpath.Classifier, logger *logging.Logger) []string {
	if logger == nil {
		logger = logging.Get(logging.ComponentImports)
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, o := range src.Entries() {
		if !o.FullMatch || strings.ContainsAny(o.Key, "#$") {
			continue
		}
		if _, dup := seen[o.Key]; dup {
			continue
		}
		seen[o.Key] = struct{}{}
		candidates = append(candidates, o.Key)
	}
	sort.Strings(candidates)

	names := make([]string, 0, len(candidates))
	for _, name := range candidates {
		v, err := classifier.Classify(name)
		if err != nil {
			logger.Warn("class not resolved", "class", name, "err", err)
			continue
		}
		if v == classpath.Public {
			names = append(names, name)
		}
	}
	return names
}

// Render formats names as an @Import block. Each name is written as
// "<name>.class," on its own line; the comma and separator after the last
// entry are replaced by the closing "})".
func Render(names []string, sep string) string {
	var b strings.Builder
	b.WriteString(sep)
	b.WriteString(header)
	b.WriteString(sep)

	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
			b.WriteString(sep)
		}
		b.WriteString(name)
		b.WriteString(suffix)
	}

	b.WriteString(trailer)
	return b.String()
}
