package runner

import (
	"fmt"
	"slices"
	"strings"
)

// String summarizes the run: passes and rejections by site.
func (r *TestRunner) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tsuccesses: %d\n", r.successes)
	fmt.Fprintf(&b, "\tlocal rejects: %d\n", r.localRejects)
	writeDetail(&b, r.localRejectDetail)
	fmt.Fprintf(&b, "\tglobal rejects: %d\n", r.globalRejects)
	writeDetail(&b, r.globalRejectDetail)
	return b.String()
}

func writeDetail(b *strings.Builder, detail map[string]uint32) {
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "\t\t%d times at %s\n", detail[k], k)
	}
}
