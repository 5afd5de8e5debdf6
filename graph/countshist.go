package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/gossamer/errs"
)

// CountsHistogram gives, for each observed edge multiplicity, how many
// edges had that multiplicity.
type CountsHistogram map[uint64]uint64

// Total returns the number of edges the histogram was built from.
func (h CountsHistogram) Total() uint64 {
	var total uint64
	for _, freq := range h {
		total += freq
	}
	return total
}

func writeCountsHistogram(w io.Writer, hist CountsHistogram) error {
	keys := make([]uint64, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%d\t%d\n", k, hist[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCountsHistogram parses a `-counts-hist.txt` side file: one
// "count<TAB>frequency" pair per line, sorted by count.
func ReadCountsHistogram(r io.Reader) (CountsHistogram, error) {
	hist := CountsHistogram{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var count, freq uint64
		if _, err := fmt.Sscanf(line, "%d\t%d", &count, &freq); err != nil {
			return nil, errs.ParseError("graph.CountsHistogram", err)
		}
		hist[count] = freq
	}
	if err := sc.Err(); err != nil {
		return nil, errs.IOError("graph.CountsHistogram", err)
	}
	return hist, nil
}
