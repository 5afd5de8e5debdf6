package graph

import (
	"io"
	"sync"

	"github.com/grailbio/gossamer/concurrent"
	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/position"
	"github.com/grailbio/gossamer/sparse"
	"github.com/grailbio/gossamer/varbyte"
)

// domainSize returns 2^(2*(k+1)), the count of distinct (k+1)-mer
// positions, saturating at the largest representable uint64 once the
// exponent reaches 64 (k >= 31) rather than silently wrapping to 0 via
// an oversized shift; sparse.QuantizeD only needs domainSize as the
// numerator of a ratio, so saturation still steers it toward the
// widest D bucket rather than the narrowest.
func domainSize(k uint64) uint64 {
	shift := 2 * (k + 1)
	if shift >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << shift
}

// Builder accumulates a single ascending, already-deduplicated stream
// of (edge, count) pairs — AsyncMerge's output contract — and
// materializes the graph's four persisted artefacts on End. Pushes are
// decoupled from the caller via a pair of concurrent.BackgroundConsumer
// queues, mirroring Graph::Builder's BackgroundBlockConsumer-wrapped
// SparseArray::Builder and VariableByteArray::Builder.
type Builder struct {
	k          uint64
	baseName   string
	factory    file.Factory
	asymmetric bool

	edgeConsumer  *concurrent.BackgroundConsumer[position.Position]
	countConsumer *concurrent.BackgroundConsumer[uint32]

	edgeBuf  []position.Position
	countBuf []uint32

	histMu sync.Mutex
	hist   CountsHistogram
}

// NewBuilder returns a Builder that will persist its artefacts under
// baseName via factory once End is called.
func NewBuilder(k uint64, baseName string, factory file.Factory, asymmetric bool) *Builder {
	b := &Builder{
		k:          k,
		baseName:   baseName,
		factory:    factory,
		asymmetric: asymmetric,
		hist:       CountsHistogram{},
	}
	b.edgeConsumer = concurrent.NewBackgroundConsumer(
		concurrent.DefaultBatchSize, concurrent.DefaultMaxBatches,
		func(batch []position.Position) error {
			b.edgeBuf = append(b.edgeBuf, batch...)
			return nil
		})
	b.countConsumer = concurrent.NewBackgroundConsumer(
		concurrent.DefaultBatchSize, concurrent.DefaultMaxBatches,
		func(batch []uint32) error {
			b.histMu.Lock()
			for _, c := range batch {
				b.countBuf = append(b.countBuf, c)
				b.hist[uint64(c)]++
			}
			b.histMu.Unlock()
			return nil
		})
	return b
}

// Push appends the next (edge, count) pair.
func (b *Builder) Push(edge Edge, count uint32) {
	b.edgeConsumer.Push(edge.v)
	b.countConsumer.Push(count)
}

// End drains both consumers, builds the SparseArray and
// VariableByteArray, and writes the header, edges, counts, and
// counts-histogram files.
func (b *Builder) End() error {
	if err := b.edgeConsumer.Close(); err != nil {
		return err
	}
	if err := b.countConsumer.Close(); err != nil {
		return err
	}

	n := uint64(len(b.edgeBuf))
	d := sparse.QuantizeD(domainSize(b.k), n)
	sb := sparse.NewBuilder(d)
	for _, e := range b.edgeBuf {
		sb.Push(e)
	}
	edges := sb.End()

	vb := varbyte.NewBuilder()
	for _, c := range b.countBuf {
		vb.Push(c)
	}
	counts := vb.End()

	if err := b.writeArtefact(headerName(b.baseName), func(w io.Writer) error {
		return writeHeader(w, Header{Version: Version, K: b.k, Asymmetric: b.asymmetric})
	}); err != nil {
		return err
	}
	if err := b.writeArtefact(edgesName(b.baseName), edges.Save); err != nil {
		return err
	}
	if err := b.writeArtefact(countsName(b.baseName), counts.Save); err != nil {
		return err
	}
	return b.writeArtefact(histName(b.baseName), func(w io.Writer) error {
		return writeCountsHistogram(w, b.hist)
	})
}

// Hist returns the count-frequency histogram accumulated so far.
// Exported mainly for tests; End writes the canonical copy to disk.
func (b *Builder) Hist() CountsHistogram {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	out := make(CountsHistogram, len(b.hist))
	for k, v := range b.hist {
		out[k] = v
	}
	return out
}

func (b *Builder) writeArtefact(name string, save func(io.Writer) error) error {
	w, err := b.factory.OpenWrite(name)
	if err != nil {
		return err
	}
	if err := save(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
