// Command goss-build-graph builds a succinct de Bruijn graph from a
// set of FASTA/FASTQ read files: each input is k-merized and sorted to
// disk independently, then every sorted run is merged into the final
// graph in one pass.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/gossamer/extsort"
	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/graph"
	"github.com/grailbio/gossamer/kmer"
	"github.com/grailbio/gossamer/merge"
	"github.com/grailbio/gossamer/position"
)

// edgeCount is one (edge, observed-count) pair, the unit extsort
// shuffles to disk while a single input file's k-mers are being
// sorted.
type edgeCount struct {
	pos   position.Position
	count uint32
}

// edgeCountCodec frames edgeCount as a fixed 20-byte record: the
// Position's two 64-bit limbs followed by the count, all
// little-endian, matching the wire-layout convention the rest of the
// package uses for on-disk integers.
type edgeCountCodec struct{}

func (edgeCountCodec) Encode(v edgeCount) []byte {
	var b [20]byte
	binary.LittleEndian.PutUint64(b[0:8], v.pos.Lo)
	binary.LittleEndian.PutUint64(b[8:16], v.pos.Hi)
	binary.LittleEndian.PutUint32(b[16:20], v.count)
	return b[:]
}

func (edgeCountCodec) Decode(b []byte) edgeCount {
	return edgeCount{
		pos:   position.Position{Lo: binary.LittleEndian.Uint64(b[0:8]), Hi: binary.LittleEndian.Uint64(b[8:16])},
		count: binary.LittleEndian.Uint32(b[16:20]),
	}
}

func edgeCountLess(a, b edgeCount) bool { return a.pos.Less(b.pos) }

// runDest adapts a merge.RunWriter to extsort.Dest[edgeCount], folding
// together adjacent equal edges (extsort's merged stream is already
// globally sorted per input file, so duplicates are always adjacent)
// before they hit disk.
type runDest struct {
	rw      *merge.RunWriter
	pending edgeCount
	have    bool
}

func (d *runDest) Push(v edgeCount) error {
	if d.have && d.pending.pos.Equal(v.pos) {
		d.pending.count += v.count
		return nil
	}
	if d.have {
		if err := d.rw.Put(graph.NewEdge(d.pending.pos), d.pending.count); err != nil {
			return err
		}
	}
	d.pending = v
	d.have = true
	return nil
}

func (d *runDest) flush() error {
	if !d.have {
		return nil
	}
	return d.rw.Put(graph.NewEdge(d.pending.pos), d.pending.count)
}

// sortInputFile k-merizes one FASTA or FASTQ file and writes the
// resulting sorted, deduplicated (edge, count) stream to a single run
// file suitable for merge.AsyncMerge.
func sortInputFile(factory file.Factory, path string, k int, byteBudget int, runName string) error {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	sorter := extsort.NewExternalSort[edgeCount](factory, edgeCountCodec{}, edgeCountLess, byteBudget)
	push := func(_ string, km kmer.KmerAt) bool {
		if err := sorter.Push(edgeCount{pos: km.Canonical(), count: 1}); err != nil {
			log.Panicf("goss-build-graph: sorting %s: %v", path, err)
		}
		return true
	}

	var extractErr error
	if isFastq(path) {
		extractErr = kmer.NewFastqKmerExtractor(r, k).Each(push)
	} else {
		extractErr = kmer.NewFastaKmerExtractor(r, k).Each(push)
	}
	if extractErr != nil {
		return extractErr
	}

	w, err := factory.OpenWrite(runName)
	if err != nil {
		return err
	}
	dest := &runDest{rw: merge.NewRunWriter(w)}
	if err := sorter.Finish(dest); err != nil {
		w.Close()
		return err
	}
	if err := dest.flush(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func isFastq(path string) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".bz2")
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".fq" || ext == ".fastq"
}

type flags struct {
	inputs     string
	k          int
	out        string
	tmpDir     string
	threads    int
	byteBudget int
	asymmetric bool
}

// sortInputFiles k-merizes and sorts every input file to its own run
// file, at most f.threads of them concurrently: one goroutine per file,
// gated by a semaphore acquired in the dispatch loop.
func sortInputFiles(f flags, factory file.Factory, paths []string) ([]string, error) {
	runNames := make([]string, len(paths))
	sem := make(chan struct{}, f.threads)
	errCh := make(chan error, len(paths))
	for i, p := range paths {
		i, p := i, p
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			runNames[i] = fmt.Sprintf("goss-build-graph-run-%d", i)
			if err := sortInputFile(factory, p, f.k, f.byteBudget, runNames[i]); err != nil {
				errCh <- fmt.Errorf("sorting %s: %w", p, err)
				return
			}
			errCh <- nil
		}()
	}
	var firstErr error
	for range paths {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return runNames, firstErr
}

func run(f flags) error {
	paths := strings.Split(f.inputs, ",")
	factory := file.NewPhysicalFactory(f.tmpDir)

	runNames, err := sortInputFiles(f, factory, paths)
	defer func() {
		for _, name := range runNames {
			if name != "" {
				factory.Remove(name)
			}
		}
	}()
	if err != nil {
		return err
	}

	if err := merge.AsyncMerge(factory, runNames, uint64(f.k), f.asymmetric, f.threads, f.out); err != nil {
		return err
	}
	log.Printf("goss-build-graph: wrote graph %s from %d input file(s)", f.out, len(paths))
	return nil
}

func main() {
	var f flags
	flag.StringVar(&f.inputs, "inputs", "", "comma-separated list of uncompressed FASTA/FASTQ read files")
	flag.IntVar(&f.k, "k", 27, "k-mer size (node length in bases; edges are k+1 bases)")
	flag.StringVar(&f.out, "out", "graph", "base name for the output graph's artefact files")
	flag.StringVar(&f.tmpDir, "tmp-dir", os.TempDir(), "directory for intermediate sort/run files")
	flag.IntVar(&f.threads, "threads", 4, "number of input files to sort and merge concurrently")
	flag.IntVar(&f.byteBudget, "sort-buffer-bytes", 256<<20, "in-memory byte budget per external sort before spilling")
	flag.BoolVar(&f.asymmetric, "asymmetric", false, "build an asymmetric graph (do not assume every edge's reverse complement is present)")
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()

	if f.inputs == "" {
		fmt.Fprintln(os.Stderr, "goss-build-graph: -inputs is required")
		os.Exit(2)
	}
	if err := run(f); err != nil {
		log.Fatalf("goss-build-graph: %v", err)
	}
}
