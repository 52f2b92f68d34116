// Command seedmap maps paired-end FASTQ reads against a prebuilt hash-table
// reference, printing one mapped pair per line: name, then for each mate the
// chosen chain's first reference base with its strand, MAPQ, and CIGAR.
//
// Example:
//
//	seedmap -hashtable-config ref.cfg -hashtable-bin hash_table.bin \
//	        -extend-table-bin extend_table.bin \
//	        -reference-bin reference.bin -r1 r1.fastq -r2 r2.fastq
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/biomapper/seedmap/align"
	"github.com/biomapper/seedmap/cigar"
	"github.com/biomapper/seedmap/fastq"
	"github.com/biomapper/seedmap/reference"
	"github.com/biomapper/seedmap/seedmap"
	"github.com/biomapper/seedmap/sequences"
)

type flags struct {
	hashtableConfig string
	hashtableBin    string
	extendTableBin  string
	referenceBin    string
	r1, r2          string
	bufSize         int

	peMin, peMax, peMean, peSigma int
	orientation                   string

	unpairedPenalty int
	xsPairPenalty   int
	snpCost         int
	mapqMinLen      int
	minScore        int
	sampleMapq0     int
}

func parseOrientation(s string) (align.Orientation, error) {
	switch s {
	case "FR":
		return align.OrientFR, nil
	case "RF":
		return align.OrientRF, nil
	case "FF":
		return align.OrientFF, nil
	case "RR":
		return align.OrientRR, nil
	}
	return 0, errors.E(fmt.Sprintf("seedmap: unknown orientation %q", s))
}

func main() {
	var f flags
	flag.StringVar(&f.hashtableConfig, "hashtable-config", "", "path to hash_table.cfg")
	flag.StringVar(&f.hashtableBin, "hashtable-bin", "", "path to hash_table.bin's bucket region")
	flag.StringVar(&f.extendTableBin, "extend-table-bin", "", "path to extend_table.bin (required when the hash table config has an extend table)")
	flag.StringVar(&f.referenceBin, "reference-bin", "", "path to reference.bin, the packed reference image")
	flag.StringVar(&f.r1, "r1", "", "R1 FASTQ path")
	flag.StringVar(&f.r2, "r2", "", "R2 FASTQ path")
	flag.IntVar(&f.bufSize, "max-record-bytes", 1<<20, "largest single FASTQ line accepted")

	flag.IntVar(&f.peMin, "pe-min", 0, "minimum proper-pair insert length")
	flag.IntVar(&f.peMax, "pe-max", 0, "maximum proper-pair insert length")
	flag.IntVar(&f.peMean, "pe-mean", 0, "insert-length mean")
	flag.IntVar(&f.peSigma, "pe-sigma", 1, "insert-length standard deviation")
	flag.StringVar(&f.orientation, "orientation", "FR", "expected pair orientation: FR, RF, FF, or RR")

	flag.IntVar(&f.unpairedPenalty, "unpaired-penalty", 60, "pair penalty applied when mates don't form a proper pair")
	flag.IntVar(&f.xsPairPenalty, "xs-pair-penalty", 0, "MAPQ penalty applied under the cross-strand heuristic")
	flag.IntVar(&f.snpCost, "snp-cost", 36, "phred-scale mismatch cost")
	flag.IntVar(&f.mapqMinLen, "mapq-min-len", 50, "minimum effective read length used in MAPQ scaling")
	flag.IntVar(&f.minScore, "min-score", 0, "score floor used as the second-best fallback")
	flag.IntVar(&f.sampleMapq0, "sample-mapq0", 0, "force MAPQ 0: 0=never, 1=random-sample-only pairs, 2=also extra pairs")
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if f.hashtableConfig == "" || f.hashtableBin == "" || f.referenceBin == "" || f.r1 == "" || f.r2 == "" {
		log.Fatal("seedmap: -hashtable-config, -hashtable-bin, -reference-bin, -r1, and -r2 are all required")
	}

	orientation, err := parseOrientation(f.orientation)
	if err != nil {
		log.Fatal(err)
	}

	cfg, mappedBuckets, mappedExtendTable, err := loadHashtable(ctx, f.hashtableConfig, f.hashtableBin, f.extendTableBin)
	if err != nil {
		log.Fatal(errors.E(err, "loading hash table"))
	}
	defer mappedBuckets.Close()
	defer mappedExtendTable.Close()

	numBases := uint64(0)
	for _, sd := range cfg.Sequences {
		if end := sd.SeqStart + sd.SeqLen; end > numBases {
			numBases = end
		}
	}
	mappedRef, err := reference.LoadReferenceImage(f.referenceBin, numBases, cfg.Sequences)
	if err != nil {
		log.Fatal(errors.E(err, "loading reference image", f.referenceBin))
	}
	defer mappedRef.Close()
	refSeq := mappedRef.Seq

	ht := reference.NewHashtable(cfg, mappedBuckets.Buckets)
	primaryHasher := sequences.NewCrcHasher(cfg.PrimaryCrcPoly, cfg.PrimaryCrcBits)
	secondaryHasher := sequences.NewCrcHasher(cfg.SecondaryCrcPoly, cfg.SecondaryCrcBits)

	extendTable := reference.NewExtendTable(nil)
	if mappedExtendTable != nil {
		extendTable = mappedExtendTable.Table
	}
	mapper := seedmap.NewMapper(seedmap.DefaultOpts, ht, extendTable, primaryHasher, secondaryHasher)
	builder1 := seedmap.NewChainBuilder(seedmap.DefaultOpts.ChainFilterRatio)
	builder2 := seedmap.NewChainBuilder(seedmap.DefaultOpts.ChainFilterRatio)

	insertParams := align.NewInsertSizeParameters(f.peMin, f.peMax, f.peMean, f.peSigma, orientation)
	pairCfg := align.Config{
		UnpairedPenalty: f.unpairedPenalty,
		XsPairPenalty:   f.xsPairPenalty,
		SnpCost:         f.snpCost,
		MapqMinLen:      f.mapqMinLen,
		MinScore:        f.minScore,
		SampleMapq0:     f.sampleMapq0,
	}

	r1, err := file.Open(ctx, f.r1)
	if err != nil {
		log.Fatal(errors.E(err, "opening R1", f.r1))
	}
	defer r1.Close(ctx)
	r2, err := file.Open(ctx, f.r2)
	if err != nil {
		log.Fatal(errors.E(err, "opening R2", f.r2))
	}
	defer r2.Close(ctx)

	scanner := fastq.NewPairScanner(r1.Reader(ctx), r2.Reader(ctx), f.bufSize)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var nPairs int
	for {
		mate1, mate2, ok := scanner.Scan()
		if !ok {
			break
		}
		nPairs++

		builder1.Reset(mate1.Len())
		builder2.Reset(mate2.Len())
		mapper.MapRead(mate1, builder1)
		mapper.MapRead(mate2, builder2)
		builder1.FilterChains()
		builder2.FilterChains()

		chain1, chain2 := bestChain(builder1.Chains()), bestChain(builder2.Chains())

		if chain1 != nil && chain2 == nil {
			if rescued, ok := align.Rescue(chain1, mate2, refSeq, insertParams, false); ok {
				chain2 = rescued.Chain
			}
		} else if chain2 != nil && chain1 == nil {
			if rescued, ok := align.Rescue(chain2, mate1, refSeq, insertParams, false); ok {
				chain1 = rescued.Chain
			}
		}

		pair := resolvePair(pairCfg, insertParams, chain1, chain2, mate1.Len(), mate2.Len())
		writePairLine(out, mate1.Name, chain1, chain2, pair)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(errors.E(err, "scanning FASTQ input"))
	}
	log.Printf("seedmap: processed %d read pairs", nPairs)
}

// resolvedPair carries the per-end MAPQ values derived for one read pair.
type resolvedPair struct {
	mapq1, mapq2 int
}

// resolvePair runs the pair-penalty and per-end MAPQ derivation over
// the two chosen chains, via the chainAlignment adapter.
func resolvePair(cfg align.Config, insertParams *align.InsertSizeParameters, chain1, chain2 *seedmap.SeedChain, len1, len2 int) resolvedPair {
	a1, a2 := toAlignment(chain1, len1), toAlignment(chain2, len2)
	properPair := a1 != nil && a2 != nil && align.PairMatches(a1, a2, insertParams)

	score1, score2 := 0, 0
	if a1 != nil {
		score1 = a1.Score()
	}
	if a2 != nil {
		score2 = a2.Score()
	}
	penalty, _, _ := align.ComputePairPenalty(cfg, insertParams, a1, a2, properPair, maxInt(len1, len2))
	pairScore := score1 + score2 - penalty

	best := align.Pair{A1: a1, A2: a2, Score: pairScore, IsProperPair: properPair}
	if chain1 != nil {
		best.HasOnlyRandomSamples = best.HasOnlyRandomSamples || chain1.RandomSamplesOnly
		best.IsExtra = best.IsExtra || chain1.Extra
	}
	if chain2 != nil {
		best.HasOnlyRandomSamples = best.HasOnlyRandomSamples || chain2.RandomSamplesOnly
		best.IsExtra = best.IsExtra || chain2.Extra
	}

	var rp resolvedPair
	if align.ForceMapq0(cfg, &best) {
		return rp
	}
	rp.mapq1 = align.UpdateEndMapq(cfg, len1, score1, cfg.MinScore, 1, nil, 0)
	rp.mapq2 = align.UpdateEndMapq(cfg, len2, score2, cfg.MinScore, 1, nil, 0)
	return rp
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func bestChain(chains []*seedmap.SeedChain) *seedmap.SeedChain {
	var best *seedmap.SeedChain
	for _, c := range chains {
		if c.Filtered {
			continue
		}
		if best == nil || c.Coverage > best.Coverage {
			best = c
		}
	}
	return best
}

func writePairLine(out *bufio.Writer, name string, c1, c2 *seedmap.SeedChain, pair resolvedPair) {
	fmt.Fprintf(out, "%s\t%s\t%s\n", name, chainSummary(c1, pair.mapq1), chainSummary(c2, pair.mapq2))
}

func chainSummary(c *seedmap.SeedChain, mapq int) string {
	if c == nil {
		return "*"
	}
	strand := "+"
	if c.ReverseComplement {
		strand = "-"
	}
	cb := cigar.NewCigarBuilder()
	for i := 0; i < c.ReadSpanLength(); i++ {
		cb.AddMatch()
	}
	cb.ConsolidateRecords()
	return fmt.Sprintf("%d%s\t%d\t%s", c.FirstRefBase, strand, mapq, cb.String())
}

func loadHashtable(ctx context.Context, configPath, bucketPath, extendTablePath string) (*reference.HashtableConfig, *reference.MappedBuckets, *reference.MappedExtendTable, error) {
	f, err := file.Open(ctx, configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close(ctx)

	cfg, err := reference.ParseHashtableConfig(f.Reader(ctx))
	if err != nil {
		return nil, nil, nil, err
	}

	mapped, err := reference.LoadHashtableBuckets(bucketPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var mappedExtend *reference.MappedExtendTable
	if cfg.HasExtendTable() {
		if extendTablePath == "" {
			return nil, nil, nil, errors.E("seedmap: hash table config has an extend table but -extend-table-bin was not given")
		}
		mappedExtend, err = reference.LoadExtendTable(extendTablePath)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return cfg, mapped, mappedExtend, nil
}
