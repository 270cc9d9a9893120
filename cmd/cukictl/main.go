// Command cukictl drives a cuki.Estimator (and optionally a baseline
// comparison cache) over a trace file, emitting periodic WSS samples.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/cukiwss/cuki"
	"github.com/cukiwss/cuki/internal/baselines"
	"github.com/cukiwss/cuki/internal/buffer"
	"github.com/cukiwss/cuki/internal/sink"
	"github.com/cukiwss/cuki/internal/trace"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		fmt.Fprintln(os.Stderr, "usage: cukictl run [flags]")
		os.Exit(2)
	}

	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := runFlags.String("config", "", "path to a yaml config file")
	tracePath := runFlags.String("trace", "", "trace file path (overrides config)")
	traceFormat := runFlags.String("format", "", "trace format: synthetic, msr, twitter (overrides config)")
	baselineName := runFlags.String("baseline", "", "run a baseline estimator alongside the CCF: ss, swamp, bmc, mbf, windowed, adaptive, naive, tinylfu")
	outPath := runFlags.String("out", "", "output path for samples (default stdout)")
	oppoAging := runFlags.Bool("oppo-aging", false, "use opportunistic aging instead of window-driven sweeps")
	runFlags.Parse(os.Args[2:])

	cfg, err := loadFileConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *tracePath != "" {
		cfg.Trace = *tracePath
	}
	if *traceFormat != "" {
		cfg.TraceFormat = *traceFormat
	}
	if *baselineName != "" {
		cfg.Baseline = *baselineName
	}
	if *outPath != "" {
		cfg.Out = *outPath
	}
	if *oppoAging {
		cfg.OppoAging = true
	}

	if err := run(cfg); err != nil {
		log.Fatalf("cukictl: %v", err)
	}
}

func run(cfg fileConfig) error {
	out := io.Writer(os.Stdout)
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("opening output %q: %w", cfg.Out, err)
		}
		defer f.Close()
		out = f
	}
	writer := sink.NewBuffered(out, 64*1024)
	defer writer.Close()

	var base baselines.Estimator
	if cfg.Baseline != "" {
		b, err := newBaseline(cfg.Baseline)
		if err != nil {
			return err
		}
		base = b
	}

	est, err := cuki.New(
		cuki.WithNumBuckets(int64(nextPow2(cfg.NumBuckets))),
		cuki.WithTagsPerBucket(cfg.TagsPerBucket),
		cuki.WithTagBits(cfg.TagBits),
		cuki.WithSizeBits(cfg.SizeBits),
		cuki.WithClockBits(cfg.ClockBits),
		cuki.WithScopes(cfg.ScopeBits, cfg.NumScope),
		cuki.WithLockNumber(nextPow2(cfg.LockNumber)),
		cuki.WithMaxKicks(cfg.MaxKicks),
		cuki.WithWindowSize(cfg.WindowSize),
		cuki.WithOpportunisticAging(cfg.OppoAging),
		cuki.WithReportInterval(cfg.ReportInterval, 1),
		cuki.WithIRRShardCount(cfg.IRRShardCount),
		cuki.WithOnSample(func(refIndex, wss uint64) {
			if err := writer.WriteSample(refIndex, wss); err != nil {
				log.Printf("cukictl: write sample: %v", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("building estimator: %w", err)
	}

	reader, closeFn, err := openTrace(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	// Records flow from the single reader goroutine through a lock-free
	// ring buffer into batched Put calls, decoupling trace I/O from the
	// estimator's hot path the way a second producer/consumer stage would.
	var n atomic.Uint64
	wb := buffer.NewWriteBuffer(4096, 256, 50*time.Millisecond, func(batch []trace.Record) {
		for _, rec := range batch {
			est.Put(rec.Key, rec.Size)
			if base != nil {
				base.Put(rec.Key, rec.Size)
			}
		}
		n.Add(uint64(len(batch)))
	})

	var g errgroup.Group
	g.Go(func() error {
		defer wb.Close()
		for {
			rec, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading trace: %w", err)
			}
			for !wb.Push(rec) {
				runtime.Gosched()
			}
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := est.Metrics()
	fmt.Fprintf(os.Stderr, "processed %d references, final WSS %s (inserted=%d refreshed=%d displaced=%d dropped=%d)\n",
		n.Load(), humanize.Bytes(est.WSS()), snap.Inserted, snap.Refreshed, snap.Displaced, snap.Dropped)
	if base != nil {
		fmt.Fprintf(os.Stderr, "baseline %s final WSS %s\n", base.Name(), humanize.Bytes(base.WSS()))
	}
	return nil
}

func openTrace(cfg fileConfig) (trace.Reader, func() error, error) {
	switch cfg.TraceFormat {
	case "", "synthetic":
		return trace.NewSynthetic(1_000_000, 100_000, 1.1, 64, 1<<16, 1), func() error { return nil }, nil
	case "msr":
		f, err := os.Open(cfg.Trace)
		if err != nil {
			return nil, nil, fmt.Errorf("opening trace %q: %w", cfg.Trace, err)
		}
		return trace.NewMSR(bufio.NewReader(f)), f.Close, nil
	case "twitter":
		f, err := os.Open(cfg.Trace)
		if err != nil {
			return nil, nil, fmt.Errorf("opening trace %q: %w", cfg.Trace, err)
		}
		return trace.NewTwitter(bufio.NewReader(f)), f.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown trace format %q", cfg.TraceFormat)
	}
}

func newBaseline(name string) (baselines.Estimator, error) {
	switch name {
	case "ss":
		return baselines.NewSS(1 << 16), nil
	case "swamp":
		return baselines.NewSWAMP(1 << 30), nil
	case "bmc":
		return baselines.NewBMC(10 * time.Minute), nil
	case "mbf":
		return baselines.NewMBF(64 << 20), nil
	case "windowed":
		return baselines.NewWindowedRecency(1<<16, 10*time.Minute), nil
	case "adaptive":
		return baselines.NewAdaptive(1 << 16), nil
	case "naive":
		return baselines.NewNaive(10 * time.Minute), nil
	case "tinylfu":
		return baselines.NewTinyLFUBenchmark(1 << 16), nil
	default:
		return nil, fmt.Errorf("unknown baseline %q", name)
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
