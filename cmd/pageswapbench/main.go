package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keelsong/pageswap/internal/swapper"
)

// fileConfig mirrors swapper.Config for YAML loading; flags override
// whatever a -config file sets.
type fileConfig struct {
	PageSize                  uint32 `yaml:"pageSize"`
	NoChannelStriping         bool   `yaml:"noChannelStriping"`
	UseDirectIO               bool   `yaml:"useDirectIO"`
	ChannelStripePower        int    `yaml:"channelStripePower"`
	ChannelStripeShift        uint   `yaml:"channelStripeShift"`
	PrintReflectionExceptions bool   `yaml:"printReflectionExceptions"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

func (fc fileConfig) toSwapperConfig() swapper.Config {
	return swapper.Config{
		PageSize:                  fc.PageSize,
		NoChannelStriping:         fc.NoChannelStriping,
		UseDirectIO:               fc.UseDirectIO,
		ChannelStripePower:        fc.ChannelStripePower,
		ChannelStripeShift:        fc.ChannelStripeShift,
		PrintReflectionExceptions: fc.PrintReflectionExceptions,
	}
}

func main() {
	benchCmd := flag.NewFlagSet("bench", flag.ExitOnError)
	benchFile := benchCmd.String("file", "", "backing file path (required)")
	benchConfig := benchCmd.String("config", "", "optional YAML config file")
	benchPageSize := benchCmd.Uint("pagesize", 4096, "page size in bytes")
	benchPages := benchCmd.Int("pages", 1000, "number of pages to write/read")
	benchVector := benchCmd.Int("vector", 1, "pages per vectored I/O batch (1 = scalar only)")
	benchStriping := benchCmd.Bool("no-striping", false, "disable channel striping")

	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)
	inspectFile := inspectCmd.String("file", "", "backing file path (required)")
	inspectPageSize := inspectCmd.Uint("pagesize", 4096, "page size in bytes")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "bench":
		benchCmd.Parse(os.Args[2:])
		if *benchFile == "" {
			fmt.Println("Usage: pageswapbench bench -file=<path> [flags]")
			os.Exit(1)
		}
		cfg := swapper.Config{
			PageSize:          uint32(*benchPageSize),
			NoChannelStriping: *benchStriping,
		}
		if *benchConfig != "" {
			fc, err := loadFileConfig(*benchConfig)
			if err != nil {
				fmt.Printf("config error: %v\n", err)
				os.Exit(1)
			}
			cfg = fc.toSwapperConfig()
			benchCmd.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "pagesize":
					cfg.PageSize = uint32(*benchPageSize)
				case "no-striping":
					cfg.NoChannelStriping = *benchStriping
				}
			})
		}
		if err := runBench(*benchFile, cfg, *benchPages, *benchVector); err != nil {
			fmt.Printf("bench failed: %v\n", err)
			os.Exit(1)
		}

	case "inspect":
		inspectCmd.Parse(os.Args[2:])
		if *inspectFile == "" {
			fmt.Println("Usage: pageswapbench inspect -file=<path> [flags]")
			os.Exit(1)
		}
		if err := runInspect(*inspectFile, uint32(*inspectPageSize)); err != nil {
			fmt.Printf("inspect failed: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pageswapbench - exercise the page swapper substrate

Commands:
  bench -file=<path> [-pagesize=4096] [-pages=1000] [-vector=1] [-no-striping] [-config=<yaml>]
  inspect -file=<path> [-pagesize=4096]`)
}

func runBench(path string, cfg swapper.Config, pages, vectorBatch int) error {
	fs := swapper.NewOSFileSystem()
	sw, err := swapper.Open(fs, path, cfg)
	if err != nil {
		return err
	}
	defer sw.Close()

	pageSize := int(cfg.PageSize)
	rng := rand.New(rand.NewSource(1))

	start := time.Now()
	if vectorBatch <= 1 {
		buf := make([]byte, pageSize)
		for p := 0; p < pages; p++ {
			rng.Read(buf)
			if _, err := sw.Write(int64(p), buf); err != nil {
				return err
			}
		}
	} else {
		for p := 0; p < pages; p += vectorBatch {
			n := vectorBatch
			if p+n > pages {
				n = pages - p
			}
			bufs := make([][]byte, n)
			for i := range bufs {
				bufs[i] = make([]byte, pageSize)
				rng.Read(bufs[i])
			}
			if _, err := sw.WriteVector(int64(p), bufs); err != nil {
				return err
			}
		}
	}
	writeElapsed := time.Since(start)

	start = time.Now()
	buf := make([]byte, pageSize)
	for p := 0; p < pages; p++ {
		if _, err := sw.Read(int64(p), buf); err != nil {
			return err
		}
	}
	readElapsed := time.Since(start)

	if err := sw.Force(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "pages\t%d\n", pages)
	fmt.Fprintf(w, "pageSize\t%d\n", pageSize)
	fmt.Fprintf(w, "write\t%v\t%.1f MB/s\n", writeElapsed, mbPerSec(pages, pageSize, writeElapsed))
	fmt.Fprintf(w, "read\t%v\t%.1f MB/s\n", readElapsed, mbPerSec(pages, pageSize, readElapsed))
	fmt.Fprintf(w, "lastPageId\t%d\n", sw.GetLastPageId())
	w.Flush()
	return nil
}

func mbPerSec(pages, pageSize int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	bytes := float64(pages) * float64(pageSize)
	return bytes / (1024 * 1024) / d.Seconds()
}

func runInspect(path string, pageSize uint32) error {
	fs := swapper.NewOSFileSystem()
	sw, err := swapper.Open(fs, path, swapper.Config{PageSize: pageSize})
	if err != nil {
		return err
	}
	defer sw.Close()

	fmt.Printf("file: %s\n", sw.File())
	fmt.Printf("pageSize: %d\n", pageSize)
	fmt.Printf("lastPageId: %d\n", sw.GetLastPageId())
	return nil
}
