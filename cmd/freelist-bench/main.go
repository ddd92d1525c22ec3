// Command freelist-bench measures pool operation throughput under
// configurable variants (locking, validation, off-heap arenas).
package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/pkg/config"
	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/freelist"
	"github.com/ajitpratap0/freelist/pkg/logger"
)

var version = "0.1.0"

// slot is the benchmark payload: big enough that per-op allocation
// would show up in GC behavior, small enough to stay cache-friendly.
type slot struct {
	seq     uint64
	payload [240]byte
}

// benchFlags mirrors config.PoolConfig plus run-shape knobs
type benchFlags struct {
	Capacity   int           `json:"capacity"`
	Iterations int           `json:"iterations"`
	Workers    int           `json:"workers"`
	ThreadSafe bool          `json:"thread_safe"`
	Validate   bool          `json:"validate"`
	OffHeap    bool          `json:"off_heap"`
	Trace      bool          `json:"trace"`
	LogLevel   string        `json:"log_level"`
	Timeout    time.Duration `json:"timeout"`
	ConfigPath string        `json:"config_path,omitempty"`
}

func defaultFlags() *benchFlags {
	return &benchFlags{
		Capacity:   4096,
		Iterations: 1_000_000,
		Workers:    runtime.NumCPU(),
		LogLevel:   "info",
		Timeout:    5 * time.Minute,
	}
}

// report is the JSON result document printed on stdout
type report struct {
	Flags      *benchFlags    `json:"flags"`
	Elapsed    string         `json:"elapsed"`
	OpsPerSec  float64        `json:"ops_per_sec"`
	PoolStats  freelist.Stats `json:"pool_stats"`
	HeapAllocs uint64         `json:"heap_allocs_delta"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	flags := defaultFlags()

	root := &cobra.Command{
		Use:   "freelist-bench",
		Short: "Benchmark the freelist fixed-capacity object pool",
		Long: `freelist-bench drives a fixed-capacity free-list pool through
acquire/release and construct/destruct workloads and reports throughput.
Variant toggles (locking, validation, off-heap) match the library options.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("freelist-bench %s\n", version)
		},
	})

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the acquire/release benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(flags)
		},
	}
	run.Flags().IntVar(&flags.Capacity, "capacity", flags.Capacity, "pool capacity in slots")
	run.Flags().IntVar(&flags.Iterations, "iterations", flags.Iterations, "operations per worker")
	run.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "concurrent workers (forces thread-safe variant when > 1)")
	run.Flags().BoolVar(&flags.ThreadSafe, "thread-safe", flags.ThreadSafe, "use the mutex-guarded variant")
	run.Flags().BoolVar(&flags.Validate, "validate", flags.Validate, "use the validated release checks")
	run.Flags().BoolVar(&flags.OffHeap, "off-heap", flags.OffHeap, "place the arena in an anonymous mapping")
	run.Flags().BoolVar(&flags.Trace, "trace", flags.Trace, "trace every operation at debug level")
	run.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level (debug, info, warn, error)")
	run.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "abort the run after this duration")
	run.Flags().StringVar(&flags.ConfigPath, "config", "", "YAML pool config overriding the pool flags")
	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBench(flags *benchFlags) error {
	if err := logger.Init(logger.Config{Level: flags.LogLevel, Encoding: "console"}); err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if flags.ConfigPath != "" {
		var pc config.PoolConfig
		if err := config.Load(flags.ConfigPath, &pc); err != nil {
			return err
		}
		if err := pc.Validate(); err != nil {
			return err
		}
		flags.Capacity = pc.Capacity
		flags.ThreadSafe = pc.ThreadSafe
		flags.Validate = pc.Validation
		flags.OffHeap = pc.OffHeap
		flags.Trace = pc.Trace
	}
	if flags.Workers > 1 {
		flags.ThreadSafe = true
	}
	if flags.Workers < 1 || flags.Capacity < flags.Workers {
		return fmt.Errorf("need at least one worker and one slot per worker")
	}

	opts := []freelist.Option[slot]{freelist.WithName[slot]("bench")}
	if flags.ThreadSafe {
		opts = append(opts, freelist.WithThreadSafety[slot]())
	}
	if flags.Validate {
		opts = append(opts, freelist.WithValidation[slot]())
	}
	if flags.OffHeap {
		opts = append(opts, freelist.WithOffHeap[slot]())
	}
	if flags.Trace {
		opts = append(opts, freelist.WithObserver[slot](freelist.NewLogObserver(logger.Named("trace"))))
	}

	pool, err := freelist.New[slot](flags.Capacity, opts...)
	if err != nil {
		return err
	}
	defer pool.Close() //nolint:errcheck

	logger.Info("benchmark starting",
		zap.Int("capacity", flags.Capacity),
		zap.Int("iterations", flags.Iterations),
		zap.Int("workers", flags.Workers),
		zap.Bool("thread_safe", flags.ThreadSafe),
		zap.Bool("validate", flags.Validate),
		zap.Bool("off_heap", flags.OffHeap),
		zap.Int("physical_bytes", pool.PhysicalSize()))

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()
	deadline := start.Add(flags.Timeout)

	var wg sync.WaitGroup
	for w := 0; w < flags.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < flags.Iterations; i++ {
				if i%4096 == 0 && time.Now().After(deadline) {
					logger.Warn("worker timed out", zap.Int("worker", w), zap.Int("done", i))
					return
				}
				ptr, err := pool.Construct(func(s *slot) error {
					s.seq = uint64(i)
					return nil
				})
				if err != nil {
					if errors.IsExhausted(err) {
						continue
					}
					logger.Error("construct failed", zap.Int("worker", w), zap.Error(err))
					return
				}
				if err := pool.DestructAndRelease(ptr); err != nil {
					logger.Error("release failed", zap.Int("worker", w), zap.Error(err))
					return
				}
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	stats := pool.Stats()
	out := report{
		Flags:      flags,
		Elapsed:    elapsed.String(),
		OpsPerSec:  float64(stats.Acquires+stats.Releases) / elapsed.Seconds(),
		PoolStats:  stats,
		HeapAllocs: memAfter.Mallocs - memBefore.Mallocs,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
