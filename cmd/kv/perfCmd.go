package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kvprovider/kvprovider/cmd/util"
	"github.com/kvprovider/kvprovider/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for a running provider server",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	KeyValueCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	KeyValueCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	KeyValueCommands.PersistentFlags().Int(key, 1000, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	KeyValueCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	if skip := viper.GetString("skip"); skip != "" {
		perfSkip = strings.Split(skip, ",")
	}

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for a running provider server")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Database: %s\n", util.GetDatabase())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)

	putResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("put") {
			return
		}

		getKey, iter := getKeys("put")

		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcClient.Erase(0, [][]byte{[]byte(k)}); err != nil {
					log.Printf("(put) - error erasing key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := rpcClient.Put(0, [][]byte{[]byte(getKey(counter))}, [][]byte{[]byte("test")}); err != nil {
					log.Printf("(put) - error putting key: %v\n", err)
				}
				counter++
			}
		})
	})
	results["put"] = putResult
	printResult("put", putResult)

	putLargeValueResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("put-large") {
			return
		}

		largeValue := make([]byte, perfLargeValueSizeKB*1024)
		getKey, iter := getKeys("put-large")

		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcClient.Erase(0, [][]byte{[]byte(k)}); err != nil {
					log.Printf("(put-large) - error erasing key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := rpcClient.Put(0, [][]byte{[]byte(getKey(counter))}, [][]byte{largeValue}); err != nil {
					log.Printf("(put-large) - error putting key: %v\n", err)
				}
				counter++
			}
		})
	})
	results["put-large"] = putLargeValueResult
	printResult("large-put", putLargeValueResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		getKey, iter := getKeys("get")

		iter(func(k string) {
			if err := rpcClient.Put(0, [][]byte{[]byte(k)}, [][]byte{[]byte("test")}); err != nil {
				log.Printf("(get) - error putting key: %v\n", err)
			}
		})

		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcClient.Erase(0, [][]byte{[]byte(k)}); err != nil {
					log.Printf("(get) - error erasing key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, _, err := rpcClient.Get(0, [][]byte{[]byte(getKey(counter))}); err != nil {
					log.Printf("(get) - error getting key: %v\n", err)
				}
				counter++
			}
		})
	})
	results["get"] = getResult
	printResult("get", getResult)

	eraseResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("erase") {
			return
		}

		getKey, iter := getKeys("erase")

		iter(func(k string) {
			if err := rpcClient.Put(0, [][]byte{[]byte(k)}, [][]byte{[]byte("test")}); err != nil {
				log.Printf("(erase) - error putting key: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := rpcClient.Erase(0, [][]byte{[]byte(getKey(counter))}); err != nil {
					log.Printf("(erase) - error erasing key: %v\n", err)
				}
				counter++
			}
		})
	})
	results["erase"] = eraseResult
	printResult("erase", eraseResult)

	hasResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("has") {
			return
		}

		getKey, iter := getKeys("has")

		iter(func(k string) {
			if err := rpcClient.Put(0, [][]byte{[]byte(k)}, [][]byte{[]byte("test")}); err != nil {
				log.Printf("(has) - error putting key: %v\n", err)
			}
		})

		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcClient.Erase(0, [][]byte{[]byte(k)}); err != nil {
					log.Printf("(has) - error erasing key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := rpcClient.Exists(0, [][]byte{[]byte(getKey(counter))}); err != nil {
					log.Printf("(has) - error checking key: %v\n", err)
				}
				counter++
			}
		})
	})
	results["has"] = hasResult
	printResult("has", hasResult)

	mixedUsageResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		getKey, iter := getKeys("mixed")

		iter(func(k string) {
			if err := rpcClient.Put(0, [][]byte{[]byte(k)}, [][]byte{[]byte("test")}); err != nil {
				log.Printf("(mixed) - error putting key: %v\n", err)
			}
		})

		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcClient.Erase(0, [][]byte{[]byte(k)}); err != nil {
					log.Printf("(mixed) - error erasing key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := [][]byte{[]byte(getKey(counter))}
				var err error
				switch counter % 4 {
				case 0:
					err = rpcClient.Put(0, key, [][]byte{[]byte("test")})
				case 1:
					_, _, err = rpcClient.Get(0, key)
				case 2:
					err = rpcClient.Erase(0, key)
				case 3:
					_, err = rpcClient.Exists(0, key)
				}
				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	})
	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Database", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			util.GetDatabase(),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
