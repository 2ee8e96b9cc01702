// Command qosroute drives the QoS path optimization engine: running the
// (case, algorithm, repeat) experiment matrix, injecting a chaos edge
// failure into a saved graph, or benchmarking a single demand against the
// k-shortest-path oracle. Its logging and config setup are adapted from
// the teacher's cmd/main.go (logrus + lumberjack + BurntSushi/toml).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"qosrouting/benchmark"
	"qosrouting/config"
	"qosrouting/experiment"
	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/optimize"
	"qosrouting/pathutil"
	"qosrouting/telemetry"
)

const (
	exitOK                = 0
	exitInvalidInput      = 2
	exitGraphDisconnected = 3
	exitTimeoutExhausted  = 4
)

func init() {
	logDir := "./logs"
	os.MkdirAll(logDir, 0755)

	fileLogger := &lumberjack.Logger{
		Filename:   logDir + "/qosroute.log",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	exitCode := exitOK

	root := &cobra.Command{
		Use:           "qosroute",
		Short:         "QoS-constrained path optimization engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var metricsAddr string
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "host:port to serve Prometheus metrics on (optional)")

	root.AddCommand(newRunCmd(&metricsAddr, &exitCode))
	root.AddCommand(newChaosCmd())
	root.AddCommand(newBenchCmd())

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("qosroute failed")
		if exitCode == exitOK {
			exitCode = exitInvalidInput
		}
	}
	return exitCode
}

func newRunCmd(metricsAddr *string, exitCode *int) *cobra.Command {
	var (
		graphArg   string
		casesArg   string
		repeats    int
		algosArg   string
		seed       int64
		timeoutSec int
		outDir     string
		benchFlag  bool
		paramsFile string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the experiment matrix across the six optimizers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				loaded, err := config.LoadConfig(configFile)
				if err != nil {
					*exitCode = exitInvalidInput
					return err
				}
				cfg = loaded
				if !cmd.Flags().Changed("repeats") {
					repeats = cfg.Experiment.NRepeats
				}
				if !cmd.Flags().Changed("timeout") {
					timeoutSec = cfg.Experiment.TimeoutSec
				}
			}

			if *metricsAddr != "" {
				reg := telemetry.DefaultRegistry()
				go func() {
					if err := telemetry.Serve(*metricsAddr, reg); err != nil {
						log.WithError(err).Warn("metrics server stopped")
					}
				}()
			}

			g, err := resolveGraph(graphArg, cfg, seed)
			if err != nil {
				*exitCode = exitInvalidInput
				return err
			}
			if !g.Connected() {
				*exitCode = exitGraphDisconnected
				return fmt.Errorf("graph is disconnected")
			}

			cases, err := resolveCases(g, casesArg, seed)
			if err != nil {
				*exitCode = exitInvalidInput
				return err
			}

			algos, err := resolveAlgorithms(algosArg)
			if err != nil {
				*exitCode = exitInvalidInput
				return err
			}

			if paramsFile != "" {
				if _, err := config.LoadParamsOverride(paramsFile); err != nil {
					*exitCode = exitInvalidInput
					return err
				}
				log.WithField("file", paramsFile).Info("loaded algorithm parameter override")
			}

			runner := optimize.GlobalRegistry()
			r := &experiment.Runner{
				Registry:   runner,
				NRepeats:   repeats,
				MasterSeed: seed,
				Timeout:    time.Duration(timeoutSec) * time.Second,
			}

			report := r.Run(cmd.Context(), cases, algos, g).WithTimestamp(timeStamp()).WithRunID(uuid.NewString())

			if benchFlag && len(cases) > 0 {
				tc := cases[0]
				kBest := benchmark.KCheapestSimplePaths(g, tc.Source, tc.Destination, tc.Bandwidth, 1, pathutil.WeightDelay)
				if len(kBest) > 0 {
					log.WithField("benchmark_cost", kBest[0].Cost).Info("k-shortest-path benchmark for first case")
				}
			}

			if failedTooMany(report) {
				*exitCode = exitTimeoutExhausted
				return fmt.Errorf("timeout exhausted for %.0f%% of cells", 100*timeoutFraction(report))
			}

			return writeReport(report, outDir)
		},
	}

	cmd.Flags().StringVar(&graphArg, "graph", "generate", "path to a graph CSV directory, or \"generate\"")
	cmd.Flags().StringVar(&casesArg, "cases", "predefined", "\"predefined\", or an integer number of random cases")
	cmd.Flags().IntVar(&repeats, "repeats", 5, "repeats per (case, algorithm) cell")
	cmd.Flags().StringVar(&algosArg, "algos", "ga,aco,pso,sa,ql,sarsa", "comma-separated algorithm names")
	cmd.Flags().Int64Var(&seed, "seed", 42, "master RNG seed")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 60, "per-cell timeout in seconds")
	cmd.Flags().StringVar(&outDir, "out", "./out", "directory to write the report JSON/CSV into")
	cmd.Flags().BoolVar(&benchFlag, "bench", false, "also log the k-shortest-path benchmark for the first case")
	cmd.Flags().StringVar(&paramsFile, "params", "", "optional YAML algorithm-parameter override file (parsed and validated; not applied to the optimizers)")
	cmd.Flags().StringVar(&configFile, "config", "", "optional qosroute.toml config file")

	return cmd
}

func newChaosCmd() *cobra.Command {
	var (
		graphArg string
		edgeArg  string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "chaos",
		Short: "Remove one edge from a saved graph to simulate a failure event",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			g, err := resolveGraph(graphArg, cfg, time.Now().UnixNano())
			if err != nil {
				return err
			}

			if edgeArg != "" {
				u, v, err := parseEdge(edgeArg)
				if err != nil {
					return err
				}
				if !netgraph.ChaosBreakEdge(g, u, v) {
					return fmt.Errorf("edge (%d,%d) does not exist", u, v)
				}
			} else {
				rng := rand.New(rand.NewSource(time.Now().UnixNano()))
				u, v, ok := netgraph.ChaosBreak(g, rng)
				if !ok {
					return fmt.Errorf("graph has no edges to remove")
				}
				log.WithFields(log.Fields{"u": u, "v": v}).Info("chaos: removed random edge")
			}

			return writeGraphSummary(g, outPath)
		},
	}

	cmd.Flags().StringVar(&graphArg, "graph", "", "path to a graph CSV directory")
	cmd.Flags().StringVar(&edgeArg, "edge", "", "specific edge \"u,v\" to remove (default: random)")
	cmd.Flags().StringVar(&outPath, "out", "./out/chaos.json", "where to write the post-chaos graph summary")
	cmd.MarkFlagRequired("graph")

	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		graphArg  string
		source    int
		dest      int
		bandwidth float64
		k         int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compute the k-shortest-path benchmark and Pareto frontier for one demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			g, err := resolveGraph(graphArg, cfg, 1)
			if err != nil {
				return err
			}

			paths := benchmark.KCheapestSimplePaths(g, source, dest, bandwidth, k, pathutil.WeightDelay)
			frontier := benchmark.ParetoFrontier(g, source, dest, bandwidth, 20, 1)

			out := struct {
				KBest    []pathutil.SimplePath `json:"k_best"`
				Frontier []metrics.PathMetrics `json:"pareto_frontier"`
			}{KBest: paths, Frontier: frontier}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&graphArg, "graph", "", "path to a graph CSV directory")
	cmd.Flags().IntVar(&source, "source", 0, "source node id")
	cmd.Flags().IntVar(&dest, "dest", 0, "destination node id")
	cmd.Flags().Float64Var(&bandwidth, "bandwidth", 0, "minimum required bandwidth (Mbps)")
	cmd.Flags().IntVar(&k, "k", 5, "number of k-shortest paths to compute")
	cmd.MarkFlagRequired("graph")

	return cmd
}

func resolveGraph(arg string, cfg *config.RunConfig, seed int64) (*netgraph.Graph, error) {
	if arg == "" || arg == "generate" {
		g, err := netgraph.GenerateErdosRenyi(cfg.Graph.DefaultNodeCount, cfg.Graph.DefaultConnectionProb, seed, netgraph.DefaultAttributeRanges())
		if err != nil {
			return nil, fmt.Errorf("failed to generate graph: %w", err)
		}
		return g, nil
	}

	result, err := netgraph.LoadFromCSV(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from %s: %w", arg, err)
	}
	return result.Graph, nil
}

func resolveCases(g *netgraph.Graph, arg string, seed int64) ([]experiment.TestCase, error) {
	if arg == "" || arg == "predefined" {
		return experiment.GeneratePredefined(g, seed), nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("--cases must be \"predefined\" or an integer, got %q", arg)
	}
	return experiment.GenerateRandom(g, seed, n), nil
}

func resolveAlgorithms(arg string) ([]string, error) {
	if arg == "" {
		return optimize.ListGlobal(), nil
	}
	names := strings.Split(arg, ",")
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
		if _, err := optimize.GetGlobal(names[i]); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func parseEdge(arg string) (int, int, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--edge must be \"u,v\", got %q", arg)
	}
	u, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid edge endpoint %q: %w", parts[0], err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid edge endpoint %q: %w", parts[1], err)
	}
	return u, v, nil
}

func failedTooMany(report *experiment.Report) bool {
	return timeoutFraction(report) >= 0.5
}

// timeoutFraction reports the share of per-cell records whose failure
// reason was a timeout, out of every cell the runner recorded.
func timeoutFraction(report *experiment.Report) float64 {
	if len(report.PerCell) == 0 {
		return 0
	}
	timedOut := 0
	for _, c := range report.PerCell {
		if c.FailureReason == optimize.FailureTimeout {
			timedOut++
		}
	}
	return float64(timedOut) / float64(len(report.PerCell))
}

func writeReport(report *experiment.Report, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	jsonData, err := report.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "report.json"), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write report.json: %w", err)
	}

	csvData, err := report.ComparisonCSV()
	if err != nil {
		return fmt.Errorf("failed to render comparison CSV: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "comparison.csv"), csvData, 0644); err != nil {
		return fmt.Errorf("failed to write comparison.csv: %w", err)
	}

	log.WithField("dir", outDir).Info("wrote experiment report")
	return nil
}

func writeGraphSummary(g *netgraph.Graph, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := struct {
		NumNodes  int  `json:"num_nodes"`
		NumEdges  int  `json:"num_edges"`
		Connected bool `json:"connected"`
	}{NumNodes: g.NumNodes(), NumEdges: g.NumEdges(), Connected: g.Connected()}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}

func timeStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
