// vrlbench is a small CLI around pkg/runtime: compile a VRL source file
// once and run it through any of the three execution backends, printing
// the resolved value and the time it took. It exists to drive the
// execution core end to end the way a real embedder would, and to make
// it easy to compare the VM against the JIT on the same program.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/config"
	"github.com/vrlcore/vrlcore/pkg/runtime"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "vrlbench",
		Short:   "Compile and run VRL programs against the vrlcore execution core",
		Version: version,
	}

	var (
		backend     string
		inputPath   string
		repeat      int
		diagDir     string
		jitEnabled  bool
		hotPathRuns int
	)

	runCmd := &cobra.Command{
		Use:   "run <file.vrl>",
		Short: "Parse, compile, and run a VRL program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], runOptions{
				backend:     backend,
				inputPath:   inputPath,
				repeat:      repeat,
				diagDir:     diagDir,
				jitEnabled:  jitEnabled,
				hotPathRuns: hotPathRuns,
			})
		},
	}
	runCmd.Flags().StringVarP(&backend, "backend", "b", "vm", "Execution backend: vm, jit, or resolve")
	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file to use as the target's root value (default: null)")
	runCmd.Flags().IntVarP(&repeat, "repeat", "r", 1, "Number of times to run the program, for warming up jit promotion")
	runCmd.Flags().StringVar(&diagDir, "diagnostics-dir", "", "Directory to dump unoptimized/optimized LLVM IR to")
	runCmd.Flags().BoolVar(&jitEnabled, "enable-jit", true, "Allow promotion from vm to jit on hot paths")
	runCmd.Flags().IntVar(&hotPathRuns, "hot-path-threshold", config.Default().HotPathThreshold, "Run count before a vm-backed program is promoted")

	validateCmd := &cobra.Command{
		Use:   "validate <file.vrl>",
		Short: "Parse and compile a VRL program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(args[0])
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

type runOptions struct {
	backend     string
	inputPath   string
	repeat      int
	diagDir     string
	jitEnabled  bool
	hotPathRuns int
}

func runFile(path string, opts runOptions) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := config.Default()
	cfg.EnableJIT = opts.jitEnabled
	cfg.HotPathThreshold = opts.hotPathRuns
	cfg.DiagnosticsDir = opts.diagDir
	if opts.backend == "jit" {
		cfg.HotPathThreshold = 1
	}

	rt := runtime.New(compstate.Standard(), cfg)
	prog, err := rt.Compile(path, string(source))
	if err != nil {
		return fmt.Errorf("compile failed:\n%w", err)
	}
	printSuccess(fmt.Sprintf("compiled %s", path))

	root, err := loadInput(opts.inputPath)
	if err != nil {
		return err
	}

	var (
		result value.Value
		last   time.Duration
	)
	for i := 0; i < opts.repeat; i++ {
		tgt := target.NewLocalTarget(root)
		start := time.Now()
		switch opts.backend {
		case "vm", "jit":
			// RunVM promotes to the jit backend itself once
			// HotPathThreshold runs have accumulated; --backend=jit
			// is just --backend=vm with --hot-path-threshold pulled
			// down to 1, so promotion happens on the second run.
			result, err = rt.RunVM(prog, tgt)
		case "resolve":
			result, err = rt.Resolve(prog, tgt)
		default:
			return fmt.Errorf("unknown backend %q (want vm, jit, or resolve)", opts.backend)
		}
		last = time.Since(start)
		if err != nil {
			return fmt.Errorf("run %d/%d failed: %w", i+1, opts.repeat, err)
		}
	}

	printInfo(fmt.Sprintf("ran %d time(s) on backend %q, last run took %s", opts.repeat, opts.backend, last))
	printSuccess(fmt.Sprintf("result: %s", result.String()))
	return nil
}

func validateFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	rt := runtime.New(compstate.Standard(), config.Default())
	if _, err := rt.Compile(path, string(source)); err != nil {
		return fmt.Errorf("invalid:\n%w", err)
	}
	printSuccess(fmt.Sprintf("%s is valid", path))
	return nil
}

// loadInput reads a JSON file into a value.Value tree to seed a
// LocalTarget's root, or value.Null if no path was given.
func loadInput(path string) (value.Value, error) {
	if path == "" {
		return value.Null, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Null, fmt.Errorf("reading input %s: %w", path, err)
	}
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return value.Null, fmt.Errorf("parsing input %s: %w", path, err)
	}
	return jsonToValue(parsed), nil
}

// jsonToValue converts the generic interface{} tree encoding/json
// produces into a value.Value tree, the same job the teacher's
// interfaceToValue does for its own VM Value variants.
func jsonToValue(v interface{}) value.Value {
	switch val := v.(type) {
	case nil:
		return value.Null
	case bool:
		return value.Boolean(val)
	case float64:
		if val == float64(int64(val)) {
			return value.Integer(int64(val))
		}
		return value.Float(val)
	case string:
		return value.Bytes(val)
	case []interface{}:
		items := make([]value.Value, len(val))
		for i, item := range val {
			items[i] = jsonToValue(item)
		}
		return value.Array(items)
	case map[string]interface{}:
		fields := make(map[string]value.Value, len(val))
		for k, item := range val {
			fields[k] = jsonToValue(item)
		}
		return value.Object(fields)
	default:
		return value.Null
	}
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

func printInfo(msg string)    { infoColor.Printf("[INFO] %s\n", msg) }
func printSuccess(msg string) { successColor.Printf("[OK] %s\n", msg) }
func printError(err error)    { errorColor.Printf("[ERROR] %s\n", err.Error()) }
