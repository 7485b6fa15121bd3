// Command seqstk is a host driver for the seqstk machine: it loads a byte
// image, runs it for a bounded number of cycles, and optionally serves
// Prometheus metrics while doing so. The machine itself never talks to the
// outside world beyond port stacks; every input/output surface here (file
// loading, metrics, logging) is host responsibility, per SPEC_FULL.md.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seqstk"
	"seqstk/internal/asm"
	"seqstk/internal/config"
	"seqstk/internal/metrics"
	"seqstk/internal/telemetry"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:   "seqstk",
		Short: "Run and inspect seqstk stack-machine images",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to the config file (default: seqstk.toml in the platform config dir)")

	root.AddCommand(newRunCmd(&cfgPath), newStepCmd(&cfgPath), newAsmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cfgPath string) (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func newRunCmd(cfgPath *string) *cobra.Command {
	var entry int32
	var maxCycles uint64

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load an image and run it to completion or a cycle budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("entry") {
				cfg.Run.EntryPoint = entry
			}
			if cmd.Flags().Changed("max-cycles") {
				cfg.Run.MaxCycles = maxCycles
			}

			log, err := telemetry.New(cfg.Logging.Level, cfg.Logging.JSON)
			if err != nil {
				return err
			}
			defer log.Sync()

			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			m := seqstk.NewMachine()
			if !m.Load(img) {
				return fmt.Errorf("image is %d bytes, larger than RAM (%d)", len(img), seqstk.RAMSize)
			}
			m.PC = cfg.Run.EntryPoint

			var collector *metrics.Collector
			if cfg.Metrics.Enabled {
				collector = metrics.NewCollector()
				srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: collector.Handler()}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Warn("metrics server stopped", zap.Error(err))
					}
				}()
				log.Info("metrics listening", zap.String("addr", cfg.Metrics.ListenAddr))
			}

			var n uint64
			for n = 0; n < cfg.Run.MaxCycles; n++ {
				if cfg.Run.HaltOnIdle && m.PC >= seqstk.RAMSize {
					break
				}
				if collector != nil {
					collector.Observe(m)
				} else {
					m.CycleOnce()
				}

				switch cfg.Run.TraceLevel {
				case "cycle":
					log.Debug("cycle", telemetry.CycleField(n), telemetry.PCField(m.PC), telemetry.StackDepthField(m.StackDepth()))
				case "stack":
					top, _ := m.Data.Peek()
					log.Debug("cycle", telemetry.CycleField(n), telemetry.PCField(m.PC), telemetry.StackDepthField(m.StackDepth()), zap.Int32("stack_top", top))
				}
			}

			log.Info("run finished",
				zap.Uint64("cycles", n),
				telemetry.PCField(m.PC),
				telemetry.StackDepthField(m.StackDepth()))
			return nil
		},
	}
	cmd.Flags().Int32Var(&entry, "entry", 0, "Initial program counter (overrides config)")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Cycle budget (overrides config)")
	return cmd
}

func newStepCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step <image>",
		Short: "Load an image and single-step it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			m := seqstk.NewMachine()
			if !m.Load(img) {
				return fmt.Errorf("image is %d bytes, larger than RAM (%d)", len(img), seqstk.RAMSize)
			}

			printState(m)
			reader := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("\n-> ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return nil
				}
				switch strings.TrimSpace(line) {
				case "n", "next", "":
					m.CycleOnce()
					printState(m)
				case "q", "quit":
					return nil
				default:
					fmt.Println("commands: n(ext), q(uit)")
				}
			}
		},
	}
	return cmd
}

func printState(m *seqstk.Machine) {
	fmt.Printf("pc=%d stack_depth=%d rts_depth=%d\n", m.PC, m.StackDepth(), m.RtsDepth())
}

func newAsmCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "asm <source.s>",
		Short: "Assemble a text source file into a seqstk image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			img, err := asm.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}

			target := out
			if target == "" {
				target = strings.TrimSuffix(args[0], ".s") + ".bin"
			}
			return os.WriteFile(target, img, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output image path (default: <source>.bin)")
	return cmd
}
