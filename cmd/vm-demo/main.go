// Command vm-demo builds a handful of programs directly as AST trees (this
// repository has no parser — see ast's package doc), compiles each with
// package compiler, and runs it on package vm's cooperative scheduler,
// printing the result. Its four demos (spawn/join, a semaphore, closures,
// short-circuit operators) exercise the VM end-to-end the way the
// teacher's cmd/hey exercises its own VM.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wudi/threadvm/ast"
	"github.com/wudi/threadvm/compiler"
	"github.com/wudi/threadvm/config"
	"github.com/wudi/threadvm/runtime"
	"github.com/wudi/threadvm/vm"
)

func main() {
	app := &cli.Command{
		Name:  "vm-demo",
		Usage: "runs worked examples of the cooperative-threading bytecode VM",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
			&cli.Int64Flag{Name: "time-quantum-ms", Usage: "override the scheduler's preemption quantum"},
			&cli.BoolFlag{Name: "debug", Usage: "enable verbose scheduler/GC logging"},
		},
		Commands: []*cli.Command{
			spawnJoinCommand,
			semaphoreFifoCommand,
			closuresCommand,
			shortCircuitCommand,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("vm-demo failed")
	}
}

// loadConfig merges a --config file (if given) with the --time-quantum-ms
// and --debug flags, the flags taking precedence.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	if ms := cmd.Int64("time-quantum-ms"); ms > 0 {
		cfg.TimeQuantumMs = ms
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}

// runDemo compiles prog, runs it to completion on a freshly bootstrapped
// Runtime, and prints its final result.
func runDemo(cmd *cli.Command, name string, prog *ast.Program) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	instrs, err := compiler.Compile(prog)
	if err != nil {
		return fmt.Errorf("%s: compile: %w", name, err)
	}

	table := runtime.Filter(runtime.Bootstrap(os.Stdin, os.Stdout), cfg.Builtins)
	rt := vm.New(instrs, table)
	if q := cfg.TimeQuantum(); q > 0 {
		rt.SetTimeQuantum(q)
	} else {
		rt.SetTimeQuantum(vm.DefaultTimeQuantum)
	}
	if cfg.Debug {
		rt.SetDebugMode()
	}

	started := time.Now()
	rt, err = vm.Run(rt)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	rt.MarkAndSweep()

	if v, ok := rt.Result(); ok {
		fmt.Printf("%s => %s (%s, run_id=%s)\n", name, v, time.Since(started), rt.RunID())
	} else {
		fmt.Printf("%s => <no value> (%s, run_id=%s)\n", name, time.Since(started), rt.RunID())
	}
	return nil
}
