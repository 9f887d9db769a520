package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/buoybudget/buoybudget/pkg/budget"
	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/types"
)

type output struct {
	Budget types.BudgetResult `json:"budget"`
	SOC    types.SOCTrace     `json:"soc"`
}

func main() {
	projectPath := lflag.String("project", "-", "Path to the project JSON file, - reads stdin")
	carryDeficit := lflag.Bool("carry-deficit", false, "Carry unmet energy between days in the state of charge simulation")
	lflag.Configure()

	level, err := log.LevelFromLLog(llog.GetLevel())
	if err != nil {
		panic(err)
	}
	// stdout is reserved for the result
	ctx := log.With(context.Background(), slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if err := run(ctx, *projectPath, *carryDeficit, os.Stdout); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "budget failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, carryDeficit bool, out io.Writer) error {
	p, err := readProject(path)
	if err != nil {
		return err
	}
	p, _, err = types.MigrateProject(p, p.Version)
	if err != nil {
		return fmt.Errorf("failed to migrate project: %w", err)
	}
	if err := types.ValidateProject(p); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	c := budget.NewCalculator()
	result, err := c.CalculateBudget(ctx, p)
	if err != nil {
		return err
	}
	if !result.Reliability.Reliable() {
		log.Ctx(ctx).WarnContext(
			ctx,
			"budget is missing measurements",
			slog.Bool("solarDataMissing", result.Reliability.SolarDataMissing),
			slog.Bool("windDataMissing", result.Reliability.WindDataMissing),
		)
	}

	var opts []budget.SimulateOption
	if carryDeficit {
		opts = append(opts, budget.WithCarryDeficit())
	}
	trace := c.Simulate(ctx, result, result.Summary.BatteryCapacity, opts...)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Budget: result, SOC: trace}); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func readProject(path string) (types.ProjectConfig, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return types.ProjectConfig{}, fmt.Errorf("failed to open project: %w", err)
		}
		defer f.Close()
		r = f
	}
	var p types.ProjectConfig
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return types.ProjectConfig{}, fmt.Errorf("failed to decode project: %w", err)
	}
	return p, nil
}
