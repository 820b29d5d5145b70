package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/norraist/PaxDei-Planner/internal/solver"
)

// strategyFlag is a pflag.Value that only accepts registered strategy names
type strategyFlag struct {
	name string
}

var _ pflag.Value = (*strategyFlag)(nil)

func (f *strategyFlag) String() string { return f.name }

func (f *strategyFlag) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if _, err := solver.StrategyByName(v); err != nil {
		return err
	}
	f.name = v
	return nil
}

func (f *strategyFlag) Type() string { return "strategy" }
