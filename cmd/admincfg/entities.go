package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"admincfg/internal/dsl"
	"admincfg/internal/registry"
	"admincfg/internal/render"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List loaded entities and their views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return output.Encode(os.Stdout, render.ListEntities(reg.Entities()))
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <entity> [view]",
	Short: "Describe an entity, or one of its views",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		e, err := lookupEntity(reg, args[0])
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return output.Encode(os.Stdout, render.DescribeEntity(e))
		}
		v, err := lookupView(e, args[1])
		if err != nil {
			return err
		}
		return output.Encode(os.Stdout, render.DescribeView(v))
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(describeCmd)
}

func lookupEntity(reg *registry.Registry, name string) (*dsl.Entity, error) {
	e, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("entity %q not found", name)
	}
	return e, nil
}

func lookupView(e *dsl.Entity, name string) (*dsl.View, error) {
	t, ok := dsl.ParseViewType(name)
	if !ok {
		return nil, fmt.Errorf("unknown view type %q", name)
	}
	if !e.HasView(t) {
		return nil, fmt.Errorf("entity %q has no %s view", e.Name(), t)
	}
	return e.View(t), nil
}
