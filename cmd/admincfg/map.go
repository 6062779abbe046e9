package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"admincfg/internal/dsl"
	"admincfg/internal/registry"
	"admincfg/internal/render"
)

var mapCmd = &cobra.Command{
	Use:   "map <entity> <view> [file|-]",
	Short: "Map raw JSON records into entries through a view",
	Long: `Reads a JSON array of records (or a single record object) from the
file, or from stdin when the file is "-" or omitted, and prints the
entries produced by the view.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runMap,
}

var validateCmd = &cobra.Command{
	Use:   "validate <entity> <view> [file|-]",
	Short: "Map records through a view and check them against its validation rules",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(validateCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	v, records, err := viewAndRecords(args)
	if err != nil {
		return err
	}
	entries := v.MapEntries(records)
	log.Debug().Str("view", v.Name()).Int("records", len(records)).Msg("records mapped")
	return render.WriteEntries(os.Stdout, output, v, entries)
}

func runValidate(cmd *cobra.Command, args []string) error {
	v, records, err := viewAndRecords(args)
	if err != nil {
		return err
	}
	var results []render.ValidationOutput
	failed := 0
	for _, entry := range v.MapEntries(records) {
		errs := dsl.Validate(v, entry)
		if len(errs) > 0 {
			failed++
		} else {
			errs = []dsl.FieldError{}
		}
		results = append(results, render.ValidationOutput{IdentifierValue: entry.IdentifierValue, Errors: errs})
	}
	if err := output.Encode(os.Stdout, results); err != nil {
		return err
	}
	if failed > 0 && cfg.FailOnIssues {
		return fmt.Errorf("%d of %d records failed validation", failed, len(records))
	}
	return nil
}

func viewAndRecords(args []string) (*dsl.View, []map[string]any, error) {
	reg, err := openRegistry()
	if err != nil {
		return nil, nil, err
	}
	v, err := resolveView(reg, args[0], args[1])
	if err != nil {
		return nil, nil, err
	}
	src := "-"
	if len(args) == 3 {
		src = args[2]
	}
	records, err := readRecords(src)
	if err != nil {
		return nil, nil, err
	}
	return v, records, nil
}

func resolveView(reg *registry.Registry, entity, view string) (*dsl.View, error) {
	e, err := lookupEntity(reg, entity)
	if err != nil {
		return nil, err
	}
	return lookupView(e, view)
}

// readRecords decodes a JSON array of objects or a single object.
func readRecords(src string) ([]map[string]any, error) {
	var r io.Reader = os.Stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return decodeRecords(data)
}

func decodeRecords(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var one map[string]any
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		return []map[string]any{one}, nil
	}
	var many []map[string]any
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return many, nil
}
