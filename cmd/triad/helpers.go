package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/danielpatrickdp/triad-field/internal/codec"
	"github.com/danielpatrickdp/triad-field/internal/replay"
	"github.com/danielpatrickdp/triad-field/internal/scenario"
	"github.com/danielpatrickdp/triad-field/internal/store"
)

// #region output
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printProtoJSON renders v in the same Struct form the FieldService sends.
func printProtoJSON(w io.Writer, v any) error {
	s, err := codec.ToStruct(v)
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

// #region loading
func (a *app) openStore() (*store.Store, error) {
	st, err := store.NewStore(a.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", a.cfg.Store.Path, err)
	}
	return st, nil
}

// loadScenarios reads every file and builtin name, in that order.
func loadScenarios(files, builtins []string) ([]*scenario.Scenario, error) {
	var out []*scenario.Scenario
	for _, path := range files {
		s, err := scenario.LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	for _, name := range builtins {
		s, err := scenario.LoadBuiltin(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// loadFixture accepts a JSON replay fixture or any scenario file with a timeline.
func loadFixture(path string) (*replay.Fixture, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if f, err := replay.LoadFixture(path); err == nil && len(f.Points) > 0 {
			return f, nil
		}
	}
	s, err := scenario.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return replay.FromScenario(s), nil
}

// #endregion loading
