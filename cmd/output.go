package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sitefinder/internal/model"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

const notFoundMessage = "No suitable website found."

// writeOutcome prints the outcome in the requested format, or the
// not-found line when there is none.
func writeOutcome(w io.Writer, outcome *model.Outcome, ok bool, format string) error {
	if !ok || outcome == nil {
		_, err := fmt.Fprintln(w, notFoundMessage)
		return err
	}

	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outcome); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(outcome); err != nil {
			return eris.Wrap(err, "encode json")
		}
		return nil
	}
}
