package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/jward/autoimport"
)

var validFormats = []string{"text", "json", "yaml"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(validFormats, ", "))
}

// formatCatalogText writes catalog entries as aligned columns.
func formatCatalogText(w io.Writer, entries []autoimport.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFROM\tKIND")
	for _, e := range entries {
		kind := "function"
		if e.Component {
			kind = "component"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.From, kind)
	}
	tw.Flush()
}

// writeStructured encodes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported structured format %q", format)
}

// formatSummary renders the one-line run summary.
func formatSummary(s autoimport.Summary, dryRun bool) string {
	changed := fmt.Sprintf("%d updated", s.Updated)
	if dryRun {
		changed = fmt.Sprintf("%d would update", s.WouldUpdate)
	}
	line := fmt.Sprintf("Processed %d files: %s, %d unchanged, %d skipped", s.Files, changed, s.Unchanged, s.Skipped)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	return line
}
