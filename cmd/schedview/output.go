package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatHTML = "html"
	formatText = "text"
)

func checkFormat(f string) error {
	switch f {
	case formatJSON, formatHTML, formatText:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, html or text)", f)
	}
}

// withOutput runs write against --out, or the command's stdout when --out
// is empty.
func withOutput(cmd *cobra.Command, out string, write func(w io.Writer) error) error {
	if out == "" || out == "-" {
		return write(cmd.OutOrStdout())
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addOutputFlags(cmd *cobra.Command, format, out *string) {
	cmd.Flags().StringVarP(format, "format", "f", formatText, "Output format: "+strings.Join([]string{formatJSON, formatHTML, formatText}, ", "))
	cmd.Flags().StringVarP(out, "out", "o", "", "Write output to this file instead of stdout")
}

func addSourceFlags(cmd *cobra.Command, tasks, icsFiles *[]string) {
	cmd.Flags().StringSliceVarP(tasks, "tasks", "t", nil, "Task files (.json/.yaml); overrides config")
	cmd.Flags().StringSliceVar(icsFiles, "ics", nil, "Local .ics calendars; overrides config")
}
