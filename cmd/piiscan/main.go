// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"golang.org/x/term"

	"piiscan/internal/config"
	"piiscan/internal/core"
	"piiscan/internal/detector"
	"piiscan/internal/preprocess"
	"piiscan/internal/web"
)

type cliFlags struct {
	file       string
	format     string
	language   string
	configFile string
	profile    string
	documentID string
	debug      bool
	noColor    bool
	serve      bool
	addr       string
}

func main() {
	flags := parseFlags()

	cfg := loadConfiguration(flags.configFile)
	if flags.profile != "" {
		if err := cfg.ApplyProfile(flags.profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}
	if flags.debug {
		cfg.Pipeline.Debug = true
	}

	if flags.serve {
		server := web.NewServer(cfg, nil)
		fmt.Fprintf(os.Stderr, "piiscan listening on %s\n", flags.addr)
		if err := server.Run(flags.addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	text, err := readInput(flags.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result := core.ScanText(cfg, text, flags.documentID, flags.language)

	switch flags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		printReport(os.Stdout, result, useColor(flags.noColor))
	}
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.file, "file", "", "File to scan (txt, csv, pdf, xlsx); reads stdin when omitted")
	flag.StringVar(&flags.format, "format", "text", "Output format: text or json")
	flag.StringVar(&flags.language, "lang", "", "Document language (en, fr, de); autodetected when omitted")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&flags.profile, "profile", "", "Configuration profile to apply")
	flag.StringVar(&flags.documentID, "id", "", "Document identifier for logs and results")
	flag.BoolVar(&flags.debug, "debug", false, "Enable verbose per-pass logging")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.serve, "serve", false, "Run the HTTP detection server instead of scanning")
	flag.StringVar(&flags.addr, "addr", ":8383", "Listen address for -serve")
	flag.Parse()
	return flags
}

func loadConfiguration(path string) *config.Config {
	if path == "" {
		path = config.FindConfigFile()
	}
	return config.LoadOrDefault(path)
}

func readInput(file string) (string, error) {
	if file == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return preprocess.NewRegistry().ExtractText(file)
}

func useColor(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printReport(w io.Writer, result detector.DetectionResult, colored bool) {
	header := color.New(color.Bold)
	flaggedStyle := color.New(color.FgYellow)
	highStyle := color.New(color.FgGreen)
	if !colored {
		color.NoColor = true
	}

	header.Fprintf(w, "Document %s (%s, %s)\n", result.DocumentID, result.DocumentType, result.Language)
	fmt.Fprintf(w, "%d entities, %d flagged for review, %s total\n\n",
		len(result.Entities), result.Metadata.FlaggedCount, result.Metadata.TotalDuration)

	for _, e := range result.Entities {
		marker := " "
		style := highStyle
		if e.FlaggedForReview {
			marker = "?"
			style = flaggedStyle
		}
		style.Fprintf(w, "%s %-15s %3.0f%%  [%d:%d]  %s\n",
			marker, e.Type, e.Confidence*100, e.Start, e.End, e.Text)
	}

	if len(result.Metadata.EntityCounts) > 0 {
		fmt.Fprintln(w)
		types := make([]string, 0, len(result.Metadata.EntityCounts))
		for t := range result.Metadata.EntityCounts {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(w, "  %-15s %d\n", t, result.Metadata.EntityCounts[detector.EntityType(t)])
		}
	}
}
