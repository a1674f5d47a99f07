// Package main implements the evtscope-hash binary: the offline
// conformance harness. It decodes a RAW file headlessly, prints the
// streaming hash over its CD event sequence, and optionally records or
// checks that hash against the reference registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evtscope/evtscope/internal/config"
	"github.com/evtscope/evtscope/internal/validate"
	"github.com/evtscope/evtscope/pkg/types"
)

func main() {
	var (
		input     string
		format    string
		timeShift bool
		record    bool
		check     bool
		registry  string
	)

	flag.StringVar(&input, "input", "", "RAW file to decode: path or s3://bucket/key")
	flag.StringVar(&format, "format", config.FormatAuto, "Wire format: auto, EVT2, EVT2.1, EVT3")
	flag.BoolVar(&timeShift, "time-shift", false, "Rebase the first event to t=0 before hashing")
	flag.BoolVar(&record, "record", false, "Record the hash as the reference for this file")
	flag.BoolVar(&check, "check", false, "Check the hash against the recorded reference")
	flag.StringVar(&registry, "registry", "", "Reference hash registry database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "evtscope-hash - conformance hash harness for event-camera RAW files\n\n")
		fmt.Fprintf(os.Stderr, "Usage: evtscope-hash --input <file> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  evtscope-hash --input gen4_evt3_hand.raw\n")
		fmt.Fprintf(os.Stderr, "  evtscope-hash --input gen4_evt3_hand.raw --record\n")
		fmt.Fprintf(os.Stderr, "  evtscope-hash --input gen4_evt3_hand.raw --check --time-shift\n")
	}

	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if record && check {
		fmt.Fprintln(os.Stderr, "--record and --check are mutually exclusive")
		os.Exit(2)
	}

	var fmtValue types.Format
	if format != config.FormatAuto && format != "" {
		var err error
		fmtValue, err = types.ParseFormat(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}

	cfg := config.DefaultConfig()
	config.LoadFromEnv(cfg)
	if registry == "" {
		registry = cfg.RegistryPath
	}

	ctx := context.Background()
	result, err := validate.HashFile(ctx, cfg.Source, input, fmtValue, timeShift)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}

	name := filepath.Base(input)
	fmt.Printf("%s decoding, time_shift=%v: hash 0x%x (%d cd events, %d malformed words)\n",
		name, timeShift, result.Hash, result.CDEvents, result.MalformedWords)

	if !record && !check {
		return
	}

	reg, err := validate.OpenRegistry(registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer reg.Close()

	switch {
	case record:
		if err := reg.Record(name, timeShift, result.Hash); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("recorded reference hash for %s\n", name)
	case check:
		if err := reg.Check(name, timeShift, result.Hash); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("hash matches reference for %s\n", name)
	}
}
