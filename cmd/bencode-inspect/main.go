// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bencode/lib/bencode"
	"github.com/bureau-foundation/bencode/lib/metainfo"
	"github.com/bureau-foundation/bencode/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Handle --version before flag parsing to match other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("bencode-inspect")
		return 0
	}

	var infoHash bool
	var checkTrailing bool
	var maxDepth int

	flagSet := pflag.NewFlagSet("bencode-inspect", pflag.ContinueOnError)
	flagSet.BoolVar(&infoHash, "info-hash", false, "treat the input as a torrent file and print its info-hash")
	flagSet.BoolVar(&checkTrailing, "check-trailing", false, "fail when bytes remain after the first value")
	flagSet.IntVar(&maxDepth, "max-depth", bencode.DefaultMaxDepth, "maximum container nesting depth")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bencode-inspect [flags] [file]\n\nReads from stdin when no file is given.\n\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	arguments := flagSet.Args()
	if len(arguments) > 1 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument: %s\n", arguments[1])
		return 2
	}

	data, err := readInput(arguments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if infoHash {
		return printInfoHash(data)
	}
	return printJSON(data, checkTrailing, maxDepth)
}

// readInput loads the whole document: the named file, or stdin when
// no file (or "-") is given.
func readInput(arguments []string) ([]byte, error) {
	if len(arguments) == 0 || arguments[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arguments[0])
}

func printInfoHash(data []byte) int {
	f, err := metainfo.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(f.InfoHash())
	return 0
}

func printJSON(data []byte, checkTrailing bool, maxDepth int) int {
	decoder := bencode.NewDecoderBytes(data)
	decoder.SetMaxDepth(maxDepth)
	value, err := decoder.DecodeValue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if checkTrailing {
		if err := decoder.End(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	rendered, err := json.MarshalIndent(render(value), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: rendering JSON: %v\n", err)
		return 2
	}
	fmt.Println(string(rendered))
	return 0
}

// render maps a bencode value tree onto JSON-encodable Go values.
func render(value bencode.Value) any {
	switch value.Kind() {
	case bencode.KindByteString:
		payload, _ := value.ByteString()
		if utf8.Valid(payload) {
			return string(payload)
		}
		return map[string]string{"base64": base64.StdEncoding.EncodeToString(payload)}
	case bencode.KindInteger:
		number, _ := value.Integer()
		// json.Number carries the full 64-bit unsigned range through
		// encoding/json without float conversion.
		return json.Number(number.String())
	case bencode.KindList:
		items, _ := value.List()
		rendered := make([]any, len(items))
		for i, item := range items {
			rendered[i] = render(item)
		}
		return rendered
	case bencode.KindDict:
		dict, _ := value.Dict()
		rendered := make(map[string]any, dict.Len())
		for _, entry := range dict.Entries() {
			rendered[entry.Key] = render(entry.Value)
		}
		return rendered
	default:
		return nil
	}
}
