// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"phi-redact/internal/applier"
	"phi-redact/internal/extract"
)

func main() {
	var (
		file     = flag.String("file", "", "Redacted input file (default: stdin)")
		tokenMap = flag.String("token-map", "", "Token map JSON written during redaction (required)")
		output   = flag.String("output", "", "Reconstructed output file (default: stdout)")
	)
	flag.Parse()

	if *tokenMap == "" {
		fmt.Fprintln(os.Stderr, "Error: --token-map is required")
		fmt.Fprintln(os.Stderr, "Usage: phi-unredact --token-map tokens.json [--file redacted.txt] [--output original.txt]")
		os.Exit(1)
	}

	redacted, err := readInput(*file)
	if err != nil {
		fail("reading input: %v", err)
	}

	tokens, err := readTokenMap(*tokenMap)
	if err != nil {
		fail("reading token map: %v", err)
	}

	original, err := applier.Unapply(redacted, tokens)
	if err != nil {
		fail("reversing redaction: %v", err)
	}

	if *output == "" {
		fmt.Print(original)
		return
	}
	if err := os.WriteFile(*output, []byte(original), 0o600); err != nil {
		fail("writing output: %v", err)
	}
}

func readInput(file string) (string, error) {
	if file == "" {
		return extract.FromReader(os.Stdin)
	}
	return extract.Text(file)
}

func readTokenMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tokens := make(map[string]string)
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tokens, nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
