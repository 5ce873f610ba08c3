package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"rhst-exporter/internal/rhst"
)

func main() {
	indent := flag.Bool("indent", false, "Indent the JSON output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: rhstdump [-indent] file.rhst")
		os.Exit(1)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	version, v, err := rhst.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: RHST version %d, %d bytes\n", path, version, len(data))

	w := bufio.NewWriter(os.Stdout)
	if err := rhst.WriteJSON(w, v, *indent); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
