/* SPDX-License-Identifier: BSD-2-Clause */

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/ricardobranco777/html2json/htmltable"
)

import flag "github.com/spf13/pflag"

const Version = "0.1.0"

func main() {
	var opts struct {
		tables   string
		meta     bool
		compact  bool
		maxDepth int
		version  bool
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [FILE]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVarP(&opts.tables, "table", "t", "", "select tables by index or name")
	flag.BoolVarP(&opts.meta, "meta", "m", false, "wrap values with table index, id and name")
	flag.BoolVarP(&opts.compact, "compact", "c", false, "compact output")
	flag.IntVarP(&opts.maxDepth, "max-depth", "D", htmltable.DefaultMaxDepth, "maximum nested table depth")
	flag.BoolVarP(&opts.version, "version", "", false, "print version and exit")
	flag.Parse()

	if opts.version {
		fmt.Printf("html2json v%s %v %s/%s\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	log.SetFlags(0)
	log.SetPrefix("ERROR: ")

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	var text string
	if flag.NArg() == 1 {
		s, err := htmltable.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		text = s
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal(err)
		}
		text = htmltable.Decode(raw)
	}

	sel, err := htmltable.ParseSelector(opts.tables)
	if err != nil {
		log.Fatal(err)
	}

	ex := &htmltable.Extractor{MaxDepth: opts.maxDepth}
	tables, err := ex.Parse(strings.NewReader(text))
	if err != nil {
		log.Fatal(err)
	}
	tables = sel.Apply(tables)

	enc := htmltable.NewJSONEncoder()
	enc.WithMeta = opts.meta
	if opts.compact {
		enc.Indent = ""
	}

	if err := enc.Encode(os.Stdout, tables); err != nil {
		log.Fatal(err)
	}
}
