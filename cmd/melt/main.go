// Command melt writes the melted plaintext form of a save to standard
// output, exiting nonzero on any parse or melt failure.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rakaly/hoi4save/file"
	"github.com/rakaly/hoi4save/melt"
	"github.com/rakaly/hoi4save/tokens"
)

func main() {
	fs := flag.NewFlagSet("melt", flag.ExitOnError)
	verbatim := fs.Bool("verbatim", false, "do not elide ironman keys")
	unknown := fs.String("unknown", "ignore", "policy for unresolved tokens: ignore, stringify, error")
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		log.Fatal("usage: melt [flags] <path>")
	}

	strategy, err := parseStrategy(*unknown)
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	resolver, _, err := tokens.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	opts := melt.Options{Verbatim: *verbatim, OnFailedResolve: strategy}

	f := file.FromSlice(data)
	if _, err := f.Melt(opts, resolver, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseStrategy(s string) (melt.FailedResolveStrategy, error) {
	switch s {
	case "ignore":
		return melt.Ignore, nil
	case "stringify":
		return melt.Stringify, nil
	case "error":
		return melt.Error, nil
	default:
		return 0, fmt.Errorf("unknown --unknown policy %q", s)
	}
}
