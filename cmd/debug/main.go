// Command debug parses a save and pretty-prints the resulting record with
// go-spew, for ad hoc inspection during development.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/rakaly/hoi4save/file"
	"github.com/rakaly/hoi4save/tokens"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: debug <path>")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	resolver, _, err := tokens.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	save, enc, err := file.FromSlice(data).Parse(resolver)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("encoding:", enc)
	spew.Dump(save)
}
