// Command json emits a save's parsed record as JSON to standard output,
// melting binary input first.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/rakaly/hoi4save/file"
	"github.com/rakaly/hoi4save/tokens"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: json <path>")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	resolver, _, err := tokens.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	save, _, err := file.FromSlice(data).Parse(resolver)
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Player string `json:"player"`
		Date   string `json:"date"`
	}{Player: save.Player, Date: save.Date.GameFormat()}); err != nil {
		log.Fatal(err)
	}
}
