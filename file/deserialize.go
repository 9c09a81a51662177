package file

import (
	"bufio"
	"io"
	"strings"

	"github.com/rakaly/hoi4save/date"
	"github.com/rakaly/hoi4save/errs"
)

// deserializeText is the placeholder line-oriented deserializer standing in
// for the out-of-scope PDS-script-to-struct engine: it scans top-level
// "key=value" lines and fills in the two Save fields the spec's concrete
// scenarios assert on, ignoring everything else (nested objects included,
// since Save has nowhere to put them).
func deserializeText(r io.Reader) (Save, error) {
	var save Save

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	depth := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		atTop := depth == 0
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth < 0 {
			depth = 0
		}
		if !atTop {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch key {
		case "player":
			save.Player = value
		case "date":
			if d, ok := date.ParseFromStr(value); ok {
				save.Date = d
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return save, &errs.DeserializeError{Err: err}
	}

	return save, nil
}
