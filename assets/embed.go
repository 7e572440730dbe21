// Package assets embeds the static county data shipped with the game.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed counties.txt borders.txt
var FS embed.FS

// readLines returns the trimmed, non-empty, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// CountyLines returns the raw county records and alias lines.
func CountyLines() ([]string, error) {
	return readLines("counties.txt")
}

// BorderLines returns the raw adjacency lines.
func BorderLines() ([]string, error) {
	return readLines("borders.txt")
}
