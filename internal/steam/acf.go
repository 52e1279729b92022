package steam

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Steam writes its on-disk state in Valve's KeyValues text format: nested
// blocks of quoted key/value pairs. There is no package in our stack for the
// format, and we only ever need flat string pairs, so a line scanner is
// enough. Escapes inside values (\" and \\) are unescaped; block structure
// beyond pair extraction is ignored.

// appState is the subset of an appmanifest_*.acf we care about.
type appState struct {
	AppID      string
	Name       string
	StateFlags int
}

// stateFlagFullyInstalled is set in StateFlags once a title is completely
// downloaded.
const stateFlagFullyInstalled = 4

// parseAppManifest extracts the app state from an ACF document. The first
// occurrence of each key wins; Steam never repeats them at the top level.
func parseAppManifest(r io.Reader) (appState, error) {
	var st appState
	err := scanPairs(r, func(key, value string) {
		switch {
		case st.AppID == "" && strings.EqualFold(key, "appid"):
			st.AppID = value
		case st.Name == "" && strings.EqualFold(key, "name"):
			st.Name = value
		case st.StateFlags == 0 && strings.EqualFold(key, "StateFlags"):
			if n, err := strconv.Atoi(value); err == nil {
				st.StateFlags = n
			}
		}
	})
	if err != nil {
		return appState{}, err
	}
	if st.AppID == "" {
		return appState{}, fmt.Errorf("manifest has no appid")
	}
	return st, nil
}

// parseLibraryFolders extracts every library path from a
// libraryfolders.vdf document, in file order.
func parseLibraryFolders(r io.Reader) ([]string, error) {
	var paths []string
	err := scanPairs(r, func(key, value string) {
		if strings.EqualFold(key, "path") {
			paths = append(paths, value)
		}
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// scanPairs calls fn for every `"key" "value"` line in the document.
func scanPairs(r io.Reader, fn func(key, value string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		key, value, ok := splitPair(sc.Text())
		if ok {
			fn(key, value)
		}
	}
	return sc.Err()
}

// splitPair parses a line of the form `"key" "value"`. Lines holding only a
// block name or a brace yield ok=false.
func splitPair(line string) (key, value string, ok bool) {
	key, rest, ok := quoted(line)
	if !ok {
		return "", "", false
	}
	value, _, ok = quoted(rest)
	if !ok {
		return "", "", false
	}
	return key, value, true
}

// quoted consumes one quoted token from s, returning the unescaped token and
// the remainder.
func quoted(s string) (token, rest string, ok bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", "", false
	}

	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), s[i+1:], true
		}
		b.WriteByte(c)
		i++
	}
	return "", "", false
}
