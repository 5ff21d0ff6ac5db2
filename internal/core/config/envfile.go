package config

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ParseEnvFile reads a line-oriented KEY=VALUE file and returns the values
// whose keys appear in allowed. A missing file is not an error: deploys
// without a local .env are legal, the ambient environment then has to carry
// the required values.
func ParseEnvFile(path string, allowed map[string]struct{}) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return parseEnv(f, allowed)
}

func parseEnv(r io.Reader, allowed map[string]struct{}) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if _, ok := allowed[key]; !ok {
			continue
		}
		values[key] = cleanValue(line[eq+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// cleanValue applies the value rules: an inline comment is stripped only
// when its '#' is preceded by whitespace (a '#' embedded directly in the
// value stays), the result is trimmed, and a single layer of double quotes
// is removed.
func cleanValue(raw string) string {
	v := stripInlineComment(raw)
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return v
}

func stripInlineComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}
