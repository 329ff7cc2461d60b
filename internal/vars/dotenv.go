package vars

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
)

type quoteMode int

const (
	quoteModeNone quoteMode = iota
	quoteModeSingle
	quoteModeDouble
)

// Pair is one KEY=value line. Quoted values keep their quoting mode so
// presets can tell "1" (a string) from 1 (a number).
type Pair struct {
	Key    string
	Value  string
	Quoted bool
	Line   int
}

// ReadDotEnv parses a .env file into ordered pairs.
func ReadDotEnv(path string) (pairs []Pair, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "open env file %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errdef.Wrap(errdef.CodeFilesystem, closeErr, "close env file %s", path)
		}
	}()
	return ParseDotEnv(f, path)
}

// ParseDotEnv reads KEY=value lines. Blank lines and lines starting with #
// or ; are skipped, an export prefix is accepted, and $NAME / ${NAME} expand
// against earlier keys and then the process environment. Single-quoted
// values are literal; double-quoted values honour backslash escapes.
func ParseDotEnv(r io.Reader, path string) ([]Pair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []Pair
	resolved := make(map[string]string)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		key, rawValue, err := parseAssignment(trimmed, lineNumber)
		if err != nil {
			return nil, err
		}
		value, mode, err := parseValue(rawValue, lineNumber)
		if err != nil {
			return nil, err
		}
		if mode != quoteModeSingle {
			value, err = expand(value, resolved, lineNumber)
			if err != nil {
				return nil, err
			}
		}
		resolved[key] = value
		out = append(out, Pair{Key: key, Value: value, Quoted: mode != quoteModeNone, Line: lineNumber})
	}
	if err := scanner.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read env file %s", path)
	}
	return out, nil
}

func parseAssignment(line string, lineNumber int) (string, string, error) {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "export ") || strings.HasPrefix(lower, "export\t") {
		line = strings.TrimSpace(line[len("export"):])
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", errdef.New(errdef.CodeParse, "dotenv line %d: expected KEY=value", lineNumber)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errdef.New(errdef.CodeParse, "dotenv line %d: missing key", lineNumber)
	}
	return key, value, nil
}

func parseValue(raw string, lineNumber int) (string, quoteMode, error) {
	raw = strings.TrimLeft(raw, " \t")
	if raw == "" {
		return "", quoteModeNone, nil
	}
	switch raw[0] {
	case '"':
		v, err := parseQuoted(raw, quoteModeDouble, lineNumber)
		return v, quoteModeDouble, err
	case '\'':
		v, err := parseQuoted(raw, quoteModeSingle, lineNumber)
		return v, quoteModeSingle, err
	default:
		return stripInlineComment(raw), quoteModeNone, nil
	}
}

func parseQuoted(input string, mode quoteMode, lineNumber int) (string, error) {
	quote := byte('"')
	if mode == quoteModeSingle {
		quote = '\''
	}

	var b strings.Builder
	for i := 1; i < len(input); i++ {
		ch := input[i]
		if ch == '\\' {
			if i+1 >= len(input) {
				return "", errdef.New(errdef.CodeParse, "dotenv line %d: unfinished escape", lineNumber)
			}
			i++
			if mode == quoteModeDouble {
				b.WriteByte(unescape(input[i]))
			} else {
				b.WriteByte(input[i])
			}
			continue
		}
		if ch == quote {
			rest := strings.TrimSpace(input[i+1:])
			if rest != "" && rest[0] != '#' && rest[0] != ';' {
				return "", errdef.New(
					errdef.CodeParse,
					"dotenv line %d: unexpected content after quoted value",
					lineNumber,
				)
			}
			return b.String(), nil
		}
		b.WriteByte(ch)
	}
	return "", errdef.New(errdef.CodeParse, "dotenv line %d: unterminated quoted value", lineNumber)
}

// stripInlineComment drops a # or ; comment that starts the value or follows
// whitespace.
func stripInlineComment(value string) string {
	inWhitespace := false
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ' ', '\t':
			inWhitespace = true
		case '#', ';':
			if i == 0 || inWhitespace {
				return strings.TrimSpace(value[:i])
			}
			inWhitespace = false
		default:
			inWhitespace = false
		}
	}
	return strings.TrimSpace(value)
}

func expand(value string, resolved map[string]string, lineNumber int) (string, error) {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch == '\\' && i+1 < len(value) && value[i+1] == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		if ch != '$' || i+1 >= len(value) {
			b.WriteByte(ch)
			continue
		}
		if value[i+1] == '{' {
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				return "", errdef.New(
					errdef.CodeParse,
					"dotenv line %d: missing closing brace for ${",
					lineNumber,
				)
			}
			end += i + 2
			name := strings.TrimSpace(value[i+2 : end])
			if name == "" {
				return "", errdef.New(errdef.CodeParse, "dotenv line %d: empty variable name", lineNumber)
			}
			repl, err := lookup(name, resolved, lineNumber)
			if err != nil {
				return "", err
			}
			b.WriteString(repl)
			i = end
			continue
		}
		if isNameChar(value[i+1]) {
			j := i + 1
			for j < len(value) && isNameChar(value[j]) {
				j++
			}
			repl, err := lookup(value[i+1:j], resolved, lineNumber)
			if err != nil {
				return "", err
			}
			b.WriteString(repl)
			i = j - 1
			continue
		}
		b.WriteByte(ch)
	}
	return b.String(), nil
}

func lookup(name string, resolved map[string]string, lineNumber int) (string, error) {
	if v, ok := resolved[name]; ok {
		return v, nil
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	return "", errdef.New(errdef.CodeParse, "dotenv line %d: variable %q is not defined", lineNumber, name)
}

func isNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return ch
	}
}
