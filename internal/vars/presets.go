package vars

import (
	"strconv"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
	"github.com/unkn0wn-root/tinyscript/internal/script"
)

// Presets converts pairs into interpreter globals. Unquoted numbers become
// numbers and unquoted true/false become booleans; everything else is a
// string. Keys must be usable as identifiers.
func Presets(pairs []Pair) (map[string]script.Primitive, error) {
	out := make(map[string]script.Primitive, len(pairs))
	for _, p := range pairs {
		if !validName(p.Key) {
			return nil, errdef.New(errdef.CodeParse, "dotenv line %d: %q is not a valid name", p.Line, p.Key)
		}
		out[p.Key] = presetValue(p)
	}
	return out, nil
}

// LoadPresets reads path and converts it with Presets.
func LoadPresets(path string) (map[string]script.Primitive, error) {
	pairs, err := ReadDotEnv(path)
	if err != nil {
		return nil, err
	}
	return Presets(pairs)
}

func presetValue(p Pair) script.Primitive {
	if p.Quoted {
		return script.NewStr(p.Value)
	}
	switch p.Value {
	case "true":
		return script.Bool(true)
	case "false":
		return script.Bool(false)
	}
	if n, err := strconv.ParseFloat(p.Value, 64); err == nil {
		return script.Num(n)
	}
	return script.NewStr(p.Value)
}

// validName reports whether name lexes as a single identifier.
func validName(name string) bool {
	if script.IsKeyword(name) {
		return false
	}
	toks := script.Tokens("", name)
	return len(toks) == 2 && toks[0].K == script.IDENT && toks[0].Lit == name
}
