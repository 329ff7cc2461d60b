package script

import "sort"

// Env maps names to values. Scripts run in a single flat scope; Up is kept
// so nested scopes can be layered on later without changing lookups.
type Env struct {
	Up   *Env
	Vars map[string]Primitive
}

func NewEnv(up *Env) *Env {
	return &Env{Up: up, Vars: map[string]Primitive{}}
}

func (e *Env) Def(name string, v Primitive) {
	e.Vars[name] = v
}

func (e *Env) Get(name string) (Primitive, bool) {
	for cur := e; cur != nil; cur = cur.Up {
		if v, ok := cur.Vars[name]; ok {
			return v, true
		}
	}
	return Primitive{}, false
}

// Set overwrites the nearest binding of name, or defines it in e.
func (e *Env) Set(name string, v Primitive) {
	for cur := e; cur != nil; cur = cur.Up {
		if _, ok := cur.Vars[name]; ok {
			cur.Vars[name] = v
			return
		}
	}
	e.Vars[name] = v
}

// Names returns every visible name in sorted order.
func (e *Env) Names() []string {
	seen := map[string]struct{}{}
	for cur := e; cur != nil; cur = cur.Up {
		for k := range cur.Vars {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Env) Len() int {
	return len(e.Names())
}
