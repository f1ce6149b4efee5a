package types

import (
	"errors"
	"sort"
	"strings"
)

// EffectSpec is the parsed form of "name[:k=v,k=v,...]".
// A value may itself contain commas (color=255,0,0); tokens without '='
// are appended to the previous value.
type EffectSpec struct {
	Name string
	Args map[string]string
}

func ParseEffectSpec(s string) (EffectSpec, error) {
	s = strings.TrimSpace(s)
	name, rest, _ := strings.Cut(s, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EffectSpec{}, errors.New("effect name missing")
	}
	spec := EffectSpec{Name: name, Args: map[string]string{}}
	if strings.TrimSpace(rest) == "" {
		return spec, nil
	}
	last := ""
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			if last == "" {
				return EffectSpec{}, errors.New("bad argument: " + tok)
			}
			spec.Args[last] += "," + tok
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return EffectSpec{}, errors.New("empty argument name")
		}
		spec.Args[k] = strings.TrimSpace(v)
		last = k
	}
	return spec, nil
}

// String renders the spec back into its wire form with sorted keys.
func (e EffectSpec) String() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	keys := make([]string, 0, len(e.Args))
	for k := range e.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(e.Name)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte(':')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(e.Args[k])
	}
	return b.String()
}
