// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// splitGoTypeName splits a reflected type name such as
// "Pair[string,map[string]int]" into "Pair" and its type arguments.
func splitGoTypeName(name string) (string, []string) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}

	var args []string
	depth, start := 0, open+1
	inner := name[:len(name)-1]

	for i := open + 1; i < len(inner); i++ {
		switch inner[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))

	return name[:open], args
}

// goTypeParser resolves type expressions as printed by Go's reflection
// ("[]int", "map[string]example.com/pkg.Point", "*pkg.T") against registered assemblies.
type goTypeParser struct {
	src    string
	pos    int
	lookup func(name string) reflect.Type
}

func (p *goTypeParser) parse() (reflect.Type, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected '%s' in type '%s'", p.src[p.pos:], p.src)
	}
	return typ, nil
}

func (p *goTypeParser) parseType() (reflect.Type, error) {
	rest := p.src[p.pos:]

	switch {
	case strings.HasPrefix(rest, "[]"):
		p.pos += 2
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil

	case strings.HasPrefix(rest, "["):
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length in type '%s'", p.src)
		}
		length, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return nil, fmt.Errorf("invalid array length in type '%s'", p.src)
		}
		p.pos += end + 1
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(length, elem), nil

	case strings.HasPrefix(rest, "map["):
		p.pos += len("map[")
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(p.src[p.pos:], "]") {
			return nil, fmt.Errorf("expected ']' after map key in type '%s'", p.src)
		}
		p.pos++
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, fmt.Errorf("invalid map key type %s", key)
		}
		return reflect.MapOf(key, value), nil

	case strings.HasPrefix(rest, "*"):
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return reflect.PtrTo(elem), nil

	case strings.HasPrefix(rest, "interface {}"), strings.HasPrefix(rest, "interface{}"):
		p.pos += strings.IndexByte(rest, '}') + 1
		return emptyInterfaceType, nil

	case strings.HasPrefix(rest, "struct"), strings.HasPrefix(rest, "func"),
		strings.HasPrefix(rest, "chan"), strings.HasPrefix(rest, "<-chan"), strings.HasPrefix(rest, "interface"):
		return nil, fmt.Errorf("unsupported type '%s'", rest)
	}

	return p.parseNamed()
}

func (p *goTypeParser) parseNamed() (reflect.Type, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(",[]", rune(p.src[p.pos])) {
		p.pos++
	}

	if p.pos < len(p.src) && p.src[p.pos] == '[' {
		depth := 0
		for ; p.pos < len(p.src); p.pos++ {
			if p.src[p.pos] == '[' {
				depth++
			} else if p.src[p.pos] == ']' {
				depth--
				if depth == 0 {
					p.pos++
					break
				}
			}
		}
		if depth != 0 {
			return nil, fmt.Errorf("unbalanced brackets in type '%s'", p.src)
		}
	}

	name := p.src[start:p.pos]
	if name == "" {
		return nil, fmt.Errorf("expected type name in '%s'", p.src)
	}
	if alias, found := goAliases[name]; found {
		name = alias
	}

	typ := p.lookup(name)
	if typ == nil {
		return nil, fmt.Errorf("type '%s' is not registered", name)
	}
	return typ, nil
}
