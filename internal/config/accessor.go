package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// leaf is one settable config value, addressed by its dotted YAML path.
type leaf struct {
	path   string
	env    string
	secret bool
	value  reflect.Value
}

// set parses raw according to the leaf's kind.
func (l leaf) set(raw string) error {
	switch l.value.Kind() {
	case reflect.String:
		l.value.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", raw)
		}
		l.value.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%q is not an integer", raw)
		}
		l.value.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		l.value.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", l.value.Kind())
	}
	return nil
}

// walkLeaves visits every scalar field of cfg in declaration order.
func walkLeaves(cfg *Config, fn func(leaf) error) error {
	return walkStruct(reflect.ValueOf(cfg).Elem(), "", fn)
}

func walkStruct(v reflect.Value, prefix string, fn func(leaf) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			if err := walkStruct(v.Field(i), path, fn); err != nil {
				return err
			}
			continue
		}
		err := fn(leaf{
			path:   path,
			env:    f.Tag.Get("env"),
			secret: f.Tag.Get("secret") == "true",
			value:  v.Field(i),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func findLeaf(cfg *Config, path string) (leaf, error) {
	var found *leaf
	_ = walkLeaves(cfg, func(l leaf) error {
		if l.path == path {
			found = &l
		}
		return nil
	})
	if found == nil {
		return leaf{}, fmt.Errorf("unknown config path %q (see `config list`)", path)
	}
	return *found, nil
}

// GetByPath returns the value at a dotted path such as "gemini.textModel".
func GetByPath(cfg *Config, path string) (any, error) {
	l, err := findLeaf(cfg, path)
	if err != nil {
		return nil, err
	}
	return l.value.Interface(), nil
}

// SetByPath parses raw into the value at path. The change is rejected when the
// result fails Validate or when an environment variable would override it on
// the next start; cfg is left untouched in both cases.
func SetByPath(cfg *Config, path, raw string) error {
	next := *cfg
	l, err := findLeaf(&next, path)
	if err != nil {
		return err
	}
	if name, set := envOverride(l); set {
		return fmt.Errorf("%s is overridden by $%s; change the environment instead", path, name)
	}
	if err := l.set(raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := Validate(&next); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// Sanitize returns a copy of cfg with secret fields masked.
func Sanitize(cfg *Config) *Config {
	out := *cfg
	_ = walkLeaves(&out, func(l leaf) error {
		if l.secret && l.value.String() != "" {
			l.value.SetString(maskString(l.value.String()))
		}
		return nil
	})
	return &out
}

// maskString keeps the first and last four characters of long secrets.
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// ListPaths returns every settable path with its current value.
func ListPaths(cfg *Config) map[string]any {
	out := make(map[string]any)
	_ = walkLeaves(cfg, func(l leaf) error {
		out[l.path] = l.value.Interface()
		return nil
	})
	return out
}
