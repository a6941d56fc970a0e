package payload

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseOverrides converts `path.to.key=value` items into an override map.
func ParseOverrides(items []string) (map[string]string, error) {
	overrides := map[string]string{}
	for _, item := range items {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("override %q is not of the form path=value", item)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, errors.Errorf("override %q has an empty path", item)
		}
		for _, segment := range strings.Split(key, ".") {
			if segment == "" {
				return nil, errors.Errorf("override %q has an empty path segment", item)
			}
		}
		overrides[key] = parts[1]
	}
	return overrides, nil
}

// ApplyOverrides sets each dotted path in the YAML document to its value.  Numeric path
// segments index into lists and missing maps along the path are created.  Values are
// parsed as YAML scalars so that `steps=2000` yields an integer.  The input is returned
// untouched when there are no overrides.
func ApplyOverrides(data []byte, overrides map[string]string) ([]byte, error) {
	if len(overrides) == 0 {
		return data, nil
	}

	var root interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "failed to parse config yaml")
	}

	paths := make([]string, 0, len(overrides))
	for path := range overrides {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		updated, err := setPath(root, strings.Split(path, "."), parseScalar(overrides[path]))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to override %s", path)
		}
		root = updated
	}

	buf := bytes.Buffer{}
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, errors.Wrap(err, "failed to encode config yaml")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode config yaml")
	}
	return buf.Bytes(), nil
}

func parseScalar(raw string) interface{} {
	if raw == "" {
		return ""
	}
	var value interface{}
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	switch value.(type) {
	case map[string]interface{}, []interface{}:
		// only scalars are parsed, structured text stays a string
		return raw
	}
	return value
}

func setPath(node interface{}, keys []string, value interface{}) (interface{}, error) {
	if len(keys) == 0 {
		return value, nil
	}
	key, rest := keys[0], keys[1:]

	switch n := node.(type) {
	case nil:
		child, err := setPath(nil, rest, value)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{key: child}, nil
	case map[string]interface{}:
		child, err := setPath(n[key], rest, value)
		if err != nil {
			return nil, err
		}
		n[key] = child
		return n, nil
	case map[interface{}]interface{}:
		var mapKey interface{} = key
		if idx, err := strconv.Atoi(key); err == nil {
			if _, ok := n[idx]; ok {
				mapKey = idx
			}
		}
		child, err := setPath(n[mapKey], rest, value)
		if err != nil {
			return nil, err
		}
		n[mapKey] = child
		return n, nil
	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Errorf("%q is not a list index", key)
		}
		if idx < 0 || idx > len(n) {
			return nil, errors.Errorf("list index %d out of range [0,%d]", idx, len(n))
		}
		if idx == len(n) {
			n = append(n, nil)
		}
		child, err := setPath(n[idx], rest, value)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	default:
		return nil, errors.Errorf("cannot descend into %q, value is a %T", key, node)
	}
}
