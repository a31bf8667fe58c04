package functions

import (
	"fmt"

	"github.com/mna/endpointvm/values"
)

func standardFunctions() []Function {
	return []Function{
		New("stringEquals", 2, stringEquals),
		New("booleanEquals", 2, booleanEquals),
		New("isValidHostLabel", 2, isValidHostLabel),
		New("parseURL", 1, parseURL),
		New("uriEncode", 1, uriEncode),
	}
}

func asString(v values.Value, fn string, pos int) (string, error) {
	s, ok := v.(values.String)
	if !ok {
		return "", fmt.Errorf("%s: argument %d is %s, want string", fn, pos, v.Type())
	}
	return string(s), nil
}

func asBool(v values.Value, fn string, pos int) (bool, error) {
	b, ok := v.(values.Bool)
	if !ok {
		return false, fmt.Errorf("%s: argument %d is %s, want bool", fn, pos, v.Type())
	}
	return bool(b), nil
}

func stringEquals(args []values.Value) (values.Value, error) {
	x, err := asString(args[0], "stringEquals", 0)
	if err != nil {
		return nil, err
	}
	y, err := asString(args[1], "stringEquals", 1)
	if err != nil {
		return nil, err
	}
	return values.Bool(x == y), nil
}

func booleanEquals(args []values.Value) (values.Value, error) {
	x, err := asBool(args[0], "booleanEquals", 0)
	if err != nil {
		return nil, err
	}
	y, err := asBool(args[1], "booleanEquals", 1)
	if err != nil {
		return nil, err
	}
	return values.Bool(x == y), nil
}

func isValidHostLabel(args []values.Value) (values.Value, error) {
	s, err := asString(args[0], "isValidHostLabel", 0)
	if err != nil {
		return nil, err
	}
	allowDots, err := asBool(args[1], "isValidHostLabel", 1)
	if err != nil {
		return nil, err
	}
	return values.Bool(values.IsValidHostLabel(s, allowDots)), nil
}

func parseURL(args []values.Value) (values.Value, error) {
	s, err := asString(args[0], "parseURL", 0)
	if err != nil {
		return nil, err
	}
	u, ok := values.ParseURL(s)
	if !ok {
		return values.Null{}, nil
	}
	return u, nil
}

func uriEncode(args []values.Value) (values.Value, error) {
	s, err := asString(args[0], "uriEncode", 0)
	if err != nil {
		return nil, err
	}
	return values.String(values.URIEncode(s)), nil
}
