package booking

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind is the primitive JSON type a required field must hold.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindString  Kind = "string"
)

// String returns the string representation of the Kind.
func (kind Kind) String() string {
	return string(kind)
}

// Matches reports whether v (as produced by a UseNumber decoder) holds a value of this kind.
// Integer and float are exclusive: the literal decides, not the numeric value,
// so 3.0 is never an integer and 12 is never a float.
func (kind Kind) Matches(v any) bool {
	switch kind {
	case KindInteger:
		n, ok := v.(json.Number)
		return ok && isIntegerLiteral(n)
	case KindFloat:
		n, ok := v.(json.Number)
		return ok && isFloatLiteral(n)
	case KindString:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

func isIntegerLiteral(n json.Number) bool {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloatLiteral(n json.Number) bool {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
