// Package validation runs ordered field rules against an incoming request and
// records every violation on the request context, in declaration order.
//
// A chain targets one field and carries one or more rules. Each rule is a
// go-playground/validator tag evaluated against the field's string form, so a
// JSON number, a numeric string and a path segment are checked alike. The
// positive tag is the exception: it sees the decoded value, coerced by ToNumber
// (true is 1, strings are trimmed). All rules
// of a chain run; none of them short-circuits the others.
package validation

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Rule tags understood by the chains.
const (
	TagRequired = "required"
	TagNumeric  = "numeric"  // optionally signed decimal, leading digits optional (".5")
	TagBoolean  = "boolean"  // exactly "true", "false", "1" or "0"
	TagInteger  = "integer"  // optionally signed run of digits
	TagPositive = "positive" // coerces to a number greater than zero
)

// rawTags are evaluated against the decoded value instead of its string form.
var rawTags = map[string]bool{TagPositive: true}

// Location says where a field is read from.
type Location string

const (
	LocationParams Location = "params"
	LocationBody   Location = "body"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Type     string   `json:"type"`
	Value    any      `json:"value,omitempty"`
	Msg      string   `json:"msg"`
	Path     string   `json:"path"`
	Location Location `json:"location"`
}

type ctxKey int

const (
	violationsKey ctxKey = iota
	bodyKey
)

var (
	integerRegex = regexp.MustCompile(`^[-+]?[0-9]+$`)
	numericRegex = regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+$`)
	validate     = newValidator()
)

// newValidator replaces the built-in numeric and boolean tags: validator's own
// numeric rejects ".5" and its boolean follows strconv.ParseBool ("T", "True").
func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, TagInteger, func(fl validator.FieldLevel) bool {
		return integerRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, TagNumeric, func(fl validator.FieldLevel) bool {
		return numericRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, TagBoolean, func(fl validator.FieldLevel) bool {
		_, ok := parseStrictBool(fl.Field().String())
		return ok
	})
	mustRegister(v, TagPositive, func(fl validator.FieldLevel) bool {
		n := ToNumber(fl.Field().Interface())
		return !math.IsNaN(n) && n > 0
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

type rule struct {
	tag string
	msg string
}

// Chain is an ordered list of rules for a single field.
type Chain struct {
	location Location
	field    string
	rules    []rule
}

// Param starts a chain for a route parameter.
func Param(field string) *Chain {
	return &Chain{location: LocationParams, field: field}
}

// Body starts a chain for a field of the JSON request body.
func Body(field string) *Chain {
	return &Chain{location: LocationBody, field: field}
}

// Check appends a rule; msg is reported when the tag does not hold.
func (ch *Chain) Check(tag, msg string) *Chain {
	ch.rules = append(ch.rules, rule{tag: tag, msg: msg})
	return ch
}

// Run evaluates every rule of the chain and returns the violations in rule order.
func (ch *Chain) Run(c *fiber.Ctx) ([]Violation, error) {
	value, _, err := Field(c, ch.location, ch.field)
	if err != nil {
		return nil, err
	}
	text := Stringify(value)

	var out []Violation
	for _, r := range ch.rules {
		var input any = text
		if rawTags[r.tag] && value != nil {
			input = value
		}
		if validate.Var(input, r.tag) == nil {
			continue
		}
		out = append(out, Violation{
			Type:     "field",
			Value:    value,
			Msg:      r.msg,
			Path:     ch.field,
			Location: ch.location,
		})
	}
	return out, nil
}

// Handler returns the chain as a pipeline stage: it records its violations and
// always hands over to the next stage.
func (ch *Chain) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		found, err := ch.Run(c)
		if err != nil {
			return err
		}
		if len(found) > 0 {
			c.Locals(violationsKey, append(Violations(c), found...))
		}
		return c.Next()
	}
}

// Violations returns what the chains have recorded so far for this request.
func Violations(c *fiber.Ctx) []Violation {
	v, _ := c.Locals(violationsKey).([]Violation)
	return v
}

// Field looks a field up. A missing field yields (nil, false, nil).
func Field(c *fiber.Ctx, loc Location, name string) (any, bool, error) {
	if loc == LocationParams {
		v := c.Params(name)
		return v, v != "", nil
	}
	fields, err := BodyFields(c)
	if err != nil {
		return nil, false, err
	}
	v, ok := fields[name]
	return v, ok, nil
}

// BodyFields decodes the JSON body once per request. An empty body, or one not
// sent as application/json, is an empty object.
func BodyFields(c *fiber.Ctx) (map[string]any, error) {
	if fields, ok := c.Locals(bodyKey).(map[string]any); ok {
		return fields, nil
	}
	fields := map[string]any{}
	if body := c.Body(); len(body) > 0 && c.Is("json") {
		if err := c.App().Config().JSONDecoder(body, &fields); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}
	c.Locals(bodyKey, fields)
	return fields, nil
}

// Stringify renders a decoded JSON value the way the rules see it:
// absent and null become "", numbers lose trailing zeros, and
// objects and arrays are re-encoded.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ParseBool reads a value accepted by the boolean tag.
func ParseBool(v any) (bool, bool) {
	return parseStrictBool(Stringify(v))
}

func parseStrictBool(s string) (bool, bool) {
	switch s {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// ToNumber coerces a decoded JSON value for numeric comparison: null and ""
// are 0, booleans are 0 or 1, strings are trimmed and may carry a 0x, 0o or 0b
// prefix, and single-element arrays unwrap. Anything else is NaN.
func ToNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		return t
	case string:
		return stringToNumber(t)
	case []any:
		switch len(t) {
		case 0:
			return 0
		case 1:
			if s, ok := t[0].(string); ok {
				return stringToNumber(s)
			}
			if t[0] == nil {
				return 0
			}
			return ToNumber(t[0])
		}
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
