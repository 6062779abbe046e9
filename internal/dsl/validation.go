package dsl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed validation rule.
type FieldError struct {
	Code    string `json:"code" yaml:"code"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Validation error codes.
const (
	ErrRequired      = "required"
	ErrMinLength     = "minlength"
	ErrMaxLength     = "maxlength"
	ErrPattern       = "pattern"
	ErrChoiceInvalid = "choice_invalid"
	ErrTypeMismatch  = "type_mismatch"
)

// Validate checks the values of entry against the validation rules and
// choices of every editable field in view.
func Validate(view *View, entry Entry) []FieldError {
	var errs []FieldError

	for _, fl := range view.OrderedFields() {
		f := fl.field()
		if !f.Editable() {
			continue
		}
		name := f.Name()
		rules := f.Validation()
		v := entry.Values[name]

		if isEmpty(v) {
			if ruleBool(rules["required"]) {
				errs = append(errs, ferr(ErrRequired, name, "Field '"+name+"' is required"))
			}
			continue
		}

		switch f.Type() {
		case TypeNumber, TypeFloat:
			if _, err := toFloatStrict(v); err != nil {
				errs = append(errs, ferr(ErrTypeMismatch, name, "Field '"+name+"' "+err.Error()))
				continue
			}
		case TypeInt:
			if _, err := toIntStrict(v); err != nil {
				errs = append(errs, ferr(ErrTypeMismatch, name, "Field '"+name+"' "+err.Error()))
				continue
			}
		case TypeBoolean:
			if _, err := toBoolStrict(v); err != nil {
				errs = append(errs, ferr(ErrTypeMismatch, name, "Field '"+name+"' "+err.Error()))
				continue
			}
		case TypeChoice:
			if len(f.Choices()) > 0 {
				if _, ok := f.LabelForChoice(v); !ok {
					errs = append(errs, ferr(ErrChoiceInvalid, name, "Invalid value for '"+name+"'"))
				}
			}
		case TypeChoices:
			items, ok := v.([]any)
			if !ok {
				errs = append(errs, ferr(ErrTypeMismatch, name, "Field '"+name+"' must be an array"))
				continue
			}
			if len(f.Choices()) > 0 {
				for _, it := range items {
					if _, ok := f.LabelForChoice(it); !ok {
						errs = append(errs, ferr(ErrChoiceInvalid, name, fmt.Sprintf("Invalid value %v for '%s'", it, name)))
						break
					}
				}
			}
		}

		s, isString := v.(string)
		if !isString {
			continue
		}
		n := utf8.RuneCountInString(s)
		if lo, ok := ruleInt(rules["minlength"]); ok && n < lo {
			errs = append(errs, ferr(ErrMinLength, name, fmt.Sprintf("Field '%s' must be at least %d characters", name, lo)))
		}
		if hi, ok := ruleInt(rules["maxlength"]); ok && n > hi {
			errs = append(errs, ferr(ErrMaxLength, name, fmt.Sprintf("Field '%s' must be at most %d characters", name, hi)))
		}
		if p, ok := rules["pattern"].(string); ok && p != "" {
			re, err := regexp.Compile(p)
			if err != nil {
				errs = append(errs, ferr(ErrPattern, name, fmt.Sprintf("Field '%s' has invalid pattern %q", name, p)))
			} else if !re.MatchString(s) {
				errs = append(errs, ferr(ErrPattern, name, fmt.Sprintf("Field '%s' does not match %q", name, p)))
			}
		}
	}

	return errs
}

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func ruleBool(v any) bool {
	b, err := toBoolStrict(v)
	return err == nil && b
}

func ruleInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	n, err := toIntStrict(v)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func toIntStrict(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case float64:
		// JSON numbers decode as float64
		if t != float64(int64(t)) {
			return 0, errors.New("must be integer")
		}
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, errors.New("must be integer")
		}
		return n, nil
	default:
		return 0, errors.New("must be integer")
	}
}

func toFloatStrict(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, errors.New("must be number")
		}
		return f, nil
	default:
		return 0, errors.New("must be number")
	}
}

func toBoolStrict(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off":
			return false, nil
		default:
			return false, errors.New("must be boolean")
		}
	default:
		return false, errors.New("must be boolean")
	}
}
