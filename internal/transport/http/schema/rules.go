package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// coerce 把原始值转换成声明的类型；query/params 总是字符串
func coerce(k Kind, raw any) (any, error) {
	switch k {
	case Int:
		switch v := raw.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, errors.New("expected integer")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.New("expected integer")
			}
			return n, nil
		}
	case Bool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errors.New("expected boolean")
			}
			return b, nil
		}
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("expected %s", k)
}

func checkRules(rules []Rule, v any) (string, bool) {
	for _, r := range rules {
		if r.Kind != RuleMin {
			if _, ok := v.(string); !ok {
				return fmt.Sprintf("%s rule requires a string", r.Kind), false
			}
		}
		target := v
		if r.Kind == RuleMaxB {
			// validator 对字符串按 rune 计数，转成 []byte 才是字节数
			target = []byte(v.(string))
		}
		if err := validate.Var(target, ruleTag(r)); err != nil {
			return reason(r, v), false
		}
	}
	return "", true
}

func reason(r Rule, v any) string {
	switch r.Kind {
	case RuleEmail:
		return "invalid email"
	case RuleUUID:
		return "invalid uuid"
	case RuleMaxB:
		return fmt.Sprintf("must be at most %d bytes", r.Param)
	case RuleMin:
		if _, ok := v.(string); ok {
			return fmt.Sprintf("must be at least %d characters", r.Param)
		}
		return fmt.Sprintf("must be at least %d", r.Param)
	}
	return "invalid"
}
