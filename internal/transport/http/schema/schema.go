// Package schema validates raw request data (body, query, path params) against a
// declared shape before any business logic runs.
//
// A Schema is plain data: each Field names a location key, a Kind the raw value is
// coerced into, and a list of Rules. Validate interprets a Schema against a Raw
// request and either returns the coerced Values (only declared fields survive) or a
// *ValidationError listing every field violation.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	String Kind = iota
	Int
	Bool
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	default:
		return "string"
	}
}

type RuleKind string

const (
	RuleEmail RuleKind = "email"
	RuleMin   RuleKind = "min" // 字符串按 rune 计长度
	RuleUUID  RuleKind = "uuid"
	RuleMaxB  RuleKind = "maxbytes" // 按 UTF-8 字节计长度
)

type Rule struct {
	Kind  RuleKind
	Param int
}

func Email() Rule         { return Rule{Kind: RuleEmail} }
func MinLen(n int) Rule   { return Rule{Kind: RuleMin, Param: n} }
func MaxBytes(n int) Rule { return Rule{Kind: RuleMaxB, Param: n} }
func UUID() Rule          { return Rule{Kind: RuleUUID} }

type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Rules    []Rule
}

// Shape 一个位置（body/query/params）声明的字段
type Shape []Field

// Partial returns a copy with every field optional; present fields keep their rules.
func (s Shape) Partial() Shape {
	out := make(Shape, len(s))
	for i, f := range s {
		f.Required = false
		f.Rules = append([]Rule(nil), f.Rules...)
		out[i] = f
	}
	return out
}

// Schema nil 的 Shape 表示该位置不校验
type Schema struct {
	Body   Shape
	Query  Shape
	Params Shape
}

// Raw 原始请求数据。Body 为已解码 JSON（nil 视为空对象）
type Raw struct {
	Body   any
	Query  map[string][]string
	Params map[string]string
}

// Values 校验通过后的数据，只含声明的字段
type Values struct {
	Body   map[string]any
	Query  map[string]any
	Params map[string]any
}

type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	locBody   = "body"
	locQuery  = "query"
	locParams = "params"
)

// Validate checks raw against s. On failure the error is a *ValidationError.
func Validate(s Schema, raw Raw) (Values, error) {
	var (
		out Values
		vs  []Violation
	)

	if s.Body != nil {
		obj, ok := bodyObject(raw.Body)
		if !ok {
			vs = append(vs, Violation{Field: locBody, Reason: "expected object"})
		} else {
			out.Body, vs = validateShape(locBody, s.Body, func(name string) (any, bool) {
				v, ok := obj[name]
				return v, ok
			}, vs)
		}
	}
	if s.Query != nil {
		out.Query, vs = validateShape(locQuery, s.Query, func(name string) (any, bool) {
			v, ok := raw.Query[name]
			if !ok || len(v) == 0 {
				return nil, false
			}
			return v[0], true
		}, vs)
	}
	if s.Params != nil {
		out.Params, vs = validateShape(locParams, s.Params, func(name string) (any, bool) {
			v, ok := raw.Params[name]
			return v, ok
		}, vs)
	}

	if len(vs) > 0 {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].Field < vs[j].Field })
		return Values{}, &ValidationError{Violations: vs}
	}
	return out, nil
}

func bodyObject(b any) (map[string]any, bool) {
	switch v := b.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}

func validateShape(loc string, shape Shape, lookup func(string) (any, bool), vs []Violation) (map[string]any, []Violation) {
	out := make(map[string]any, len(shape))
	for _, f := range shape {
		path := loc + "." + f.Name
		raw, present := lookup(f.Name)
		if !present {
			if f.Required {
				vs = append(vs, Violation{Field: path, Reason: "required"})
			}
			continue
		}
		// 显式 null 不等于缺省
		if raw == nil {
			vs = append(vs, Violation{Field: path, Reason: "must not be null"})
			continue
		}
		v, err := coerce(f.Kind, raw)
		if err != nil {
			vs = append(vs, Violation{Field: path, Reason: err.Error()})
			continue
		}
		if reason, ok := checkRules(f.Rules, v); !ok {
			vs = append(vs, Violation{Field: path, Reason: reason})
			continue
		}
		out[f.Name] = v
	}
	return out, vs
}

func ruleTag(r Rule) string {
	switch r.Kind {
	case RuleMin:
		return fmt.Sprintf("min=%d", r.Param)
	case RuleMaxB:
		return fmt.Sprintf("max=%d", r.Param)
	}
	return string(r.Kind)
}
