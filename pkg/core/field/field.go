// Package field 表单字段的校验规则与状态
package field

import "context"

// Kind 字段类型
type Kind int

const (
	KindName Kind = iota
	KindEmail
	KindPassword
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindEmail:
		return "email"
	case KindPassword:
		return "password"
	}
	return "unknown"
}

// Value 从请求中取到的原始字段值，取到后不再修改
type Value struct {
	Kind Kind
	Raw  string
}

// Tag FieldState 的三种状态
type Tag int

const (
	Untouched Tag = iota
	Valid
	Invalid
)

func (t Tag) String() string {
	switch t {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "untouched"
}

// State 单个字段的校验结果，每个请求重新构造
type State struct {
	tag   Tag
	value string
	err   FieldError
}

func NewUntouched() State {
	return State{tag: Untouched}
}

func NewValid(value string) State {
	return State{tag: Valid, value: value}
}

func NewInvalid(value string, err FieldError) State {
	return State{tag: Invalid, value: value, err: err}
}

func (s State) Tag() string { return s.tag.String() }

func (s State) Is(t Tag) bool { return s.tag == t }

// Value Untouched 时为空
func (s State) Value() string { return s.value }

// Err 仅 Invalid 时非 nil
func (s State) Err() FieldError { return s.err }

// Rule 字段校验规则；唯一允许的副作用是只读查询
type Rule func(ctx context.Context, raw string) FieldError

// Check 执行规则并生成新的状态
func Check(ctx context.Context, rule Rule, raw string) State {
	if err := rule(ctx, raw); err != nil {
		return NewInvalid(raw, err)
	}
	return NewValid(raw)
}
