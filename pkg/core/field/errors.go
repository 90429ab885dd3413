package field

import "fmt"

// Category 错误分类，决定错误在页面上的展示位置
type Category int

const (
	// CategoryFormat 输入格式错误，用户可自行修正
	CategoryFormat Category = iota
	// CategoryConflict 值已被占用
	CategoryConflict
	// CategoryInfra 查询或写入因基础设施原因失败
	CategoryInfra
	// CategoryRace 预检查通过但插入时违反唯一约束
	CategoryRace
)

func (c Category) String() string {
	switch c {
	case CategoryFormat:
		return "format"
	case CategoryConflict:
		return "conflict"
	case CategoryInfra:
		return "infra"
	case CategoryRace:
		return "race"
	}
	return "unknown"
}

// Inline 是否作为字段内联错误展示
func (c Category) Inline() bool {
	return c == CategoryFormat || c == CategoryConflict
}

// FieldError 单个字段的校验错误
type FieldError interface {
	error
	Field() Kind
	Category() Category
}

// region name

type NameErrorKind int

const (
	NameTooShort NameErrorKind = iota
	NameTooLong
	NameInvalidChar
	NameTaken
	NameLookupFailed
)

type NameError struct {
	Kind NameErrorKind
	Char rune  // NameInvalidChar
	Err  error // NameLookupFailed
}

func (e *NameError) Field() Kind { return KindName }

func (e *NameError) Category() Category {
	switch e.Kind {
	case NameTaken:
		return CategoryConflict
	case NameLookupFailed:
		return CategoryInfra
	}
	return CategoryFormat
}

func (e *NameError) Error() string {
	switch e.Kind {
	case NameTooShort:
		return "name is too short"
	case NameTooLong:
		return "name is too long"
	case NameInvalidChar:
		return fmt.Sprintf("name has invalid char: %c", e.Char)
	case NameTaken:
		return "name is occupied"
	case NameLookupFailed:
		return fmt.Sprintf("name lookup failed: %v", e.Err)
	}
	return "invalid name"
}

func (e *NameError) Unwrap() error { return e.Err }

// endregion

// region email

type EmailErrorKind int

const (
	EmailMalformed EmailErrorKind = iota
	EmailTaken
	EmailLookupFailed
)

type EmailError struct {
	Kind EmailErrorKind
	Err  error // EmailMalformed 时为解析错误，EmailLookupFailed 时为查询错误
}

func (e *EmailError) Field() Kind { return KindEmail }

func (e *EmailError) Category() Category {
	switch e.Kind {
	case EmailTaken:
		return CategoryConflict
	case EmailLookupFailed:
		return CategoryInfra
	}
	return CategoryFormat
}

func (e *EmailError) Error() string {
	switch e.Kind {
	case EmailMalformed:
		if e.Err != nil {
			return fmt.Sprintf("invalid email address: %v", e.Err)
		}
		return "invalid email address"
	case EmailTaken:
		return "email is occupied"
	case EmailLookupFailed:
		return fmt.Sprintf("email lookup failed: %v", e.Err)
	}
	return "invalid email"
}

func (e *EmailError) Unwrap() error { return e.Err }

// endregion

// region password

type PasswordErrorKind int

const (
	PasswordInvalidChar PasswordErrorKind = iota
	PasswordTooShort
	PasswordTooLong
	PasswordNoLower
	PasswordNoUpper
	PasswordNoDigit
)

type PasswordError struct {
	Kind PasswordErrorKind
	Char rune // PasswordInvalidChar
}

func (e *PasswordError) Field() Kind { return KindPassword }

func (e *PasswordError) Category() Category { return CategoryFormat }

func (e *PasswordError) Error() string {
	switch e.Kind {
	case PasswordInvalidChar:
		return fmt.Sprintf("forbidden character: %q", e.Char)
	case PasswordTooShort:
		return "too short"
	case PasswordTooLong:
		return "too long"
	case PasswordNoLower:
		return "no lower-case letter"
	case PasswordNoUpper:
		return "no upper-case letter"
	case PasswordNoDigit:
		return "no number"
	}
	return "invalid password"
}

// endregion
