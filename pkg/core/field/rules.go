package field

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLen     = 4
	NameMaxLen     = 32
	PasswordMinLen = 6
	PasswordMaxLen = 64
)

// PasswordSpecialChars 密码中允许的 ASCII 标点与空格
const PasswordSpecialChars = " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var errDisplayName = errors.New("display names are not accepted")

// NameLookup 按名称查询已存在账号
type NameLookup interface {
	FindIDByName(ctx context.Context, name string) (uint, bool, error)
}

// EmailLookup 按邮箱查询已存在记录（账号或联系人）
type EmailLookup interface {
	FindIDByEmail(ctx context.Context, email string) (uint, bool, error)
}

func isNameChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsNumber(c) || c == '_' || c == '-'
}

func isPasswordChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsNumber(c) || strings.ContainsRune(PasswordSpecialChars, c)
}

// CheckName 长度 -> 字符 -> 唯一性，长度不合法时不查库
func CheckName(ctx context.Context, lookup NameLookup, name string) FieldError {
	n := utf8.RuneCountInString(name)
	if n < NameMinLen {
		return &NameError{Kind: NameTooShort}
	}
	if n > NameMaxLen {
		return &NameError{Kind: NameTooLong}
	}
	for _, c := range name {
		if !isNameChar(c) {
			return &NameError{Kind: NameInvalidChar, Char: c}
		}
	}

	_, found, err := lookup.FindIDByName(ctx, name)
	if err != nil {
		return &NameError{Kind: NameLookupFailed, Err: err}
	}
	if found {
		return &NameError{Kind: NameTaken}
	}
	return nil
}

// ParseEmail 只接受裸地址 local@domain
func ParseEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	if addr.Name != "" || addr.Address != email {
		return errDisplayName
	}
	return nil
}

// CheckEmail currentID 非 nil 时允许与该 id 的记录重复（编辑自身）
func CheckEmail(ctx context.Context, lookup EmailLookup, email string, currentID *uint) FieldError {
	if err := ParseEmail(email); err != nil {
		return &EmailError{Kind: EmailMalformed, Err: err}
	}

	id, found, err := lookup.FindIDByEmail(ctx, email)
	if err != nil {
		return &EmailError{Kind: EmailLookupFailed, Err: err}
	}
	if found && (currentID == nil || *currentID != id) {
		return &EmailError{Kind: EmailTaken}
	}
	return nil
}

// CheckPassword 固定顺序：非法字符 -> 过短 -> 过长 -> 小写 -> 大写 -> 数字
func CheckPassword(password string) FieldError {
	for _, c := range password {
		if !isPasswordChar(c) {
			return &PasswordError{Kind: PasswordInvalidChar, Char: c}
		}
	}

	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen {
		return &PasswordError{Kind: PasswordTooShort}
	}
	if n > PasswordMaxLen {
		return &PasswordError{Kind: PasswordTooLong}
	}

	var hasLower, hasUpper, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsNumber(c):
			hasDigit = true
		}
	}
	if !hasLower {
		return &PasswordError{Kind: PasswordNoLower}
	}
	if !hasUpper {
		return &PasswordError{Kind: PasswordNoUpper}
	}
	if !hasDigit {
		return &PasswordError{Kind: PasswordNoDigit}
	}
	return nil
}

func NameRule(lookup NameLookup) Rule {
	return func(ctx context.Context, raw string) FieldError {
		return CheckName(ctx, lookup, raw)
	}
}

func EmailRule(lookup EmailLookup, currentID *uint) Rule {
	return func(ctx context.Context, raw string) FieldError {
		return CheckEmail(ctx, lookup, raw, currentID)
	}
}

func PasswordRule() Rule {
	return func(_ context.Context, raw string) FieldError {
		return CheckPassword(raw)
	}
}
