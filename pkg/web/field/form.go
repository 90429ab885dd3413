package field

import core "contact-book/pkg/core/field"

// SignupForm 注册页三个字段的服务端状态；仅用于决定提交按钮的初始状态
type SignupForm struct {
	Name     core.State
	Email    core.State
	Password core.State
}

func NewSignupForm() SignupForm {
	return SignupForm{
		Name:     core.NewUntouched(),
		Email:    core.NewUntouched(),
		Password: core.NewUntouched(),
	}
}

// Ready 三个字段均为 Valid；确认密码只在客户端比较
func (f SignupForm) Ready() bool {
	return f.Name.Is(core.Valid) && f.Email.Is(core.Valid) && f.Password.Is(core.Valid)
}
