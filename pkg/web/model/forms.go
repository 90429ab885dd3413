package model

// 表单/查询参数绑定结构
type (
	SignupReq struct {
		Name     string `form:"name"`
		Email    string `form:"email"`
		Password string `form:"password"`
	}

	LoginReq struct {
		Login    string `form:"login"`
		Password string `form:"password"`
	}

	EmailReq struct {
		Email string `form:"email"`
	}

	ContactReq struct {
		Name  string `form:"name"`
		Email string `form:"email"`
	}

	ContactListReq struct {
		Query string `query:"q"`
		Page  int    `query:"page"`
	}
)
