package i18n

var zhCN = map[string]string{
	"hello":                "你好，这是来自 API 的消息！",
	"devNotice":            "开发环境中，前端资源由 Vite 提供，请访问 http://localhost:3000",
	"userNotFound":         "用户不存在",
	"routeNotFound":        "资源不存在",
	"userDeleted":          "用户已删除",
	"nameMinLength":        "名称至少需要 2 个字符",
	"passwordMinLength":    "密码至少需要 6 个字符",
	"passwordMaxLength":    "密码不能超过 72 个字节",
	"invalidEmail":         "请提供有效的电子邮件地址",
	"invalidRole":          "角色必须是 admin 或 user",
	"fieldRequired":        "此字段为必填项",
	"invalidID":            "无效的用户 ID",
	"invalidBody":          "请求体格式错误",
	"validationFailed":     "请求参数校验失败",
	"userCreated":          "用户创建成功",
	"userUpdated":          "用户更新成功",
	"loginSuccess":         "登录成功",
	"loginFailed":          "登录失败，邮箱或密码错误",
	"logoutSuccess":        "已退出登录",
	"accountDisabled":      "账户已禁用，请联系管理员",
	"registerSuccess":      "注册成功，请等待管理员激活账户",
	"adminRegisterSuccess": "管理员账户注册成功",
	"registrationFailed":   "注册失败",
	"registrationDisabled": "模板项目暂不支持公开注册，请使用管理员密钥注册",
	"accountActivated":     "账户已激活",
	"accountDeactivated":   "账户已禁用",
	"unauthorized":         "未授权操作",
	"adminRequired":        "需要管理员权限",
	"emailExists":          "邮箱已存在",
	"emailInUse":           "邮箱已被其他用户使用",
	"lastAdmin":            "无法删除最后一个管理员",
	"notYourAccount":       "您只能更新自己的账户信息",
	"internalError":        "服务器内部错误",
}

var en = map[string]string{
	"hello":                "Hello, this is a message from the API!",
	"devNotice":            "In development the frontend is served by Vite, please visit http://localhost:3000",
	"userNotFound":         "User not found",
	"routeNotFound":        "Resource not found",
	"userDeleted":          "User deleted",
	"nameMinLength":        "Name must be at least 2 characters",
	"passwordMinLength":    "Password must be at least 6 characters",
	"passwordMaxLength":    "Password must be at most 72 bytes",
	"invalidEmail":         "Please provide a valid email address",
	"invalidRole":          "Role must be admin or user",
	"fieldRequired":        "This field is required",
	"invalidID":            "Invalid user id",
	"invalidBody":          "Malformed request body",
	"validationFailed":     "Request validation failed",
	"userCreated":          "User created successfully",
	"userUpdated":          "User updated successfully",
	"loginSuccess":         "Login successful",
	"loginFailed":          "Login failed, incorrect email or password",
	"logoutSuccess":        "Logged out",
	"accountDisabled":      "Account is disabled, please contact administrator",
	"registerSuccess":      "Registration successful, please wait for admin activation",
	"adminRegisterSuccess": "Admin account registered",
	"registrationFailed":   "Registration failed",
	"registrationDisabled": "Public registration is currently disabled in this template project. Please use an admin key to register.",
	"accountActivated":     "Account activated",
	"accountDeactivated":   "Account deactivated",
	"unauthorized":         "Unauthorized operation",
	"adminRequired":        "Admin privileges required",
	"emailExists":          "Email already exists",
	"emailInUse":           "Email already in use by another user",
	"lastAdmin":            "Cannot delete the last admin user",
	"notYourAccount":       "You can only update your own account information",
	"internalError":        "Internal server error",
}
