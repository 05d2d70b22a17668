package handler

import "github.com/inkwell/internal/locale"

// 接口返回给用户的提示文案，按请求语言选择中文或英文。
var (
	msgInternal          = locale.Message{En: "Something went wrong", Zh: "服务器内部错误"}
	msgInvalidRequest    = locale.Message{En: "Invalid request body", Zh: "请求参数无效"}
	msgInvalidID         = locale.Message{En: "Invalid id", Zh: "无效的ID"}
	msgInvalidFilter     = locale.Message{En: "Invalid filter", Zh: "无效的筛选条件"}
	msgLoginRequired     = locale.Message{En: "Please sign in first", Zh: "请先登录"}
	msgBadCredentials    = locale.Message{En: "Invalid username or password", Zh: "用户名或密码错误"}
	msgSessionSaveFailed = locale.Message{En: "Failed to save session", Zh: "会话保存失败"}
	msgWriterRequired    = locale.Message{En: "You need the writer role to do this", Zh: "需要作者权限"}
	msgAdminRequired     = locale.Message{En: "You need the admin role to do this", Zh: "需要管理员权限"}

	msgTitleRequired     = locale.Message{En: "Please add a title", Zh: "请填写标题"}
	msgContentRequired   = locale.Message{En: "Please add some content", Zh: "请填写正文"}
	msgUnsupportedFormat = locale.Message{En: "Unsupported content format", Zh: "不支持的内容格式"}
	msgUnsupportedLang   = locale.Message{En: "Unsupported language", Zh: "不支持的语言"}
	msgPostNotFound      = locale.Message{En: "Post not found", Zh: "文章不存在"}
	msgSessionNotFound   = locale.Message{En: "Edit session not found", Zh: "编辑会话不存在"}
	msgSessionClosed     = locale.Message{En: "Edit session already closed", Zh: "编辑会话已关闭"}
	msgSubmitInProgress  = locale.Message{En: "A save is already in progress", Zh: "正在保存，请稍候"}
	msgOpenFailed        = locale.Message{En: "Failed to open the editor", Zh: "打开编辑器失败"}
	msgSubmitFailed      = locale.Message{En: "Failed to save the post", Zh: "保存文章失败"}
	msgPostsLoadFailed   = locale.Message{En: "Failed to load posts", Zh: "获取文章列表失败"}
	msgPostDeleteFailed  = locale.Message{En: "Failed to delete the post", Zh: "删除文章失败"}
	msgPostToggleFailed  = locale.Message{En: "Failed to update the post", Zh: "更新文章状态失败"}
	msgPostDeleted       = locale.Message{En: "Post deleted", Zh: "文章已删除"}
	msgPostPublished     = locale.Message{En: "Post published", Zh: "文章已发布"}
	msgPostUnpublished   = locale.Message{En: "Post unpublished", Zh: "文章已取消发布"}
	msgPostSaved         = locale.Message{En: "Post saved", Zh: "文章已保存"}

	msgNameRequired       = locale.Message{En: "Name is required", Zh: "名称不能为空"}
	msgTagNotFound        = locale.Message{En: "Tag not found", Zh: "标签不存在"}
	msgTagExists          = locale.Message{En: "Tag already exists", Zh: "标签已存在"}
	msgTagInUse           = locale.Message{En: "Tag is still used by posts", Zh: "标签仍被文章使用"}
	msgTagsLoadFailed     = locale.Message{En: "Failed to load tags", Zh: "获取标签列表失败"}
	msgTagSaveFailed      = locale.Message{En: "Failed to save the tag", Zh: "保存标签失败"}
	msgCategoryNotFound   = locale.Message{En: "Category not found", Zh: "分类不存在"}
	msgCategoryExists     = locale.Message{En: "Category already exists", Zh: "分类已存在"}
	msgCategoryInUse      = locale.Message{En: "Category is still used by posts", Zh: "分类仍被文章使用"}
	msgCategoriesFailed   = locale.Message{En: "Failed to load categories", Zh: "获取分类列表失败"}
	msgCategorySaveFailed = locale.Message{En: "Failed to save the category", Zh: "保存分类失败"}

	msgUserNotFound    = locale.Message{En: "User not found", Zh: "用户不存在"}
	msgInvalidRole     = locale.Message{En: "Unknown role", Zh: "未知角色"}
	msgUsersLoadFailed = locale.Message{En: "Failed to load users", Zh: "获取用户列表失败"}
	msgRoleSaveFailed  = locale.Message{En: "Failed to update the role", Zh: "更新角色失败"}
)
