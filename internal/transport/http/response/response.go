package response

import "github.com/gin-gonic/gin"

// Msg 所有错误（和部分成功）响应体：{"message": "..."}
type Msg struct {
	Message string `json:"message"`
}

func Message(msg string) Msg { return Msg{Message: msg} }

// Error 自定义 msg 为空时用默认文案
func Error(code int, customMsg string) Msg {
	if customMsg != "" {
		return Msg{Message: customMsg}
	}
	return Msg{Message: CodeMsgMap[code]}
}

// Abort 中间件里直接以真实状态码结束请求
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}
