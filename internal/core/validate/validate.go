package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultMsg 字段没有 msg tag 时使用
const DefaultMsg = "Invalid input!"

// FirstMessage 取第一个失败字段的 `msg` tag 作为面向用户的提示
func FirstMessage(err error, obj any) (string, bool) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "", false
	}
	if m := lookupMsg(reflect.TypeOf(obj), ves[0].StructNamespace()); m != "" {
		return m, true
	}
	return DefaultMsg, true
}

// lookupMsg 按 "Form.CookTime.Minutes" 逐级找字段
func lookupMsg(t reflect.Type, ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) < 2 {
		return ""
	}
	var msg string
	for _, name := range parts[1:] {
		for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			return msg
		}
		// 切片元素形如 Items[0]
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return msg
		}
		if m := f.Tag.Get("msg"); m != "" {
			msg = m
		}
		t = f.Type
	}
	return msg
}
