package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SegflowJP/line-bot/pkg/dateutil"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册自定义规则，注册失败时 panic
//
//	ymd: YYYY-MM-DD 形式的日期字符串
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err := v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			return dateutil.Valid(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("注册 ymd 校验规则失败: %v", err))
		}
	})
}

func init() {
	RegisterValidators()
}
