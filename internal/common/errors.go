package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Code 取出错误码，非 AppError 返回 ErrCodeInternal
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode 判断错误链上是否带有指定错误码
func IsCode(err error, code string) bool {
	return Code(err) == code
}

// 错误码常量
//
// 整轮失败的错误 (FETCH/EMPTY_RESULT/STORE/CONFIG) 冒泡到触发入口；
// 单条任务的错误 (ANALYSIS_ITEM/NOTIFY_DESTINATION) 就地吸收并计数，绝不中断批次
const (
	ErrCodeFetch       = "FETCH_ERROR"        // 网络/HTTP 层面抓取失败，下一次定时任务就是重试
	ErrCodeEmptyResult = "EMPTY_RESULT"       // 页面抓到了但一条都没解析出来，大概率是源页面结构变了
	ErrCodeStore       = "STORE_ERROR"        // 数据库 upsert/查询失败
	ErrCodeAnalysis    = "ANALYSIS_ITEM_ERROR" // 单条 AI 分析失败（坏 JSON/坏状态码/网络）
	ErrCodeNotify      = "NOTIFY_DESTINATION_ERROR"
	ErrCodeAuth        = "AUTH_ERROR"   // 触发接口的共享密钥不对
	ErrCodeConfig      = "CONFIG_ERROR" // 必要的环境变量没配置
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal    = "INTERNAL_ERROR"
)
