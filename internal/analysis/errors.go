package analysis

import (
	"errors"
	"fmt"
)

// ErrInsufficientData 数据不足以完成计算
var ErrInsufficientData = errors.New("数据不足")

// WrapInsufficient 构造带原因的数据不足错误，子包共用
func WrapInsufficient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

func insufficientf(format string, args ...any) error {
	return WrapInsufficient(format, args...)
}
