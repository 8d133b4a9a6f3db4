package utils

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

func init() {
	// 注册以太坊地址校验规则, 供带 `validate:"eth_addr"` 标签的结构体使用
	_ = validate.RegisterValidation("eth_addr", func(fl validator.FieldLevel) bool {
		return common.IsHexAddress(fl.Field().String())
	})
}

// Validate 校验结构体字段
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.Wrap(err, "failed on validate struct")
	}
	return nil
}

// IsValidAddress 是否为合法的十六进制地址
func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

// ToChecksumAddress 转换为 EIP-55 校验和形式
func ToChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
