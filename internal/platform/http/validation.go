package http

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TickerTag はティッカーシンボル検証のバリデーションタグ名です。
const TickerTag = "ticker"

// tickerPattern は英数字で始まり、英数字と . - = ^ を含む20文字以内の銘柄コードです（例: AAPL, BRK.B, 7203.T, ^GSPC）。
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.=^-]{0,19}$`)

// IsTicker は文字列が銘柄コードとして妥当かを返します。
func IsTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// RegisterValidators はginのバインディングで使うカスタムバリデーションを登録します。
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation(TickerTag, func(fl validator.FieldLevel) bool {
		return IsTicker(fl.Field().String())
	})
}
