package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeInput はユーザー入力の前後の空白を除去し、NFCに正規化する。
// 見た目が同じ文字列を同一として扱うため、保存・比較の前に必ず通す。
func NormalizeInput(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateLength は文字数（rune数）が範囲内かを検証する。
func ValidateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		if min <= 1 {
			if n == 0 {
				return NewValidationError(fmt.Sprintf("%s is required.", field))
			}
			return NewValidationError(fmt.Sprintf("%s must be at most %d characters.", field, max))
		}
		return NewValidationError(fmt.Sprintf("%s must be between %d and %d characters.", field, min, max))
	}
	return nil
}
