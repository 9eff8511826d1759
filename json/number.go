package json

import (
	"strconv"
	"unsafe"

	"github.com/valyala/fastjson/fastfloat"
)

// parseNumber 十进制转换（与 locale 无关）
//
// 支持 -?digits(.digits)?，无法识别的字面量返回 0，不报错。
func parseNumber(lit string) float64 {
	return fastfloat.ParseBestEffort(lit)
}

// appendNumber 固定两位小数的显示格式（有损，只用于打印）
func appendNumber(dst []byte, f float64) []byte {
	return strconv.AppendFloat(dst, f, 'f', 2, 64)
}

// b2s []byte → string 零拷贝转换
func b2s(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
