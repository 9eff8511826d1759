package json

import (
	"errors"
	"strconv"
)

// ErrorKind 语法错误类别
type ErrorKind uint8

const (
	KindStructural     ErrorKind = iota + 1 // 缺失或错位的 { } : ,
	KindUnterminated                        // key / string 到达末尾仍未闭合
	KindUnknownLiteral                      // n/t/f 开头但不是 null/true/false
	KindDepthExceeded                       // 嵌套超过 DepthLimit
	KindAllocation                          // Arena 分配失败
)

// 各类别的哨兵错误，配合 errors.Is 使用
var (
	ErrStructural     = errors.New("json: structural error")
	ErrUnterminated   = errors.New("json: unterminated literal")
	ErrUnknownLiteral = errors.New("json: unknown literal")
	ErrDepthExceeded  = errors.New("json: nesting depth exceeded")
	ErrAllocation     = errors.New("json: arena allocation failed")
)

// ErrReleased 访问已释放 Arena 上的文档时 panic 的值
var ErrReleased = errors.New("json: document used after arena release")

// String 返回类别名称
func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindUnterminated:
		return "unterminated"
	case KindUnknownLiteral:
		return "unknown literal"
	case KindDepthExceeded:
		return "depth exceeded"
	case KindAllocation:
		return "allocation"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindStructural:
		return ErrStructural
	case KindUnterminated:
		return ErrUnterminated
	case KindUnknownLiteral:
		return ErrUnknownLiteral
	case KindDepthExceeded:
		return ErrDepthExceeded
	case KindAllocation:
		return ErrAllocation
	default:
		return nil
	}
}

// SyntaxError 解析错误，带检测位置
type SyntaxError struct {
	Kind   ErrorKind
	Msg    string
	Offset int // 字节偏移
	Line   int // 1 起始
	Column int // 1 起始
	cause  error
}

func (e *SyntaxError) Error() string {
	b := make([]byte, 0, len(e.Msg)+40)
	b = append(b, "json: "...)
	b = append(b, e.Msg...)
	b = append(b, " at line "...)
	b = strconv.AppendInt(b, int64(e.Line), 10)
	b = append(b, ", column "...)
	b = strconv.AppendInt(b, int64(e.Column), 10)
	if e.cause != nil {
		b = append(b, ": "...)
		b = append(b, e.cause.Error()...)
	}
	return string(b)
}

// Unwrap 返回类别哨兵错误以及底层原因（如 arena.ErrExhausted）
func (e *SyntaxError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func newSyntaxError(src string, offset int, kind ErrorKind, msg string, cause error) *SyntaxError {
	line, col := Position(src, offset)
	return &SyntaxError{
		Kind:   kind,
		Msg:    msg,
		Offset: offset,
		Line:   line,
		Column: col,
		cause:  cause,
	}
}
