// Package json 基于 Arena 的 JSON 对象解析器
//
// 设计原则:
//   - 只解析对象: 顶层必须是 {...}，值为 string / number / bool / null / 嵌套对象，不支持数组
//   - Arena 分配: 输入整体复制进 Arena 一次，key 和 string 值都是其上的零拷贝切片，
//     Pair 数组从 Arena 的 Slab 分配并按 2 倍扩容，不逐个释放
//   - 有序: 保留源文本中的 key 顺序，重复 key 原样保留
//   - 失败即终止: 第一个错误返回带行列号的 *SyntaxError，本次解析的 Arena 分配全部回退
//   - 原样字符串: 不处理转义，引号之间的字节原样保留
//
// 用法:
//
//	doc, err := json.Parse(`{"name":"ada","meta":{"tag":null}}`)
//	if err != nil {
//	    var se *json.SyntaxError
//	    errors.As(err, &se) // se.Line, se.Column
//	}
//	defer doc.Release()
//	name, _ := doc.Lookup("name")   // name.Str() == "ada"
//	fmt.Print(doc)                  // 4 空格缩进的格式化输出
//
//	// 多个文档共享一个 Arena
//	p := json.NewParser(nil)
//	a, _ := p.Parse(`{"a":1}`)
//	b, _ := p.Parse(`{"b":2}`)
//	p.Release() // a、b 同时失效，再访问会 panic(ErrReleased)
package json

import "github.com/uniyakcom/arenajson/internal/support/arena"

// DefaultDepthLimit 默认嵌套深度上限（顶层对象深度为 1）
const DefaultDepthLimit = 512

// DocumentCap 顶层 Pair 数组初始容量
const DocumentCap = 16

// BlockCap 嵌套对象 Pair 数组初始容量
const BlockCap = 8

// Config 解析配置
type Config struct {
	// DepthLimit 嵌套深度必须小于该值，达到即返回 ErrDepthExceeded
	DepthLimit int
	// DocumentCap / BlockCap Pair 数组初始容量
	DocumentCap int
	BlockCap    int
	// AllowTrailing 为 true 时忽略顶层 '}' 之后的任意内容，默认只允许空白
	AllowTrailing bool
	// Arena 为 nil 时使用 arena.DefaultConfig()
	Arena *arena.Config
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DepthLimit:  DefaultDepthLimit,
		DocumentCap: DocumentCap,
		BlockCap:    BlockCap,
		Arena:       arena.DefaultConfig(),
	}
}

// normalize 补齐零值字段
func (c *Config) normalize() Config {
	if c == nil {
		return *DefaultConfig()
	}
	out := *c
	if out.DepthLimit <= 0 {
		out.DepthLimit = DefaultDepthLimit
	}
	if out.DocumentCap <= 0 {
		out.DocumentCap = DocumentCap
	}
	if out.BlockCap <= 0 {
		out.BlockCap = BlockCap
	}
	if out.Arena == nil {
		out.Arena = arena.DefaultConfig()
	}
	return out
}
