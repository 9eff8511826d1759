package json

import "github.com/uniyakcom/arenajson/internal/support/arena"

// Kind 值类型
type Kind uint8

const (
	KindString Kind = iota // 字符串（原样字节）
	KindNumber             // float64
	KindBlock              // 嵌套对象
	KindBool               // true / false
	KindNull               // null
)

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBlock:
		return "block"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value 带标签的值
//
// 字段布局参考 fastjson Value:
//   - s: String 内容 / Number 原始字面量 / Null 字面量 "null"，都指向 Arena 中的输入副本
//   - n: Number 的 float64
//   - blk: Block 的 Pair 数组
//   - b: Bool
//
// Arena 释放后访问任何方法都会 panic(ErrReleased)；零值 Value 不受限制。
type Value struct {
	s   string
	n   float64
	blk Block
	g   guard
	k   Kind
	b   bool
}

// Kind 返回值类型
func (v *Value) Kind() Kind {
	v.g.check()
	return v.k
}

// Str 返回字符串内容（非 String 返回空）
func (v *Value) Str() string {
	v.g.check()
	if v.k != KindString {
		return ""
	}
	return v.s
}

// Number 返回数值（非 Number 返回 0）
func (v *Value) Number() float64 {
	v.g.check()
	if v.k != KindNumber {
		return 0
	}
	return v.n
}

// Bool 返回布尔值（非 Bool 返回 false）
func (v *Value) Bool() bool {
	v.g.check()
	return v.k == KindBool && v.b
}

// IsNull 是否为 null
func (v *Value) IsNull() bool {
	v.g.check()
	return v.k == KindNull
}

// Block 返回嵌套对象（非 Block 返回空 Block）
func (v *Value) Block() Block {
	v.g.check()
	if v.k != KindBlock {
		return Block{}
	}
	return v.blk
}

// Literal 返回源文本中的字面量：String 为引号内内容，Number/Null 为原始文本，
// Bool 为 "true"/"false"，Block 为空
func (v *Value) Literal() string {
	v.g.check()
	switch v.k {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindBlock:
		return ""
	default:
		return v.s
	}
}

// Pair 键值对，key 总是字符串，value 恰好一种类型
type Pair struct {
	key string
	val Value
}

// Key 返回 key
func (p *Pair) Key() string {
	p.val.g.check()
	return p.key
}

// Value 返回值
func (p *Pair) Value() *Value {
	p.val.g.check()
	return &p.val
}

// guard 记录 Block / Value 构建时 Arena 的 generation，用于发现释放后访问
type guard struct {
	a   *arena.Arena
	gen uint64
}

func (g guard) check() {
	if g.a != nil && g.a.Generation() != g.gen {
		panic(ErrReleased)
	}
}

// Block 有序 Pair 数组（嵌套对象）
//
// 零值是合法的空 Block。Block 是视图，复制成本固定。
type Block struct {
	pairs []Pair
	g     guard
}

// Len 返回 Pair 数量
func (b Block) Len() int {
	b.g.check()
	return len(b.pairs)
}

// Cap 返回底层数组容量
func (b Block) Cap() int {
	b.g.check()
	return cap(b.pairs)
}

// Pair 返回第 i 个 Pair，越界 panic
func (b Block) Pair(i int) *Pair {
	b.g.check()
	return &b.pairs[i]
}

// Pairs 返回全部 Pair（指向 Arena，调用方不得修改）
func (b Block) Pairs() []Pair {
	b.g.check()
	return b.pairs
}

// Keys 按顺序返回全部 key
func (b Block) Keys() []string {
	b.g.check()
	keys := make([]string, len(b.pairs))
	for i := range b.pairs {
		keys[i] = b.pairs[i].key
	}
	return keys
}

// Document 解析结果（顶层对象）
type Document struct {
	Block
	size    int
	release func()
}

// Size 返回输入字节数
func (d *Document) Size() int { return d.size }

// ArenaStats 返回文档所在 Arena 的使用情况（共享 Arena 时包含其他文档）
func (d *Document) ArenaStats() arena.Stats {
	if d.g.a == nil {
		return arena.Stats{}
	}
	return d.g.a.Stats()
}

// Valid 文档的 Arena 是否仍然有效
func (d *Document) Valid() bool {
	return d.g.a == nil || d.g.a.Generation() == d.g.gen
}

// Release 释放文档独占的 Arena
//
// 只对 json.Parse 创建的文档生效；Parser.Parse 创建的文档随 Parser.Release 一起释放。
func (d *Document) Release() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}
