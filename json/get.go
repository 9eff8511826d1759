package json

// Result 懒查询结果（不构建树，不使用 Arena）
//
//   - raw: 原始文本切片（如 `"ada"`、`30`、`{"tag":null}`）
//   - str: String 类型时为引号内内容
//   - kind / ok: 类型与是否存在
type Result struct {
	raw  string
	str  string
	kind Kind
	ok   bool
}

// Exists 返回值是否存在
func (r Result) Exists() bool { return r.ok }

// Kind 返回值类型（不存在时无意义）
func (r Result) Kind() Kind { return r.kind }

// Raw 返回原始文本
func (r Result) Raw() string { return r.raw }

// String String 类型返回内容，其他类型返回原始文本
func (r Result) String() string {
	if r.kind == KindString {
		return r.str
	}
	return r.raw
}

// Number 返回数值（非 Number 返回 0）
func (r Result) Number() float64 {
	if !r.ok || r.kind != KindNumber {
		return 0
	}
	return parseNumber(r.raw)
}

// Bool 返回布尔值（非 Bool 返回 false）
func (r Result) Bool() bool {
	return r.ok && r.kind == KindBool && r.raw == "true"
}

// ─── 懒查询 API ───

// Get 按点分隔路径惰性查询对象文本
//
// 直接扫描输入，跳过不需要的键值，重复 key 取源文本中的第一个。
// 路径不存在、中途遇到非对象或文本不合法时返回不存在的 Result。
//
//	Get(`{"user":{"name":"ada"}}`, "user.name") → "ada"
//	Get(`{"a":{"b":{"c":true}}}`, "a.b.c")      → true
func Get(src, path string) Result {
	cur := newCursor(src)
	for {
		// 逐段处理，不分割为 []string
		dot := 0
		for dot < len(path) && path[dot] != '.' {
			dot++
		}
		key := path[:dot]
		more := dot < len(path)
		if more {
			path = path[dot+1:]
		}

		cur.skipSpace()
		if cur.eof() || cur.c != '{' {
			return Result{}
		}
		cur.advance()
		if !objFind(&cur, key) {
			return Result{}
		}
		if !more {
			return parseResult(&cur)
		}
	}
}

// GetBytes 同 Get
func GetBytes(src []byte, path string) Result {
	return Get(b2s(src), path)
}

// objFind 在对象中查找 key，成功时游标停在值的第一个字节
//
// 游标位于 '{' 之后。
func objFind(cur *cursor, key string) bool {
	for {
		cur.skipSpace()
		if cur.eof() || !cur.is(classQuote) {
			return false
		}
		k, ok := cur.scanQuoted()
		if !ok {
			return false
		}
		cur.skipSpace()
		if !cur.is(classColon) {
			return false
		}
		cur.advance()
		cur.skipSpace()
		if k == key {
			return !cur.eof()
		}
		if !skipValue(cur) {
			return false
		}
		cur.skipSpace()
		if cur.eof() || cur.c != ',' {
			return false
		}
		cur.advance()
	}
}

// skipValue 跳过一个值，游标停在其后
func skipValue(cur *cursor) bool {
	switch {
	case cur.eof():
		return false
	case cur.is(classQuote):
		_, ok := cur.scanQuoted()
		return ok
	case cur.c == '{':
		return skipNested(cur)
	default:
		w, _ := cur.scanWord()
		return w != ""
	}
}

// skipNested 跳过嵌套对象，计数深度，字符串内的括号不计
//
// 迭代实现，不受 DepthLimit 约束也不会爆栈。
func skipNested(cur *cursor) bool {
	depth := 0
	for !cur.eof() {
		switch cur.c {
		case '"':
			if _, ok := cur.scanQuoted(); !ok {
				return false
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				cur.advance()
				return true
			}
		}
		cur.advance()
	}
	return false
}

// parseResult 在游标处解析值为 Result（不构建树）
func parseResult(cur *cursor) Result {
	start := cur.pos
	switch {
	case cur.is(classQuote):
		s, ok := cur.scanQuoted()
		if !ok {
			return Result{}
		}
		return Result{raw: cur.src[start:cur.pos], str: s, kind: KindString, ok: true}
	case cur.c == '{':
		if !skipNested(cur) {
			return Result{}
		}
		return Result{raw: cur.src[start:cur.pos], kind: KindBlock, ok: true}
	case cur.is(classDigit) || cur.c == '-':
		w, _ := cur.scanWord()
		return Result{raw: w, kind: KindNumber, ok: true}
	default:
		w, _ := cur.scanWord()
		switch w {
		case "true", "false":
			return Result{raw: w, kind: KindBool, ok: true}
		case "null":
			return Result{raw: w, kind: KindNull, ok: true}
		}
		return Result{}
	}
}

// ─── 树查询 ───

// Get 在 Block 中查找第一个 key 匹配的值，支持嵌套路径: b.Get("meta", "tag")
func (b Block) Get(keys ...string) (*Value, bool) {
	b.g.check()
	if len(keys) == 0 {
		return nil, false
	}
	cur := b
	for i, k := range keys {
		var found *Value
		for j := range cur.pairs {
			if cur.pairs[j].key == k {
				found = &cur.pairs[j].val
				break
			}
		}
		if found == nil {
			return nil, false
		}
		if i == len(keys)-1 {
			return found, true
		}
		if found.k != KindBlock {
			return nil, false
		}
		cur = found.blk
	}
	return nil, false
}

// Has 路径是否存在
func (b Block) Has(keys ...string) bool {
	_, ok := b.Get(keys...)
	return ok
}

// Lookup 同 Block.Get
func (d *Document) Lookup(keys ...string) (*Value, bool) {
	return d.Get(keys...)
}

// GetString 获取字符串值，不存在或类型不匹配返回空
func (b Block) GetString(keys ...string) string {
	v, ok := b.Get(keys...)
	if !ok {
		return ""
	}
	return v.Str()
}

// GetNumber 获取数值，不存在或类型不匹配返回 0
func (b Block) GetNumber(keys ...string) float64 {
	v, ok := b.Get(keys...)
	if !ok {
		return 0
	}
	return v.Number()
}

// GetBool 获取布尔值，不存在或类型不匹配返回 false
func (b Block) GetBool(keys ...string) bool {
	v, ok := b.Get(keys...)
	return ok && v.Bool()
}

// Walk 深度优先遍历每个 Pair，depth 从 1 开始，fn 返回 false 停止
func (b Block) Walk(fn func(depth int, p *Pair) bool) {
	b.g.check()
	b.walk(1, fn)
}

func (b Block) walk(depth int, fn func(depth int, p *Pair) bool) bool {
	for i := range b.pairs {
		p := &b.pairs[i]
		if !fn(depth, p) {
			return false
		}
		if p.val.k == KindBlock && !p.val.blk.walk(depth+1, fn) {
			return false
		}
	}
	return true
}

// Count 返回包括嵌套对象在内的 Pair 总数
func (b Block) Count() int {
	n := 0
	b.Walk(func(int, *Pair) bool {
		n++
		return true
	})
	return n
}

// Depth 返回对象嵌套深度，自身为 1
func (b Block) Depth() int {
	d := 1
	b.Walk(func(depth int, p *Pair) bool {
		if p.val.k == KindBlock && depth+1 > d {
			d = depth + 1
		}
		return true
	})
	return d
}
