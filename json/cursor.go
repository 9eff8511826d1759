package json

// cursor 输入游标
//
// c 是当前字节，到达末尾后固定为哨兵 0。
// 输入中可能出现真实的 0 字节，所以判断结束一律用 eof()，不用 c == 0。
type cursor struct {
	src string
	n   int
	pos int
	c   byte
}

func newCursor(src string) cursor {
	cur := cursor{src: src, n: len(src)}
	if cur.n > 0 {
		cur.c = src[0]
	}
	return cur
}

// advance 前进一个字节，到达末尾后幂等
func (cur *cursor) advance() {
	if cur.pos >= cur.n {
		cur.c = 0
		return
	}
	cur.pos++
	if cur.pos >= cur.n {
		cur.c = 0
	} else {
		cur.c = cur.src[cur.pos]
	}
}

func (cur *cursor) eof() bool { return cur.pos >= cur.n }

// is 当前字节是否属于 class（末尾时恒为 false）
func (cur *cursor) is(class uint8) bool {
	return cur.pos < cur.n && charClass[cur.c]&class != 0
}

// skipSpace 跳过空白，停在第一个非空白字节或末尾
func (cur *cursor) skipSpace() {
	for cur.is(classSpace) {
		cur.advance()
	}
}

// scanWord 读取直到结构分隔符、空白或末尾的一段字节
func (cur *cursor) scanWord() (string, int) {
	start := cur.pos
	for !cur.eof() && !cur.is(classTerm|classSpace) {
		cur.advance()
	}
	return cur.src[start:cur.pos], start
}

// scanQuoted 当前字节为 '"'，读取到下一个 '"'，返回不含引号的内容
//
// 到达末尾仍未闭合时 ok 为 false，游标停在末尾。
func (cur *cursor) scanQuoted() (s string, ok bool) {
	cur.advance() // skip opening '"'
	start := cur.pos
	for !cur.eof() && !cur.is(classQuote) {
		cur.advance()
	}
	if cur.eof() {
		return "", false
	}
	s = cur.src[start:cur.pos]
	cur.advance() // skip closing '"'
	return s, true
}

// Position 计算 offset 处的 1 起始行号和列号
//
// 从头扫描统计换行，O(n)，只在构造错误时调用。
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	line, col = 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
