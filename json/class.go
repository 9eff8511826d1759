package json

// 字符分类标志位，一个字节可以同时属于多个类别
const (
	classDigit uint8 = 1 << iota // 0-9
	classIdent                   // a-z A-Z _
	classSpace                   // ' ' '\t' '\n' '\r'
	classQuote                   // '"'
	classColon                   // ':'
	classTerm                    // ',' ']' '}'
)

// charClass 256 项分类查找表（灵感来源: tidwall/gjson vch[256]）
//
// 包初始化时构建一次，之后只读，多个解析并发读取无需同步。
var charClass = buildCharClass()

func buildCharClass() [256]uint8 {
	var t [256]uint8
	for c := '0'; c <= '9'; c++ {
		t[c] |= classDigit
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] |= classIdent
		t[c-'a'+'A'] |= classIdent
	}
	t['_'] |= classIdent
	t[' '] |= classSpace
	t['\t'] |= classSpace
	t['\n'] |= classSpace
	t['\r'] |= classSpace
	t['"'] |= classQuote
	t[':'] |= classColon
	t[','] |= classTerm
	t[']'] |= classTerm
	t['}'] |= classTerm
	return t
}

// classOf 返回 c 的类别位集合，未定义字节为 0
func classOf(c byte) uint8 { return charClass[c] }
