package json

import (
	"io"
	"sync"
)

// indentUnit 每层缩进
const indentUnit = "    "

// ─── 格式化 ───
//
// 输出格式:
//
//	{
//	    "name": "ada",
//	    "age": 30.00,
//	    "meta": {
//	        "tag": null
//	    }
//	}
//
// 数字固定两位小数，字符串原样输出（解析时未解转义，所以原样即合法）。
// 格式化本身不会失败。

// AppendDocument 把 d 的格式化文本追加到 dst，末尾带换行
func AppendDocument(dst []byte, d *Document) []byte {
	return append(appendBlock(dst, d.Block, 0), '\n')
}

// AppendBlock 以 level 级缩进把 b 追加到 dst（不带结尾换行）
func AppendBlock(dst []byte, b Block, level int) []byte {
	return appendBlock(dst, b, level)
}

func appendBlock(dst []byte, b Block, level int) []byte {
	pairs := b.Pairs()
	dst = append(dst, '{', '\n')
	for i := range pairs {
		p := &pairs[i]
		dst = appendIndent(dst, level+1)
		dst = append(dst, '"')
		dst = append(dst, p.key...)
		dst = append(dst, '"', ':', ' ')
		dst = appendValue(dst, &p.val, level+1)
		if i < len(pairs)-1 {
			dst = append(dst, ',')
		}
		dst = append(dst, '\n')
	}
	dst = appendIndent(dst, level)
	return append(dst, '}')
}

func appendValue(dst []byte, v *Value, level int) []byte {
	switch v.k {
	case KindString:
		dst = append(dst, '"')
		dst = append(dst, v.s...)
		return append(dst, '"')
	case KindNumber:
		return appendNumber(dst, v.n)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNull:
		return append(dst, v.s...)
	case KindBlock:
		return appendBlock(dst, v.blk, level)
	}
	return dst
}

func appendIndent(dst []byte, level int) []byte {
	for i := 0; i < level; i++ {
		dst = append(dst, indentUnit...)
	}
	return dst
}

// ─── 输出 ───

// scratchMax 容量超过它的临时缓冲用完即丢
const scratchMax = 64 << 10

var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 512)
		return &b
	},
}

func putScratch(bp *[]byte, b []byte) {
	if cap(b) > scratchMax {
		return
	}
	*bp = b[:0]
	scratchPool.Put(bp)
}

// Pretty 返回 d 的格式化文本
func Pretty(d *Document) string {
	bp := scratchPool.Get().(*[]byte)
	b := AppendDocument((*bp)[:0], d)
	s := string(b)
	putScratch(bp, b)
	return s
}

// String 实现 fmt.Stringer，返回格式化文本
func (d *Document) String() string { return Pretty(d) }

// WriteTo 把格式化文本写入 out
func (d *Document) WriteTo(out io.Writer) (int64, error) {
	bp := scratchPool.Get().(*[]byte)
	b := AppendDocument((*bp)[:0], d)
	n, err := out.Write(b)
	putScratch(bp, b)
	return int64(n), err
}
