package json

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniyakcom/arenajson/internal/support/arena"
)

// nested 构造深度为 d 的对象，d == 1 时为 {}
func nested(d int) string {
	return strings.Repeat(`{"a":`, d-1) + "{}" + strings.Repeat("}", d-1)
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := Parse(s)
	require.NoError(t, err)
	t.Cleanup(d.Release)
	return d
}

func syntaxError(t *testing.T, err error) *SyntaxError {
	t.Helper()
	require.Error(t, err)
	var se *SyntaxError
	require.True(t, errors.As(err, &se), "want *SyntaxError, got %T: %v", err, err)
	return se
}

// TestParseEndToEnd 典型文档：顺序、类型、嵌套
func TestParseEndToEnd(t *testing.T) {
	d := mustParse(t, `{"name": "ada", "age": 30, "active": true, "meta": {"tag": null}}`)

	require.Equal(t, 4, d.Len())
	assert.Equal(t, []string{"name", "age", "active", "meta"}, d.Keys())

	name := d.Pair(0).Value()
	assert.Equal(t, KindString, name.Kind())
	assert.Equal(t, "ada", name.Str())

	age := d.Pair(1).Value()
	assert.Equal(t, KindNumber, age.Kind())
	assert.Equal(t, 30.0, age.Number())
	assert.Equal(t, "30", age.Literal())

	active := d.Pair(2).Value()
	assert.Equal(t, KindBool, active.Kind())
	assert.True(t, active.Bool())

	meta := d.Pair(3).Value()
	require.Equal(t, KindBlock, meta.Kind())
	blk := meta.Block()
	require.Equal(t, 1, blk.Len())
	assert.Equal(t, "tag", blk.Pair(0).Key())
	assert.True(t, blk.Pair(0).Value().IsNull())
	assert.Equal(t, "null", blk.Pair(0).Value().Literal())
}

func TestParseEmpty(t *testing.T) {
	for _, s := range []string{"{}", "  {  }  ", "\t\r\n{\n}\n"} {
		d := mustParse(t, s)
		assert.Equal(t, 0, d.Len(), "input %q", s)
		assert.Equal(t, len(s), d.Size())
	}
}

// TestParseOrderAndDuplicates 保留源文本顺序，重复 key 原样保留
func TestParseOrderAndDuplicates(t *testing.T) {
	d := mustParse(t, `{"z":1,"a":2,"z":3,"m":{"y":1,"b":2}}`)

	assert.Equal(t, []string{"z", "a", "z", "m"}, d.Keys())
	assert.Equal(t, 1.0, d.Pair(0).Value().Number())
	assert.Equal(t, 3.0, d.Pair(2).Value().Number())
	assert.Equal(t, []string{"y", "b"}, d.Pair(3).Value().Block().Keys())

	v, ok := d.Lookup("z")
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Number(), "lookup returns the first match")
}

func TestParseWhitespace(t *testing.T) {
	d := mustParse(t, "\n{ \"a\" :\t1 ,\r\n \"b\" : { } , \"c\"\n:\n\"x y\" }\n")
	require.Equal(t, []string{"a", "b", "c"}, d.Keys())
	assert.Equal(t, 1.0, d.Pair(0).Value().Number())
	assert.Equal(t, 0, d.Pair(1).Value().Block().Len())
	assert.Equal(t, "x y", d.Pair(2).Value().Str())
}

// TestParseRawStrings 不处理转义，引号之间原样保留
func TestParseRawStrings(t *testing.T) {
	d := mustParse(t, `{"a\\b":"c\\nd","e":"","f":"{,}:"}`)
	assert.Equal(t, `a\\b`, d.Pair(0).Key())
	assert.Equal(t, `c\\nd`, d.Pair(0).Value().Str())
	assert.Equal(t, "", d.Pair(1).Value().Str())
	assert.Equal(t, "{,}:", d.Pair(2).Value().Str())

	d = mustParse(t, "{\"a\":\"x\x00y\"}")
	assert.Equal(t, "x\x00y", d.Pair(0).Value().Str())
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		lit  string
		want float64
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"3.25", 3.25},
		{"-0.5", -0.5},
		{"1e3", 1000},
		{"12abc", 0}, // 无法识别的字面量为 0
		{"-", 0},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			d := mustParse(t, `{"n":`+tt.lit+`}`)
			v := d.Pair(0).Value()
			require.Equal(t, KindNumber, v.Kind())
			assert.Equal(t, tt.want, v.Number())
			assert.Equal(t, tt.lit, v.Literal())
		})
	}
}

// TestParseTrailingComma 最后一个 Pair 之后的逗号被接受
func TestParseTrailingComma(t *testing.T) {
	d := mustParse(t, `{"a":1,}`)
	assert.Equal(t, 1, d.Len())

	d = mustParse(t, `{"a":{"b":true,},}`)
	assert.True(t, d.GetBool("a", "b"))
}

// TestParseGrowth 超过初始容量时按 2 倍扩容，顺序不变
func TestParseGrowth(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{")
	for i := 0; i < 40; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"k%d":%d`, i, i)
	}
	sb.WriteString(`,"inner":{`)
	for i := 0; i < 20; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"j%d":"v%d"`, i, i)
	}
	sb.WriteString("}}")

	d := mustParse(t, sb.String())
	require.Equal(t, 41, d.Len())
	assert.Equal(t, 64, d.Cap())
	for i := 0; i < 40; i++ {
		p := d.Pair(i)
		assert.Equal(t, fmt.Sprintf("k%d", i), p.Key())
		assert.Equal(t, float64(i), p.Value().Number())
	}
	inner := d.Pair(40).Value().Block()
	require.Equal(t, 20, inner.Len())
	assert.Equal(t, 32, inner.Cap())
	assert.Equal(t, "v19", inner.Pair(19).Value().Str())
}

// TestParseInitialCapacity 顶层 16，嵌套 8
func TestParseInitialCapacity(t *testing.T) {
	d := mustParse(t, `{"a":{}}`)
	assert.Equal(t, DocumentCap, d.Cap())
	assert.Equal(t, BlockCap, d.Pair(0).Value().Block().Cap())
}

// ─── 错误 ───

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   ErrorKind
		msg    string
		offset int
	}{
		{"empty input", "", KindStructural, "expected '{'", 0},
		{"only space", "   ", KindStructural, "expected '{'", 3},
		{"array", "[1]", KindStructural, "expected '{'", 0},
		{"unquoted key", "{a:1}", KindStructural, "expected opening quote", 1},
		{"missing colon", `{"a" 1}`, KindStructural, "expected ':'", 5},
		{"missing colon at end", `{"a"`, KindStructural, "expected ':'", 4},
		{"missing value", `{"a":}`, KindStructural, "unexpected value start", 5},
		{"value at end", `{"a":`, KindStructural, "unexpected value start", 5},
		{"bad value start", `{"a":@}`, KindStructural, "unexpected value start", 5},
		{"array value", `{"a":[1]}`, KindStructural, "unexpected value start", 5},
		{"missing separator", `{"a":1 "b":2}`, KindStructural, "expected ',' or '}'", 7},
		{"missing brace", `{"a":1`, KindStructural, "expected ',' or '}'", 6},
		{"missing inner brace", `{"a":{"b":1`, KindStructural, "expected ',' or '}'", 11},
		{"unterminated key", `{"abc`, KindUnterminated, "unterminated key", 5},
		{"unterminated string", `{"a": "b`, KindUnterminated, "unterminated string", 8},
		{"null prefix", `{"a":nul}`, KindUnknownLiteral, "unknown literal", 5},
		{"true suffix", `{"a":truex}`, KindUnknownLiteral, "unknown literal", 5},
		{"false case", `{"a":False}`, KindStructural, "unexpected value start", 5},
		{"nested literal", `{"a":{"b":nope}}`, KindUnknownLiteral, "unknown literal", 10},
		{"trailing content", `{"a":1} x`, KindStructural, "unexpected trailing content", 8},
		{"second object", `{}{}`, KindStructural, "unexpected trailing content", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			assert.Nil(t, d)
			se := syntaxError(t, err)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.msg, se.Msg)
			assert.Equal(t, tt.offset, se.Offset)
			assert.ErrorIs(t, err, tt.kind.sentinel())
		})
	}
}

// TestParseUnterminated 缺少结尾引号和括号：不越界，报告输入末尾
func TestParseUnterminated(t *testing.T) {
	_, err := Parse(`{"a": "b`)
	se := syntaxError(t, err)
	assert.ErrorIs(t, err, ErrUnterminated)
	assert.Equal(t, 1, se.Line)
	assert.Equal(t, 9, se.Column)
	assert.Equal(t, "json: unterminated string at line 1, column 9", err.Error())
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("{\n  \"a\": x\n}")
	se := syntaxError(t, err)
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, 8, se.Column)
	assert.Equal(t, 9, se.Offset)
}

// TestParseDepth 深度小于上限成功，达到上限失败
func TestParseDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepthLimit = 4

	d, err := ParseWith(nested(3), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Depth())
	d.Release()

	_, err = ParseWith(nested(4), cfg)
	se := syntaxError(t, err)
	assert.Equal(t, KindDepthExceeded, se.Kind)
	assert.Equal(t, "nesting too deep", se.Msg)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestParseDefaultDepth(t *testing.T) {
	d := mustParse(t, nested(DefaultDepthLimit-1))
	assert.Equal(t, DefaultDepthLimit-1, d.Depth())

	_, err := Parse(nested(DefaultDepthLimit))
	assert.ErrorIs(t, err, ErrDepthExceeded)

	// 远超上限也只是返回错误
	_, err = Parse(nested(100000))
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

// TestParseAllowTrailing 允许时忽略结尾内容，默认只接受空白
func TestParseAllowTrailing(t *testing.T) {
	mustParse(t, "{\"a\":1} \n\t\r")

	cfg := DefaultConfig()
	cfg.AllowTrailing = true
	d, err := ParseWith(`{"a":1} garbage {`, cfg)
	require.NoError(t, err)
	defer d.Release()
	assert.Equal(t, 1, d.Len())
}

// ─── Arena 生命周期 ───

// TestParserRollback 失败的解析不占用 Arena，之前的文档不受影响
func TestParserRollback(t *testing.T) {
	p := NewParser(nil)
	defer p.Release()

	d1, err := p.Parse(`{"a":"x","b":{"c":1}}`)
	require.NoError(t, err)
	before := p.Stats()

	_, err = p.Parse(`{"q":{"r":{"s":nope}}}`)
	require.Error(t, err)
	after := p.Stats()
	assert.Equal(t, before.Used, after.Used)
	assert.Equal(t, before.Chunks, after.Chunks)

	assert.Equal(t, "x", d1.GetString("a"))
	assert.Equal(t, 1.0, d1.GetNumber("b", "c"))

	d2, err := p.Parse(`{"z":true}`)
	require.NoError(t, err)
	assert.True(t, d2.GetBool("z"))
	assert.Greater(t, p.Stats().Used, before.Used)
}

// TestParserShared 同一 Parser 的文档共享 Arena，一起释放
func TestParserShared(t *testing.T) {
	p := NewParser(nil)
	d1, err := p.Parse(`{"a":1}`)
	require.NoError(t, err)
	d2, err := p.ParseBytes([]byte(`{"b":2}`))
	require.NoError(t, err)

	assert.True(t, d1.Valid())
	assert.Equal(t, p.Stats(), d1.ArenaStats())

	d1.Release() // Parser 创建的文档不单独释放
	assert.True(t, d2.Valid())
	assert.Equal(t, 1, d1.Len())

	p.Release()
	assert.False(t, d1.Valid())
	assert.False(t, d2.Valid())
	assert.PanicsWithValue(t, ErrReleased, func() { d1.Len() })
	assert.PanicsWithValue(t, ErrReleased, func() { _ = d2.Pairs() })
}

func TestDocumentRelease(t *testing.T) {
	d, err := Parse(`{"a":{"b":1}}`)
	require.NoError(t, err)
	inner := d.Pair(0).Value().Block()

	d.Release()
	d.Release() // 重复释放无副作用
	assert.False(t, d.Valid())
	assert.PanicsWithValue(t, ErrReleased, func() { d.Keys() })
	assert.PanicsWithValue(t, ErrReleased, func() { inner.Len() })
	assert.PanicsWithValue(t, ErrReleased, func() { _ = Pretty(d) })
	assert.PanicsWithValue(t, ErrReleased, func() { d.Lookup("a") })
}

// TestReleasedViews 释放后保留的字符串不变，保留的 *Value / *Pair 访问 panic
func TestReleasedViews(t *testing.T) {
	d, err := Parse(`{"name":"ada","age":36,"meta":{"tag":"x"}}`)
	require.NoError(t, err)

	name := d.GetString("name")
	key := d.Pair(0).Key()
	tag := d.GetString("meta", "tag")
	v, ok := d.Lookup("name")
	require.True(t, ok)
	p := d.Pair(1)
	d.Release()

	// 其他文档占用同样大小的 chunk 并写入不同内容
	for i := 0; i < 8; i++ {
		other, err := Parse(`{"zzzz":"ZZZ","zzz":99,"zzzz":{"zzz":"Z"}}`)
		require.NoError(t, err)
		other.Release()
	}

	assert.Equal(t, "ada", name)
	assert.Equal(t, "name", key)
	assert.Equal(t, "x", tag)
	assert.PanicsWithValue(t, ErrReleased, func() { v.Str() })
	assert.PanicsWithValue(t, ErrReleased, func() { v.Kind() })
	assert.PanicsWithValue(t, ErrReleased, func() { p.Key() })
	assert.PanicsWithValue(t, ErrReleased, func() { p.Value() })
	assert.PanicsWithValue(t, ErrReleased, func() { p.val.Number() })

	var zero Value
	assert.Equal(t, KindString, zero.Kind())
}

// TestReleasedViewsParser 复用 Parser 时，上一轮的值不会被下一轮改写
func TestReleasedViewsParser(t *testing.T) {
	p := NewParser(nil)
	defer p.Release()

	d, err := p.Parse(`{"a":"first","b":{"c":true}}`)
	require.NoError(t, err)
	a := d.GetString("a")
	v, _ := d.Lookup("b", "c")
	p.Release()

	d2, err := p.Parse(`{"z":"second","y":{"x":false}}`)
	require.NoError(t, err)
	assert.Equal(t, "second", d2.GetString("z"))

	assert.Equal(t, "first", a)
	assert.PanicsWithValue(t, ErrReleased, func() { v.Bool() })
	assert.True(t, v.b, "released value must not be overwritten")
}

// TestParseBytesCopies 输入被复制进 Arena，调用方可以复用原切片
func TestParseBytesCopies(t *testing.T) {
	buf := []byte(`{"key":"value"}`)
	d, err := ParseBytes(buf)
	require.NoError(t, err)
	defer d.Release()

	copy(buf, `{"XXX":"XXXXX"}`)
	assert.Equal(t, "key", d.Pair(0).Key())
	assert.Equal(t, "value", d.Pair(0).Value().Str())
}

// TestParseAllocationLimit Arena 超限返回 ErrAllocation，并保留底层原因
func TestParseAllocationLimit(t *testing.T) {
	for _, limit := range []int{8, 256} {
		cfg := DefaultConfig()
		cfg.Arena.Limit = datasize.ByteSize(limit)
		_, err := ParseWith(`{"a":1,"b":"two"}`, cfg)
		se := syntaxError(t, err)
		assert.Equal(t, KindAllocation, se.Kind, "limit %d", limit)
		assert.ErrorIs(t, err, ErrAllocation)
		assert.ErrorIs(t, err, arena.ErrExhausted)
		assert.Contains(t, err.Error(), "memory limit exceeded")
	}

	cfg := DefaultConfig()
	cfg.Arena.Limit = datasize.ByteSize(1 << 20)
	d, err := ParseWith(`{"a":1}`, cfg)
	require.NoError(t, err)
	d.Release()
}

func TestConfigNormalize(t *testing.T) {
	c := (*Config)(nil).normalize()
	assert.Equal(t, DefaultDepthLimit, c.DepthLimit)
	assert.NotNil(t, c.Arena)

	c = (&Config{BlockCap: 2}).normalize()
	assert.Equal(t, DocumentCap, c.DocumentCap)
	assert.Equal(t, 2, c.BlockCap)

	p := NewParser(&Config{DocumentCap: 1, BlockCap: 1})
	defer p.Release()
	pc := p.Config()
	assert.Equal(t, 1, pc.DocumentCap)
	assert.Equal(t, 1, pc.BlockCap)
	assert.Equal(t, DefaultDepthLimit, pc.DepthLimit)
	require.NotNil(t, pc.Arena)
	assert.Equal(t, arena.DefaultChunkSize, pc.Arena.ChunkSize)
	d, err := p.Parse(`{"a":1,"b":2,"c":{"x":1,"y":2,"z":3}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())
	assert.Equal(t, []string{"x", "y", "z"}, d.Pair(2).Value().Block().Keys())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "block", KindBlock.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "depth exceeded", KindDepthExceeded.String())
	assert.Equal(t, "unknown", ErrorKind(0).String())
}

func TestValueAccessorsMismatch(t *testing.T) {
	d := mustParse(t, `{"s":"x","n":1.5,"b":false,"z":null,"o":{}}`)
	s := d.Pair(0).Value()
	assert.Equal(t, 0.0, s.Number())
	assert.False(t, s.Bool())
	assert.Equal(t, 0, s.Block().Len())

	n := d.Pair(1).Value()
	assert.Equal(t, "", n.Str())
	assert.Equal(t, "1.5", n.Literal())

	b := d.Pair(2).Value()
	assert.False(t, b.Bool())
	assert.Equal(t, "false", b.Literal())

	assert.True(t, d.Pair(3).Value().IsNull())
	assert.Equal(t, "", d.Pair(4).Value().Literal())
}
