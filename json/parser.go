package json

import (
	"github.com/uniyakcom/arenajson/internal/support/arena"
)

// Parser 基于 Arena 的 JSON 对象解析器（可复用）
//
// 同一个 Parser 解析出的多个 Document 共享 Arena，生命周期持续到 Release。
// 注意: Parser 不是并发安全的，并发场景每个 goroutine 使用独立的 Parser。
type Parser struct {
	cfg   Config
	a     *arena.Arena
	pairs *arena.Slab[Pair]
}

// NewParser 创建 Parser，cfg 为 nil 时使用 DefaultConfig
func NewParser(cfg *Config) *Parser {
	c := cfg.normalize()
	a := arena.New(c.Arena)
	return &Parser{
		cfg:   c,
		a:     a,
		pairs: arena.NewSlab[Pair](a),
	}
}

// Parse 从单个独占 Arena 解析 s，调用 Document.Release 释放
func Parse(s string) (*Document, error) {
	return ParseWith(s, nil)
}

// ParseBytes 同 Parse
func ParseBytes(b []byte) (*Document, error) {
	return ParseWith(b2s(b), nil)
}

// ParseWith 使用 cfg 解析 s，文档独占 Arena
func ParseWith(s string, cfg *Config) (*Document, error) {
	p := NewParser(cfg)
	d, err := p.Parse(s)
	if err != nil {
		p.Release()
		return nil, err
	}
	d.release = p.Release
	return d, nil
}

// ParseBytesWith 同 ParseWith（b 会被复制进 Arena）
func ParseBytesWith(b []byte, cfg *Config) (*Document, error) {
	return ParseWith(b2s(b), cfg)
}

// Parse 解析 s，返回的 Document 在 Parser.Release 之前有效
//
// 失败时本次解析在 Arena 上的全部分配被回退，之前解析的文档不受影响。
func (p *Parser) Parse(s string) (*Document, error) {
	m := p.a.Mark()
	d, err := p.parse(s)
	if err != nil {
		p.a.Rollback(m)
		return nil, err
	}
	return d, nil
}

// ParseBytes 同 Parse（b 会被复制进 Arena，调用方可以立即复用 b）
func (p *Parser) ParseBytes(b []byte) (*Document, error) {
	return p.Parse(b2s(b))
}

// Release 释放 Arena，之前解析的所有 Document 失效
func (p *Parser) Release() { p.a.Release() }

// Stats 返回 Arena 使用情况
func (p *Parser) Stats() arena.Stats { return p.a.Stats() }

// Config 返回生效配置
func (p *Parser) Config() Config { return p.cfg }

func (p *Parser) parse(s string) (*Document, error) {
	src, err := p.a.StrdupString(s)
	if err != nil {
		return nil, newSyntaxError(s, 0, KindAllocation, "cannot copy input", err)
	}
	l := lexer{
		cursor: newCursor(src),
		cfg:    &p.cfg,
		pairs:  p.pairs,
		g:      guard{a: p.a, gen: p.a.Generation()},
	}
	l.skipSpace()
	blk, err := l.parseBlock(1, p.cfg.DocumentCap)
	if err != nil {
		return nil, err
	}
	if !p.cfg.AllowTrailing {
		l.skipSpace()
		if !l.eof() {
			return nil, l.fail(KindStructural, "unexpected trailing content")
		}
	}
	return &Document{Block: blk, size: len(s)}, nil
}

// ─── 递归下降 ───

// lexer 单次解析的状态（游标 + 分配来源）
type lexer struct {
	cursor
	cfg   *Config
	pairs *arena.Slab[Pair]
	g     guard
}

func (l *lexer) fail(kind ErrorKind, msg string) error {
	return newSyntaxError(l.src, l.pos, kind, msg, nil)
}

func (l *lexer) failAt(offset int, kind ErrorKind, msg string) error {
	return newSyntaxError(l.src, offset, kind, msg, nil)
}

func (l *lexer) failAlloc(err error) error {
	return newSyntaxError(l.src, l.pos, KindAllocation, "arena exhausted", err)
}

// parseBlock 解析 '{' ... '}'，depth 为该对象的深度（顶层为 1）
func (l *lexer) parseBlock(depth, capacity int) (Block, error) {
	l.skipSpace()
	if l.eof() || l.c != '{' {
		return Block{}, l.fail(KindStructural, "expected '{'")
	}
	if depth >= l.cfg.DepthLimit {
		return Block{}, l.fail(KindDepthExceeded, "nesting too deep")
	}
	l.advance() // skip '{'

	pairs, err := l.pairs.Alloc(capacity)
	if err != nil {
		return Block{}, l.failAlloc(err)
	}
	for {
		l.skipSpace()
		if l.is(classTerm) && l.c == '}' {
			break
		}
		var p Pair
		if err := l.parseKey(&p); err != nil {
			return Block{}, err
		}
		if err := l.parseValue(&p, depth); err != nil {
			return Block{}, err
		}
		if len(pairs) == cap(pairs) {
			// 2 倍扩容，旧数组留在 Arena 中直到 Release
			if pairs, err = l.pairs.Grow(pairs, max(2*cap(pairs), 1)); err != nil {
				return Block{}, l.failAlloc(err)
			}
		}
		pairs = append(pairs, p)

		l.skipSpace()
		if !l.eof() && l.c == ',' {
			l.advance()
			continue
		}
		if !l.eof() && l.c == '}' {
			break
		}
		return Block{}, l.fail(KindStructural, "expected ',' or '}'")
	}
	l.advance() // skip '}'
	return Block{pairs: pairs, g: l.g}, nil
}

// parseKey 解析 ws '"' raw '"'，key 是输入副本上的切片
func (l *lexer) parseKey(p *Pair) error {
	l.skipSpace()
	if !l.is(classQuote) {
		return l.fail(KindStructural, "expected opening quote")
	}
	key, ok := l.scanQuoted()
	if !ok {
		return l.fail(KindUnterminated, "unterminated key")
	}
	p.key = key
	return nil
}

// parseValue 解析 ws ':' ws value
//
// 标量值结束后游标停在下一个分隔符（或其前的空白）上，分隔符由 parseBlock 消费。
func (l *lexer) parseValue(p *Pair, depth int) error {
	l.skipSpace()
	if !l.is(classColon) {
		return l.fail(KindStructural, "expected ':'")
	}
	l.advance() // skip ':'
	l.skipSpace()
	if l.eof() {
		return l.fail(KindStructural, "unexpected value start")
	}

	switch {
	case l.is(classQuote):
		s, ok := l.scanQuoted()
		if !ok {
			return l.fail(KindUnterminated, "unterminated string")
		}
		p.val = Value{k: KindString, s: s, g: l.g}
	case l.is(classDigit) || l.c == '-':
		lit, _ := l.scanWord()
		p.val = Value{k: KindNumber, s: lit, n: parseNumber(lit), g: l.g}
	case l.c == '{':
		blk, err := l.parseBlock(depth+1, l.cfg.BlockCap)
		if err != nil {
			return err
		}
		p.val = Value{k: KindBlock, blk: blk, g: l.g}
	case l.c == 'n' || l.c == 't' || l.c == 'f':
		lit, start := l.scanWord()
		switch lit {
		case "null":
			p.val = Value{k: KindNull, s: lit, g: l.g}
		case "true":
			p.val = Value{k: KindBool, b: true, g: l.g}
		case "false":
			p.val = Value{k: KindBool, b: false, g: l.g}
		default:
			return l.failAt(start, KindUnknownLiteral, "unknown literal")
		}
	default:
		return l.fail(KindStructural, "unexpected value start")
	}
	return nil
}
