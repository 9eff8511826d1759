// Package arena 提供文档解析使用的 bump 分配器
//
// 设计：
//   - 字节内存按 chunk 线性分配（8 字节对齐），满了切换新 chunk，对调用侧透明
//   - Slab[T] 为带指针的类型化节点提供同样的线性分配（GC 可见）
//   - 不支持单个释放：Mark/Rollback 批量回退，Release 整体释放
//   - Release 后 Generation 递增，持有旧 generation 的视图可据此发现失效
//   - Release 只丢弃 chunk 引用，内存交给 GC：Strdup 返回的字符串仍然引用旧 chunk，
//     内容永远不会被之后的分配改写
//   - 只有 Rollback 丢弃的整块 chunk 会进入复用池，Mark 之后分配的字符串不得保留
//
// Arena 不是并发安全的，一个 Arena 同一时刻只能被一个 goroutine 使用。
package arena

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/c2h5oh/datasize"
)

// DefaultChunkSize 默认 chunk 大小，只有这个尺寸的 chunk 会被 Rollback 放回复用池
const DefaultChunkSize = 64 * datasize.KB

// DefaultSlabLen Slab 每个 chunk 默认的元素个数
const DefaultSlabLen = 256

// ErrExhausted 分配超出 Config.Limit
var ErrExhausted = errors.New("arena: memory limit exceeded")

// Config Arena 配置
type Config struct {
	ChunkSize datasize.ByteSize // 字节 chunk 大小
	SlabLen   int               // Slab chunk 元素个数
	Limit     datasize.ByteSize // 总分配上限，0 表示不限制
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ChunkSize: DefaultChunkSize,
		SlabLen:   DefaultSlabLen,
	}
}

var chunkPool = sync.Pool{
	New: func() any { return &chunk{buf: make([]byte, int(DefaultChunkSize))} },
}

type chunk struct {
	buf    []byte
	offset int
	pooled bool // DefaultChunkSize 大小，可放回 chunkPool
}

// Arena 字节 chunk + 已注册 Slab 的所有者
type Arena struct {
	cfg    Config
	chunks []*chunk
	slabs  []slab
	used   int
	gen    uint64
}

// slab 由 Arena 统一回退和释放的类型化存储
type slab interface {
	mark() slabMark
	rollback(slabMark)
	release()
	reserved() int
}

type slabMark struct {
	chunks int
	offset int
}

// Mark Arena 某一时刻的分配位置
type Mark struct {
	chunks int
	offset int
	used   int
	gen    uint64
	slabs  []slabMark
}

// Stats Arena 使用情况
type Stats struct {
	Used       int    // 已分配字节（含对齐与 Slab 元素）
	Reserved   int    // 底层持有的字节
	Chunks     int    // 字节 chunk 数
	Generation uint64 // 当前 generation
}

// New 创建 Arena，cfg 为 nil 时使用 DefaultConfig
func New(cfg *Config) *Arena {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.SlabLen <= 0 {
		c.SlabLen = DefaultSlabLen
	}
	return &Arena{cfg: c}
}

// Config 返回生效的配置
func (a *Arena) Config() Config { return a.cfg }

// Generation 返回当前 generation，每次 Release 递增
func (a *Arena) Generation() uint64 { return a.gen }

// charge 记账，超过上限返回 ErrExhausted
func (a *Arena) charge(n int) error {
	if a.cfg.Limit > 0 && uint64(a.used+n) > a.cfg.Limit.Bytes() {
		return fmt.Errorf("%w: need %d bytes, %d of %s in use", ErrExhausted, n, a.used, a.cfg.Limit.HumanReadable())
	}
	a.used += n
	return nil
}

// Alloc 分配 n 字节（8 字节对齐），返回的切片 len == n
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation size %d", n)
	}
	aligned := (n + 7) &^ 7
	if err := a.charge(aligned); err != nil {
		return nil, err
	}
	var c *chunk
	if len(a.chunks) > 0 {
		c = a.chunks[len(a.chunks)-1]
	}
	if c == nil || c.offset+aligned > len(c.buf) {
		c = a.newChunk(aligned)
	}
	s := c.buf[c.offset : c.offset+n : c.offset+aligned]
	c.offset += aligned
	return s, nil
}

func (a *Arena) newChunk(min int) *chunk {
	var c *chunk
	size := int(a.cfg.ChunkSize.Bytes())
	switch {
	case min > size:
		// 超大分配独占一个 chunk
		c = &chunk{buf: make([]byte, min)}
	case a.cfg.ChunkSize == DefaultChunkSize:
		c = chunkPool.Get().(*chunk)
		c.offset = 0
		c.pooled = true
	default:
		c = &chunk{buf: make([]byte, size)}
	}
	a.chunks = append(a.chunks, c)
	return c
}

// Strdup 把 b 复制进 Arena，返回指向 Arena 内存的字符串（零拷贝视图）
func (a *Arena) Strdup(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	buf, err := a.Alloc(len(b))
	if err != nil {
		return "", err
	}
	copy(buf, b)
	return unsafe.String(unsafe.SliceData(buf), len(buf)), nil
}

// StrdupString 同 Strdup
func (a *Arena) StrdupString(s string) (string, error) {
	return a.Strdup(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// Mark 记录当前分配位置
func (a *Arena) Mark() Mark {
	m := Mark{chunks: len(a.chunks), used: a.used, gen: a.gen}
	if m.chunks > 0 {
		m.offset = a.chunks[m.chunks-1].offset
	}
	if len(a.slabs) > 0 {
		m.slabs = make([]slabMark, len(a.slabs))
		for i, s := range a.slabs {
			m.slabs[i] = s.mark()
		}
	}
	return m
}

// Rollback 丢弃 m 之后的全部分配
//
// m 必须来自同一 generation，Release 之后的旧 Mark 被忽略。
func (a *Arena) Rollback(m Mark) {
	if m.gen != a.gen {
		return
	}
	for i := m.chunks; i < len(a.chunks); i++ {
		// 整块都在 Mark 之后，里面的内容没有交出去过
		putChunk(a.chunks[i])
		a.chunks[i] = nil
	}
	a.chunks = a.chunks[:m.chunks]
	if m.chunks > 0 {
		a.chunks[m.chunks-1].offset = m.offset
	}
	for i, s := range a.slabs {
		if i < len(m.slabs) {
			s.rollback(m.slabs[i])
		} else {
			// Mark 之后才注册的 Slab
			s.rollback(slabMark{})
		}
	}
	a.used = m.used
}

// Release 整体释放，之前分配的所有内存都不能再通过 Arena 使用
//
// chunk 不回池：调用方可能还持有 Strdup 的字符串，这些 chunk 由 GC 回收。
func (a *Arena) Release() {
	for i := range a.chunks {
		a.chunks[i] = nil
	}
	a.chunks = a.chunks[:0]
	for _, s := range a.slabs {
		s.release()
	}
	a.used = 0
	a.gen++
}

func putChunk(c *chunk) {
	if c != nil && c.pooled {
		c.offset = 0
		chunkPool.Put(c)
	}
}

// Stats 返回使用情况
func (a *Arena) Stats() Stats {
	st := Stats{Used: a.used, Chunks: len(a.chunks), Generation: a.gen}
	for _, c := range a.chunks {
		st.Reserved += len(c.buf)
	}
	for _, s := range a.slabs {
		st.Reserved += s.reserved()
	}
	return st
}
