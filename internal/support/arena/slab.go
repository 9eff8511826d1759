package arena

import "unsafe"

// Slab 类型化节点存储（受 fastjson cache 启发，按 chunk 预分配 []T）
//
// 元素可以包含指针，GC 能看到它们；生命周期与所属 Arena 绑定。
type Slab[T any] struct {
	a      *Arena
	chunks [][]T
	offset int // 最后一个 chunk 的已用元素数
	size   int // unsafe.Sizeof(T)
}

// NewSlab 创建并注册到 a 的 Slab
func NewSlab[T any](a *Arena) *Slab[T] {
	var zero T
	s := &Slab[T]{a: a, size: int(unsafe.Sizeof(zero))}
	a.slabs = append(a.slabs, s)
	return s
}

// Alloc 分配 n 个元素，返回 len == 0、cap == n 的切片，供 append 填充
func (s *Slab[T]) Alloc(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := s.a.charge(n * s.size); err != nil {
		return nil, err
	}
	if len(s.chunks) == 0 || s.offset+n > len(s.chunks[len(s.chunks)-1]) {
		s.chunks = append(s.chunks, make([]T, max(s.a.cfg.SlabLen, n)))
		s.offset = 0
	}
	last := s.chunks[len(s.chunks)-1]
	out := last[s.offset : s.offset : s.offset+n]
	s.offset += n
	return out, nil
}

// Grow 把 old 扩容到 newCap，保留已有元素
//
// old 是最近一次分配且 chunk 尾部有空间时原地扩展，
// 否则分配新区域并复制，旧区域直到 Release 才回收。
func (s *Slab[T]) Grow(old []T, newCap int) ([]T, error) {
	if newCap <= cap(old) {
		return old, nil
	}
	if c := cap(old); c > 0 && len(s.chunks) > 0 {
		last := s.chunks[len(s.chunks)-1]
		start := s.offset - c
		if start >= 0 && &last[start] == &old[:c][0] && start+newCap <= len(last) {
			if err := s.a.charge((newCap - c) * s.size); err != nil {
				return nil, err
			}
			s.offset = start + newCap
			return last[start : start+len(old) : start+newCap], nil
		}
	}
	out, err := s.Alloc(newCap)
	if err != nil {
		return nil, err
	}
	return append(out, old...), nil
}

func (s *Slab[T]) mark() slabMark {
	return slabMark{chunks: len(s.chunks), offset: s.offset}
}

func (s *Slab[T]) rollback(m slabMark) {
	if m.chunks == 0 {
		s.release()
		return
	}
	for i := m.chunks; i < len(s.chunks); i++ {
		s.chunks[i] = nil
	}
	s.chunks = s.chunks[:m.chunks]
	last := s.chunks[m.chunks-1]
	clear(last[m.offset:])
	s.offset = m.offset
}

// release 丢弃全部 chunk
//
// 已交出的元素可能仍被持有，不能清零或复用，由 GC 回收。
func (s *Slab[T]) release() {
	for i := range s.chunks {
		s.chunks[i] = nil
	}
	s.chunks = s.chunks[:0]
	s.offset = 0
}

func (s *Slab[T]) reserved() int {
	n := 0
	for _, c := range s.chunks {
		n += len(c) * s.size
	}
	return n
}
