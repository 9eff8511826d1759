// Package arenajson 统一API入口
package arenajson

import (
	"github.com/uniyakcom/arenajson/json"
)

// Document 导出Document类型
type Document = json.Document

// Block 导出Block类型
type Block = json.Block

// Pair 导出Pair类型
type Pair = json.Pair

// Value 导出Value类型
type Value = json.Value

// Parser 导出Parser类型
type Parser = json.Parser

// Config 导出Config类型
type Config = json.Config

// SyntaxError 导出SyntaxError类型
type SyntaxError = json.SyntaxError

// 导出错误类别
var (
	ErrStructural     = json.ErrStructural
	ErrUnterminated   = json.ErrUnterminated
	ErrUnknownLiteral = json.ErrUnknownLiteral
	ErrDepthExceeded  = json.ErrDepthExceeded
	ErrAllocation     = json.ErrAllocation
	ErrReleased       = json.ErrReleased
)

// ═══════════════════════════════════════════════════════════════════
// 第零层：Parse() 一次性解析
// ═══════════════════════════════════════════════════════════════════

// Parse 解析单个 JSON 对象，文档独占 Arena
//
// 用法:
//
//	doc, err := arenajson.Parse(`{"name":"ada"}`)
//	if err != nil { ... }
//	defer doc.Release()
func Parse(s string) (*Document, error) {
	return json.Parse(s)
}

// ParseBytes 同 Parse
func ParseBytes(b []byte) (*Document, error) {
	return json.ParseBytes(b)
}

// ═══════════════════════════════════════════════════════════════════
// 第一层：Parser 共享 Arena
// ═══════════════════════════════════════════════════════════════════

// NewParser 创建共享 Arena 的 Parser，cfg 为 nil 时使用默认配置
func NewParser(cfg *Config) *Parser {
	return json.NewParser(cfg)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return json.DefaultConfig()
}

// Pretty 返回格式化文本
func Pretty(d *Document) string {
	return json.Pretty(d)
}
