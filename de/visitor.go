package de

import (
	"github.com/sea-grass/getty/pkg/merr"
)

// VisitorBase 是 Visitor 的可嵌入默认实现：所有方法都以
// ErrUnexpectedCategory 失败。具体访问者嵌入它并只覆写自己目标类型
// 能够出现的类别，即可得到严格的封闭契约。
type VisitorBase struct {
	// Desc 为期望内容的描述，空串时退化为 "value"。
	Desc string
}

var _ Visitor = VisitorBase{}

func (b VisitorBase) Expecting() string {
	if b.Desc == "" {
		return "value"
	}
	return b.Desc
}

func (b VisitorBase) VisitBool(v bool) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "bool")
}

func (b VisitorBase) VisitInt(v int64) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "int")
}

func (b VisitorBase) VisitUint(v uint64) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "uint")
}

func (b VisitorBase) VisitFloat(v float64) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "float")
}

func (b VisitorBase) VisitString(v string) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "string")
}

func (b VisitorBase) VisitBytes(v []byte) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "bytes")
}

func (b VisitorBase) VisitNil() (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "nil")
}

func (b VisitorBase) VisitSome(d Deserializer) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "some")
}

func (b VisitorBase) VisitSeq(seq SeqAccess) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "seq")
}

func (b VisitorBase) VisitMap(m MapAccess) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "map")
}

func (b VisitorBase) VisitVariant(name string) (any, error) {
	return nil, merr.WrapErrUnexpectedCategory(b.Expecting(), "variant")
}
