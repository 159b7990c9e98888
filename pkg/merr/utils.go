// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case gettyError:
		return specificErr.code()

	default:
		return errUnexpected.code()
	}
}

// IsInputErr 判断错误是否由调用方输入（而非框架内部故障）导致。
func IsInputErr(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(gettyError); ok {
		return cause.errType == InputError
	}
	return false
}

// 编码分发相关。

func WrapErrUnsupportedType(typeName any, msg ...string) error {
	err := wrapFields(ErrUnsupportedType, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 解码双分发相关。

func WrapErrUnexpectedCategory(expecting any, got any, msg ...string) error {
	err := wrapFields(ErrUnexpectedCategory,
		value("expecting", expecting),
		value("got", got),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrInvalidValue(target any, v any, msg ...string) error {
	err := wrapFields(ErrInvalidValue,
		value("target", target),
		value("value", v),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrUnknownVariant(typeName any, name any, msg ...string) error {
	err := wrapFields(ErrUnknownVariant,
		value("type", typeName),
		value("variant", name),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 复合结构解码相关。

func WrapErrMissingField(structName any, field any, msg ...string) error {
	err := wrapFields(ErrMissingField,
		value("struct", structName),
		value("field", field),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrMissingElement(index any, length any, msg ...string) error {
	err := wrapFields(ErrMissingElement,
		value("index", index),
		value("length", length),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrUnknownField(structName any, field any, msg ...string) error {
	err := wrapFields(ErrUnknownField,
		value("struct", structName),
		value("field", field),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrUnexpectedEnd(msg ...string) error {
	var err error = ErrUnexpectedEnd
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 分配器相关。

func WrapErrAllocation(size any, msg ...string) error {
	err := wrapFields(ErrAllocation, value("size", size))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 具体格式相关。

func WrapErrLengthRequired(format any, msg ...string) error {
	err := wrapFields(ErrLengthRequired, value("format", format))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err gettyError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}
