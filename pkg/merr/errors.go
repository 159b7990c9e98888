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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrorType 区分错误来源：系统内部错误或调用方输入错误。
type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// 框架级结构化错误在此集中定义。
// WARN: 新增错误前请先确认既有错误是否已覆盖对应场景。
// 命名规则：Err + 相关前缀 + 错误名。
var (
	// 编码分发相关。
	ErrUnsupportedType = newGettyError("unsupported type", 1, withErrorType(InputError))

	// 解码双分发相关。
	ErrUnexpectedCategory = newGettyError("unexpected data model category", 100, withErrorType(InputError))
	ErrInvalidValue       = newGettyError("invalid value for target type", 101, withErrorType(InputError))
	ErrUnknownVariant     = newGettyError("unknown variant", 102, withErrorType(InputError))

	// 复合结构解码相关。
	ErrMissingField   = newGettyError("missing required field", 200, withErrorType(InputError))
	ErrMissingElement = newGettyError("missing required element", 201, withErrorType(InputError))
	ErrUnknownField   = newGettyError("unknown field", 202, withErrorType(InputError))
	ErrUnexpectedEnd  = newGettyError("unexpected end of input", 203, withErrorType(InputError))

	// 分配器相关。
	ErrAllocation = newGettyError("allocation failed", 300)

	// 具体格式相关。
	ErrLengthRequired = newGettyError("format requires a known length", 400, withErrorType(InputError))

	errUnexpected = newGettyError("unexpected error", (1<<16)-1)
)

type gettyError struct {
	msg     string
	detail  string
	errCode int32
	errType ErrorType
}

var _ error = gettyError{}

func newGettyError(msg string, code int32, options ...errorOption) gettyError {
	err := gettyError{
		msg:     msg,
		detail:  msg,
		errCode: code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e gettyError) code() int32 {
	return e.errCode
}

func (e gettyError) Error() string {
	return e.msg
}

func (e gettyError) Detail() string {
	return e.detail
}

// Is 通过错误码判定等价性，使 Wrap 过的错误仍能命中叶子错误。
func (e gettyError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(gettyError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type errorOption func(*gettyError)

func withErrorType(etype ErrorType) errorOption {
	return func(err *gettyError) {
		err.errType = etype
	}
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// 为了让 merr 在多错误场景下仍然可用，
	// cause 约定为最后一个错误。
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine 合并多个错误，nil 会被过滤；全部为 nil 时返回 nil。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
