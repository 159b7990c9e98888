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

// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log 提供基于 zap 的全局日志能力。
//
// 框架核心（ser/de）保持静默；codec 边界与示例通过本包输出日志。
// 全局 logger 保存在 atomic.Value 中，允许运行期整体替换。
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	_globalL atomic.Value
	_globalP atomic.Value
)

func init() {
	l, p := mustNewLogger(defaultConfig())
	_globalL.Store(l)
	_globalP.Store(p)
}

// Properties 记录一次初始化产生的可调属性。
type Properties struct {
	Level zap.AtomicLevel
}

// InitLogger 按配置初始化全局 logger；返回 logger 与可调属性。
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *Properties, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, err
	}

	var syncers []zapcore.WriteSyncer
	if cfg.Stdout {
		stdout, _, err := zap.Open("stdout")
		if err != nil {
			return nil, nil, err
		}
		syncers = append(syncers, stdout)
	}
	if cfg.File.Filename != "" {
		maxSize := cfg.File.MaxSize
		if maxSize == 0 {
			maxSize = defaultLogMaxSize
		}
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Filename,
			MaxSize:    maxSize,
			MaxAge:     cfg.File.MaxDays,
			MaxBackups: cfg.File.MaxBackups,
		}))
	}
	if len(syncers) == 0 {
		syncers = append(syncers, zapcore.AddSync(nopWriter{}))
	}

	core := zapcore.NewCore(cfg.buildEncoder(), zap.CombineWriteSyncers(syncers...), level)
	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}

	l := zap.New(core, opts...)
	p := &Properties{Level: level}

	ReplaceGlobals(l, p)
	return l, p, nil
}

func mustNewLogger(cfg *Config) (*zap.Logger, *Properties) {
	l, p, err := InitLogger(cfg)
	if err != nil {
		panic(err)
	}
	return l, p
}

// ReplaceGlobals 整体替换全局 logger 与属性。
func ReplaceGlobals(l *zap.Logger, p *Properties) {
	_globalL.Store(l)
	_globalP.Store(p)
}

// L 返回全局 logger。
func L() *zap.Logger {
	return _globalL.Load().(*zap.Logger)
}

// SetLevel 动态调整全局日志级别。
func SetLevel(level zapcore.Level) {
	_globalP.Load().(*Properties).Level.SetLevel(level)
}

// With 基于全局 logger 附加字段。
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

func Debug(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
