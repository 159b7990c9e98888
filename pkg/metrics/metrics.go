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

// Package metrics 定义 codec 边界的 Prometheus 指标。
// 框架核心（ser/de）不打点，指标只在字节级格式边界累积。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// gettyNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	gettyNamespace = "getty"

	// 以下为当前使用的通用标签名。
	codecLabelName  = "codec"
	statusLabelName = "status"
)

const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

var (
	// sizeBuckets 为载荷大小的桶划分，单位为字节。
	sizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304}

	EncodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: gettyNamespace,
			Name:      "encode_total",
			Help:      "number of encode calls by codec and status",
		}, []string{codecLabelName, statusLabelName})

	DecodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: gettyNamespace,
			Name:      "decode_total",
			Help:      "number of decode calls by codec and status",
		}, []string{codecLabelName, statusLabelName})

	EncodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: gettyNamespace,
			Name:      "encode_bytes",
			Help:      "encoded payload size in bytes",
			Buckets:   sizeBuckets,
		}, []string{codecLabelName})

	DecodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: gettyNamespace,
			Name:      "decode_bytes",
			Help:      "decoded payload size in bytes",
			Buckets:   sizeBuckets,
		}, []string{codecLabelName})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标。
// 通常应在 init 函数中调用。
func Register(r prometheus.Registerer) {
	r.MustRegister(EncodeTotal)
	r.MustRegister(DecodeTotal)
	r.MustRegister(EncodeBytes)
	r.MustRegister(DecodeBytes)
	metricRegisterer = r
}
