/*
Copyright The Volcano Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package dataplane

import "github.com/prometheus/client_golang/prometheus"

// metric names and labels are kept stable for compatibility with
// existing dashboards/alerts built against them.
type metrics struct {
	requestTotal    *prometheus.CounterVec
	requestSuccess  *prometheus.CounterVec
	requestFailure  *prometheus.CounterVec
	requestDuration *prometheus.SummaryVec
	requestSLA      *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_infer_request_total",
			Help: "Model infer request total count",
		}, []string{"model", "version"}),
		requestSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_infer_request_success",
			Help: "Model infer request success count",
		}, []string{"model", "version"}),
		requestFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_infer_request_failure",
			Help: "Model infer request failure count",
		}, []string{"model", "version"}),
		requestDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name: "model_infer_request_duration",
			Help: "Model infer request duration",
		}, []string{"model", "version"}),
		requestSLA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_infer_request_sla",
			Help: "Model request Service Level Agreement (SLA)",
		}, []string{"model", "version"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.requestTotal,
			m.requestSuccess,
			m.requestFailure,
			m.requestDuration,
			m.requestSLA,
		)
	}

	return m
}

// label renders a (name, version) pair for metric labels. version ""
// (the unversioned case) must render consistently to avoid label
// cardinality drift.
func label(name, version string) prometheus.Labels {
	return prometheus.Labels{"model": name, "version": version}
}
