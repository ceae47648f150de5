/*
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

// Package httpapi is the thin HTTP transport over service.Schedule, exactly
// the "POST /schedule" shape the specification describes and nothing more:
// no scheduling logic lives here.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/service"
	"github.com/taskalign/scheduler/pkg/taskalignlog"
)

// NewHandler returns the POST /schedule endpoint. base carries the
// process-wide logger; each request derives its own context tagged with a
// correlation id so a request's log lines can be grepped together.
func NewHandler(base context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeDetail(w, http.StatusMethodNotAllowed, "only POST is supported")
			return
		}

		reqID := uuid.New().String()
		log := taskalignlog.FromContext(base).WithValues("request_id", reqID)
		ctx := taskalignlog.NewContext(r.Context(), log)

		var req v1alpha1.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "decoding request body: "+err.Error())
			return
		}

		resp, err := service.Schedule(ctx, &req)
		if err != nil {
			status, detail := classify(err)
			log.Error(err, "schedule failed")
			writeDetail(w, status, detail)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", reqID)
		_ = json.NewEncoder(w).Encode(resp)
	})
}

// MetricsHandler exposes the process's Prometheus registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// classify maps the core error taxonomy (spec §7) onto HTTP status codes.
func classify(err error) (int, string) {
	switch err.(type) {
	case *v1alpha1.ValidationError, *v1alpha1.InfeasibleInputError:
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Detail string `json:"detail"`
	}{Detail: detail})
}
