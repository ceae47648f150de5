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

// Package taskalignlog provides the context-carried structured logger used
// across the scheduler core, mirroring the teacher's logging.FromContext
// idiom without requiring a Kubernetes/Knative runtime underneath it.
package taskalignlog

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

type ctxKey struct{}

// NewZap builds the production logger: JSON encoded, info level by default.
func NewZap() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, log logr.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger carried by ctx, or a no-op logger if none
// was ever attached.
func FromContext(ctx context.Context) logr.Logger {
	if log, ok := ctx.Value(ctxKey{}).(logr.Logger); ok {
		return log
	}
	return logr.Discard()
}

// FromZap adapts a *zap.Logger to the logr.Logger interface used throughout
// the scheduler, the same adapter the teacher wires via go-logr/zapr.
func FromZap(z *zap.Logger) logr.Logger {
	return zapr.NewLogger(z)
}
