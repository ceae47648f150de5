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

// Command taskalign-scheduler is the CLI/HTTP entry point wrapping the
// scheduler core. It carries zero scheduling logic of its own: `schedule`
// reads a request file and prints a response, `serve` mounts the same
// service.Schedule call behind an HTTP handler.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/httpapi"
	"github.com/taskalign/scheduler/pkg/service"
	"github.com/taskalign/scheduler/pkg/taskalignlog"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "taskalign-scheduler: automaxprocs: %v\n", err)
	}

	root := &cobra.Command{
		Use:   "taskalign-scheduler",
		Short: "Monthly production scheduler for a fleet of injection-molding machines",
	}
	root.AddCommand(newScheduleCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScheduleCmd() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run one scheduling request read from a JSON file and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := taskalignlog.NewZap()
			if err != nil {
				return err
			}
			defer z.Sync() //nolint:errcheck
			ctx := taskalignlog.NewContext(cmd.Context(), taskalignlog.FromZap(z))

			raw, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("reading request file: %w", err)
			}
			var req v1alpha1.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				return v1alpha1.NewValidationError("decoding request JSON: %s", err.Error())
			}

			resp, err := service.Schedule(ctx, &req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "path to a JSON-encoded request (required)")
	cmd.Flags().StringVar(&outPath, "out", "-", "path to write the JSON-encoded response, - for stdout")
	cmd.MarkFlagRequired("in") //nolint:errcheck
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduler over HTTP (POST /schedule)",
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := taskalignlog.NewZap()
			if err != nil {
				return err
			}
			defer z.Sync() //nolint:errcheck
			ctx := taskalignlog.NewContext(context.Background(), taskalignlog.FromZap(z))

			mux := http.NewServeMux()
			mux.Handle("/schedule", httpapi.NewHandler(ctx))
			mux.Handle("/metrics", httpapi.MetricsHandler())

			taskalignlog.FromContext(ctx).Info("listening", "addr", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}
