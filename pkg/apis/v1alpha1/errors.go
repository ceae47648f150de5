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

package v1alpha1

import "fmt"

// ValidationError is returned when the request is structurally or
// referentially invalid. It is surfaced to the caller before any
// scheduling occurs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("VALIDATION_ERROR: %s", e.Reason)
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InfeasibleInputError is returned when the input is well-formed but no
// schedule can possibly exist for it (e.g. a mold with no admitting
// machine anywhere in the fleet).
type InfeasibleInputError struct {
	Reason string
}

func (e *InfeasibleInputError) Error() string {
	return fmt.Sprintf("INFEASIBLE_INPUT: %s", e.Reason)
}

func NewInfeasibleInputError(format string, args ...interface{}) *InfeasibleInputError {
	return &InfeasibleInputError{Reason: fmt.Sprintf(format, args...)}
}

// InternalError denotes a decoder invariant violation caught by an
// assertion-style guard at emit time. It is always a bug, never a
// consequence of caller input.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("INTERNAL_ERROR: %s", e.Reason)
}

func NewInternalError(format string, args ...interface{}) *InternalError {
	return &InternalError{Reason: fmt.Sprintf(format, args...)}
}
