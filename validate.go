package extcore

import (
	"errors"
)

// SelfValidator is implemented by request bodies that validate themselves.
type SelfValidator interface {
	Validate() error
}

// Validator validates any decoded request. Set one router-wide with
// WithValidator.
type Validator interface {
	Validate(req any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(req any) error

// Validate calls f.
func (f ValidatorFunc) Validate(req any) error { return f(req) }

// validateRequest runs every validation stage and merges their violations.
// A stage error that is not *ValidationErrors is returned immediately.
func validateRequest[Body, Params, Query any](req *Request[Body, Params, Query], custom func(*Request[Body, Params, Query]) error, global Validator) error {
	violations := &ValidationErrors{}

	checkConstraints(req.Body, "", violations)

	stages := []func() error{
		func() error {
			if sv, ok := any(&req.Body).(SelfValidator); ok {
				return sv.Validate()
			}
			if sv, ok := any(req.Body).(SelfValidator); ok {
				return sv.Validate()
			}
			return nil
		},
		func() error {
			if custom == nil {
				return nil
			}
			return custom(req)
		},
		func() error {
			if global == nil {
				return nil
			}
			return global.Validate(req)
		},
	}

	for _, stage := range stages {
		err := stage()
		if err == nil {
			continue
		}
		var ve *ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		violations.Messages = append(violations.Messages, ve.Messages...)
	}

	if violations.Empty() {
		return nil
	}
	return violations
}
