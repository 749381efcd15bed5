package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when a session cannot be established or
	// re-established within the retry envelope. It is fatal to the call.
	ErrConnection = errors.New("store connection error")
	// ErrTranslation matches every error produced while turning filters
	// and sort specifications into native queries.
	ErrTranslation = errors.New("translation error")
	// ErrCoercionFailed matches every [ErrCoercion].
	ErrCoercionFailed = errors.New("coercion error")
	// ErrAccessDenied matches every [ErrPermission].
	ErrAccessDenied = errors.New("access denied")
	// ErrTargetNil is returned when the passed target, which should be a
	// pointer, is passed as a nil value.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when a decode target is not a pointer.
	ErrNonPointer = errors.New("target is not a pointer")
	// ErrDuplicateKey is matched by store errors caused by a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ErrUnknownOperator is returned when a filter clause uses an operator that
// is not in the operator table.
type ErrUnknownOperator struct {
	Operator string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// Is makes the error match [ErrTranslation].
func (e ErrUnknownOperator) Is(target error) bool { return target == ErrTranslation }

// ErrOperandType is returned when an operand cannot be used with its
// operator, like a non-list operand for "in".
type ErrOperandType struct {
	Operator string
	Want     string
	Actual   any
}

// Error implements [error].
func (e ErrOperandType) Error() string {
	return fmt.Sprintf("%s operand should be of type %s, got %T", e.Operator, e.Want, e.Actual)
}

// Is makes the error match [ErrTranslation].
func (e ErrOperandType) Is(target error) bool { return target == ErrTranslation }

// ErrBadOrder is returned for malformed sort specifications.
type ErrBadOrder struct {
	Model string
	Spec  string
}

// Error implements [error].
func (e ErrBadOrder) Error() string {
	return fmt.Sprintf("bad order declaration %q for model %s", e.Spec, e.Model)
}

// Is makes the error match [ErrTranslation].
func (e ErrBadOrder) Is(target error) bool { return target == ErrTranslation }

// ErrCoercion is returned when a value cannot be converted to the
// representation of its column.
type ErrCoercion struct {
	Field string
	Kind  ColumnKind
	Value any
	Err   error
}

// Error implements [error].
func (e ErrCoercion) Error() string {
	msg := fmt.Sprintf("cannot coerce %#v for %s field %q", e.Value, e.Kind, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e ErrCoercion) Unwrap() error { return e.Err }

// Is makes the error match [ErrCoercionFailed].
func (e ErrCoercion) Is(target error) bool { return target == ErrCoercionFailed }

// ErrStoreOperation wraps a failure reported by the native store.
type ErrStoreOperation struct {
	Op  string
	Err error
}

// Error implements [error].
func (e ErrStoreOperation) Error() string {
	return fmt.Sprintf("store %s error: %v", e.Op, e.Err)
}

// Unwrap returns the native error.
func (e ErrStoreOperation) Unwrap() error { return e.Err }

// IsDuplicateKey reports whether err was caused by a unique index violation.
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }

// ErrPermission is returned when the [Authorizer] denies an operation.
type ErrPermission struct {
	Actor int64
	Model string
	Verb  Verb
}

// Error implements [error].
func (e ErrPermission) Error() string {
	return fmt.Sprintf("user %d cannot %s model %s", e.Actor, e.Verb, e.Model)
}

// Is makes the error match [ErrAccessDenied].
func (e ErrPermission) Is(target error) bool { return target == ErrAccessDenied }

// ErrUnknownModel is returned when a model is not registered.
type ErrUnknownModel struct {
	Name string
}

// Error implements [error].
func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model %q", e.Name)
}

// ErrUnknownField is returned when values reference an undeclared column.
type ErrUnknownField struct {
	Model string
	Field string
}

// Error implements [error].
func (e ErrUnknownField) Error() string {
	return fmt.Sprintf("model %s has no field %q", e.Model, e.Field)
}

// ErrDecode is returned by [Decoder.Decode] to easily wrap third party
// decoding errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}
