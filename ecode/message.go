package ecode

import (
	"fmt"
)

const (
	emptyMsg       = "empty"
	requiredMsg    = "required"
	invalidMsg     = "invalid"
	unsupportedMsg = "not supported"
)

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], requiredMsg)
	}
	return requiredMsg
}

// FieldIsEmpty returns field empty message
func FieldIsEmpty(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], emptyMsg)
	}
	return emptyMsg
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], invalidMsg)
	}
	return invalidMsg
}

// NotSupported returns value not supported message
func NotSupported(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], unsupportedMsg)
	}
	return unsupportedMsg
}
