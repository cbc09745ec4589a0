// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package commons provides the "frapi:common" API description, a shared table of
// common errors that operations reference instead of redefining.
package commons

import (
	"strings"
	"sync"

	"github.com/stoewer/go-strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/api2spec/apidesc/pkg/types"
)

const (
	// ID is the id of the common description.
	ID = "frapi:common"

	// Version is the version of the common description.
	Version = "1.0.0"
)

// Error is a common error, named by its constant form (e.g., "NOT_FOUND").
type Error string

const (
	BadRequest              Error = "BAD_REQUEST"
	Unauthorized            Error = "UNAUTHORIZED"
	PaymentRequired         Error = "PAYMENT_REQUIRED"
	Forbidden               Error = "FORBIDDEN"
	NotFound                Error = "NOT_FOUND"
	MethodNotAllowed        Error = "METHOD_NOT_ALLOWED"
	NotAcceptable           Error = "NOT_ACCEPTABLE"
	ProxyAuthRequired       Error = "PROXY_AUTH_REQUIRED"
	RequestTimeout          Error = "REQUEST_TIMEOUT"
	Conflict                Error = "CONFLICT"
	Gone                    Error = "GONE"
	LengthRequired          Error = "LENGTH_REQUIRED"
	VersionMismatch         Error = "VERSION_MISMATCH"
	PreconditionFailed      Error = "PRECONDITION_FAILED"
	RequestEntityTooLarge   Error = "REQUEST_ENTITY_TOO_LARGE"
	RequestURITooLarge      Error = "REQUEST_URI_TOO_LARGE"
	UnsupportedMediaType    Error = "UNSUPPORTED_MEDIA_TYPE"
	RangeNotSatisfiable     Error = "RANGE_NOT_SATISFIABLE"
	ExpectationFailed       Error = "EXPECTATION_FAILED"
	VersionRequired         Error = "VERSION_REQUIRED"
	PreconditionRequired    Error = "PRECONDITION_REQUIRED"
	InternalServerError     Error = "INTERNAL_SERVER_ERROR"
	NotSupported            Error = "NOT_SUPPORTED"
	BadGateway              Error = "BAD_GATEWAY"
	Unavailable             Error = "UNAVAILABLE"
	GatewayTimeout          Error = "GATEWAY_TIMEOUT"
	HTTPVersionNotSupported Error = "HTTP_VERSION_NOT_SUPPORTED"
)

// table lists the common errors in declaration order with their status codes.
var table = []struct {
	err  Error
	code int
}{
	{BadRequest, 400},
	{Unauthorized, 401},
	{PaymentRequired, 402},
	{Forbidden, 403},
	{NotFound, 404},
	{MethodNotAllowed, 405},
	{NotAcceptable, 406},
	{ProxyAuthRequired, 407},
	{RequestTimeout, 408},
	{Conflict, 409},
	{Gone, 410},
	{LengthRequired, 411},
	{VersionMismatch, 412},
	{PreconditionFailed, 412},
	{RequestEntityTooLarge, 413},
	{RequestURITooLarge, 414},
	{UnsupportedMediaType, 415},
	{RangeNotSatisfiable, 416},
	{ExpectationFailed, 417},
	{VersionRequired, 428},
	{PreconditionRequired, 428},
	{InternalServerError, 500},
	{NotSupported, 501},
	{BadGateway, 502},
	{Unavailable, 503},
	{GatewayTimeout, 504},
	{HTTPVersionNotSupported, 505},
}

var (
	indexOnce sync.Once
	byName    map[string]Error
	codes     map[Error]int
)

func index() {
	indexOnce.Do(func() {
		byName = make(map[string]Error, len(table))
		codes = make(map[Error]int, len(table))
		for _, e := range table {
			byName[e.err.Name()] = e.err
			codes[e.err] = e.code
		}
	})
}

// All returns the common errors in declaration order.
func All() []Error {
	all := make([]Error, 0, len(table))
	for _, e := range table {
		all = append(all, e.err)
	}
	return all
}

// Lookup finds a common error by its camel-case name (e.g., "notFound").
func Lookup(name string) (Error, bool) {
	index()
	e, ok := byName[name]
	return e, ok
}

// Has reports whether name is a common error name.
func Has(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Resolve returns the common error a "frapi:common#/errors/<name>" reference points to.
func Resolve(ref *types.Reference) (Error, bool) {
	name, ok := ref.CommonsErrorName()
	if !ok {
		return "", false
	}
	return Lookup(name)
}

// Name returns the camel-case name used in references ("NOT_FOUND" -> "notFound").
func (e Error) Name() string {
	return strcase.LowerCamelCase(string(e))
}

// Code returns the status code of the error.
func (e Error) Code() int {
	index()
	return codes[e]
}

// acronyms keep their upper-case form in descriptions.
var acronyms = map[string]bool{"HTTP": true, "URI": true}

// Description returns a readable description ("NOT_FOUND" -> "Not Found",
// "REQUEST_URI_TOO_LARGE" -> "Request URI Too Large").
func (e Error) Description() string {
	title := cases.Title(language.English)
	words := strings.Split(string(e), "_")
	for i, w := range words {
		if !acronyms[w] {
			words[i] = title.String(strings.ToLower(w))
		}
	}
	return strings.Join(words, " ")
}

// Reference returns the reference to use in an API description.
func (e Error) Reference() *types.Reference {
	return types.CommonsErrorReference(e.Name())
}

// APIError returns the error definition held by the common description.
func (e Error) APIError() types.APIError {
	return types.APIError{
		Code:        e.Code(),
		Description: e.Description(),
	}
}

// Description builds the "frapi:common" API description holding every common error.
func Description() *types.APIDescription {
	desc := types.NewAPIDescription(ID, Version)
	desc.Description = "Common API errors"
	for _, e := range table {
		// names are unique, registration cannot fail
		_ = desc.Errors.AddError(e.err.Name(), e.err.APIError())
	}
	return desc
}
