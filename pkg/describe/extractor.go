// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package describe builds descriptor resources from annotated request-handler types.
package describe

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/api2spec/apidesc/internal/commons"
	"github.com/api2spec/apidesc/pkg/handler"
	"github.com/api2spec/apidesc/pkg/types"
)

// SchemaResolver turns a schema declaration into a descriptor schema.
// It returns (nil, nil) when nothing is declared.
type SchemaResolver interface {
	Resolve(decl handler.Schema, owner handler.Type, root *types.APIDescription) (*types.Schema, error)
}

// Extractor describes handler types. It holds no per-call state and may be used concurrently.
type Extractor struct {
	resolver SchemaResolver
	log      logrus.FieldLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for skipped types and ignored declarations.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Extractor) {
		e.log = log
	}
}

// New creates an extractor resolving schemas with resolver, which must not be nil.
func New(resolver SchemaResolver, opts ...Option) *Extractor {
	e := &Extractor{
		resolver: resolver,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromAnnotatedType describes t for the given variant.
//
// A type without the handler marker is skipped with a warning and (nil, nil) is
// returned. When the handler declares an id, the described resource is registered
// in root's services and a reference to it is returned instead.
func (e *Extractor) FromAnnotatedType(t handler.Type, v Variant, sub types.SubResources, items *types.Items, root *types.APIDescription) (*types.Resource, error) {
	return e.extract(t, v, sub, items, root, true)
}

// DescribeCollection describes t as a collection resource. The member view
// (CollectionInstance, carrying sub) becomes the items of the collection view
// (CollectionCollection), which is registered under the handler id if one is declared.
func (e *Extractor) DescribeCollection(t handler.Type, sub types.SubResources, root *types.APIDescription) (*types.Resource, error) {
	instance, err := e.extract(t, CollectionInstance, sub, nil, root, false)
	if err != nil {
		return nil, fmt.Errorf("describing %s members: %w", t.Name(), err)
	}

	var items *types.Items
	if instance != nil {
		items = &types.Items{
			PathParameter: &types.Parameter{
				Name:     "id",
				Type:     "string",
				Source:   types.ParameterSourcePath,
				Required: true,
			},
			Resource: instance,
		}
	}
	return e.extract(t, CollectionCollection, nil, items, root, true)
}

// slots tracks the single-valued operations accepted for one handler.
type slots struct {
	create *types.Create
	read   *types.Read
	update *types.Update
	delete *types.Delete
	patch  *types.Patch
}

func conflict(t handler.Type, m handler.Member, kind string) error {
	return types.NewValidationError(types.ErrConflictingOperation, "%s.%s declares a second %s operation", t.Name(), m.Name, kind)
}

func (e *Extractor) extract(t handler.Type, v Variant, sub types.SubResources, items *types.Items, root *types.APIDescription, register bool) (*types.Resource, error) {
	log := e.log.WithFields(logrus.Fields{"type": t.Name(), "variant": v.Name})

	h, ok := t.Handler()
	if !ok {
		log.Warn("type is not a request handler, skipping")
		return nil, nil
	}
	if err := handler.ValidateHandler(t.Name(), h); err != nil {
		return nil, err
	}

	var (
		ops         slots
		actions     types.ActionSet
		queries     types.QuerySet
		foundCrudpq bool
	)

	for _, m := range t.Members() {
		if err := handler.ValidateMember(t.Name(), m); err != nil {
			return nil, err
		}
		mlog := log.WithField("member", m.Name)

		for _, decl := range memberActions(m) {
			if m.Instance != v.ActionRequiresID {
				mlog.WithField("action", decl.Name).Debug("action scope does not match variant, ignoring")
				continue
			}
			action, err := e.action(decl, t, root)
			if err != nil {
				return nil, err
			}
			if !actions.Add(action) {
				mlog.WithField("action", decl.Name).Warn("duplicate action ignored")
			}
			foundCrudpq = true
		}

		if m.Create != nil {
			if ops.create != nil {
				return nil, conflict(t, m, "create")
			}
			c, err := e.create(*m.Create, v, t, root)
			if err != nil {
				return nil, err
			}
			ops.create = c
			foundCrudpq = true
		}

		if v.RudpOperations {
			found, err := e.rudp(&ops, m, t, root)
			if err != nil {
				return nil, err
			}
			foundCrudpq = foundCrudpq || found
		} else if m.Read != nil || m.Update != nil || m.Delete != nil || m.Patch != nil {
			mlog.Debug("read, update, delete and patch not supported by variant, ignoring")
		}

		for _, decl := range memberQueries(m) {
			if !v.QueryOperations {
				mlog.WithField("query", decl.Type).Debug("queries not supported by variant, ignoring")
				continue
			}
			q, err := e.query(decl, t, root)
			if err != nil {
				return nil, err
			}
			if !queries.Add(q) {
				mlog.WithField("query", q.Key()).Warn("duplicate query ignored")
			}
			foundCrudpq = true
		}
	}

	schema, err := e.resolver.Resolve(h.Schema, t, root)
	if err != nil {
		return nil, fmt.Errorf("resolving schema of %s: %w", t.Name(), err)
	}
	if foundCrudpq && schema == nil {
		return nil, types.NewValidationError(types.ErrSchemaRequired, "handler %s", t.Name())
	}

	resource, err := types.NewResource().
		Title(h.Title).
		Description(h.Description).
		ResourceSchema(schema).
		MvccSupported(h.MvccSupported).
		Operations(allocators(ops)...).
		Actions(actions.Values()...).
		Queries(queries.Values()...).
		Parameters(h.Parameters...).
		SubResources(sub).
		Items(items).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", t.Name(), err)
	}
	if resource == nil {
		log.Debug("handler declares nothing to describe")
		return nil, nil
	}

	if !register || h.ID == "" {
		return resource, nil
	}
	if err := root.Services.AddService(h.ID, resource); err != nil {
		return nil, err
	}
	log.WithField("service", h.ID).Debug("registered service")
	return types.NewResource().Reference(types.ServiceReference(h.ID)).Build()
}

func allocators(ops slots) []types.Allocator {
	var out []types.Allocator
	if ops.create != nil {
		out = append(out, ops.create)
	}
	if ops.read != nil {
		out = append(out, ops.read)
	}
	if ops.update != nil {
		out = append(out, ops.update)
	}
	if ops.delete != nil {
		out = append(out, ops.delete)
	}
	if ops.patch != nil {
		out = append(out, ops.patch)
	}
	return out
}

func memberActions(m handler.Member) []handler.Action {
	var out []handler.Action
	if m.Action != nil {
		out = append(out, *m.Action)
	}
	return append(out, m.Actions...)
}

func memberQueries(m handler.Member) []handler.Query {
	var out []handler.Query
	if m.Query != nil {
		out = append(out, *m.Query)
	}
	return append(out, m.Queries...)
}

func (e *Extractor) rudp(ops *slots, m handler.Member, t handler.Type, root *types.APIDescription) (bool, error) {
	found := false
	if m.Read != nil {
		if ops.read != nil {
			return false, conflict(t, m, "read")
		}
		op, err := e.operation(m.Read.Operation, t, root)
		if err != nil {
			return false, err
		}
		ops.read = &types.Read{Operation: op}
		found = true
	}
	if m.Update != nil {
		if ops.update != nil {
			return false, conflict(t, m, "update")
		}
		op, err := e.operation(m.Update.Operation, t, root)
		if err != nil {
			return false, err
		}
		ops.update = &types.Update{Operation: op}
		found = true
	}
	if m.Delete != nil {
		if ops.delete != nil {
			return false, conflict(t, m, "delete")
		}
		op, err := e.operation(m.Delete.Operation, t, root)
		if err != nil {
			return false, err
		}
		ops.delete = &types.Delete{Operation: op}
		found = true
	}
	if m.Patch != nil {
		if ops.patch != nil {
			return false, conflict(t, m, "patch")
		}
		op, err := e.operation(m.Patch.Operation, t, root)
		if err != nil {
			return false, err
		}
		ops.patch = &types.Patch{Operation: op, Operations: m.Patch.Operations}
		found = true
	}
	return found, nil
}

func (e *Extractor) create(decl handler.Create, v Variant, t handler.Type, root *types.APIDescription) (*types.Create, error) {
	op, err := e.operation(decl.Operation, t, root)
	if err != nil {
		return nil, err
	}

	mode := decl.Mode
	switch {
	case v.InstanceCreate:
		mode = types.CreateModeIDFromClient
	case mode == "":
		mode = types.CreateModeIDFromServer
	}
	return &types.Create{Operation: op, Mode: mode, Singleton: decl.Singleton}, nil
}

func (e *Extractor) action(decl handler.Action, t handler.Type, root *types.APIDescription) (types.Action, error) {
	op, err := e.operation(decl.Operation, t, root)
	if err != nil {
		return types.Action{}, err
	}
	request, err := e.resolver.Resolve(decl.Request, t, root)
	if err != nil {
		return types.Action{}, fmt.Errorf("resolving request of action %s: %w", decl.Name, err)
	}
	response, err := e.resolver.Resolve(decl.Response, t, root)
	if err != nil {
		return types.Action{}, fmt.Errorf("resolving response of action %s: %w", decl.Name, err)
	}
	return types.Action{Operation: op, Name: decl.Name, Request: request, Response: response}, nil
}

func (e *Extractor) query(decl handler.Query, t handler.Type, root *types.APIDescription) (types.Query, error) {
	op, err := e.operation(decl.Operation, t, root)
	if err != nil {
		return types.Query{}, err
	}
	return types.Query{
		Operation:         op,
		Type:              decl.Type,
		QueryID:           decl.QueryID,
		PagingModes:       decl.PagingModes,
		CountPolicies:     decl.CountPolicies,
		QueryableFields:   decl.QueryableFields,
		SupportedSortKeys: decl.SortKeys,
	}, nil
}

func (e *Extractor) operation(decl handler.Operation, t handler.Type, root *types.APIDescription) (types.Operation, error) {
	errs := make([]types.APIError, 0, len(decl.Errors))
	for _, d := range decl.Errors {
		apiErr, err := e.apiError(d, t, root)
		if err != nil {
			return types.Operation{}, err
		}
		errs = append(errs, apiErr)
	}
	if len(errs) == 0 {
		errs = nil
	}

	return types.Operation{
		Description:      decl.Description,
		SupportedLocales: decl.Locales,
		Errors:           errs,
		Parameters:       decl.Parameters,
		Stability:        decl.Stability,
	}, nil
}

// apiError resolves an error declaration. A name containing ':' or '#' is used as
// a reference verbatim; a plain name refers to an error registered in root, or
// else to a common error.
func (e *Extractor) apiError(decl handler.Error, t handler.Type, root *types.APIDescription) (types.APIError, error) {
	if decl.Name == "" {
		detail, err := e.resolver.Resolve(decl.Detail, t, root)
		if err != nil {
			return types.APIError{}, fmt.Errorf("resolving error detail of %s: %w", t.Name(), err)
		}
		return types.APIError{Code: decl.Code, Description: decl.Description, Schema: detail}, nil
	}

	switch {
	case strings.ContainsAny(decl.Name, ":#"):
		return types.APIError{Reference: types.NewReference(decl.Name)}, nil
	case root.Errors.Has(decl.Name):
		return types.APIError{Reference: types.ErrorReference(decl.Name)}, nil
	case commons.Has(decl.Name):
		return types.APIError{Reference: types.CommonsErrorReference(decl.Name)}, nil
	default:
		return types.APIError{}, types.NewValidationError(types.ErrInvalidDeclaration, "%s: unknown error %q", t.Name(), decl.Name)
	}
}
