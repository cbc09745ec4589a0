// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package apidoc assembles API descriptions from manifests and reads, writes,
// compares and exports them.
package apidoc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/api2spec/apidesc/internal/commons"
	"github.com/api2spec/apidesc/internal/manifest"
	"github.com/api2spec/apidesc/internal/schema"
	"github.com/api2spec/apidesc/pkg/describe"
	"github.com/api2spec/apidesc/pkg/handler"
	"github.com/api2spec/apidesc/pkg/types"
)

// ErrNotHandler is returned in strict mode when a mounted type is not a request handler.
var ErrNotHandler = errors.New("type is not a request handler")

// ErrUnknownType is returned when a mount names a type no manifest declares.
var ErrUnknownType = errors.New("unknown type")

// Options configures a Builder.
type Options struct {
	// ID is the description id (e.g., "example:users")
	ID string

	// Version is the description version
	Version string

	// Description is a description of the API
	Description string

	// Strict fails the build when a mounted type is skipped
	Strict bool

	// Commons checks that references into the common errors name known errors
	Commons bool

	// Parallel extracts top-level mounts concurrently
	Parallel bool

	// Logger receives build diagnostics (defaults to the standard logger)
	Logger logrus.FieldLogger
}

// Builder assembles an API description from manifests.
type Builder struct {
	opts      Options
	log       logrus.FieldLogger
	extractor *describe.Extractor
}

// NewBuilder creates a builder resolving schemas with the default resolver.
func NewBuilder(opts Options) *Builder {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{
		opts:      opts,
		log:       log,
		extractor: describe.New(schema.NewResolver(), describe.WithLogger(log)),
	}
}

// mount is a top-level mount together with the manifest declaring it.
type mount struct {
	manifest.Mount
	file string
}

// Build describes every mount of files. Definitions and errors of all files are
// registered before any type is described, so mounts may use errors declared in
// another file.
func (b *Builder) Build(ctx context.Context, files []*manifest.File) (*types.APIDescription, error) {
	root := types.NewAPIDescription(b.opts.ID, b.opts.Version)
	root.Description = b.opts.Description

	index, err := indexTypes(files)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := f.Register(root); err != nil {
			return nil, err
		}
	}

	mounts, err := collectMounts(files)
	if err != nil {
		return nil, err
	}

	seen := newDescribed()
	resources := make([]*types.Resource, len(mounts))
	if b.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, m := range mounts {
			g.Go(func() error {
				r, err := b.describe(gctx, m.Mount, index, root, seen)
				if err != nil {
					return fmt.Errorf("%s: mount %s: %w", m.file, m.Path, err)
				}
				resources[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, m := range mounts {
			r, err := b.describe(ctx, m.Mount, index, root, seen)
			if err != nil {
				return nil, fmt.Errorf("%s: mount %s: %w", m.file, m.Path, err)
			}
			resources[i] = r
		}
	}

	for i, m := range mounts {
		if resources[i] != nil {
			root.Paths[m.Path] = resources[i]
		}
	}

	if err := root.Validate(); err != nil {
		return nil, err
	}
	if b.opts.Commons {
		if err := checkCommons(root); err != nil {
			return nil, err
		}
	}

	b.log.WithFields(logrus.Fields{
		"paths":    len(root.Paths),
		"services": root.Services.Count(),
	}).Debug("built description")
	return root, nil
}

// described records which handler types a build has extracted per variant. A
// handler with an id is extracted once; later mounts of the same type and
// variant share its service reference.
type described struct {
	mu     sync.Mutex
	claims map[string]*claim
}

type claim struct {
	done     bool
	resource *types.Resource
}

func newDescribed() *described {
	return &described{claims: make(map[string]*claim)}
}

// claim returns the claim for key and whether the caller made it.
func (d *described) claim(key string) (*claim, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.claims[key]; ok {
		return c, false
	}
	c := &claim{}
	d.claims[key] = c
	return c, true
}

func (d *described) finish(c *claim, r *types.Resource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.done, c.resource = true, r
}

// empty reports whether the claim finished without describing anything.
func (d *described) empty(c *claim) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return c.done && c.resource == nil
}

// describe extracts one mount. A handler type with an id that an earlier mount
// already claimed for the same variant resolves to its service reference
// without being extracted again.
func (b *Builder) describe(ctx context.Context, m manifest.Mount, index map[string]handler.Type, root *types.APIDescription, seen *described) (*types.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, ok := index[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, m.Type)
	}

	h, isHandler := t.Handler()
	if !isHandler || h.ID == "" {
		return b.extract(ctx, m, t, index, root, seen)
	}

	c, first := seen.claim(m.Type + " " + m.VariantName())
	if !first {
		if seen.empty(c) {
			return nil, nil
		}
		b.log.WithFields(logrus.Fields{"type": t.Name(), "service": h.ID}).Debug("sharing service reference")
		return types.NewResource().Reference(types.ServiceReference(h.ID)).Build()
	}

	r, err := b.extract(ctx, m, t, index, root, seen)
	if err != nil {
		return nil, err
	}
	seen.finish(c, r)
	return r, nil
}

// extract describes the sub mounts of m, then t itself.
func (b *Builder) extract(ctx context.Context, m manifest.Mount, t handler.Type, index map[string]handler.Type, root *types.APIDescription, seen *described) (*types.Resource, error) {
	var sub types.SubResources
	for _, s := range m.Sub {
		r, err := b.describe(ctx, s, index, root, seen)
		if err != nil {
			return nil, fmt.Errorf("sub-resource %s: %w", s.Path, err)
		}
		if r == nil {
			continue
		}
		if sub == nil {
			sub = make(types.SubResources)
		}
		sub[s.Name()] = r
	}

	var (
		r   *types.Resource
		err error
	)
	if m.VariantName() == manifest.VariantCollection {
		r, err = b.extractor.DescribeCollection(t, sub, root)
	} else {
		v, perr := describe.ParseVariant(m.VariantName())
		if perr != nil {
			return nil, perr
		}
		r, err = b.extractor.FromAnnotatedType(t, v, sub, nil, root)
	}
	if err != nil {
		return nil, err
	}

	if r == nil && b.opts.Strict {
		if _, isHandler := t.Handler(); !isHandler {
			return nil, fmt.Errorf("%w: %s", ErrNotHandler, t.Name())
		}
		return nil, fmt.Errorf("%s declares nothing to describe", t.Name())
	}
	return r, nil
}

// indexTypes maps type names to handler types across files. A name may be declared once.
func indexTypes(files []*manifest.File) (map[string]handler.Type, error) {
	index := make(map[string]handler.Type)
	declaredIn := make(map[string]string)
	for _, f := range files {
		for _, t := range f.HandlerTypes() {
			if prev, ok := declaredIn[t.Name()]; ok {
				return nil, types.NewValidationError(types.ErrInvalidDeclaration, "type %s declared in %s and %s", t.Name(), prev, f.Path)
			}
			declaredIn[t.Name()] = f.Path
			index[t.Name()] = t
		}
	}
	return index, nil
}

// collectMounts returns the top-level mounts of files sorted by path. A path may be mounted once.
func collectMounts(files []*manifest.File) ([]mount, error) {
	var mounts []mount
	for _, f := range files {
		for _, m := range f.Mounts {
			mounts = append(mounts, mount{Mount: m, file: f.Path})
		}
	}

	dups := lo.FindDuplicatesBy(mounts, func(m mount) string { return m.Path })
	if len(dups) > 0 {
		return nil, types.NewValidationError(types.ErrInvalidDeclaration, "path %s mounted more than once", dups[0].Path)
	}

	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Path < mounts[j].Path })
	return mounts, nil
}

// checkCommons verifies that every reference into the common errors names a known error.
func checkCommons(root *types.APIDescription) error {
	var errs types.ValidationErrors
	walkDescription(root, func(path string, r *types.Resource) {
		for _, op := range operationsOf(r) {
			for _, e := range op.op.Errors {
				if _, ok := e.Reference.CommonsErrorName(); !ok {
					continue
				}
				if _, ok := commons.Resolve(e.Reference); !ok {
					errs = append(errs, fmt.Errorf("%s %s: %w: %s", op.key, path, types.ErrDanglingReference, e.Reference))
				}
			}
		}
	})
	if len(errs) > 0 {
		return errs
	}
	return nil
}
