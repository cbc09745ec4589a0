// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package apidoc

import (
	"maps"
	"slices"

	"github.com/api2spec/apidesc/pkg/types"
)

// Operation kinds as they appear in operation keys.
const (
	KindCreate = "create"
	KindRead   = "read"
	KindUpdate = "update"
	KindDelete = "delete"
	KindPatch  = "patch"
	KindAction = "action"
	KindQuery  = "query"
)

// namedOp is one operation of a resource with a key unique within the resource
// ("read", "action:approve", "query:FILTER").
type namedOp struct {
	key   string
	kind  string
	name  string
	op    types.Operation
	value any
}

// operationsOf lists the operations of r in a fixed order.
func operationsOf(r *types.Resource) []namedOp {
	var ops []namedOp
	if c := r.Create(); c != nil {
		ops = append(ops, namedOp{key: KindCreate, kind: KindCreate, op: c.Operation, value: c})
	}
	if rd := r.Read(); rd != nil {
		ops = append(ops, namedOp{key: KindRead, kind: KindRead, op: rd.Operation, value: rd})
	}
	if u := r.Update(); u != nil {
		ops = append(ops, namedOp{key: KindUpdate, kind: KindUpdate, op: u.Operation, value: u})
	}
	if d := r.Delete(); d != nil {
		ops = append(ops, namedOp{key: KindDelete, kind: KindDelete, op: d.Operation, value: d})
	}
	if p := r.Patch(); p != nil {
		ops = append(ops, namedOp{key: KindPatch, kind: KindPatch, op: p.Operation, value: p})
	}
	for _, a := range r.Actions() {
		ops = append(ops, namedOp{key: KindAction + ":" + a.Name, kind: KindAction, name: a.Name, op: a.Operation, value: a})
	}
	for _, q := range r.Queries() {
		ops = append(ops, namedOp{key: KindQuery + ":" + q.Key(), kind: KindQuery, name: q.Key(), op: q.Operation, value: q})
	}
	return ops
}

// itemsPath returns the path of the items of a resource mounted at path.
func itemsPath(path string, items *types.Items) string {
	name := "id"
	if items.PathParameter != nil && items.PathParameter.Name != "" {
		name = items.PathParameter.Name
	}
	return path + "/{" + name + "}"
}

// walkDescription calls fn for every resource reachable from the paths of root,
// with service references resolved. Unresolvable references and reference
// cycles are skipped.
func walkDescription(root *types.APIDescription, fn func(path string, r *types.Resource)) {
	for _, path := range root.PathNames() {
		walkResource(root, path, root.Paths[path], nil, fn)
	}
}

func walkResource(root *types.APIDescription, path string, r *types.Resource, chain []string, fn func(string, *types.Resource)) {
	if r == nil {
		return
	}
	if r.IsReference() {
		id, ok := r.Reference().ServiceID()
		if !ok || slices.Contains(chain, id) {
			return
		}
		resolved, err := root.Services.Resolve(r.Reference())
		if err != nil {
			return
		}
		walkResource(root, path, resolved, append(chain, id), fn)
		return
	}

	fn(path, r)

	sub := r.SubResources()
	for _, name := range slices.Sorted(maps.Keys(sub)) {
		walkResource(root, path+"/"+name, sub[name], chain, fn)
	}
	if items := r.Items(); items != nil {
		walkResource(root, itemsPath(path, items), items.Resource, chain, fn)
	}
}
