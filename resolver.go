// resolver.go: transitive dependency closure with cycle detection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import "context"

// dependencyClosure computes the full transitive dependency set of an
// integration, loading dependencies through the registry as needed.
// The returned set includes the integration's own domain; the caller
// strips it.
func (r *Registry) dependencyClosure(ctx context.Context, integ *Integration) (map[string]struct{}, error) {
	loaded := make(map[string]struct{})
	loading := make(map[string]struct{})
	return r.walkDependencies(ctx, integ.Domain(), integ, loaded, loading)
}

// walkDependencies is the recursive depth-first traversal.
//
// Two sets are threaded through the recursion by reference: loaded
// holds domains whose whole subtree has been processed on this
// traversal, loading holds the domains on the active recursion stack.
// An edge into loading is a cycle. A visited dependency that lists the
// traversal root among its after-dependencies is also a cycle: the
// soft ordering hint implies the root must load after it, which the
// hard edge we arrived by contradicts.
func (r *Registry) walkDependencies(ctx context.Context, startDomain string, integ *Integration, loaded, loading map[string]struct{}) (map[string]struct{}, error) {
	domain := integ.Domain()
	loading[domain] = struct{}{}

	for _, depDomain := range integ.Dependencies() {
		if _, done := loaded[depDomain]; done {
			continue
		}

		if _, active := loading[depDomain]; active {
			return nil, NewCircularDependencyError(domain, depDomain)
		}

		loaded[depDomain] = struct{}{}

		depIntegration, err := r.GetIntegration(ctx, depDomain)
		if err != nil {
			return nil, NewDependencyNotFoundError(depDomain, err)
		}

		for _, after := range depIntegration.AfterDependencies() {
			if after == startDomain {
				return nil, NewCircularDependencyError(startDomain, depDomain)
			}
		}

		if len(depIntegration.Dependencies()) > 0 {
			if _, err := r.walkDependencies(ctx, startDomain, depIntegration, loaded, loading); err != nil {
				return nil, err
			}
		}
	}

	loaded[domain] = struct{}{}
	delete(loading, domain)

	return loaded, nil
}
