// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package waiter

import (
	"context"

	"github.com/googleapis/cloudsdk/internal/resources"
	"golang.org/x/sync/errgroup"
)

// WaitAll calls fn for every ref with at most limit calls in flight; a limit
// of 0 or less means no limit. Results are returned in the order of refs.
// The first error cancels the context passed to the remaining calls.
func WaitAll[T any](ctx context.Context, limit int, refs []*resources.Resource, fn func(ctx context.Context, ref *resources.Resource) (T, error)) ([]T, error) {
	results := make([]T, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, ref := range refs {
		g.Go(func() error {
			r, err := fn(ctx, ref)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
