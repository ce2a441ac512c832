package addons

import (
	"encoding/json"
	"fmt"
	"sort"

	"helm.sh/helm/v3/pkg/strvals"

	"github.com/coderco/eks-platform/internal/render"
)

// Values expands the dotted keys of an add-on values map into a nested
// document and resolves its placeholders.
func Values(values map[string]any, resolve render.Resolver) (map[string]any, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, k := range keys {
		data, err := json.Marshal(values[k])
		if err != nil {
			return nil, fmt.Errorf("values key %q: %w", k, err)
		}
		if err := strvals.ParseJSON(k+"="+string(data), out); err != nil {
			return nil, fmt.Errorf("values key %q: %w", k, err)
		}
	}

	expanded, err := render.ExpandValue(out, resolve)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	return expanded.(map[string]any), nil
}
