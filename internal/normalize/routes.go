package normalize

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/SnideAnteater/openapi-to-axum/internal/document"
	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

// canonicalMethods fixes the within-path traversal order. Source ordering
// of methods inside a path item is incidental formatting and must not leak
// into the output.
var canonicalMethods = []ir.Method{
	ir.MethodGet,
	ir.MethodPost,
	ir.MethodPut,
	ir.MethodPatch,
	ir.MethodDelete,
}

// CollectRoutes walks the paths mapping in declaration order and produces
// one route per path/method pair. Operation ids missing from the source are
// derived from method and path; duplicates are suffixed with a counter in
// encounter order so ids stay globally unique.
func CollectRoutes(paths *document.Node, mapper *Mapper) ([]ir.Route, error) {
	if paths == nil || paths.Len() == 0 {
		return nil, nil
	}
	used := make(map[string]bool)
	var routes []ir.Route

	for _, path := range paths.Keys() {
		item, _ := paths.Get(path)
		if item == nil || item.Kind != document.Mapping {
			continue
		}
		for _, method := range canonicalMethods {
			op, ok := item.Get(strings.ToLower(string(method)))
			if !ok || op == nil || op.Kind != document.Mapping {
				continue
			}

			id, _ := op.GetStr("operationId")
			id = strings.TrimSpace(id)
			if id == "" {
				id = deriveOperationID(method, path)
			}
			id = uniqueOperationID(id, used)

			reqType, err := bodyType(op, "requestBody", mapper, path, method)
			if err != nil {
				return nil, err
			}
			respType, err := responseType(op, mapper, path, method)
			if err != nil {
				return nil, err
			}

			routes = append(routes, ir.Route{
				Path:         path,
				Method:       method,
				OperationID:  id,
				RequestType:  reqType,
				ResponseType: respType,
			})
		}
	}
	return routes, nil
}

// bodyType extracts the application/json schema under key ("requestBody")
// and maps it. A missing body, content block, or schema yields nil rather
// than an error.
func bodyType(op *document.Node, key string, mapper *Mapper, path string, method ir.Method) (*ir.Descriptor, error) {
	body, ok := op.Get(key)
	if !ok {
		return nil, nil
	}
	return mediaSchemaType(body, mapper, path, method)
}

// responseType picks the lowest 2xx response that carries an
// application/json schema.
func responseType(op *document.Node, mapper *Mapper, path string, method ir.Method) (*ir.Descriptor, error) {
	responses, ok := op.Get("responses")
	if !ok {
		return nil, nil
	}
	best := -1
	var bestNode *document.Node
	for _, status := range responses.Keys() {
		code, err := strconv.Atoi(status)
		if err != nil || code < 200 || code > 299 {
			continue
		}
		if best == -1 || code < best {
			node, _ := responses.Get(status)
			best = code
			bestNode = node
		}
	}
	if bestNode == nil {
		return nil, nil
	}
	return mediaSchemaType(bestNode, mapper, path, method)
}

func mediaSchemaType(holder *document.Node, mapper *Mapper, path string, method ir.Method) (*ir.Descriptor, error) {
	content, ok := holder.Get("content")
	if !ok {
		return nil, nil
	}
	media, ok := content.Get("application/json")
	if !ok {
		return nil, nil
	}
	schema, ok := media.Get("schema")
	if !ok {
		return nil, nil
	}
	def, err := mapper.table.InlineSchema(schema)
	if err != nil {
		return nil, attachRouteContext(err, path, method)
	}
	d, err := mapper.MapSchema(def)
	if err != nil {
		return nil, attachRouteContext(err, path, method)
	}
	return d, nil
}

// attachRouteContext stamps the offending path and method onto reference
// errors so the failure can be located without inspecting intermediates.
func attachRouteContext(err error, path string, method ir.Method) error {
	var ure *UnresolvedReferenceError
	if errors.As(err, &ure) {
		ure.Path = path
		ure.Method = string(method)
	}
	return err
}

// deriveOperationID builds a deterministic id from method and path:
// lowercase method, then each path segment with separators and braces
// stripped and its first rune capitalized. "GET /pets/{petId}" becomes
// "getPetsPetId".
func deriveOperationID(method ir.Method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(method)))
	for _, seg := range strings.Split(path, "/") {
		capitalize := true
		for _, r := range seg {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			if capitalize {
				b.WriteRune(unicode.ToUpper(r))
				capitalize = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// uniqueOperationID reserves id, appending 2, 3, ... when an earlier route
// already claimed it.
func uniqueOperationID(id string, used map[string]bool) string {
	candidate := id
	for n := 2; used[candidate]; n++ {
		candidate = id + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}
