package normalize

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

const petstoreDoc = `
openapi: 3.0.0
info:
  title: Petstore
  version: "1.0.0"
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
    post:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
        name:
          type: string
        tag:
          type: string
`

// modelString flattens a model into one comparable string.
func modelString(m *ir.Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "title=%s version=%s\n", m.Title, m.Version)
	for _, name := range m.TypeNames {
		fmt.Fprintf(&b, "type %s = %s\n", name, m.Types[name])
	}
	for _, r := range m.Routes {
		fmt.Fprintf(&b, "route %s %s id=%s req=%s resp=%s\n", r.Method, r.Path, r.OperationID, r.RequestType, r.ResponseType)
	}
	return b.String()
}

func TestBuild_PetstoreEndToEnd(t *testing.T) {
	model, err := Build(mustTree(t, petstoreDoc))
	require.NoError(t, err)

	assert.Equal(t, "Petstore", model.Title)
	assert.Equal(t, "1.0.0", model.Version)

	require.Equal(t, []string{"Pet"}, model.TypeNames)
	assert.Equal(t,
		`Struct("Pet"){id: Primitive(integer), name: Primitive(string), tag: Optional(Primitive(string))}`,
		model.Types["Pet"].String())

	require.Len(t, model.Routes, 2)

	get := model.Routes[0]
	assert.Equal(t, ir.MethodGet, get.Method)
	assert.Equal(t, "/pets", get.Path)
	assert.Nil(t, get.RequestType)
	assert.Equal(t, `Sequence(Named("Pet"))`, get.ResponseType.String())

	post := model.Routes[1]
	assert.Equal(t, ir.MethodPost, post.Method)
	assert.Equal(t, `Named("Pet")`, post.RequestType.String())
	assert.Nil(t, post.ResponseType)
}

func TestBuild_Idempotent(t *testing.T) {
	first, err := Build(mustTree(t, petstoreDoc))
	require.NoError(t, err)
	second, err := Build(mustTree(t, petstoreDoc))
	require.NoError(t, err)

	assert.Equal(t, modelString(first), modelString(second))
}

func TestBuild_DanglingRequestRefAbortsWholePass(t *testing.T) {
	doc := `
openapi: 3.0.0
info:
  title: Broken
  version: "1.0.0"
paths:
  /pets:
    post:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Unknown'
      responses:
        "201":
          description: created
components:
  schemas:
    Pet:
      type: object
      properties:
        id:
          type: integer
`
	model, err := Build(mustTree(t, doc))
	require.Error(t, err)
	assert.Nil(t, model)

	var ure *UnresolvedReferenceError
	require.True(t, errors.As(err, &ure))
	assert.Equal(t, "Unknown", ure.Name)
	assert.Equal(t, "POST", ure.Method)
	assert.Equal(t, "/pets", ure.Path)
}

func TestBuild_NoComponentsNoPaths(t *testing.T) {
	model, err := Build(mustTree(t, "openapi: 3.0.0\ninfo:\n  title: Empty\n  version: \"0.1\"\n"))
	require.NoError(t, err)
	assert.Empty(t, model.TypeNames)
	assert.Empty(t, model.Routes)
}
