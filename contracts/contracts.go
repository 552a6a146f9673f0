// Package contracts embeds the OpenAPI documents served by the API.
package contracts

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed proptrack.yaml
var proptrackYAML []byte

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// GetSwagger returns the parsed and validated PropTrack contract. Callers must not mutate it.
func GetSwagger() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(proptrackYAML)
		if err != nil {
			loadErr = fmt.Errorf("load proptrack contract: %w", err)
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			loadErr = fmt.Errorf("validate proptrack contract: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}

// RawYAML returns the embedded contract source.
func RawYAML() []byte {
	return append([]byte(nil), proptrackYAML...)
}
