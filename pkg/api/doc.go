// Package api resolves symbolic widget list operations to REST paths. The
// route table comes from the embedded OpenAPI contract in openapi.yaml.
package api
