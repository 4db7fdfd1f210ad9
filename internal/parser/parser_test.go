package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphhq/codegraph/pkg/types"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const invoiceSource = `package invoice

import "billing/money"

// Service charges invoices.
type Service struct {
	store Store
	money.Converter
}

// Store persists invoices.
type Store interface {
	Save(amount int) error
}

// ID is a stable invoice identifier.
type ID = string

// Charge charges one invoice.
//codegraph:route POST /api/v1/charge
func (s *Service) Charge(amount money.Amount) (ID, error) {
	return "", nil
}

func (s Service) total() int { return 0 }

func Helper() {}
`

const moneySource = `package money

type Amount struct {
	Cents int64
}

type Converter struct{}

func (c *Converter) Convert(a Amount, currency string) Amount { return a }
`

func parseFixture(t *testing.T, opts types.IngestOptions) *types.ParsedModule {
	t.Helper()
	repo := t.TempDir()
	writeFile(t, repo, "invoice/service.go", invoiceSource)
	writeFile(t, repo, "money/money.go", moneySource)
	writeFile(t, repo, "invoice/service_test.go", "package invoice\n\ntype testHarness struct{}\n")
	writeFile(t, repo, "vendor/dep/dep.go", "package dep\n\ntype Hidden struct{}\n")
	writeFile(t, repo, "money/testdata/fixture.go", "package broken\n\ntype Nope struct{}\n")

	parsed, err := New(nil).Parse(context.Background(), repo, "billing", opts)
	require.NoError(t, err)
	return parsed
}

func typeNames(parsed *types.ParsedModule) []string {
	names := make([]string, 0, len(parsed.Types))
	for _, td := range parsed.Types {
		names = append(names, td.FQName)
	}
	return names
}

func TestParseExtractsTypes(t *testing.T) {
	parsed := parseFixture(t, types.IngestOptions{})

	names := typeNames(parsed)
	assert.Contains(t, names, "invoice.Service")
	assert.Contains(t, names, "invoice.Store")
	assert.Contains(t, names, "invoice.ID")
	assert.Contains(t, names, "money.Amount")
	assert.NotContains(t, names, "dep.Hidden", "vendor is skipped")
	assert.NotContains(t, names, "broken.Nope", "testdata is skipped")
	assert.NotContains(t, names, "invoice.testHarness", "tests are skipped by default")

	kinds := make(map[string]string)
	for _, td := range parsed.Types {
		kinds[td.FQName] = td.Kind
	}
	assert.Equal(t, "struct", kinds["invoice.Service"])
	assert.Equal(t, "interface", kinds["invoice.Store"])
	assert.Equal(t, "alias", kinds["invoice.ID"])
}

func TestParseIncludeTests(t *testing.T) {
	parsed := parseFixture(t, types.IngestOptions{IncludeTests: true})
	assert.Contains(t, typeNames(parsed), "invoice.testHarness")
}

func TestParseExtractsMethods(t *testing.T) {
	parsed := parseFixture(t, types.IngestOptions{})

	byName := make(map[string]types.MethodDef)
	for _, m := range parsed.Methods {
		byName[m.DeclaringType+"."+m.Name] = m
	}

	charge, ok := byName["invoice.Service.Charge"]
	require.True(t, ok)
	assert.Equal(t, "Charge(amount money.Amount) (ID, error)", charge.Signature)
	assert.Equal(t, "(ID, error)", charge.ReturnType)
	assert.Equal(t, types.VisibilityExported, charge.Visibility)
	assert.True(t, charge.PointerRecv)
	assert.Equal(t, "invoice/service.go", charge.Path)
	assert.Greater(t, charge.EndLine, charge.StartLine)

	total, ok := byName["invoice.Service.total"]
	require.True(t, ok)
	assert.Equal(t, types.VisibilityUnexported, total.Visibility)
	assert.False(t, total.PointerRecv)

	_, ok = byName[".Helper"]
	assert.False(t, ok, "plain functions are not modeled")
}

func TestParseExtractsEndpoints(t *testing.T) {
	parsed := parseFixture(t, types.IngestOptions{})

	require.Len(t, parsed.Endpoints, 1)
	e := parsed.Endpoints[0]
	assert.Equal(t, "POST", e.HTTPMethod)
	assert.Equal(t, "/api/v1/charge", e.Path)
	assert.Equal(t, "invoice.Service", e.ImplementingType)
	assert.Equal(t, "Charge(amount money.Amount) (ID, error)", e.ImplementingSignature)
}

func TestParseExtractsDependencies(t *testing.T) {
	parsed := parseFixture(t, types.IngestOptions{})

	type edge struct{ source, target, kind, via string }
	edges := make(map[edge]bool)
	for _, d := range parsed.Dependencies {
		edges[edge{d.SourceFQName, d.TargetFQName, d.Kind, d.Via}] = true
	}

	assert.True(t, edges[edge{"invoice.Service", "invoice.Store", "field", "store"}])
	assert.True(t, edges[edge{"invoice.Service", "money.Converter", "embeds", "Converter"}])
	assert.True(t, edges[edge{"invoice.Service", "money.Amount", "param", "amount"}])
	assert.True(t, edges[edge{"invoice.Service", "invoice.ID", "result", ""}])
	assert.True(t, edges[edge{"money.Converter", "money.Amount", "param", "a"}])
}

func TestParseRouteDirective(t *testing.T) {
	method, path, ok := parseRoute("//codegraph:route get /x")
	require.True(t, ok)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "/x", path)

	_, _, ok = parseRoute("// codegraph:route GET /x")
	assert.False(t, ok, "directives have no space after the slashes")

	_, _, ok = parseRoute("//codegraph:route GET")
	assert.False(t, ok)

	_, _, ok = parseRoute("//codegraph:route GET x")
	assert.False(t, ok)
}

func TestParseInvalidSourceSkipped(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "ok.go", "package root\n\ntype OK struct{}\n")
	writeFile(t, repo, "bad.go", "package root\n\nfunc {{{\n")

	parsed, err := New(nil).Parse(context.Background(), repo, "m", types.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"root.OK"}, typeNames(parsed))
}

func TestParseMissingRepo(t *testing.T) {
	_, err := New(nil).Parse(context.Background(), "/does/not/exist", "m", types.IngestOptions{})
	assert.Error(t, err)
}
