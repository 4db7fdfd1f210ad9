package parser

import (
	"context"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	gotypes "go/types"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// routeDirective marks a handler method as an HTTP endpoint:
//
//	//codegraph:route GET /api/v1/invoices
const routeDirective = "codegraph:route"

// Parser extracts the structural model of a Go repository: named types,
// receiver methods, route-annotated endpoints, and type-to-type dependencies
// within the module. Plain functions without a receiver are not modeled.
type Parser struct {
	log *zap.Logger
}

// New creates a Parser.
func New(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

type parsedFile struct {
	file    *ast.File
	relPath string
	pkgPath string
}

// Parse walks repoPath and builds the module model. Files that fail to parse
// are skipped with a warning; a repository with no Go files yields an empty
// model, not an error. vendor, testdata, hidden and underscore-prefixed
// directories are never visited, and _test.go files only when requested.
func (p *Parser) Parse(ctx context.Context, repoPath, moduleName string, opts types.IngestOptions) (*types.ParsedModule, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, fmt.Errorf("repo path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repo path %s is not a directory", repoPath)
	}

	fset := token.NewFileSet()
	var files []parsedFile
	err = filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if path != repoPath && skipDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if strings.HasSuffix(name, "_test.go") && !opts.IncludeTests {
			return nil
		}

		file, perr := goparser.ParseFile(fset, path, nil, goparser.ParseComments)
		if perr != nil {
			p.log.Warn("source file skipped", zap.String("path", path), zap.Error(perr))
			return nil
		}
		rel, rerr := filepath.Rel(repoPath, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		files = append(files, parsedFile{
			file:    file,
			relPath: rel,
			pkgPath: packagePath(rel, file.Name.Name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", repoPath, err)
	}

	ex := newExtractor(moduleName, fset, files)
	return &types.ParsedModule{
		ModuleName:   moduleName,
		RepoPath:     repoPath,
		SourceRoot:   repoPath,
		Types:        ex.types(),
		Methods:      ex.methods(),
		Endpoints:    ex.endpoints(),
		Dependencies: ex.dependencies(),
	}, nil
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// packagePath derives the package identifier used in fully qualified names:
// the slash path of the directory, or the package name for the repo root.
func packagePath(relPath, pkgName string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." {
		return pkgName
	}
	return dir
}

// exprString renders a type expression as written in source.
func exprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	return gotypes.ExprString(expr)
}
