package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// extractor runs the two-pass extraction: the first pass indexes every named
// type so the second pass can resolve dependency targets within the module.
type extractor struct {
	moduleName string
	fset       *token.FileSet
	files      []parsedFile

	// byPackage maps pkgPath -> type name -> FQName.
	byPackage map[string]map[string]string
	// byBase maps the last path segment of a package to its pkgPath, for
	// resolving pkg.Type selectors across packages of the same module.
	byBase map[string]string
}

func newExtractor(moduleName string, fset *token.FileSet, files []parsedFile) *extractor {
	ex := &extractor{
		moduleName: moduleName,
		fset:       fset,
		files:      files,
		byPackage:  make(map[string]map[string]string),
		byBase:     make(map[string]string),
	}
	for _, f := range files {
		idx, ok := ex.byPackage[f.pkgPath]
		if !ok {
			idx = make(map[string]string)
			ex.byPackage[f.pkgPath] = idx
			base := f.pkgPath
			if i := strings.LastIndex(base, "/"); i >= 0 {
				base = base[i+1:]
			}
			ex.byBase[base] = f.pkgPath
		}
		for _, spec := range typeSpecs(f.file) {
			idx[spec.Name.Name] = f.pkgPath + "." + spec.Name.Name
		}
	}
	return ex
}

func typeSpecs(file *ast.File) []*ast.TypeSpec {
	var specs []*ast.TypeSpec
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				specs = append(specs, ts)
			}
		}
	}
	return specs
}

func (ex *extractor) types() []types.TypeDef {
	var defs []types.TypeDef
	for _, f := range ex.files {
		for _, spec := range typeSpecs(f.file) {
			defs = append(defs, types.TypeDef{
				ModuleName: ex.moduleName,
				FQName:     f.pkgPath + "." + spec.Name.Name,
				Name:       spec.Name.Name,
				Kind:       typeKind(spec),
				Path:       f.relPath,
				StartLine:  ex.fset.Position(spec.Pos()).Line,
				EndLine:    ex.fset.Position(spec.End()).Line,
			})
		}
	}
	return defs
}

func typeKind(spec *ast.TypeSpec) string {
	if spec.Assign != token.NoPos {
		return "alias"
	}
	switch spec.Type.(type) {
	case *ast.StructType:
		return "struct"
	case *ast.InterfaceType:
		return "interface"
	default:
		return "alias"
	}
}

func (ex *extractor) methods() []types.MethodDef {
	var defs []types.MethodDef
	for _, f := range ex.files {
		for _, decl := range f.file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			recvName, pointer := receiverType(fn.Recv.List[0].Type)
			if recvName == "" {
				continue
			}
			visibility := types.VisibilityUnexported
			if fn.Name.IsExported() {
				visibility = types.VisibilityExported
			}
			defs = append(defs, types.MethodDef{
				ModuleName:    ex.moduleName,
				DeclaringType: f.pkgPath + "." + recvName,
				Name:          fn.Name.Name,
				Signature:     signature(fn),
				ReturnType:    returnType(fn.Type.Results),
				Visibility:    visibility,
				PointerRecv:   pointer,
				Path:          f.relPath,
				StartLine:     ex.fset.Position(fn.Pos()).Line,
				EndLine:       ex.fset.Position(fn.End()).Line,
			})
		}
	}
	return defs
}

// receiverType unwraps the receiver expression to the named type, handling
// pointer and generic receivers.
func receiverType(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, pointer
	case *ast.IndexExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}

// signature renders "Name(params) results" the way the declaration reads.
func signature(fn *ast.FuncDecl) string {
	var sb strings.Builder
	sb.WriteString(fn.Name.Name)
	sb.WriteString("(")
	if fn.Type.Params != nil {
		for i, field := range fn.Type.Params.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			names := make([]string, 0, len(field.Names))
			for _, n := range field.Names {
				names = append(names, n.Name)
			}
			if len(names) > 0 {
				sb.WriteString(strings.Join(names, ", "))
				sb.WriteString(" ")
			}
			sb.WriteString(exprString(field.Type))
		}
	}
	sb.WriteString(")")
	if ret := returnType(fn.Type.Results); ret != "" {
		sb.WriteString(" ")
		sb.WriteString(ret)
	}
	return sb.String()
}

func returnType(results *ast.FieldList) string {
	if results == nil || len(results.List) == 0 {
		return ""
	}
	parts := make([]string, 0, len(results.List))
	for _, field := range results.List {
		s := exprString(field.Type)
		for range max(len(field.Names), 1) {
			parts = append(parts, s)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (ex *extractor) endpoints() []types.EndpointDef {
	var defs []types.EndpointDef
	for _, f := range ex.files {
		for _, decl := range f.file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 || fn.Doc == nil {
				continue
			}
			recvName, _ := receiverType(fn.Recv.List[0].Type)
			if recvName == "" {
				continue
			}
			for _, comment := range fn.Doc.List {
				httpMethod, path, ok := parseRoute(comment.Text)
				if !ok {
					continue
				}
				defs = append(defs, types.EndpointDef{
					ModuleName:            ex.moduleName,
					HTTPMethod:            httpMethod,
					Path:                  path,
					ImplementingType:      f.pkgPath + "." + recvName,
					ImplementingSignature: signature(fn),
				})
			}
		}
	}
	return defs
}

// parseRoute reads one route directive comment. The directive form is
// "//codegraph:route METHOD /path"; anything else is ignored.
func parseRoute(comment string) (string, string, bool) {
	body, ok := strings.CutPrefix(comment, "//"+routeDirective)
	if !ok {
		return "", "", false
	}
	fields := strings.Fields(body)
	if len(fields) != 2 || !strings.HasPrefix(fields[1], "/") {
		return "", "", false
	}
	return strings.ToUpper(fields[0]), fields[1], true
}

func (ex *extractor) dependencies() []types.TypeDependencyDef {
	var defs []types.TypeDependencyDef
	seen := make(map[string]bool)
	add := func(source, target, kind, via string) {
		if target == "" || target == source {
			return
		}
		key := fmt.Sprintf("%s|%s|%s|%s", source, target, kind, via)
		if seen[key] {
			return
		}
		seen[key] = true
		defs = append(defs, types.TypeDependencyDef{
			SourceFQName: source,
			TargetFQName: target,
			Kind:         kind,
			Via:          via,
		})
	}

	for _, f := range ex.files {
		for _, spec := range typeSpecs(f.file) {
			st, ok := spec.Type.(*ast.StructType)
			if !ok {
				continue
			}
			source := f.pkgPath + "." + spec.Name.Name
			for _, field := range st.Fields.List {
				target := ex.resolve(f.pkgPath, field.Type)
				if len(field.Names) == 0 {
					add(source, target, "embeds", baseTypeName(field.Type))
					continue
				}
				for _, name := range field.Names {
					add(source, target, "field", name.Name)
				}
			}
		}
		for _, decl := range f.file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			recvName, _ := receiverType(fn.Recv.List[0].Type)
			if recvName == "" {
				continue
			}
			source := f.pkgPath + "." + recvName
			if fn.Type.Params != nil {
				for _, field := range fn.Type.Params.List {
					target := ex.resolve(f.pkgPath, field.Type)
					via := ""
					if len(field.Names) > 0 {
						via = field.Names[0].Name
					}
					add(source, target, "param", via)
				}
			}
			if fn.Type.Results != nil {
				for _, field := range fn.Type.Results.List {
					add(source, ex.resolve(f.pkgPath, field.Type), "result", "")
				}
			}
		}
	}
	return defs
}

// resolve maps a type expression to the FQName of a module-local type, or ""
// when the expression refers outside the module or to a builtin.
func (ex *extractor) resolve(pkgPath string, expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return ex.resolve(pkgPath, t.X)
	case *ast.ArrayType:
		return ex.resolve(pkgPath, t.Elt)
	case *ast.MapType:
		return ex.resolve(pkgPath, t.Value)
	case *ast.Ident:
		if idx, ok := ex.byPackage[pkgPath]; ok {
			return idx[t.Name]
		}
	case *ast.SelectorExpr:
		pkgIdent, ok := t.X.(*ast.Ident)
		if !ok {
			return ""
		}
		if target, ok := ex.byBase[pkgIdent.Name]; ok {
			return ex.byPackage[target][t.Sel.Name]
		}
	}
	return ""
}

func baseTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return baseTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return ""
}
