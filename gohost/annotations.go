package gohost

import (
	"bytes"
	"errors"
	"go/ast"
	"go/token"
	"path"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/brsample/remoteresource/parser"
	"github.com/brsample/remoteresource/processor"
)

// extractAnnotations returns the part of a doc comment that holds
// annotations: everything from the first line that starts with "@". The
// returned adjuster maps positions in the extracted text back to the source
// file.
func extractAnnotations(fset *token.FileSet, doc *ast.CommentGroup) (*bytes.Buffer, posAdjuster) {
	if doc == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	var adjuster posAdjuster
	found := false
	prevSingleLine := false
	var pos token.Position
	for _, l := range doc.List {
		txt := l.Text
		singleLine := false
		if strings.HasPrefix(txt, "/*") {
			txt = strings.TrimSuffix(txt[2:], "*/")
		} else if strings.HasPrefix(txt, "//") {
			singleLine = true
			txt = txt[2:]
		}

		// annotations do not span a switch between comment styles
		if singleLine != prevSingleLine {
			found = false
			buf.Reset()
			prevSingleLine = singleLine
			adjuster = nil
		}

		pos = fset.Position(l.Slash)
		pos.Offset += 2
		pos.Column += 2

		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimSpace(line)
			if !found && strings.HasPrefix(trimmed, "@") {
				found = true
			}
			if found {
				adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}
		pos = fset.Position(l.End())
	}
	if !found {
		return nil, nil
	}
	adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
	return &buf, adjuster
}

type posAdj struct {
	outOffset int
	inPos     token.Position
}

type posAdjuster []posAdj

func (a posAdjuster) adjustPosition(pos scanner.Position) token.Position {
	if pos.Line < 1 || pos.Line > len(a) {
		return token.Position{}
	}
	el := a[pos.Line-1]
	return token.Position{
		Filename: el.inPos.Filename,
		Line:     el.inPos.Line,
		Column:   el.inPos.Column + pos.Column - 1,
		Offset:   el.inPos.Offset + (pos.Offset - el.outOffset),
	}
}

// annotationReader converts the annotations in doc comments of one file into
// mirrors.
type annotationReader struct {
	fset     *token.FileSet
	pkgPath  string
	pkgName  string
	imports  map[string]string
	known    []string
	reporter processor.Reporter
}

// read parses the annotations in the given doc comment. Malformed annotation
// text is reported as a warning and the comment is ignored.
func (r *annotationReader) read(doc *ast.CommentGroup) []processor.AnnotationMirror {
	buf, adjuster := extractAnnotations(r.fset, doc)
	if buf == nil {
		return nil
	}
	annos, err := parser.ParseAnnotations(r.fset.Position(doc.Pos()).Filename, buf.Bytes())
	if err != nil {
		var perr *parser.ParseError
		pos := r.fset.Position(doc.Pos())
		if errors.As(err, &perr) {
			pos = adjuster.adjustPosition(perr.Pos())
			err = perr.Underlying()
		}
		r.reporter.Report(processor.Diagnostic{
			Severity: processor.SeverityWarning,
			Message:  "ignoring malformed annotation: " + err.Error(),
			Pos:      pos,
		})
		return nil
	}

	var mirrors []processor.AnnotationMirror
	seen := map[string]token.Position{}
	for _, a := range annos {
		m := processor.AnnotationMirror{
			QualifiedName: r.qualify(a.Type),
			Pos:           adjuster.adjustPosition(a.Pos),
		}
		if prev, ok := seen[m.QualifiedName]; ok {
			r.reporter.Report(processor.Diagnostic{
				Severity: processor.SeverityWarning,
				Message:  "ignoring repeated annotation @" + a.Type.String() + " (first given at " + prev.String() + ")",
				Pos:      m.Pos,
			})
			continue
		}
		seen[m.QualifiedName] = m.Pos
		if a.Value != nil {
			m.Args = append(m.Args, processor.AnnotationArg{Value: *a.Value, Pos: adjuster.adjustPosition(a.Value.Pos)})
		}
		for _, f := range a.Fields {
			m.Args = append(m.Args, processor.AnnotationArg{Name: f.Name, Value: f.Value, Pos: adjuster.adjustPosition(f.Pos)})
		}
		mirrors = append(mirrors, m)
	}
	return mirrors
}

// qualify resolves an annotation type name to "<import path>.<name>". An
// unqualified name refers to the current package. A qualifier is matched
// against the file's imports, then against the package's own name and
// finally against the packages of known annotations, so that annotations do
// not need an import of their own. An unknown qualifier is kept as is.
func (r *annotationReader) qualify(id parser.Identifier) string {
	if id.PackageAlias == "" {
		return r.pkgPath + "." + id.Name
	}
	if p, ok := r.imports[id.PackageAlias]; ok {
		return p + "." + id.Name
	}
	if id.PackageAlias == r.pkgName {
		return r.pkgPath + "." + id.Name
	}
	for _, k := range r.known {
		dot := strings.LastIndexByte(k, '.')
		if dot < 0 || k[dot+1:] != id.Name {
			continue
		}
		if path.Base(k[:dot]) == id.PackageAlias {
			return k
		}
	}
	return id.String()
}

// fileImports maps the names by which a file refers to its imports to their
// paths. Blank and dot imports are keyed by the imported package's name.
func fileImports(file *ast.File, importNames func(path string) string) map[string]string {
	res := map[string]string{}
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if imp.Name != nil && imp.Name.Name != "_" && imp.Name.Name != "." {
			name = imp.Name.Name
		} else {
			name = importNames(p)
		}
		if name != "" {
			res[name] = p
		}
	}
	return res
}
