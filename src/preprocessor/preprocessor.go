// Package preprocessor implements the line-oriented #define/#undef/#include pass: a
// macro table, a self-reference expansion guard, and an include stack for cycle
// detection, reporting diagnostics through util.Engine.
package preprocessor

import (
	"os"
	"path/filepath"
	"strings"

	"cplusc/src/source"
	"cplusc/src/util"
)

// Preprocessor expands a source file's directives and macros into plain text ready
// for the lexer.
type Preprocessor struct {
	diag *util.Engine
	macros *table

	expanding []string // macro names currently being expanded
	includeStack []string // canonical paths of files currently being included

	filename string
	line int
}

// New returns a Preprocessor reporting diagnostics to diag.
func New(diag *util.Engine) *Preprocessor {
	return &Preprocessor{diag: diag, macros: newTable()}
}

func (p *Preprocessor) loc() source.Location {
	return source.Location{File: p.filename, Line: p.line}
}

// ProcessFile reads path and expands it, tracking path on the include stack so that
// any #include cycle reachable from it is detected.
func (p *Preprocessor) ProcessFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return p.process(path, filepath.Dir(path), string(data)), nil
}

// process expands the directives and macros in src, which was read from filename
// (located in dir, used to resolve relative #includes within it).
func (p *Preprocessor) process(filename, dir, src string) string {
	abs, _ := filepath.Abs(filename)
	p.includeStack = append(p.includeStack, abs)
	defer func() { p.includeStack = p.includeStack[:len(p.includeStack)-1] }()

	prevFile, prevLine := p.filename, p.line
	p.filename = filename
	defer func() { p.filename, p.line = prevFile, prevLine }()

	lines := strings.Split(src, "\n")
	var out strings.Builder
	for i, line := range lines {
		p.line = i + 1
		out.WriteString(p.processLine(line, dir))
		if i != len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// processLine dispatches a directive line to its handler, or expands macros in a
// content line.
func (p *Preprocessor) processLine(line, dir string) string {
	trimmed := skipSpaces(line)
	if !strings.HasPrefix(trimmed, "#") {
		return p.expandMacros(line)
	}

	directive := skipSpaces(trimmed[1:])
	switch {
	case hasWord(directive, "define"):
		p.parseDefine(directive[len("define"):])
		return ""
	case hasWord(directive, "undef"):
		p.parseUndef(directive[len("undef"):])
		return ""
	case hasWord(directive, "include"):
		return p.parseInclude(directive[len("include"):], dir)
	default:
		p.diag.Report(util.Error, p.loc(), "unknown preprocessor directive")
		return ""
	}
}

// hasWord reports whether s begins with word followed by whitespace, '(' or end of
// string (so "defined" is not mistaken for "define").
func hasWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	rest := s[len(word):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '('
}

func skipSpaces(s string) string {
	return strings.TrimLeft(s, " \t")
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// scanIdent reads a leading [A-Za-z_][A-Za-z0-9_]* from s, returning it and the
// remainder.
func scanIdent(s string) (ident, rest string) {
	i := 0
	if i < len(s) && isIdentStart(s[i]) {
		i++
		for i < len(s) && isIdentByte(s[i]) {
			i++
		}
	}
	return s[:i], s[i:]
}

// parseDefine handles `#define NAME REPLACEMENT` and `#define NAME(P1, P2) REPLACEMENT`.
// rest is the text following the "define" keyword.
func (p *Preprocessor) parseDefine(rest string) {
	rest = skipSpaces(rest)
	name, rest := scanIdent(rest)
	if name == "" {
		p.diag.Report(util.Error, p.loc(), "expected macro name after #define")
		return
	}

	// No space permitted between NAME and '(' for a function-like macro.
	if strings.HasPrefix(rest, "(") {
		rest = rest[1:]
		var params []string
		for {
			rest = skipSpaces(rest)
			if strings.HasPrefix(rest, ")") {
				rest = rest[1:]
				break
			}
			var param string
			param, rest = scanIdent(rest)
			if param != "" {
				params = append(params, param)
			}
			rest = skipSpaces(rest)
			if strings.HasPrefix(rest, ",") {
				rest = rest[1:]
				continue
			}
			if strings.HasPrefix(rest, ")") {
				rest = rest[1:]
				break
			}
			p.diag.Report(util.Error, p.loc(), "expected ',' or ')' in macro parameter list")
			return
		}
		m := &Macro{
			Name: name,
			Params: params,
			IsFunction: true,
			Replacement: skipSpaces(rest),
			Location: p.loc(),
		}
		p.checkRedefinition(m)
		p.macros.define(m)
		return
	}

	m := &Macro{
		Name: name,
		Replacement: skipSpaces(rest),
		Location: p.loc(),
	}
	p.checkRedefinition(m)
	p.macros.define(m)
}

// checkRedefinition reports a Note, not a Warning or Error, when m silently replaces an
// existing macro of the same name with different replacement text, params, or
// function-like-ness (redefinition itself is never an error: no warning is guaranteed).
func (p *Preprocessor) checkRedefinition(m *Macro) {
	prev, ok := p.macros.lookup(m.Name)
	if !ok || !macroDiffers(prev, m) {
		return
	}
	p.diag.Report(util.Note, m.Location, "macro %q redefined with a different replacement", m.Name)
	p.diag.Report(util.Note, prev.Location, "previous definition of %q is here", prev.Name)
}

// macroDiffers reports whether b's replacement text, parameter list, or
// function-like-ness differs from a's.
func macroDiffers(a, b *Macro) bool {
	if a.IsFunction != b.IsFunction || a.Replacement != b.Replacement || len(a.Params) != len(b.Params) {
		return true
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return true
		}
	}
	return false
}

// parseUndef handles `#undef NAME`. A missing or undefined macro is a silent no-op.
func (p *Preprocessor) parseUndef(rest string) {
	name, _ := scanIdent(skipSpaces(rest))
	if name == "" {
		p.diag.Report(util.Error, p.loc(), "expected macro name after #undef")
		return
	}
	p.macros.undef(name)
}

// parseInclude handles `#include "path"` and `#include <path>`.
func (p *Preprocessor) parseInclude(rest, dir string) string {
	rest = skipSpaces(rest)
	var path string
	var quoted bool

	switch {
	case strings.HasPrefix(rest, "\""):
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			p.diag.Report(util.Error, p.loc(), "unterminated #include delimiter")
			return ""
		}
		path, quoted = rest[1:1+end], true
	case strings.HasPrefix(rest, "<"):
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			p.diag.Report(util.Error, p.loc(), "unterminated #include delimiter")
			return ""
		}
		path, quoted = rest[1:end], false
	default:
		p.diag.Report(util.Error, p.loc(), "expected \"path\" or <path> after #include")
		return ""
	}

	if !quoted {
		// Angle-bracket includes have no documented search path in the core; hosts
		// supplying standard paths must install a search-path hook.
		return ""
	}

	for _, candidate := range []string{filepath.Join(".", path), filepath.Join(dir, path)} {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		abs, _ := filepath.Abs(candidate)
		for _, onStack := range p.includeStack {
			if onStack == abs {
				p.diag.Report(util.Error, p.loc(), "circular #include of %q", path)
				return ""
			}
		}
		return p.process(candidate, filepath.Dir(candidate), string(data))
	}

	p.diag.Report(util.Error, p.loc(), "#include file not found: %q", path)
	return ""
}

func (p *Preprocessor) isExpanding(name string) bool {
	for _, m := range p.expanding {
		if m == name {
			return true
		}
	}
	return false
}

// expandMacros scans text for identifiers naming a macro not currently expanding, and
// substitutes each occurrence.
func (p *Preprocessor) expandMacros(text string) string {
	var sb strings.Builder
	i := 0
	for i < len(text) {
		if !isIdentStart(text[i]) {
			sb.WriteByte(text[i])
			i++
			continue
		}

		start := i
		for i < len(text) && isIdentByte(text[i]) {
			i++
		}
		ident := text[start:i]

		macro, ok := p.macros.lookup(ident)
		if !ok || p.isExpanding(ident) {
			sb.WriteString(ident)
			continue
		}

		if macro.IsFunction {
			j := i
			for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			if j >= len(text) || text[j] != '(' {
				sb.WriteString(ident)
				continue
			}
			expanded, consumed := p.expandFunctionMacro(macro, text[j:])
			sb.WriteString(expanded)
			i = j + consumed
			continue
		}

		p.expanding = append(p.expanding, ident)
		sb.WriteString(p.expandMacros(macro.Replacement))
		p.expanding = p.expanding[:len(p.expanding)-1]
	}
	return sb.String()
}

// expandFunctionMacro substitutes m's parameters with the raw argument text found in
// argsText (which begins with the call's opening paren) and recursively expands the
// result. It returns the expansion and the number of bytes of argsText consumed,
// i.e. up to and including the matching close paren.
func (p *Preprocessor) expandFunctionMacro(m *Macro, argsText string) (string, int) {
	var args []string
	depth := 0
	argStart := 1
	i := 0
	for i < len(argsText) {
		switch argsText[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, skipSpaces(argsText[argStart:i]))
				i++
				goto doneScanning
			}
		case ',':
			if depth == 1 {
				args = append(args, skipSpaces(argsText[argStart:i]))
				argStart = i + 1
			}
		}
		i++
	}
doneScanning:
	consumed := i

	if len(m.Params) == 0 && len(args) == 1 && args[0] == "" {
		args = nil
	}
	if len(args) != len(m.Params) {
		p.diag.Report(util.Error, p.loc(), "macro %q expects %d argument(s), got %d", m.Name, len(m.Params), len(args))
		return "", consumed
	}

	var sb strings.Builder
	repl := m.Replacement
	for len(repl) > 0 {
		matched := false
		for idx, param := range m.Params {
			if !strings.HasPrefix(repl, param) {
				continue
			}
			var next byte
			if len(repl) > len(param) {
				next = repl[len(param)]
			}
			if isIdentByte(next) {
				continue
			}
			sb.WriteString(args[idx])
			repl = repl[len(param):]
			matched = true
			break
		}
		if !matched {
			sb.WriteByte(repl[0])
			repl = repl[1:]
		}
	}

	p.expanding = append(p.expanding, m.Name)
	expanded := p.expandMacros(sb.String())
	p.expanding = p.expanding[:len(p.expanding)-1]
	return expanded, consumed
}
