package headless

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// The headless compiler is a GLSL front-end check, not a compiler: it
// catches the mistakes that make a real driver reject a source (unbalanced
// delimiters, a missing statement terminator, a missing #version or main)
// and extracts the interface (uniforms, ins, outs) needed to link and to
// resolve uniform locations. Diagnostics follow the Mesa layout
// "0:LINE(COLUMN): error: MESSAGE".

var (
	versionRe     = regexp.MustCompile(`^#version\s+(\d+)(\s+(core|compatibility|es))?\s*$`)
	mainRe        = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(void)?\s*\)`)
	declarationRe = regexp.MustCompile(`^(?:layout\s*\([^)]*\)\s*)?(uniform|in|out)\s+(?:(?:lowp|mediump|highp|flat|smooth|noperspective)\s+)*(\w+)\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)
	controlRe     = regexp.MustCompile(`^(?:\}\s*)?(if|else|for|while|do|switch|case|default)\b`)
	wordRe        = regexp.MustCompile(`[A-Za-z_]\w*`)
)

type variable struct {
	Type string
	Name string
}

type compiledShader struct {
	stage    metadata.ShaderStage
	version  int
	hasMain  bool
	uniforms []variable
	inputs   []variable
	outputs  []variable
	// every identifier-like word of the source with its occurrence count
	words map[string]int
}

type diagnostics struct {
	lines []string
}

func (d *diagnostics) errorf(line, column int, format string, args ...interface{}) {
	d.lines = append(d.lines, fmt.Sprintf("0:%d(%d): error: %s", line, column, fmt.Sprintf(format, args...)))
}

func (d *diagnostics) failed() bool {
	return len(d.lines) > 0
}

func (d *diagnostics) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	return strings.Join(d.lines, "\n") + "\n"
}

// stripComments blanks out comments while keeping line structure intact.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	inLine, inBlock := false, false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case inBlock:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				inBlock = false
				b.WriteString("  ")
				i++
			} else if c == '\n' {
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			inLine = true
			b.WriteString("  ")
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			inBlock = true
			b.WriteString("  ")
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var closing = map[byte]byte{')': '(', ']': '[', '}': '{'}

type open struct {
	char   byte
	line   int
	column int
}

func compileSource(stage metadata.ShaderStage, source string) (*compiledShader, string) {
	diag := &diagnostics{}
	out := &compiledShader{
		stage: stage,
		words: make(map[string]int),
	}

	src := stripComments(source)
	lines := strings.Split(src, "\n")

	// #version must be the first thing in the source.
	sawCode := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#version") {
			m := versionRe.FindStringSubmatch(line)
			if m == nil {
				diag.errorf(i+1, 1, "invalid #version directive")
			} else if sawCode {
				diag.errorf(i+1, 1, "#version must appear on the first line")
			} else {
				fmt.Sscanf(m[1], "%d", &out.version)
			}
		}
		sawCode = true
	}
	if out.version == 0 && !diag.failed() {
		diag.errorf(1, 1, "missing #version directive")
	}

	// Delimiter balance and statement termination.
	var stack []open
	prevLine, prevCol := 0, 0
	prevEnd := byte(0)
	prevText := ""
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(stack) > 0 && prevEnd != 0 && (isIdentByte(line[0]) || line[0] == '}') &&
			(isIdentByte(prevEnd) || prevEnd == ')' || prevEnd == ']') &&
			!controlRe.MatchString(prevText) && !inParens(stack) {
			unexpected := "IDENTIFIER"
			if line[0] == '}' {
				unexpected = "'}'"
			}
			diag.errorf(prevLine, prevCol+1, "syntax error, unexpected %s, expecting ',' or ';'", unexpected)
		}
		for j := 0; j < len(raw); j++ {
			c := raw[j]
			switch c {
			case '(', '[', '{':
				stack = append(stack, open{char: c, line: i + 1, column: j + 1})
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1].char != closing[c] {
					diag.errorf(i+1, j+1, "syntax error, unexpected '%c'", c)
					continue
				}
				stack = stack[:len(stack)-1]
			}
		}
		prevLine = i + 1
		prevCol = len(strings.TrimRight(raw, " \t\r"))
		prevEnd = line[len(line)-1]
		prevText = line
	}
	for _, o := range stack {
		diag.errorf(len(lines), 1, "syntax error, unexpected end of file, unmatched '%c' opened at %d(%d)", o.char, o.line, o.column)
	}

	// Interface declarations live at global scope.
	depth := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if depth == 0 {
			if m := declarationRe.FindStringSubmatch(line); m != nil {
				v := variable{Type: m[2], Name: m[3]}
				switch m[1] {
				case "uniform":
					out.uniforms = append(out.uniforms, v)
				case "in":
					out.inputs = append(out.inputs, v)
				case "out":
					out.outputs = append(out.outputs, v)
				}
			}
		}
		depth += strings.Count(raw, "{") - strings.Count(raw, "}")
	}

	for _, w := range wordRe.FindAllString(src, -1) {
		out.words[w]++
	}
	out.hasMain = mainRe.MatchString(src)

	if diag.failed() {
		return nil, diag.String()
	}
	return out, ""
}

func inParens(stack []open) bool {
	return len(stack) > 0 && stack[len(stack)-1].char != '{'
}

// activeUniforms returns the uniforms referenced beyond their declaration.
func (s *compiledShader) activeUniforms() []variable {
	var active []variable
	for _, u := range s.uniforms {
		if s.words[u.Name] > 1 {
			active = append(active, u)
		}
	}
	return active
}

type linkedProgram struct {
	uniforms map[string]int32
}

// linkShaders checks the stage interfaces against each other and assigns
// uniform locations in name order.
func linkShaders(shaders []*compiledShader) (*linkedProgram, string) {
	diag := &diagnostics{}
	var vertex, fragment *compiledShader
	for _, s := range shaders {
		switch s.stage {
		case metadata.ShaderStageVertex:
			vertex = s
		case metadata.ShaderStageFragment:
			fragment = s
		}
	}
	if vertex == nil || fragment == nil {
		return nil, "error: program requires a vertex and a fragment shader\n"
	}
	if !vertex.hasMain {
		diag.lines = append(diag.lines, "error: vertex shader lacks `main'")
	}
	if !fragment.hasMain {
		diag.lines = append(diag.lines, "error: fragment shader lacks `main'")
	}

	outputs := make(map[string]string, len(vertex.outputs))
	for _, o := range vertex.outputs {
		outputs[o.Name] = o.Type
	}
	for _, in := range fragment.inputs {
		typ, ok := outputs[in.Name]
		if !ok {
			diag.lines = append(diag.lines, fmt.Sprintf("error: fragment shader input `%s' has no matching output in the previous stage", in.Name))
			continue
		}
		if typ != in.Type {
			diag.lines = append(diag.lines, fmt.Sprintf("error: `%s' declared as type `%s' and type `%s'", in.Name, typ, in.Type))
		}
	}

	types := make(map[string]string)
	active := make(map[string]bool)
	for _, s := range []*compiledShader{vertex, fragment} {
		for _, u := range s.uniforms {
			if prev, ok := types[u.Name]; ok && prev != u.Type {
				diag.lines = append(diag.lines, fmt.Sprintf("error: uniform `%s' declared as type `%s' and type `%s'", u.Name, prev, u.Type))
			}
			types[u.Name] = u.Type
		}
		for _, u := range s.activeUniforms() {
			active[u.Name] = true
		}
	}

	if diag.failed() {
		return nil, diag.String()
	}

	names := make([]string, 0, len(active))
	for n := range active {
		names = append(names, n)
	}
	sort.Strings(names)
	lp := &linkedProgram{uniforms: make(map[string]int32, len(names))}
	for i, n := range names {
		lp.uniforms[n] = int32(i)
	}
	return lp, ""
}
