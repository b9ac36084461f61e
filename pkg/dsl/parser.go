package dsl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ucmflow/ucmflow/internal/core/graph"
	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
	"github.com/ucmflow/ucmflow/pkg/validation"
)

var coordPattern = regexp.MustCompile(`^\((-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)\)$`)

var nodeTypeTokens = map[string]graph.NodeType{
	"start":          graph.NodeTypeStart,
	"end":            graph.NodeTypeEnd,
	"responsibility": graph.NodeTypeResponsibility,
	"empty":          graph.NodeTypeEmpty,
	"fork":           graph.NodeTypeFork,
	"join":           graph.NodeTypeJoin,
}

var componentTypeTokens = map[string]graph.ComponentType{
	"team":    graph.ComponentTypeTeam,
	"object":  graph.ComponentTypeObject,
	"process": graph.ComponentTypeProcess,
	"agent":   graph.ComponentTypeAgent,
	"actor":   graph.ComponentTypeActor,
}

// pendingLink is a link statement held for the second pass, after every node
// line has been seen, so forward references resolve regardless of order.
type pendingLink struct {
	line   int
	source string
	target string
}

// parser carries the state of one parse: the open-component stack replaces
// recursion since the source is flat lines.
type parser struct {
	store     *graph.Store
	result    Result
	stack     []string // open component ids; "" marks a malformed header
	nodeNames map[string]string
	compNames map[string]string
	links     []pendingLink
	headerSet bool
}

// Parse parses DSL text into a fresh store.
func Parse(text string) (*graph.Store, Result) {
	store := graph.NewStore()
	res := ParseInto(store, text)
	return store, res
}

// ParseInto clears the store and rebuilds it from DSL text. All findings
// carry 1-based line numbers; Success is true when no errors accumulated.
func ParseInto(store *graph.Store, text string) Result {
	store.Clear()
	p := &parser{
		store:     store,
		nodeNames: make(map[string]string),
		compNames: make(map[string]string),
	}

	for i, raw := range strings.Split(text, "\n") {
		p.parseLine(i+1, strings.TrimSpace(strings.TrimSuffix(raw, "\r")))
	}
	for range p.stack {
		p.result.warnf(0, "component block not closed before end of input")
	}
	p.resolveLinks()

	p.result.Success = len(p.result.Errors) == 0
	metrics.IncParses()
	metrics.AddParseErrors(len(p.result.Errors))
	return p.result
}

func (p *parser) parseLine(line int, stmt string) {
	if stmt == "" {
		return
	}
	if stmt == "}" {
		if len(p.stack) == 0 {
			p.result.warnf(line, "unmatched closing brace")
			return
		}
		p.stack = p.stack[:len(p.stack)-1]
		return
	}

	tokens, err := splitFields(stmt)
	if err != nil {
		p.result.warnf(line, "%v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	switch {
	case tokens[0] == "ucm":
		p.parseHeader(line, tokens)
	case tokens[0] == "component":
		p.parseComponent(line, tokens)
	case tokens[0] == "link":
		p.parseLink(line, tokens)
	default:
		if _, ok := nodeTypeTokens[tokens[0]]; ok {
			p.parseNode(line, tokens)
			return
		}
		p.result.warnf(line, "unmatched line: %q", stmt)
	}
}

func (p *parser) parseHeader(line int, tokens []string) {
	if p.headerSet {
		p.result.warnf(line, "duplicate header line")
		return
	}
	p.headerSet = true
	p.store.Name = strings.Join(tokens[1:], " ")
}

// parseComponent handles `component <name> type <type> at (x,y) size (w,h) {`.
// A malformed header still pushes a placeholder so closing braces balance.
func (p *parser) parseComponent(line int, tokens []string) {
	opensBlock := tokens[len(tokens)-1] == "{"
	if len(tokens) != 9 || !opensBlock || tokens[2] != "type" || tokens[4] != "at" || tokens[6] != "size" {
		p.result.warnf(line, "malformed component statement")
		if opensBlock {
			p.stack = append(p.stack, "")
		}
		return
	}
	name := tokens[1]
	x, y, ok := parseCoord(tokens[5])
	if !ok {
		p.result.warnf(line, "malformed coordinates %q", tokens[5])
		p.stack = append(p.stack, "")
		return
	}
	w, h, ok := parseCoord(tokens[7])
	if !ok {
		p.result.warnf(line, "malformed size %q", tokens[7])
		p.stack = append(p.stack, "")
		return
	}

	if issues := validation.CheckDecl(validation.ComponentDecl{
		Name: name, Type: tokens[3], X: x, Y: y, W: w, H: h,
	}); len(issues) > 0 {
		for _, issue := range issues {
			p.result.errorf(line, "%s", issue.Message)
		}
		p.stack = append(p.stack, "")
		return
	}

	c := p.store.AddComponent(componentTypeTokens[tokens[3]], graph.ComponentInit{
		Name:   name,
		Bounds: graph.Bounds{X: x, Y: y, W: w, H: h},
	})
	if parent := p.innermost(); parent != "" {
		p.store.BindComponentToComponent(c.ID, parent)
	}
	if _, dup := p.compNames[name]; dup {
		p.result.warnf(line, "duplicate component name %q; first definition wins", name)
	} else {
		p.compNames[name] = c.ID
	}
	p.stack = append(p.stack, c.ID)
}

// parseNode handles `<nodetype> <name> at (x,y)`, binding the node to the
// innermost open component. Fork and join nodes whose name contains the
// case-insensitive substring "AND" default to the and branch type; the
// heuristic can false-positive on names like "Standalone" but is kept for
// file-format compatibility.
func (p *parser) parseNode(line int, tokens []string) {
	if len(tokens) != 4 || tokens[2] != "at" {
		p.result.warnf(line, "malformed node statement")
		return
	}
	nodeType := nodeTypeTokens[tokens[0]]
	name := tokens[1]
	x, y, ok := parseCoord(tokens[3])
	if !ok {
		p.result.warnf(line, "malformed coordinates %q", tokens[3])
		return
	}

	if issues := validation.CheckDecl(validation.NodeDecl{
		Type: tokens[0], Name: name, X: x, Y: y,
	}); len(issues) > 0 {
		for _, issue := range issues {
			p.result.errorf(line, "%s", issue.Message)
		}
		return
	}

	branch := graph.BranchType("")
	if nodeType == graph.NodeTypeFork || nodeType == graph.NodeTypeJoin {
		branch = graph.BranchOr
		if strings.Contains(strings.ToUpper(name), "AND") {
			branch = graph.BranchAnd
		}
	}
	n := p.store.AddNode(nodeType, graph.NodeInit{
		Name:     name,
		Position: graph.Point{X: x, Y: y},
		Branch:   branch,
	})
	if parent := p.innermost(); parent != "" {
		p.store.BindNodeToComponent(n.ID, parent)
	}
	if _, dup := p.nodeNames[name]; dup {
		p.result.warnf(line, "duplicate node name %q; first definition wins", name)
	} else {
		p.nodeNames[name] = n.ID
	}
}

func (p *parser) parseLink(line int, tokens []string) {
	if len(tokens) != 4 || tokens[2] != "->" {
		p.result.warnf(line, "malformed link statement")
		return
	}
	p.links = append(p.links, pendingLink{line: line, source: tokens[1], target: tokens[3]})
}

// resolveLinks is the second pass: every node is known by now, so link order
// relative to node definitions does not matter. An unresolved name is an
// error and the link is skipped; a store-level rejection (degree rules)
// surfaces as a warning.
func (p *parser) resolveLinks() {
	for _, l := range p.links {
		srcID, ok := p.resolveNode(l.source)
		if !ok {
			p.result.errorf(l.line, "unresolved link source %q", l.source)
			continue
		}
		tgtID, ok := p.resolveNode(l.target)
		if !ok {
			p.result.errorf(l.line, "unresolved link target %q", l.target)
			continue
		}
		before := len(p.store.Warnings())
		if e := p.store.AddEdge(srcID, tgtID, graph.EdgeInit{}); e == nil {
			for _, w := range p.store.Warnings()[before:] {
				p.result.warnf(l.line, "link skipped: %s", w.Message)
			}
		}
	}
}

// resolveNode resolves a link operand by node name (first definition wins),
// falling back to a raw node id as emitted for unnamed nodes.
func (p *parser) resolveNode(name string) (string, bool) {
	if id, ok := p.nodeNames[name]; ok {
		return id, true
	}
	if _, ok := p.store.Node(name); ok {
		return name, true
	}
	return "", false
}

// innermost returns the closest open component, skipping placeholders pushed
// for malformed headers.
func (p *parser) innermost() string {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i] != "" {
			return p.stack[i]
		}
	}
	return ""
}

func parseCoord(token string) (float64, float64, bool) {
	m := coordPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, 0, false
	}
	x, err1 := strconv.ParseFloat(m[1], 64)
	y, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}
