package exprengine

import "github.com/expr-lang/expr/ast"

// call is a user function call site: callee identifier and arity.
type call struct {
	name  string
	arity int
}

// collector gathers free identifiers and user function calls of a tree.
// Names bound by an enclosing let are not free.
type collector struct {
	idents []string
	calls  []call
	seen   map[string]struct{}
	// let names in scope, counted for nested rebinding
	bound map[string]int
}

func (c *collector) reset() {
	c.idents = c.idents[:0]
	c.calls = c.calls[:0]
	clear(c.seen)
	clear(c.bound)
}

func (c *collector) ident(name string) {
	if c.bound[name] > 0 {
		return
	}
	if _, ok := c.seen[name]; ok {
		return
	}
	c.seen[name] = struct{}{}
	c.idents = append(c.idents, name)
}

func (c *collector) walk(n ast.Node) {
	if n == nil {
		return
	}
	switch x := n.(type) {
	case *ast.IdentifierNode:
		c.ident(x.Value)
	case *ast.ChainNode:
		c.walk(x.Node)
	case *ast.BinaryNode:
		c.walk(x.Left)
		c.walk(x.Right)
	case *ast.UnaryNode:
		c.walk(x.Node)
	case *ast.ConditionalNode:
		c.walk(x.Cond)
		c.walk(x.Exp1)
		c.walk(x.Exp2)
	case *ast.CallNode:
		// the callee of a plain call is a function name, not a variable
		if id, ok := x.Callee.(*ast.IdentifierNode); ok {
			c.calls = append(c.calls, call{name: id.Value, arity: len(x.Arguments)})
		} else {
			c.walk(x.Callee)
		}
		for _, a := range x.Arguments {
			c.walk(a)
		}
	case *ast.BuiltinNode:
		if x.Map != nil {
			c.walk(x.Map)
		}
		for _, a := range x.Arguments {
			c.walk(a)
		}
	case *ast.MemberNode:
		c.walk(x.Node)
		// string properties are field names, not free identifiers
		if _, ok := x.Property.(*ast.StringNode); !ok {
			c.walk(x.Property)
		}
	case *ast.SliceNode:
		c.walk(x.Node)
		c.walk(x.From)
		c.walk(x.To)
	case *ast.ArrayNode:
		for _, el := range x.Nodes {
			c.walk(el)
		}
	case *ast.MapNode:
		for _, p := range x.Pairs {
			c.walk(p)
		}
	case *ast.PairNode:
		// keys of map literals are names, only values are evaluated
		c.walk(x.Value)
	case *ast.SequenceNode:
		for _, sn := range x.Nodes {
			c.walk(sn)
		}
	case *ast.VariableDeclaratorNode:
		c.walk(x.Value)
		if c.bound == nil {
			c.bound = make(map[string]int)
		}
		c.bound[x.Name]++
		c.walk(x.Expr)
		c.bound[x.Name]--
	case *ast.PredicateNode:
		c.walk(x.Node)
	default:
	}
}
