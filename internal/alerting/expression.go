package alerting

import (
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Identifier namespaces that never name a data source.
const (
	namespaceMath        = "math"
	namespaceDatasources = "datasources"
)

// ExtractMetrics returns the data source names referenced by an expression in
// order of first appearance. Members of the datasources namespace contribute
// their property name, the math namespace is ignored.
func ExtractMetrics(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, &ExpressionError{Expression: expression, Err: err}
	}
	c := &metricCollector{seen: make(map[string]struct{})}
	ast.Walk(&tree.Node, c)
	return c.metrics, nil
}

type metricCollector struct {
	seen    map[string]struct{}
	metrics []string
}

func (c *metricCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if strings.EqualFold(n.Value, namespaceMath) || strings.EqualFold(n.Value, namespaceDatasources) {
			return
		}
		c.add(n.Value)
	case *ast.MemberNode:
		root, ok := n.Node.(*ast.IdentifierNode)
		if !ok || !strings.EqualFold(root.Value, namespaceDatasources) {
			return
		}
		if prop, ok := n.Property.(*ast.StringNode); ok {
			c.add(prop.Value)
		}
	}
}

func (c *metricCollector) add(name string) {
	if _, dup := c.seen[name]; dup {
		return
	}
	c.seen[name] = struct{}{}
	c.metrics = append(c.metrics, name)
}
