package runner

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/tryfix/errors"
	"github.com/tryfix/unbounded/source"
)

// Graph renders the layout of a run, source to splits to pool to sink, as a
// graphviz digraph.
type Graph struct {
	parent   string
	vizGraph *gographviz.Graph
}

func quote(s string) string {
	return fmt.Sprintf(`%q`, s)
}

// NewGraph splits src the way Run would and draws the result.
func NewGraph(src source.Source, config *Config) (*Graph, error) {
	if err := config.validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid runner config`)
	}

	splits, err := src.Split(config.DesiredSplits, config.Options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot split source [%s]`, src.Name()))
	}

	g := &Graph{parent: `root`, vizGraph: gographviz.NewGraph()}
	if err := g.build(src, splits, config); err != nil {
		return nil, errors.WithPrevious(err, `cannot build graph`)
	}

	return g, nil
}

func (g *Graph) build(src source.Source, splits []source.Source, config *Config) error {
	if err := g.vizGraph.SetName(g.parent); err != nil {
		return err
	}

	if err := g.vizGraph.SetDir(true); err != nil {
		return err
	}

	if err := g.vizGraph.AddAttr(g.parent, `rankdir`, `LR`); err != nil {
		return err
	}

	if err := g.vizGraph.AddNode(g.parent, `source`, map[string]string{
		`shape`:     `oval`,
		`style`:     `filled`,
		`fillcolor`: `deepskyblue1`,
		`label`:     quote(fmt.Sprintf("%s\n%T", src.Name(), src)),
	}); err != nil {
		return err
	}

	if err := g.vizGraph.AddNode(g.parent, `pool`, map[string]string{
		`shape`:     `box`,
		`style`:     `filled`,
		`fontcolor`: `grey100`,
		`fillcolor`: `slateblue4`,
		`label`: quote(fmt.Sprintf("worker pool\n%s x%d",
			config.WorkerPool.Order, config.WorkerPool.NumOfWorkers)),
	}); err != nil {
		return err
	}

	if err := g.vizGraph.AddNode(g.parent, `sink`, map[string]string{
		`shape`:     `box`,
		`style`:     `filled`,
		`fillcolor`: `orange`,
		`label`:     quote(config.Topic),
	}); err != nil {
		return err
	}

	for i, split := range splits {
		name := fmt.Sprintf(`split_%d`, i)
		if err := g.vizGraph.AddNode(g.parent, name, map[string]string{
			`shape`: `oval`,
			`label`: quote(fmt.Sprintf(`%s-%d`, split.Name(), i)),
		}); err != nil {
			return err
		}

		if err := g.vizGraph.AddEdge(`source`, name, true, nil); err != nil {
			return err
		}

		if err := g.vizGraph.AddEdge(name, `pool`, true, map[string]string{
			`label`: quote(`reader`),
		}); err != nil {
			return err
		}
	}

	return g.vizGraph.AddEdge(`pool`, `sink`, true, nil)
}

func (g *Graph) Nodes() int {
	return len(g.vizGraph.Nodes.Nodes)
}

func (g *Graph) Edges() int {
	return len(g.vizGraph.Edges.Edges)
}

func (g *Graph) String() string {
	return g.vizGraph.String()
}
