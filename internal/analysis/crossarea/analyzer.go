// Package crossarea measures how often edges jump between the concrete
// macro-categories. Edges touching a mixed or unknown endpoint are left out
// of the shares; the coverage figures report how much of the graph that
// restriction discarded.
package crossarea

import (
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

// Result carries the crossing shares and their coverage, all 0..100.
// Coverage is a data-quality signal, not a process metric.
type Result struct {
	MacroEdges               int
	CrossMacroShare          float64
	CrossMacroCoverage       float64
	MacroModeEdges           int
	CrossInterlacingShare    float64
	CrossInterlacingCoverage float64
}

// Analyze computes the structural pair over every valid edge and the
// interlacing pair over the mode-transition subset.
func Analyze(pctx *core.ProjectContext) Result {
	graph := pctx.Graph
	var res Result

	total := 0
	crossMacro := 0
	modeTotal := 0
	crossMode := 0

	for _, e := range graph.Edges {
		src, ok := graph.NodeByID(e.Source)
		if !ok {
			continue
		}
		dst, ok := graph.NodeByID(e.Target)
		if !ok {
			continue
		}
		total++

		transition := src.ModeNode() && dst.ModeNode() && src.Action != dst.Action
		if transition {
			modeTotal++
		}

		if !src.Macro.Known() || !dst.Macro.Known() {
			continue
		}
		res.MacroEdges++
		cross := src.Macro != dst.Macro
		if cross {
			crossMacro++
		}
		if transition {
			res.MacroModeEdges++
			if cross {
				crossMode++
			}
		}
	}

	res.CrossMacroShare = core.Percent(crossMacro, res.MacroEdges)
	res.CrossMacroCoverage = core.Percent(res.MacroEdges, total)
	res.CrossInterlacingShare = core.Percent(crossMode, res.MacroModeEdges)
	res.CrossInterlacingCoverage = core.Percent(res.MacroModeEdges, modeTotal)
	return res
}
