package graphio

import (
	"fmt"
	"io"

	"github.com/vharmon/flowsim/graphmodel"
)

// WriteDOT emits g as a Graphviz digraph: one node per actor, one edge
// per channel labelled with its rates, and a diamond node spliced into
// any channel carrying initial tokens — the same annotated-DOT shape
// original_source/sadf/print/html/sadf2html.cc builds from its graph
// model, generalised from SADF kernels/detectors to actors. Every node
// and edge carries a URL anchor so WriteHTML can embed this output and
// link it back to the report's actor/channel tables.
func WriteDOT(w io.Writer, g *graphmodel.Graph, name string) error {
	if name == "" {
		name = "flowsim"
	}
	if _, err := fmt.Fprintf(w, "digraph %s {\n", dotID(name)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "  rankdir=LR;\n\n"); err != nil {
		return err
	}

	actorName := make(map[int]string)
	for _, a := range g.Actors() {
		actorName[a.ID] = a.Name
		if _, err := fmt.Fprintf(w, "  %s [label=%q, URL=\"#%s\"];\n", dotID(a.Name), a.Name, a.Name); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for _, c := range g.Channels() {
		srcID := dotID(actorName[c.SrcPort.ActorID])
		dstID := dotID(actorName[c.DstPort.ActorID])
		label := fmt.Sprintf("%s: %s -> %s", c.Name, formatRate(c.SrcPort.Rate), formatRate(c.DstPort.Rate))

		if c.InitialTokens > 0 {
			tokenNode := dotID(c.Name) + "_t0"
			if _, err := fmt.Fprintf(w, "  %s [shape=diamond, label=\"%d\", URL=\"#%s\"];\n", tokenNode, c.InitialTokens, c.Name); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  %s -> %s [label=%q, URL=\"#%s\"];\n", srcID, tokenNode, label, c.Name); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  %s -> %s [URL=\"#%s\"];\n", tokenNode, dstID, c.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s -> %s [label=%q, URL=\"#%s\"];\n", srcID, dstID, label, c.Name); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// dotID sanitises a flowsim name into a bare Graphviz identifier,
// quoting it if it contains anything outside [A-Za-z0-9_].
func dotID(name string) string {
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Sprintf("%q", name)
		}
	}
	if name == "" {
		return `"_"`
	}
	return name
}
