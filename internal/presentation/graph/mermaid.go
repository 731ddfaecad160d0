package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GraphOverlay contains conversation state to highlight on the graph.
type GraphOverlay struct {
	// Visited holds trace tokens; bare tokens are skipped.
	Visited []string
	Current *domain.Position
}

// Labeler turns item and option text keys into display labels.
type Labeler func(key string) string

// GenerateMermaid produces a Mermaid flowchart of a dialog.
// Item shapes follow the item kind:
// - Select: {Rhombus}
// - Text input: [/Parallelogram/]
// - Image upload: [(Cylinder)]
// Option branches are labelled edges; sequence continuations are dotted.
func GenerateMermaid(d *domain.Dialog, label Labeler, overlay *GraphOverlay) string {
	if label == nil {
		label = func(k string) string { return k }
	}
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")
	sb.WriteString("    done(((\"done\")))\n")

	if first := firstNode(d, domain.EntrySequenceID); first != "" {
		fmt.Fprintf(&sb, "    start --> %s\n", first)
	}

	for _, seqID := range d.SequenceIDs() {
		seq := d.Sequences[seqID]
		fmt.Fprintf(&sb, "    subgraph seq%d[\"sequence %d\"]\n", seq.ID, seq.ID)
		for i, itemID := range seq.ItemIDs {
			it, ok := d.Items[itemID]
			if !ok {
				continue
			}
			opener, closer := shape(it.Kind)
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", nodeID(seq.ID, i), opener, escape(label(it.Text)), closer)
		}
		sb.WriteString("    end\n")

		for i, itemID := range seq.ItemIDs {
			from := nodeID(seq.ID, i)
			it, ok := d.Items[itemID]
			if !ok {
				continue
			}
			plain := false
			for _, opt := range d.ItemOptions(it) {
				if opt.SequenceID == nil {
					plain = true
					continue
				}
				if to := firstNode(d, *opt.SequenceID); to != "" {
					fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(label(opt.Text)), to)
				}
			}
			if it.Kind == domain.KindSelect && !plain {
				continue
			}
			switch {
			case i+1 < len(seq.ItemIDs):
				fmt.Fprintf(&sb, "    %s --> %s\n", from, nodeID(seq.ID, i+1))
			case seq.NextSequenceID != nil:
				if to := firstNode(d, *seq.NextSequenceID); to != "" {
					fmt.Fprintf(&sb, "    %s -.-> %s\n", from, to)
				}
			default:
				fmt.Fprintf(&sb, "    %s --> done\n", from)
			}
		}
	}

	if overlay != nil {
		writeOverlay(&sb, overlay)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, overlay *GraphOverlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for contrast on both light and dark themes
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, token := range overlay.Visited {
		pos, ok := domain.ParsePositionToken(token)
		if !ok {
			continue
		}
		id := nodeID(pos.SequenceID, pos.ItemIndex)
		if !seen[id] {
			seen[id] = true
			fmt.Fprintf(sb, "    class %s visited;\n", id)
		}
	}
	if overlay.Current != nil {
		fmt.Fprintf(sb, "    class %s current;\n", nodeID(overlay.Current.SequenceID, overlay.Current.ItemIndex))
	}
}

func shape(k domain.ItemKind) (string, string) {
	switch k {
	case domain.KindSelect:
		return "{", "}"
	case domain.KindTextInput:
		return "[/", "/]"
	case domain.KindImageUpload:
		return "[(", ")]"
	}
	return "[", "]"
}

// nodeID names the node of an item by its position, so that trace tokens map
// straight onto the graph.
func nodeID(seqID, index int) string {
	id := fmt.Sprintf("s%d_%d", seqID, index)
	return strings.ReplaceAll(id, "-", "m")
}

func firstNode(d *domain.Dialog, seqID int) string {
	seq, ok := d.Sequences[seqID]
	if !ok || len(seq.ItemIDs) == 0 {
		return ""
	}
	return nodeID(seq.ID, 0)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
