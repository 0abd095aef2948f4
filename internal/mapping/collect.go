package mapping

// Collect flattens a mapping tree into its leaf fields, depth first.
// Each entry contributes its own leaf descriptor first, then its
// multi-field expansions, then its object children, each group in
// backend order. Labels may collide across branches; duplicates are
// kept rather than merged.
func Collect(prefix string, tree Tree) []Field {
	var fields []Field
	for _, e := range tree {
		if t := e.Node.Type; t != "" && t != TypeObject && t != TypeNested {
			fields = append(fields, Field{Label: prefix + e.Name, Type: t, Path: e.Node.Path})
		}
		if len(e.Node.Fields) > 0 {
			fields = append(fields, Collect(prefix+e.Name+".", e.Node.Fields)...)
		}
		if len(e.Node.Properties) > 0 {
			fields = append(fields, Collect(prefix+e.Name+".", e.Node.Properties)...)
		}
	}
	return fields
}
