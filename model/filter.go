package model

import (
	"sort"
	"strings"
)

// FilterByDistrict returns the nodes whose district is in selection, or all
// nodes when selection is empty. Order is preserved.
func FilterByDistrict(nodes []Node, selection []string) []Node {
	if len(selection) == 0 {
		return append([]Node(nil), nodes...)
	}
	set := make(map[string]struct{}, len(selection))
	for _, d := range selection {
		set[d] = struct{}{}
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := set[n.District]; ok {
			out = append(out, n)
		}
	}
	return out
}

// FilterByStatus applies the same empty-means-all rule to statuses.
func FilterByStatus(nodes []Node, statuses []Status) []Node {
	if len(statuses) == 0 {
		return append([]Node(nil), nodes...)
	}
	set := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := set[n.Status]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Sortable column keys.
const (
	ColumnRegionCode        = "regionCode"
	ColumnRegion            = "region"
	ColumnDistrict          = "district"
	ColumnNodeName          = "nodeName"
	ColumnTechnicalSolution = "technicalSolution"
	ColumnStatus            = "status"
)

// SortNodes sorts in place by column; unknown columns sort by region code.
func SortNodes(nodes []Node, column string, desc bool) {
	field := func(n Node) string {
		switch column {
		case ColumnRegion:
			return n.Region
		case ColumnDistrict:
			return n.District
		case ColumnNodeName:
			return n.NodeName
		case ColumnTechnicalSolution:
			return n.TechnicalSolution
		case ColumnStatus:
			return string(n.Status)
		default:
			return n.RegionCode
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		c := strings.Compare(field(nodes[i]), field(nodes[j]))
		if desc {
			return c > 0
		}
		return c < 0
	})
}
