package model

import "sort"

// JSON objects carry no ordering, so entity slices are sorted by name to keep
// the formulation deterministic across runs.

func sortBuses(s []*Bus) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
}

func sortLines(s []*TransmissionLine) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
}

func sortUnits(s []*ThermalUnit) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
}

func sortLoads(s []*PriceSensitiveLoad) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
}
