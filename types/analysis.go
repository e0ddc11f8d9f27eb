package types

import (
	"fmt"
	"strings"
)

type AnalysisKind uint8

const (
	Analysis_None AnalysisKind = iota
	Analysis_Static
	Analysis_Modal
)

var AnalysisNameMap = map[string]AnalysisKind{
	"static":    Analysis_Static,
	"linear":    Analysis_Static,
	"modal":     Analysis_Modal,
	"vibration": Analysis_Modal,
}

func (k AnalysisKind) String() string {
	switch k {
	case Analysis_Static:
		return "static"
	case Analysis_Modal:
		return "modal"
	}
	return "none"
}

func NewAnalysisKind(label string) (k AnalysisKind, err error) {
	var ok bool
	if k, ok = AnalysisNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown analysis type %q", label)
	}
	return
}

// AllComponents is the component index that selects every component of a node.
const AllComponents = -1

var ComponentNameMap = map[string]int{
	"all": AllComponents,
	"x":   0,
	"y":   1,
	"z":   2,
	"u":   0,
	"v":   1,
	"w":   2,
}

// ParseComponent maps a component label onto its index.
func ParseComponent(label string) (comp int, err error) {
	var ok bool
	if comp, ok = ComponentNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown component %q", label)
	}
	return
}
