package types

import "github.com/m-mizutani/goerr/v2"

// DependencyType describes how strongly one feature depends on another
type DependencyType string

const (
	DependencyTypeHard     DependencyType = "HARD"
	DependencyTypeSoft     DependencyType = "SOFT"
	DependencyTypeOptional DependencyType = "OPTIONAL"
)

func (d DependencyType) IsValid() bool {
	switch d {
	case DependencyTypeHard, DependencyTypeSoft, DependencyTypeOptional:
		return true
	default:
		return false
	}
}

func (d DependencyType) String() string {
	return string(d)
}

func ParseDependencyType(s string) (DependencyType, error) {
	d := DependencyType(s)
	if !d.IsValid() {
		return "", goerr.New("invalid dependency type", goerr.V("type", s))
	}
	return d, nil
}
