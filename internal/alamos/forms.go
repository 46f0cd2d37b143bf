package alamos

import (
	"fmt"
	"slices"
)

// Choices maps the name of a search form option to the value the form posts.
type Choices struct {
	field  string
	names  []string
	values map[string]string
}

func newChoices(field string, pairs ...string) Choices {
	c := Choices{field: field, values: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.names = append(c.names, pairs[i])
		c.values[pairs[i]] = pairs[i+1]
	}
	return c
}

func (c Choices) Names() []string {
	return slices.Clone(c.names)
}

// Value resolves name to its form value.
func (c Choices) Value(name string) (string, error) {
	v, ok := c.values[name]
	if !ok {
		return "", fmt.Errorf("unknown %s %q, expected one of %v", c.field, name, c.names)
	}
	return v, nil
}

var Viruses = newChoices("virus",
	"HIV-1", "HIV-1",
	"HIV-2", "HIV-2",
	"SIV", "SIV",
)

var Subtypes = newChoices("subtype",
	"any", "",
	"A", "A*",
	"A1", "A1*",
	"A2", "A2*",
	"B", "B*",
	"C", "C*",
	"D", "D*",
	"F", "F*",
	"F1", "F1*",
	"F2", "F2*",
	"G", "G*",
	"H", "H*",
	"J", "J*",
	"K", "K*",
	"N", "N*",
	"O", "O*",
	"P", "P*",
	"U", "U*",
	"CRF01_AE", "01_AE",
	"CRF02_AG", "02_AG",
	"recombinant", "recombinant",
)

var Regions = newChoices("region",
	"any", "",
	"genome", "GENOME",
	"gag", "GAG",
	"pol", "POL",
	"vif", "VIF",
	"vpr", "VPR",
	"tat", "TAT",
	"rev", "REV",
	"vpu", "VPU",
	"env", "ENV",
	"nef", "NEF",
	"ltr", "LTR",
)
