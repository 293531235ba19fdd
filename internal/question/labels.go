// Package question extracts interviewer questions from speaker blocks and
// attaches script section labels from an externally produced segmentation
// tree.
package question

import "fmt"

// Label is one of the fixed section/subsection names of the official
// interview script. The set is closed: external strings map onto it by
// exact match, and anything unmapped is an explicit error, never a default.
type Label string

const (
	Introducao       Label = "INTRODUÇÃO"
	Identificacao    Label = "IDENTIFICAÇÃO"
	Infancia         Label = "INFÂNCIA"
	Familia          Label = "FAMÍLIA"
	Escola           Label = "ESCOLA"
	Juventude        Label = "JUVENTUDE"
	Desenvolvimento  Label = "DESENVOLVIMENTO"
	TrabalhoComercio Label = "TRABALHO/ COMÉRCIO"
	Finalizacao      Label = "FINALIZAÇÃO"
)

var knownLabels = map[string]Label{
	string(Introducao):       Introducao,
	string(Identificacao):    Identificacao,
	string(Infancia):         Infancia,
	string(Familia):          Familia,
	string(Escola):           Escola,
	string(Juventude):        Juventude,
	string(Desenvolvimento):  Desenvolvimento,
	string(TrabalhoComercio): TrabalhoComercio,
	string(Finalizacao):      Finalizacao,
}

// ParseLabel maps an external string onto the closed label set.
func ParseLabel(s string) (Label, error) {
	if l, ok := knownLabels[s]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%q is not a known script section", s)
}

// IsValidLabel reports membership in the closed label set.
func IsValidLabel(s string) bool {
	_, ok := knownLabels[s]
	return ok
}
