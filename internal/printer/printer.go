package printer

import "github.com/edusys/delego/internal/model"

// Printer knows how to print delegation information in different formats.
type Printer interface {
	PrintDelegationList(ds []model.Delegation) error
	PrintDelegation(d model.Delegation) error
	PrintAssignment(a model.Assignment) error
	PrintMessage(msg string) error
}
