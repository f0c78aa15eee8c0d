package models

// Perspective is the viewpoint a respondent answers from.
type Perspective string

const (
	PerspectiveSelf        Perspective = "SELF"
	PerspectiveFacilitator Perspective = "FACILITATOR"
	PerspectivePeer        Perspective = "PEER"
	PerspectiveManager     Perspective = "MANAGER"
	PerspectiveSystem      Perspective = "SYSTEM"
)

func (p Perspective) IsValid() bool {
	switch p {
	case PerspectiveSelf, PerspectiveFacilitator, PerspectivePeer, PerspectiveManager, PerspectiveSystem:
		return true
	}
	return false
}
