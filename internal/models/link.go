package models

type LinkKind string

const (
	LinkCategory   LinkKind = "category"
	LinkCollection LinkKind = "collection"
	LinkPage       LinkKind = "page"
)

func (k LinkKind) Valid() bool {
	switch k {
	case LinkCategory, LinkCollection, LinkPage:
		return true
	}
	return false
}

// Linked is a catalog object a menu item can point at.
type Linked interface {
	LinkKind() LinkKind
	String() string
	AbsoluteURL() string
}
