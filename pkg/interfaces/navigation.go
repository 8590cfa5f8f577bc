package interfaces

// Navigator resolves a document id into a location the renderer can link to.
// An error, or an empty location, means the target is not navigable and the
// reference is rendered as an inert badge.
type Navigator interface {
	Locate(id string) (string, error)
}

// NavigatorFunc adapts a plain function into a Navigator.
type NavigatorFunc func(id string) (string, error)

func (f NavigatorFunc) Locate(id string) (string, error) {
	return f(id)
}
