package ecs

// Tag is a marker component synthesized from a name. Every TagFor call
// with the same name yields a component sharing one storage key, so tags
// mark entities without declaring new Go types:
//
//	w.Emplace(e, ecs.TagFor("boss"))
//	w.Has(e, ecs.TagFor("boss"))
//
// Tags carry no data and no lifecycle hooks.
type Tag struct {
	name string
}

// TagFor returns the marker component for name.
func TagFor(name string) Tag {
	return Tag{name: name}
}

// Name returns the tag's name.
func (t Tag) Name() string {
	return t.name
}
