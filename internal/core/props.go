package core

// IntProp reads an integer property, treating absence as zero.
func IntProp(g Graph, id EntityID, key string) int64 {
	v, ok := g.Prop(id, key)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}

// StrProp reads a string property, treating absence as the empty string.
func StrProp(g Graph, id EntityID, key string) string {
	v, ok := g.Prop(id, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ProfileOf assembles the public payload slice of a user entity.
func ProfileOf(g Graph, id EntityID) Profile {
	return Profile{
		ID:     id,
		Handle: StrProp(g, id, PropHandle),
		Name:   StrProp(g, id, PropName),
		Avatar: StrProp(g, id, PropAvatar),
	}
}
