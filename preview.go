package editshell

// EditState is the set of switches the CMS instance is configured with.
// All three always carry the same value.
type EditState struct {
	CMSEnabled bool
	Sidebar    bool
	Toolbar    bool
}

// Resolve derives the edit state from page properties. A missing preview
// indicator is the zero value and resolves to edit mode off.
func Resolve(props PageProps) EditState {
	on := props.Preview
	return EditState{
		CMSEnabled: on,
		Sidebar:    on,
		Toolbar:    on,
	}
}

// propsFromSession reads page properties from raw preview session values.
// A missing or non-boolean preview value is treated as false.
func propsFromSession(values map[interface{}]interface{}) PageProps {
	preview, _ := values[sessionPreviewKey].(bool)
	return PageProps{Preview: preview}
}
