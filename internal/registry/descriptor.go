package registry

// Descriptor declares how to talk to one model family: the properties a user
// must supply per instance and the templates that turn them into a request.
// Descriptors are immutable once loaded and shared by every instance of the
// family.
type Descriptor struct {
	Information Information `toml:"information" json:"information"`
	// Properties are ordered as declared in the file; the order drives prompts
	// in the CLI and the HTTP API listing.
	Properties []Property `toml:"properties" json:"properties" validate:"required,dive"`
	Templates  Templates  `toml:"templates" json:"templates"`
}

// Information identifies the family.
type Information struct {
	ModelName string `toml:"model_name" json:"model_name" validate:"required"`
}

// Property is one user-supplied value an instance of the family carries.
type Property struct {
	Name        string `toml:"name" json:"name" validate:"required"`
	Description string `toml:"description" json:"description"`
}

// Templates holds the request templates and the response extraction path.
// Templates use ${identifier} placeholders; ResponsePath is a JSONPath query.
type Templates struct {
	Endpoint     string `toml:"endpoint_template" json:"endpoint_template" validate:"required"`
	Header       string `toml:"header_template" json:"header_template" validate:"required"`
	Data         string `toml:"data_template" json:"data_template" validate:"required"`
	ResponsePath string `toml:"response_path" json:"response_path" validate:"required"`
}

// Name returns the family name.
func (d Descriptor) Name() string { return d.Information.ModelName }

// PropertyNames returns the declared property names in file order.
func (d Descriptor) PropertyNames() []string {
	out := make([]string, 0, len(d.Properties))
	for _, p := range d.Properties {
		out = append(out, p.Name)
	}
	return out
}
