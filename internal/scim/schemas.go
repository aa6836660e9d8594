package scim

// SchemaAttribute describes one attribute of a published resource schema.
type SchemaAttribute struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	MultiValued     bool              `json:"multiValued"`
	Description     string            `json:"description"`
	Required        bool              `json:"required"`
	CaseExact       *bool             `json:"caseExact,omitempty"`
	CanonicalValues []string          `json:"canonicalValues,omitempty"`
	SubAttributes   []SchemaAttribute `json:"subAttributes,omitempty"`
	Mutability      string            `json:"mutability"`
	Returned        string            `json:"returned"`
	Uniqueness      string            `json:"uniqueness,omitempty"`
}

// ResourceSchema is one entry of the schema discovery listing.
type ResourceSchema struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  []SchemaAttribute `json:"attributes"`
	Meta        Meta              `json:"meta"`
}

func caseInsensitive() *bool { b := false; return &b }

// UserSchema is the published User resource schema.
var UserSchema = ResourceSchema{
	ID:          SchemaUser,
	Name:        "User",
	Description: "SCIM User maps to an organization member",
	Attributes: []SchemaAttribute{
		{
			Name:        "userName",
			Type:        "string",
			Description: "Unique identifier for the User, which is an email address.",
			Required:    true,
			CaseExact:   caseInsensitive(),
			Mutability:  "read",
			Returned:    "default",
			Uniqueness:  "server",
		},
		{
			Name:        "emails",
			Type:        "complex",
			MultiValued: true,
			Description: "Email addresses for the user. The value SHOULD be canonicalized by the service provider. Canonical type values of 'work', 'home', and 'other'.",
			SubAttributes: []SchemaAttribute{
				{
					Name:        "value",
					Type:        "string",
					Description: "Email addresses for the user. The value is canonicalized to be lowercase.",
					CaseExact:   caseInsensitive(),
					Mutability:  "read",
					Returned:    "default",
					Uniqueness:  "none",
				},
				{
					Name:        "display",
					Type:        "string",
					Description: "A human-readable name, primarily used for display purposes. READ-ONLY.",
					CaseExact:   caseInsensitive(),
					Mutability:  "read",
					Returned:    "default",
					Uniqueness:  "none",
				},
				{
					Name:            "type",
					Type:            "string",
					Description:     "A label indicating the attribute's function, e.g., 'work' or 'home'.",
					CaseExact:       caseInsensitive(),
					CanonicalValues: []string{"work", "home", "other"},
					Mutability:      "read",
					Returned:        "default",
					Uniqueness:      "none",
				},
				{
					Name:        "primary",
					Type:        "boolean",
					Description: "A Boolean value indicating the 'primary' or preferred attribute value for this attribute. The primary attribute value 'true' MUST appear no more than once.",
					Mutability:  "read",
					Returned:    "default",
				},
			},
			Mutability: "read",
			Returned:   "default",
			Uniqueness: "none",
		},
	},
	Meta: Meta{
		ResourceType: "Schema",
		Location:     "/v2/Schemas/" + SchemaUser,
	},
}

// GroupSchema is the published Group resource schema.
var GroupSchema = ResourceSchema{
	ID:          SchemaGroup,
	Name:        "Group",
	Description: "SCIM Group maps to a team",
	Attributes: []SchemaAttribute{
		{
			Name:        "displayName",
			Type:        "string",
			Description: "A human-readable name for the Group. REQUIRED.",
			CaseExact:   caseInsensitive(),
			Mutability:  "readWrite",
			Returned:    "default",
			Uniqueness:  "server",
		},
	},
	Meta: Meta{
		ResourceType: "Schema",
		Location:     "/v2/Schemas/" + SchemaGroup,
	},
}

// SchemaList is what the schema discovery endpoint serves.
var SchemaList = []ResourceSchema{UserSchema, GroupSchema}
