package agreement

import "time"

// GenerateRequest asks for one agreement document
type GenerateRequest struct {
	// Layout names the layout to use; empty selects the default layout
	Layout string
	// Template and Font override the layout's assets when set
	Template string
	Font     string
	// Fields maps field ids to text; nil and missing values are treated as absent
	Fields map[string]*string
	// Format is "pdf" or "png"; empty selects pdf
	Format string
}

// GenerateResult describes a generated document waiting for delivery
type GenerateResult struct {
	// Path is the storage-relative location of the document
	Path string
	// Filename is the derived display name, safe for Content-Disposition
	Filename  string
	MediaType string
	Size      int64
	Duration  time.Duration
	Layout    string
	// Drawn is the number of fields that produced text
	Drawn int
}

// LayoutResponse describes a layout for clients building input forms
type LayoutResponse struct {
	Name            string        `json:"name"`
	Template        string        `json:"template"`
	Font            string        `json:"font"`
	FontSize        float64       `json:"font_size"`
	IdentifierField string        `json:"identifier_field"`
	Default         bool          `json:"default"`
	Fields          []FieldLayout `json:"fields"`
}

// FieldLayout is one field binding of a layout
type FieldLayout struct {
	ID    string  `json:"id"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}
