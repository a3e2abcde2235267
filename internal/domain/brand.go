package domain

// Brand is an entry of the closed brand table
type Brand struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FallbackBrandColor renders unknown or missing brand codes.
const FallbackBrandColor = "#94a3b8"

var brands = []Brand{
	{Code: "GM", Name: "Gentle Monster", Color: "#111827"},
	{Code: "TAM", Name: "Tamburins", Color: "#b45309"},
	{Code: "NUD", Name: "Nudake", Color: "#db2777"},
	{Code: "ATS", Name: "Atiissu", Color: "#0d9488"},
	{Code: "NUF", Name: "Nuflaat", Color: "#4f46e5"},
}

// Brands returns the brand table in display order.
func Brands() []Brand {
	out := make([]Brand, len(brands))
	copy(out, brands)
	return out
}

// IsBrand reports whether code is in the brand table.
func IsBrand(code string) bool {
	for _, b := range brands {
		if b.Code == code {
			return true
		}
	}
	return false
}

// LookupBrand resolves code. Unknown codes keep the literal code as their
// name and get the neutral fallback colour.
func LookupBrand(code string) Brand {
	for _, b := range brands {
		if b.Code == code {
			return b
		}
	}
	return Brand{Code: code, Name: code, Color: FallbackBrandColor}
}

// PresetColor is a zone colour offered by the editor
type PresetColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var presetColors = []PresetColor{
	{Name: "blue", Value: DefaultZoneColor},
	{Name: "red", Value: "#ef4444"},
	{Name: "green", Value: "#22c55e"},
	{Name: "yellow", Value: "#eab308"},
	{Name: "purple", Value: "#a855f7"},
	{Name: "orange", Value: "#f97316"},
	{Name: "grey", Value: "#64748b"},
	{Name: "black", Value: "#0f172a"},
}

// PresetColors returns the editor palette; the first entry is the default.
func PresetColors() []PresetColor {
	out := make([]PresetColor, len(presetColors))
	copy(out, presetColors)
	return out
}
