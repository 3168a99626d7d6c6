package cpic

// Endpoint is one named REST resource of the CPIC API
type Endpoint struct {
	Name string // logical table name, used in output file names
	Path string // URL path segment under the base URL
}

// Endpoints lists the tables pulled on every run, in pull order
var Endpoints = []Endpoint{
	{Name: "gene", Path: "gene"},
	{Name: "allele", Path: "allele"},
	{Name: "drug", Path: "drug"},
	{Name: "guideline", Path: "guideline"},
	{Name: "recommendation", Path: "recommendation"},
	{Name: "diplotype", Path: "diplotype"},
	{Name: "pair", Path: "pair"}, // gene-drug pairs
}

// EndpointByName looks up one of Endpoints
func EndpointByName(name string) (Endpoint, bool) {
	for _, ep := range Endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return Endpoint{}, false
}
