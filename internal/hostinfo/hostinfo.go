package hostinfo

// Metadata captures static identifiers for the bridge host. Centralising the
// values makes it easy to clone this repository for new runtimes.
type Metadata struct {
	Name        string
	BinaryName  string
	Slug        string
	Description string
	Version     string
}

// Info describes the current bridge host.
var Info = Metadata{
	Name:        "Arvik Runtime Bridge",
	BinaryName:  "bridged",
	Slug:        "runtime-bridge",
	Description: "Host-side bridge between the managed runtime and the native inference core.",
	Version:     "0.3.0",
}

// DecisionMetadata produces the standard metadata payload attached to
// strategy decisions surfaced over the control API.
func DecisionMetadata(componentType, strategy string) map[string]string {
	return map[string]string{
		"bridge":    Info.Slug,
		"component": componentType,
		"strategy":  strategy,
	}
}
