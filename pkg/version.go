package gnbundle

var (
	// Version of GNbundle.
	Version = "v0.1.0"

	// Build timestamp, set by build flags.
	Build = "n/a"
)
