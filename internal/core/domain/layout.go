package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "roast.yaml"

	// SourceExt is the extension of CoffeeScript sources.
	SourceExt = ".coffee"

	// OutputExt is the extension of compiled outputs.
	OutputExt = ".js"

	// DefaultSuffixValue is inserted before OutputExt when suffixing is enabled
	// and no other value is configured.
	DefaultSuffixValue = ".compiled"

	// DefaultInclude is the include pattern of a file set that declares none.
	DefaultInclude = "**/*" + SourceExt

	// TempPattern is the name pattern of staged outputs.
	TempPattern = "roast-*.tmp"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
