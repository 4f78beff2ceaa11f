package config

// Roastfile represents the structure of the roast.yaml configuration file.
type Roastfile struct {
	SrcFile     string       `yaml:"srcfile"`
	DestFile    string       `yaml:"destfile"`
	DestDir     string       `yaml:"destdir"`
	Force       bool         `yaml:"force"`
	Suffix      bool         `yaml:"suffix"`
	SuffixValue string       `yaml:"suffixvalue"`
	Bare        bool         `yaml:"bare"`
	Compiler    []string     `yaml:"compiler"`
	FileSets    []FileSetDTO `yaml:"filesets"`
}

// FileSetDTO represents a file set definition in the configuration.
type FileSetDTO struct {
	Dir      string   `yaml:"dir"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
