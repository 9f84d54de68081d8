package metadata

import _ "embed"

//go:embed templates/README.md
var readmeTemplate string

// ReadmeTemplate returns the README.md text written by EmitReadme.
func ReadmeTemplate() string {
	return readmeTemplate
}

// EmitReadme writes the README.md template at the dataset root.
func (e *Emitter) EmitReadme() error {
	return e.writeFile(e.rootPath(ReadmeFile), []byte(readmeTemplate))
}
