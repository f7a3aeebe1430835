package ports

import "github.com/aretw0/vine/pkg/domain"

// ScriptSource defines where the host reads its script from.
// This allows the storage layer (file system, memory) to be decoupled from the supervisor.
type ScriptSource interface {
	// Name identifies the script in logs and error messages (usually the path).
	Name() string

	// Stat returns the current change stamp without reading the content.
	// It returns an error wrapping domain.ErrScriptNotFound if the script does not exist.
	Stat() (domain.Stamp, error)

	// Read returns the script content together with the stamp it was read at.
	// It returns an error wrapping domain.ErrScriptNotFound if the script does not exist.
	Read() ([]byte, domain.Stamp, error)
}
